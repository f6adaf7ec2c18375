package core

// Logger reports application events.
// Args may carry errors, extra data (map[string]interface{}) and the learner the event relates to.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies who an event relates to when reported.
type Person struct {
	ID   string
	Name string
}
