package cmi

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Status is the closed set of lesson statuses the system reasons about.
// Raw text reported by content is mapped onto it by Normalize.
type Status string

const (
	StatusPassed       Status = "passed"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusIncomplete   Status = "incomplete"
	StatusBrowsed      Status = "browsed"
	StatusNotAttempted Status = "not_attempted"
)

var (
	Statuses = []Status{StatusPassed, StatusCompleted, StatusFailed, StatusIncomplete, StatusBrowsed, StatusNotAttempted}

	separators = regexp.MustCompile(`[\s-]+`)
)

// fold lower-cases text and joins its words with underscores.
// Casers keep state, so a fresh one is built per call.
func fold(text string) string {
	s := strings.TrimSpace(norm.NFKC.String(text))
	return separators.ReplaceAllString(cases.Lower(language.Und).String(s), "_")
}

// Normalize maps free text onto a Status. Unknown or empty input is StatusNotAttempted.
func Normalize(text string) Status {
	s := fold(text)
	for _, st := range Statuses {
		if s == string(st) {
			return st
		}
	}
	return StatusNotAttempted
}

// IsVocabulary reports whether text spells one of the SCORM 1.2 lesson_status values.
func IsVocabulary(text string) bool {
	return Normalize(text) != StatusNotAttempted || fold(text) == string(StatusNotAttempted)
}

// Done reports whether the learner finished the lesson.
func (s Status) Done() bool {
	return s == StatusCompleted || s == StatusPassed
}

// Vocabulary returns the SCORM 1.2 spelling handed back to content ("not attempted").
func (s Status) Vocabulary() string {
	if s == "" {
		return "not attempted"
	}
	return strings.ReplaceAll(string(s), "_", " ")
}

func (s Status) String() string { return string(s) }
