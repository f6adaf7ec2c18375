package cmi

// Launch is what the backend hands the runtime when a learner opens a course.
type Launch struct {
	SessionID string            `json:"sessionId"`
	ScormData map[string]string `json:"scormData"`
}

// Delta is a partial CMI record pushed by the runtime. Nil fields are left untouched.
// SessionTime holds only the time accumulated since the previous flush.
type Delta struct {
	LessonStatus         *string  `json:"lesson_status,omitempty"`
	LessonLocation       *string  `json:"lesson_location,omitempty"`
	ScoreRaw             *string  `json:"score_raw,omitempty"`
	ScoreMin             *string  `json:"score_min,omitempty"`
	ScoreMax             *string  `json:"score_max,omitempty"`
	SuspendData          *string  `json:"suspend_data,omitempty"`
	Exit                 *string  `json:"exit,omitempty"`
	SessionTime          *string  `json:"session_time,omitempty" validate:"omitempty,cmitimespan"`
	CompletionPercentage *float64 `json:"completion_percentage,omitempty" validate:"omitempty,min=0,max=100"`
}

// IsEmpty reports whether the delta carries nothing to write.
func (d Delta) IsEmpty() bool {
	return d.LessonStatus == nil && d.LessonLocation == nil && d.ScoreRaw == nil &&
		d.ScoreMin == nil && d.ScoreMax == nil && d.SuspendData == nil && d.Exit == nil &&
		d.SessionTime == nil && d.CompletionPercentage == nil
}

// Interaction is one quiz level event reported by content.
type Interaction struct {
	ID              string   `json:"id" validate:"required"`
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	LearnerResponse string   `json:"learner_response"`
	CorrectResponse string   `json:"correct_response"`
	Result          string   `json:"result"`
	Weighting       *float64 `json:"weighting"`
	Latency         string   `json:"latency" validate:"omitempty,cmitimespan"`
}

// String returns a pointer to s, for building deltas.
func String(s string) *string { return &s }
