package progress

import (
	"github.com/volatiletech/null/v8"

	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
)

// Ineligibility reasons, checked in this order.
const (
	ReasonNotStarted   = "not started"
	ReasonNotCompleted = "not completed"
	ReasonScoreTooLow  = "score below threshold"
)

// Verdict says whether a learner may receive the course certificate.
type Verdict struct {
	Eligible     bool        `json:"eligible"`
	Reason       null.String `json:"reason"`
	LessonStatus cmi.Status  `json:"lesson_status"`
	Score        float64     `json:"score"`
	PassingScore float64     `json:"passing_score"`
}

// Evaluate derives certificate eligibility from a record. A missing score counts as 0.
func Evaluate(rec Record, passingScore float64) Verdict {
	v := Verdict{
		LessonStatus: rec.LessonStatus,
		Score:        rec.ScoreRaw.Float64,
		PassingScore: passingScore,
	}
	if !rec.ScoreRaw.Valid {
		v.Score = 0
	}

	switch {
	case rec.LessonStatus == cmi.StatusNotAttempted || rec.LessonStatus == "":
		v.Reason = null.StringFrom(ReasonNotStarted)
	case !rec.LessonStatus.Done():
		v.Reason = null.StringFrom(ReasonNotCompleted)
	case v.Score < passingScore:
		v.Reason = null.StringFrom(ReasonScoreTooLow)
	default:
		v.Eligible = true
	}
	return v
}
