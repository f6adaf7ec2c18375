package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
)

func TestEvaluate(t *testing.T) {
	record := func(status cmi.Status, score ...float64) Record {
		rec := NewRecord("learner-1", "course-1")
		rec.LessonStatus = status
		if len(score) > 0 {
			rec.ScoreRaw = null.Float64From(score[0])
		}
		return rec
	}

	tests := []struct {
		name       string
		rec        Record
		passing    float64
		wantOK     bool
		wantReason string
	}{
		{name: "not attempted", rec: record(cmi.StatusNotAttempted, 99), passing: 80, wantReason: ReasonNotStarted},
		{name: "blank status", rec: record(""), passing: 80, wantReason: ReasonNotStarted},
		{name: "incomplete", rec: record(cmi.StatusIncomplete, 99), passing: 80, wantReason: ReasonNotCompleted},
		{name: "failed", rec: record(cmi.StatusFailed, 99), passing: 80, wantReason: ReasonNotCompleted},
		{name: "browsed", rec: record(cmi.StatusBrowsed), passing: 0, wantReason: ReasonNotCompleted},
		{name: "completed below", rec: record(cmi.StatusCompleted, 79.5), passing: 80, wantReason: ReasonScoreTooLow},
		{name: "passed no score", rec: record(cmi.StatusPassed), passing: 80, wantReason: ReasonScoreTooLow},
		{name: "passed no score zero bar", rec: record(cmi.StatusPassed), passing: 0, wantOK: true},
		{name: "passed at threshold", rec: record(cmi.StatusPassed, 80), passing: 80, wantOK: true},
		{name: "completed above", rec: record(cmi.StatusCompleted, 95), passing: 80, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(tt.rec, tt.passing)
			assert.Equal(t, tt.wantOK, v.Eligible)
			if tt.wantOK {
				assert.False(t, v.Reason.Valid)
			} else {
				assert.Equal(t, tt.wantReason, v.Reason.String)
			}
			assert.Equal(t, tt.passing, v.PassingScore)
		})
	}
}
