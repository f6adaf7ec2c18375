package progress

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/Hanyshennawy/moe-scorm-lms/core"
	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
)

const (
	defaultScoreMin = 0.0
	defaultScoreMax = 100.0

	creditCredit     = "credit"
	lessonModeNormal = "normal"
)

var (
	// errors
	ErrNotFound      = errors.New("progress not found")
	ErrReadOnly      = errors.New("element is read only")
	ErrWriteOnly     = errors.New("element is write only")
	ErrUnknownStatus = errors.New("not a SCORM 1.2 lesson status")
	ErrNotANumber    = errors.New("not a number")
	ErrNegativeTime  = errors.New("session time must not be negative")
)

type (
	// Learner is the authenticated person taking a course.
	Learner struct {
		ID   string
		Name string
	}

	// Record is the persisted CMI projection of one learner on one course.
	Record struct {
		LearnerID            string       `json:"learner_id" db:"learner_id"`
		CourseID             string       `json:"course_id" db:"course_id"`
		LessonStatus         cmi.Status   `json:"lesson_status" db:"lesson_status"`
		LessonLocation       string       `json:"lesson_location" db:"lesson_location"`
		ScoreRaw             null.Float64 `json:"score_raw" db:"score_raw"`
		ScoreMin             float64      `json:"score_min" db:"score_min"`
		ScoreMax             float64      `json:"score_max" db:"score_max"`
		TotalTime            int64        `json:"total_time" db:"total_time"`     // seconds
		SessionTime          int64        `json:"session_time" db:"session_time"` // seconds, last reported delta
		SuspendData          string       `json:"suspend_data" db:"suspend_data"`
		Exit                 string       `json:"exit" db:"exit"`
		CompletionPercentage float64      `json:"completion_percentage" db:"completion_percentage"`
		FirstAccessed        null.Time    `json:"first_accessed" db:"first_accessed"`
		LastAccessed         null.Time    `json:"last_accessed" db:"last_accessed"`
		CompletedAt          null.Time    `json:"completed_at" db:"completed_at"`
		AccessCount          int64        `json:"access_count" db:"access_count"`
		CreatedAt            time.Time    `json:"created_at" db:"created_at"`
		UpdatedAt            time.Time    `json:"updated_at" db:"updated_at"`
	}

	// Interaction is a write-once quiz event.
	Interaction struct {
		ID              string       `json:"id" db:"id"`
		LearnerID       string       `json:"learner_id" db:"learner_id"`
		CourseID        string       `json:"course_id" db:"course_id"`
		InteractionID   string       `json:"interaction_id" db:"interaction_id"`
		Type            string       `json:"type" db:"type"`
		Description     string       `json:"description" db:"description"`
		LearnerResponse string       `json:"learner_response" db:"learner_response"`
		CorrectResponse string       `json:"correct_response" db:"correct_response"`
		Result          string       `json:"result" db:"result"`
		Weighting       null.Float64 `json:"weighting" db:"weighting"`
		Latency         int64        `json:"latency" db:"latency"` // seconds
		RecordedAt      time.Time    `json:"recorded_at" db:"recorded_at"`
	}

	// Update is a validated partial write. Nil fields are left untouched.
	// Scalars are last write wins, SessionSeconds is added to the total,
	// CompletionPercentage is only ever raised.
	Update struct {
		LessonStatus         *cmi.Status
		LessonLocation       *string
		ScoreRaw             *float64
		ScoreMin             *float64
		ScoreMax             *float64
		SuspendData          *string
		Exit                 *string
		SessionSeconds       int64
		CompletionPercentage *float64
	}

	Repository interface {
		// InitializeRecord creates the record on first access, otherwise bumps its access count.
		InitializeRecord(ctx context.Context, learnerID, courseID string, now time.Time) (Record, error)
		// ApplyUpdate merges u into the record, creating it when missing, as one atomic statement.
		ApplyUpdate(ctx context.Context, learnerID, courseID string, u Update, now time.Time) (Record, error)
		GetRecord(ctx context.Context, learnerID, courseID string) (Record, error)
		ListRecords(ctx context.Context, learnerID string, orderings []core.DBOrdering) ([]Record, error)
		DeleteRecord(ctx context.Context, learnerID, courseID string) error

		CreateInteraction(ctx context.Context, in Interaction) (Interaction, error)
		ListInteractions(ctx context.Context, learnerID, courseID string) ([]Interaction, error)
	}
)

// NewRecord returns the record of a course never started.
func NewRecord(learnerID, courseID string) Record {
	return Record{
		LearnerID:    learnerID,
		CourseID:     courseID,
		LessonStatus: cmi.StatusNotAttempted,
		ScoreMin:     defaultScoreMin,
		ScoreMax:     defaultScoreMax,
	}
}

// Completion returns the completion percentage to write: 100 once the status is done.
func (u Update) Completion() *float64 {
	if u.LessonStatus != nil && u.LessonStatus.Done() {
		full := 100.0
		return &full
	}
	return u.CompletionPercentage
}

// CompletedAt returns `now` when the update marks the course done.
// Stores only keep it when no completion time was recorded yet.
func (u Update) CompletedAt(now time.Time) null.Time {
	if u.LessonStatus != nil && u.LessonStatus.Done() {
		return null.TimeFrom(now)
	}
	return null.Time{}
}

// IsEmpty reports whether u writes nothing.
func (u Update) IsEmpty() bool {
	return u == Update{}
}

// Entry is `ab-initio` on the first access and `resume` afterwards.
func (r Record) Entry() string {
	if r.AccessCount <= 1 {
		return cmi.EntryAbInitio
	}
	return cmi.EntryResume
}

// Mirror returns the readable data model values of the record, keyed by element.
func (r Record) Mirror(learner Learner) map[string]string {
	score := ""
	if r.ScoreRaw.Valid {
		score = formatDecimal(r.ScoreRaw.Float64)
	}
	return map[string]string{
		cmi.StudentID:      learner.ID,
		cmi.StudentName:    learner.Name,
		cmi.LessonStatus:   r.LessonStatus.Vocabulary(),
		cmi.LessonLocation: r.LessonLocation,
		cmi.ScoreRaw:       score,
		cmi.ScoreMin:       formatDecimal(r.ScoreMin),
		cmi.ScoreMax:       formatDecimal(r.ScoreMax),
		cmi.TotalTime:      cmi.EncodeTime(r.TotalTime),
		cmi.Entry:          r.Entry(),
		cmi.Credit:         creditCredit,
		cmi.LessonMode:     lessonModeNormal,
		cmi.SuspendData:    r.SuspendData,
	}
}

func formatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
