package session

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
)

// DefaultHistoryLimit caps History when no limit is given.
const DefaultHistoryLimit = 50

var ErrNotFound = errors.New("session not found")

type (
	// Record is one launch of a course by a learner. An open session has no end.
	Record struct {
		ID           string     `json:"id" db:"id"`
		LearnerID    string     `json:"learner_id" db:"learner_id"`
		CourseID     string     `json:"course_id" db:"course_id"`
		SessionStart time.Time  `json:"session_start" db:"session_start"`
		SessionEnd   null.Time  `json:"session_end" db:"session_end"`
		Duration     null.Int64 `json:"duration" db:"duration"` // seconds
		IPAddress    string     `json:"ip_address" db:"ip_address"`
		UserAgent    string     `json:"user_agent" db:"user_agent"`
	}

	// Client describes where a launch came from.
	Client struct {
		IPAddress string
		UserAgent string
	}

	Repository interface {
		CreateSession(ctx context.Context, rec Record) (Record, error)
		GetSession(ctx context.Context, id string) (Record, error)
		// CloseSession sets the end of an open session; closed reports false if it was already closed.
		CloseSession(ctx context.Context, id string, end time.Time, duration int64) (closed bool, err error)
		ListSessions(ctx context.Context, learnerID, courseID string, limit int) ([]Record, error)
		DeleteSessions(ctx context.Context, learnerID, courseID string) error
	}
)

// IsOpen reports whether the session has not been closed yet.
func (r Record) IsOpen() bool {
	return !r.SessionEnd.Valid
}
