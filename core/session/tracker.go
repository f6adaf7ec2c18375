package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Tracker opens and closes learner sessions. All timestamps are taken server side.
type Tracker struct {
	repo Repository
	now  func() time.Time
}

func NewTracker(repo Repository) *Tracker {
	return &Tracker{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Open starts a new session. Sessions left open by abandoned launches stay untouched.
func (t *Tracker) Open(ctx context.Context, learnerID, courseID string, client Client) (Record, error) {
	rec := Record{
		ID:           uuid.New().String(),
		LearnerID:    learnerID,
		CourseID:     courseID,
		SessionStart: t.now(),
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
	}
	rec, err := t.repo.CreateSession(ctx, rec)
	return rec, errors.Wrap(err, "creating session")
}

// Close ends the learner's session. Closing an already closed session is a no-op.
func (t *Tracker) Close(ctx context.Context, sessionID, learnerID string) (Record, error) {
	rec, err := t.repo.GetSession(ctx, sessionID)
	if err != nil {
		return Record{}, errors.Wrap(err, "getting session")
	}
	if rec.LearnerID != learnerID {
		return Record{}, ErrNotFound
	}
	if !rec.IsOpen() {
		return rec, nil
	}

	end := t.now()
	duration := int64(end.Sub(rec.SessionStart) / time.Second)
	if duration < 0 {
		duration = 0
	}
	closed, err := t.repo.CloseSession(ctx, sessionID, end, duration)
	if err != nil {
		return Record{}, errors.Wrap(err, "closing session")
	}
	if !closed { // lost a race with another close
		rec, err = t.repo.GetSession(ctx, sessionID)
		return rec, errors.Wrap(err, "getting session")
	}
	rec.SessionEnd.SetValid(end)
	rec.Duration.SetValid(duration)
	return rec, nil
}

// History returns the learner's sessions for a course, newest first.
func (t *Tracker) History(ctx context.Context, learnerID, courseID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	recs, err := t.repo.ListSessions(ctx, learnerID, courseID, limit)
	return recs, errors.Wrap(err, "listing sessions")
}

// Forget deletes every session of the learner for a course.
func (t *Tracker) Forget(ctx context.Context, learnerID, courseID string) error {
	return errors.Wrap(t.repo.DeleteSessions(ctx, learnerID, courseID), "deleting sessions")
}
