package session

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu   sync.Mutex
	recs map[string]Record
}

func newMemRepo() *memRepo {
	return &memRepo{recs: make(map[string]Record)}
}

func (m *memRepo) CreateSession(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.ID] = rec
	return rec, nil
}

func (m *memRepo) GetSession(_ context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *memRepo) CloseSession(_ context.Context, id string, end time.Time, duration int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok || !rec.IsOpen() {
		return false, nil
	}
	rec.SessionEnd.SetValid(end)
	rec.Duration.SetValid(duration)
	m.recs[id] = rec
	return true, nil
}

func (m *memRepo) ListSessions(_ context.Context, learnerID, courseID string, limit int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var recs []Record
	for _, rec := range m.recs {
		if rec.LearnerID == learnerID && rec.CourseID == courseID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].SessionStart.After(recs[j].SessionStart) })
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (m *memRepo) DeleteSessions(_ context.Context, learnerID, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rec := range m.recs {
		if rec.LearnerID == learnerID && rec.CourseID == courseID {
			delete(m.recs, id)
		}
	}
	return nil
}

func newTestTracker(clock *time.Time) (*Tracker, *memRepo) {
	repo := newMemRepo()
	tr := NewTracker(repo)
	tr.now = func() time.Time { return *clock }
	return tr, repo
}

func TestTracker_OpenClose(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tr, _ := newTestTracker(&clock)

	rec, err := tr.Open(ctx, "learner-1", "course-1", Client{IPAddress: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.True(t, rec.IsOpen())
	assert.Equal(t, clock, rec.SessionStart)

	clock = clock.Add(95 * time.Second)
	closed, err := tr.Close(ctx, rec.ID, "learner-1")
	require.NoError(t, err)
	assert.False(t, closed.IsOpen())
	assert.Equal(t, int64(95), closed.Duration.Int64)
	assert.Equal(t, clock, closed.SessionEnd.Time)

	// closing again changes nothing
	clock = clock.Add(time.Hour)
	again, err := tr.Close(ctx, rec.ID, "learner-1")
	require.NoError(t, err)
	assert.Equal(t, closed, again)
}

func TestTracker_Close_OtherLearner(t *testing.T) {
	ctx := context.Background()
	clock := time.Now().UTC()
	tr, _ := newTestTracker(&clock)

	rec, err := tr.Open(ctx, "learner-1", "course-1", Client{})
	require.NoError(t, err)

	_, err = tr.Close(ctx, rec.ID, "learner-2")
	assert.Equal(t, ErrNotFound, err)

	_, err = tr.Close(ctx, "missing", "learner-1")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestTracker_History(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tr, _ := newTestTracker(&clock)

	var ids []string
	for i := 0; i < 3; i++ {
		rec, err := tr.Open(ctx, "learner-1", "course-1", Client{})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
		clock = clock.Add(time.Minute)
	}
	_, err := tr.Open(ctx, "learner-1", "course-2", Client{})
	require.NoError(t, err)

	recs, err := tr.History(ctx, "learner-1", "course-1", 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{recs[0].ID, recs[1].ID, recs[2].ID})

	recs, err = tr.History(ctx, "learner-1", "course-1", 2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	require.NoError(t, tr.Forget(ctx, "learner-1", "course-1"))
	recs, err = tr.History(ctx, "learner-1", "course-1", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
