package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/Hanyshennawy/moe-scorm-lms/core"
	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
	"github.com/Hanyshennawy/moe-scorm-lms/core/progress"
)

const (
	recordColumns = `learner_id, course_id, lesson_status, lesson_location, score_raw, score_min, score_max,
		total_time, session_time, suspend_data, exit, completion_percentage,
		first_accessed, last_accessed, completed_at, access_count, created_at, updated_at`

	ensureRecordQuery = `
		INSERT INTO cmi_records (learner_id, course_id, lesson_status, score_min, score_max, created_at, updated_at)
		VALUES (:learner_id, :course_id, :lesson_status, :score_min, :score_max, :now, :now)
		ON CONFLICT (learner_id, course_id) DO NOTHING`

	initializeRecordQuery = `
		INSERT INTO cmi_records (
			learner_id, course_id, lesson_status, score_min, score_max,
			first_accessed, last_accessed, access_count, created_at, updated_at
		)
		VALUES (:learner_id, :course_id, :lesson_status, :score_min, :score_max, :now, :now, 1, :now, :now)
		ON CONFLICT (learner_id, course_id) DO UPDATE SET
			access_count = cmi_records.access_count + 1,
			first_accessed = COALESCE(cmi_records.first_accessed, excluded.first_accessed),
			last_accessed = excluded.last_accessed,
			updated_at = excluded.updated_at`

	// applyUpdateQuery merges a partial write in one statement:
	// scalars are last write wins, total_time is additive,
	// completion_percentage only goes up and completed_at is only set once.
	applyUpdateQuery = `
		UPDATE cmi_records SET
			lesson_status = COALESCE(:lesson_status, lesson_status),
			lesson_location = COALESCE(:lesson_location, lesson_location),
			score_raw = COALESCE(CAST(:score_raw AS DOUBLE PRECISION), score_raw),
			score_min = COALESCE(CAST(:score_min AS DOUBLE PRECISION), score_min),
			score_max = COALESCE(CAST(:score_max AS DOUBLE PRECISION), score_max),
			suspend_data = COALESCE(:suspend_data, suspend_data),
			exit = COALESCE(:exit, exit),
			total_time = total_time + :session_seconds,
			session_time = CASE WHEN :session_seconds > 0 THEN :session_seconds ELSE session_time END,
			completion_percentage = CASE
				WHEN CAST(:completion AS DOUBLE PRECISION) > completion_percentage THEN CAST(:completion AS DOUBLE PRECISION)
				ELSE completion_percentage
			END,
			completed_at = COALESCE(completed_at, :completed_at),
			first_accessed = COALESCE(first_accessed, :now),
			last_accessed = :now,
			updated_at = :now
		WHERE learner_id = :learner_id AND course_id = :course_id`
)

var recordOrderings = map[string]string{
	"course_id":             "course_id",
	"lesson_status":         "lesson_status",
	"total_time":            "total_time",
	"completion_percentage": "completion_percentage",
	"first_accessed":        "first_accessed",
	"last_accessed":         "last_accessed",
	"completed_at":          "completed_at",
}

type progressRepository struct {
	db core.DBExecutor
}

var _ progress.Repository = (*progressRepository)(nil)

func NewProgressRepository(db core.DBExecutor) *progressRepository {
	return &progressRepository{db: db}
}

func seedArgs(learnerID, courseID string, now time.Time) map[string]interface{} {
	seed := progress.NewRecord(learnerID, courseID)
	return map[string]interface{}{
		"learner_id":    learnerID,
		"course_id":     courseID,
		"lesson_status": seed.LessonStatus,
		"score_min":     seed.ScoreMin,
		"score_max":     seed.ScoreMax,
		"now":           now,
	}
}

func (repo progressRepository) InitializeRecord(ctx context.Context, learnerID, courseID string, now time.Time) (progress.Record, error) {
	if _, err := repo.db.NamedExecContext(ctx, initializeRecordQuery, seedArgs(learnerID, courseID, now)); err != nil {
		return progress.Record{}, errors.Wrap(err, "upserting record")
	}
	return repo.GetRecord(ctx, learnerID, courseID)
}

func (repo progressRepository) ApplyUpdate(
	ctx context.Context,
	learnerID, courseID string,
	u progress.Update,
	now time.Time,
) (progress.Record, error) {
	if _, err := repo.db.NamedExecContext(ctx, ensureRecordQuery, seedArgs(learnerID, courseID, now)); err != nil {
		return progress.Record{}, errors.Wrap(err, "ensuring record")
	}

	var status *string
	if u.LessonStatus != nil {
		s := u.LessonStatus.String()
		status = &s
	}
	args := map[string]interface{}{
		"learner_id":      learnerID,
		"course_id":       courseID,
		"lesson_status":   status,
		"lesson_location": u.LessonLocation,
		"score_raw":       u.ScoreRaw,
		"score_min":       u.ScoreMin,
		"score_max":       u.ScoreMax,
		"suspend_data":    u.SuspendData,
		"exit":            u.Exit,
		"session_seconds": u.SessionSeconds,
		"completion":      u.Completion(),
		"completed_at":    u.CompletedAt(now),
		"now":             now,
	}
	if _, err := repo.db.NamedExecContext(ctx, applyUpdateQuery, args); err != nil {
		return progress.Record{}, errors.Wrap(err, "updating record")
	}
	return repo.GetRecord(ctx, learnerID, courseID)
}

func (repo progressRepository) GetRecord(ctx context.Context, learnerID, courseID string) (progress.Record, error) {
	var rec progress.Record
	q := repo.db.Rebind("SELECT " + recordColumns + " FROM cmi_records WHERE learner_id = ? AND course_id = ?")
	if err := repo.db.GetContext(ctx, &rec, q, learnerID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return progress.Record{}, progress.ErrNotFound
		}
		return progress.Record{}, errors.Wrap(err, "selecting record")
	}
	if rec.LessonStatus == "" {
		rec.LessonStatus = cmi.StatusNotAttempted
	}
	return rec, nil
}

func (repo progressRepository) ListRecords(ctx context.Context, learnerID string, orderings []core.DBOrdering) ([]progress.Record, error) {
	recs := make([]progress.Record, 0)
	q := "SELECT " + recordColumns + " FROM cmi_records WHERE learner_id = ?" +
		core.OrderBy(orderings, recordOrderings, "last_accessed DESC, course_id ASC")
	if err := repo.db.SelectContext(ctx, &recs, repo.db.Rebind(q), learnerID); err != nil {
		return nil, errors.Wrap(err, "selecting records")
	}
	return recs, nil
}

func (repo progressRepository) DeleteRecord(ctx context.Context, learnerID, courseID string) error {
	q := repo.db.Rebind("DELETE FROM cmi_records WHERE learner_id = ? AND course_id = ?")
	res, err := repo.db.ExecContext(ctx, q, learnerID, courseID)
	if err != nil {
		return errors.Wrap(err, "deleting record")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting record")
	}
	if n == 0 {
		return progress.ErrNotFound
	}
	return nil
}

func (repo progressRepository) CreateInteraction(ctx context.Context, in progress.Interaction) (progress.Interaction, error) {
	const q = `
		INSERT INTO interactions (
			id, learner_id, course_id, interaction_id, type, description,
			learner_response, correct_response, result, weighting, latency, recorded_at
		)
		VALUES (
			:id, :learner_id, :course_id, :interaction_id, :type, :description,
			:learner_response, :correct_response, :result, :weighting, :latency, :recorded_at
		)`
	if _, err := repo.db.NamedExecContext(ctx, q, in); err != nil {
		return progress.Interaction{}, errors.Wrap(err, "inserting interaction")
	}
	return in, nil
}

func (repo progressRepository) ListInteractions(ctx context.Context, learnerID, courseID string) ([]progress.Interaction, error) {
	ins := make([]progress.Interaction, 0)
	q := repo.db.Rebind(`
		SELECT id, learner_id, course_id, interaction_id, type, description,
			learner_response, correct_response, result, weighting, latency, recorded_at
		FROM interactions
		WHERE learner_id = ? AND course_id = ?
		ORDER BY recorded_at ASC, id ASC`)
	if err := repo.db.SelectContext(ctx, &ins, q, learnerID, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting interactions")
	}
	return ins, nil
}
