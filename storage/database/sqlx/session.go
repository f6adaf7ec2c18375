package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/Hanyshennawy/moe-scorm-lms/core"
	"github.com/Hanyshennawy/moe-scorm-lms/core/session"
)

const sessionColumns = "id, learner_id, course_id, session_start, session_end, duration, ip_address, user_agent"

type sessionRepository struct {
	db core.DBExecutor
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db core.DBExecutor) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo sessionRepository) CreateSession(ctx context.Context, rec session.Record) (session.Record, error) {
	const q = `
		INSERT INTO session_records (` + sessionColumns + `)
		VALUES (:id, :learner_id, :course_id, :session_start, :session_end, :duration, :ip_address, :user_agent)`
	if _, err := repo.db.NamedExecContext(ctx, q, rec); err != nil {
		return session.Record{}, errors.Wrap(err, "inserting session")
	}
	return rec, nil
}

func (repo sessionRepository) GetSession(ctx context.Context, id string) (session.Record, error) {
	var rec session.Record
	q := repo.db.Rebind("SELECT " + sessionColumns + " FROM session_records WHERE id = ?")
	if err := repo.db.GetContext(ctx, &rec, q, id); err != nil {
		if err == sql.ErrNoRows {
			return session.Record{}, session.ErrNotFound
		}
		return session.Record{}, errors.Wrap(err, "selecting session")
	}
	return rec, nil
}

func (repo sessionRepository) CloseSession(ctx context.Context, id string, end time.Time, duration int64) (bool, error) {
	q := repo.db.Rebind("UPDATE session_records SET session_end = ?, duration = ? WHERE id = ? AND session_end IS NULL")
	res, err := repo.db.ExecContext(ctx, q, end, duration, id)
	if err != nil {
		return false, errors.Wrap(err, "updating session")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "updating session")
	}
	return n > 0, nil
}

func (repo sessionRepository) ListSessions(ctx context.Context, learnerID, courseID string, limit int) ([]session.Record, error) {
	recs := make([]session.Record, 0)
	q := repo.db.Rebind(`
		SELECT ` + sessionColumns + ` FROM session_records
		WHERE learner_id = ? AND course_id = ?
		ORDER BY session_start DESC, id DESC
		LIMIT ?`)
	if err := repo.db.SelectContext(ctx, &recs, q, learnerID, courseID, limit); err != nil {
		return nil, errors.Wrap(err, "selecting sessions")
	}
	return recs, nil
}

func (repo sessionRepository) DeleteSessions(ctx context.Context, learnerID, courseID string) error {
	q := repo.db.Rebind("DELETE FROM session_records WHERE learner_id = ? AND course_id = ?")
	_, err := repo.db.ExecContext(ctx, q, learnerID, courseID)
	return errors.Wrap(err, "deleting sessions")
}
