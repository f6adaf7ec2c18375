package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/Hanyshennawy/moe-scorm-lms/core"
	"github.com/Hanyshennawy/moe-scorm-lms/core/course"
)

const courseColumns = "id, title, description, entry_point, passing_score, is_active"

type courseRepository struct {
	db core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db core.DBExecutor) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var c course.Course
	q := repo.db.Rebind("SELECT " + courseColumns + " FROM courses WHERE id = ?")
	if err := repo.db.GetContext(ctx, &c, q, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return c, nil
}

func (repo courseRepository) ListCourses(ctx context.Context) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	if err := repo.db.SelectContext(ctx, &courses, "SELECT "+courseColumns+" FROM courses ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	return courses, nil
}

func (repo courseRepository) UpsertCourse(ctx context.Context, c course.Course) (course.Course, error) {
	const q = `
		INSERT INTO courses (` + courseColumns + `)
		VALUES (:id, :title, :description, :entry_point, :passing_score, :is_active)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			entry_point = excluded.entry_point,
			passing_score = excluded.passing_score,
			is_active = excluded.is_active`
	if _, err := repo.db.NamedExecContext(ctx, q, c); err != nil {
		return course.Course{}, errors.Wrap(err, "upserting course")
	}
	return c, nil
}
