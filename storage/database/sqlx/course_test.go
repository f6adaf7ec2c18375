package sqlxrepos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hanyshennawy/moe-scorm-lms/core/course"
	"github.com/Hanyshennawy/moe-scorm-lms/storage/database/sqlx"
	"github.com/Hanyshennawy/moe-scorm-lms/tests"
)

func Test_courseRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlxrepos.NewCourseRepository(testutil.PrepareDB(t))

	_, err := repo.GetCourse(ctx, "c1")
	assert.Equal(t, course.ErrNotFound, err)

	testutil.CreateCourse(t, repo, "c2", "Second", 70, false)
	c1 := testutil.CreateCourse(t, repo, "c1", "First", 80, true)

	got, err := repo.GetCourse(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, c1, got)

	c1.Title = "First (v2)"
	c1.PassingScore = 65.5
	_, err = repo.UpsertCourse(ctx, c1)
	require.NoError(t, err)

	all, err := repo.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, c1, all[0])
	assert.Equal(t, "c2", all[1].ID)
	assert.False(t, all[1].IsActive)
}
