package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/Hanyshennawy/moe-scorm-lms/core/course"
	"github.com/Hanyshennawy/moe-scorm-lms/storage/database"
)

// PrepareDB returns a migrated SQLite database living in the test's temp dir.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("PrepareDB() failed to open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed to migrate: %v", err)
	}
	return db
}

// ResetDB empties every table.
func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()

	for _, table := range []string{"interactions", "session_records", "cmi_records", "courses"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("ResetDB() failed on %s: %v", table, err)
		}
	}
}

func CreateCourse(t *testing.T, repo course.Repository, id, title string, passingScore float64, isActive bool) course.Course {
	t.Helper()

	c, err := repo.UpsertCourse(context.Background(), course.Course{
		ID:           id,
		Title:        title,
		EntryPoint:   "index_lms.html",
		PassingScore: passingScore,
		IsActive:     isActive,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}
