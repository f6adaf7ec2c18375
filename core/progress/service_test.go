package progress_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hanyshennawy/moe-scorm-lms/core"
	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
	"github.com/Hanyshennawy/moe-scorm-lms/core/course"
	"github.com/Hanyshennawy/moe-scorm-lms/core/progress"
	"github.com/Hanyshennawy/moe-scorm-lms/core/session"
	"github.com/Hanyshennawy/moe-scorm-lms/storage/database/sqlx"
	"github.com/Hanyshennawy/moe-scorm-lms/tests"
)

var learner = progress.Learner{ID: "learner-1", Name: "Amina Saleh"}

func setup(t *testing.T) *progress.Service {
	db := testutil.PrepareDB(t)
	courseRepo := sqlxrepos.NewCourseRepository(db)
	testutil.CreateCourse(t, courseRepo, "safety-101", "Lab Safety", 80, true)
	testutil.CreateCourse(t, courseRepo, "retired", "Retired", 80, false)

	return progress.NewService(
		sqlxrepos.NewProgressRepository(db),
		session.NewTracker(sqlxrepos.NewSessionRepository(db)),
		courseRepo,
		core.NewValidator(core.NewTranslator()),
	)
}

func isValidationError(err error) bool {
	_, ok := errors.Cause(err).(*core.ValidationError)
	return ok
}

func TestService_Initialize(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	_, err := svc.Initialize(ctx, learner, "nope", session.Client{})
	assert.Equal(t, course.ErrNotFound, errors.Cause(err))
	_, err = svc.Initialize(ctx, learner, "retired", session.Client{})
	assert.Equal(t, course.ErrNotFound, errors.Cause(err))

	launch, err := svc.Initialize(ctx, learner, "safety-101", session.Client{IPAddress: "10.1.1.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, launch.SessionID)
	assert.Equal(t, map[string]string{
		cmi.StudentID:      "learner-1",
		cmi.StudentName:    "Amina Saleh",
		cmi.LessonStatus:   "not attempted",
		cmi.LessonLocation: "",
		cmi.ScoreRaw:       "",
		cmi.ScoreMin:       "0",
		cmi.ScoreMax:       "100",
		cmi.TotalTime:      "0000:00:00",
		cmi.Entry:          cmi.EntryAbInitio,
		cmi.Credit:         "credit",
		cmi.LessonMode:     "normal",
		cmi.SuspendData:    "",
	}, launch.ScormData)

	again, err := svc.Initialize(ctx, learner, "safety-101", session.Client{})
	require.NoError(t, err)
	assert.NotEqual(t, launch.SessionID, again.SessionID)
	assert.Equal(t, cmi.EntryResume, again.ScormData[cmi.Entry])

	sessions, err := svc.Sessions(ctx, learner.ID, "safety-101", 0)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestService_SetGetValue(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	require.NoError(t, svc.SetValue(ctx, learner.ID, "safety-101", cmi.LessonStatus, "passed"))
	val, err := svc.GetValue(ctx, learner, "safety-101", cmi.LessonStatus)
	require.NoError(t, err)
	assert.Equal(t, "passed", val)

	require.NoError(t, svc.SetValue(ctx, learner.ID, "safety-101", cmi.ScoreRaw, " 87.5 "))
	val, err = svc.GetValue(ctx, learner, "safety-101", cmi.ScoreRaw)
	require.NoError(t, err)
	assert.Equal(t, "87.5", val)

	require.NoError(t, svc.SetValue(ctx, learner.ID, "safety-101", "cmi.core.favourite_color", "blue"))

	err = svc.SetValue(ctx, learner.ID, "safety-101", cmi.TotalTime, "0010:00:00")
	assert.True(t, isValidationError(err))
	assert.Equal(t, progress.ErrReadOnly, errors.Cause(err).(*core.ValidationError).Err)

	err = svc.SetValue(ctx, learner.ID, "safety-101", cmi.ScoreRaw, "ninety")
	assert.True(t, isValidationError(err))

	err = svc.SetValue(ctx, learner.ID, "safety-101", cmi.LessonStatus, "frobnicate")
	assert.True(t, isValidationError(err))

	_, err = svc.GetValue(ctx, learner, "safety-101", cmi.SessionTime)
	assert.True(t, isValidationError(err))

	val, err = svc.GetValue(ctx, learner, "safety-101", "cmi.core.favourite_color")
	require.NoError(t, err)
	assert.Equal(t, "", val)

	rec, err := svc.Progress(ctx, learner.ID, "safety-101")
	require.NoError(t, err)
	assert.Equal(t, cmi.StatusPassed, rec.LessonStatus)
	assert.Equal(t, 100.0, rec.CompletionPercentage)
}

func TestService_CommitFinish(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	launch, err := svc.Initialize(ctx, learner, "safety-101", session.Client{})
	require.NoError(t, err)

	_, err = svc.Commit(ctx, learner.ID, "safety-101", cmi.Delta{
		LessonStatus: cmi.String("Incomplete"),
		SessionTime:  cmi.String("0000:00:30"),
		SuspendData:  cmi.String("bookmark=4"),
	})
	require.NoError(t, err)

	_, err = svc.Commit(ctx, learner.ID, "safety-101", cmi.Delta{SessionTime: cmi.String("not-a-time")})
	_, ok := errors.Cause(err).(validator.ValidationErrors)
	assert.True(t, ok)

	pct := 150.0
	_, err = svc.Commit(ctx, learner.ID, "safety-101", cmi.Delta{CompletionPercentage: &pct})
	assert.Error(t, err)

	rec, err := svc.Finish(ctx, learner.ID, "safety-101", launch.SessionID, cmi.Delta{
		LessonStatus: cmi.String("completed"),
		ScoreRaw:     cmi.String("75"),
		SessionTime:  cmi.String("0000:00:45"),
		Exit:         cmi.String(""),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(75), rec.TotalTime)
	assert.Equal(t, cmi.StatusCompleted, rec.LessonStatus)
	assert.Equal(t, "bookmark=4", rec.SuspendData)
	assert.True(t, rec.CompletedAt.Valid)

	sessions, err := svc.Sessions(ctx, learner.ID, "safety-101", 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.False(t, sessions[0].IsOpen())

	// a second finish on the same session is harmless
	_, err = svc.Finish(ctx, learner.ID, "safety-101", launch.SessionID, cmi.Delta{})
	require.NoError(t, err)

	_, err = svc.Finish(ctx, "intruder", "safety-101", launch.SessionID, cmi.Delta{})
	assert.Equal(t, session.ErrNotFound, errors.Cause(err))

	val, err := svc.GetValue(ctx, learner, "safety-101", cmi.TotalTime)
	require.NoError(t, err)
	assert.Equal(t, "0000:01:15", val)

	verdict, err := svc.Eligibility(ctx, learner.ID, "safety-101")
	require.NoError(t, err)
	assert.False(t, verdict.Eligible)
	assert.Equal(t, progress.ReasonScoreTooLow, verdict.Reason.String)
}

func TestService_RecordInteraction(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	_, err := svc.RecordInteraction(ctx, learner.ID, "safety-101", cmi.Interaction{Result: "correct"})
	_, ok := errors.Cause(err).(validator.ValidationErrors)
	assert.True(t, ok)

	w := 2.0
	in, err := svc.RecordInteraction(ctx, learner.ID, "safety-101", cmi.Interaction{
		ID: "q-1", Type: "choice", LearnerResponse: "b", CorrectResponse: "b", Result: "correct",
		Weighting: &w, Latency: "0000:00:07",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, in.ID)
	assert.Equal(t, int64(7), in.Latency)

	ins, err := svc.Interactions(ctx, learner.ID, "safety-101")
	require.NoError(t, err)
	require.Len(t, ins, 1)
	assert.Equal(t, "q-1", ins[0].InteractionID)
	assert.Equal(t, 2.0, ins[0].Weighting.Float64)
}

func TestService_EligibilityAndReset(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	_, err := svc.Eligibility(ctx, learner.ID, "nope")
	assert.Equal(t, course.ErrNotFound, errors.Cause(err))

	verdict, err := svc.Eligibility(ctx, learner.ID, "safety-101")
	require.NoError(t, err)
	assert.Equal(t, progress.ReasonNotStarted, verdict.Reason.String)

	_, err = svc.Initialize(ctx, learner, "safety-101", session.Client{})
	require.NoError(t, err)
	_, err = svc.Commit(ctx, learner.ID, "safety-101", cmi.Delta{LessonStatus: cmi.String("passed"), ScoreRaw: cmi.String("91")})
	require.NoError(t, err)

	verdict, err = svc.Eligibility(ctx, learner.ID, "safety-101")
	require.NoError(t, err)
	assert.True(t, verdict.Eligible)
	assert.False(t, verdict.Reason.Valid)

	recs, err := svc.ListProgress(ctx, learner.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	require.NoError(t, svc.Reset(ctx, learner.ID, "safety-101"))
	assert.Equal(t, progress.ErrNotFound, errors.Cause(svc.Reset(ctx, learner.ID, "safety-101")))

	rec, err := svc.Progress(ctx, learner.ID, "safety-101")
	require.NoError(t, err)
	assert.Equal(t, progress.NewRecord(learner.ID, "safety-101"), rec)

	sessions, err := svc.Sessions(ctx, learner.ID, "safety-101", 0)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestService_CommitRequiresActiveCourse(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	for _, courseID := range []string{"nope", "retired"} {
		_, err := svc.Commit(ctx, learner.ID, courseID, cmi.Delta{LessonStatus: cmi.String("passed")})
		assert.Equal(t, course.ErrNotFound, errors.Cause(err), courseID)

		err = svc.SetValue(ctx, learner.ID, courseID, cmi.LessonLocation, "page-2")
		assert.Equal(t, course.ErrNotFound, errors.Cause(err), courseID)

		_, err = svc.Finish(ctx, learner.ID, courseID, "", cmi.Delta{SessionTime: cmi.String("0000:01:00")})
		assert.Equal(t, course.ErrNotFound, errors.Cause(err), courseID)
	}

	recs, err := svc.ListProgress(ctx, learner.ID)
	require.NoError(t, err)
	assert.Empty(t, recs, "no record is created for unknown or inactive courses")
}

func TestService_CommitOversizedSessionTime(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	rec, err := svc.Commit(ctx, learner.ID, "safety-101", cmi.Delta{SessionTime: cmi.String("0000:10:00")})
	require.NoError(t, err)
	require.Equal(t, int64(600), rec.TotalTime)

	for _, text := range []string{"5124095576030431:00:00", "10000:00:00"} {
		_, err = svc.Commit(ctx, learner.ID, "safety-101", cmi.Delta{SessionTime: cmi.String(text)})
		_, ok := errors.Cause(err).(validator.ValidationErrors)
		assert.True(t, ok, text)
	}

	rec, err = svc.Progress(ctx, learner.ID, "safety-101")
	require.NoError(t, err)
	assert.Equal(t, int64(600), rec.TotalTime, "total time never decreases")
}
