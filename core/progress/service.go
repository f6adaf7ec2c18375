package progress

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Hanyshennawy/moe-scorm-lms/core"
	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
	"github.com/Hanyshennawy/moe-scorm-lms/core/course"
	"github.com/Hanyshennawy/moe-scorm-lms/core/session"
)

// Service is the backend side of the runtime: it seeds launches and persists what content reports.
type Service struct {
	repo     Repository
	sessions *session.Tracker
	courses  course.Registry
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository, sessions *session.Tracker, courses course.Registry, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		courses:  courses,
		validate: validate,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (svc *Service) activeCourse(ctx context.Context, courseID string) (course.Course, error) {
	c, err := svc.courses.GetCourse(ctx, courseID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	if !c.IsActive {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

// Initialize records an access to the course, opens a session and returns the data model to seed the runtime with.
func (svc *Service) Initialize(ctx context.Context, learner Learner, courseID string, client session.Client) (cmi.Launch, error) {
	if _, err := svc.activeCourse(ctx, courseID); err != nil {
		return cmi.Launch{}, err
	}
	rec, err := svc.repo.InitializeRecord(ctx, learner.ID, courseID, svc.now())
	if err != nil {
		return cmi.Launch{}, errors.Wrap(err, "initializing record")
	}
	sess, err := svc.sessions.Open(ctx, learner.ID, courseID, client)
	if err != nil {
		return cmi.Launch{}, err
	}
	return cmi.Launch{SessionID: sess.ID, ScormData: rec.Mirror(learner)}, nil
}

// GetValue returns the stored value of a readable element.
func (svc *Service) GetValue(ctx context.Context, learner Learner, courseID, element string) (string, error) {
	access, known := cmi.Lookup(element)
	if known && access == cmi.WriteOnly {
		return "", core.NewValidationError(ErrWriteOnly, core.FieldError{Field: "element", Error: ErrWriteOnly.Error()})
	}
	rec, err := svc.Progress(ctx, learner.ID, courseID)
	if err != nil {
		return "", err
	}
	return rec.Mirror(learner)[element], nil
}

// SetValue persists a single element. Unrecognized elements are accepted and discarded.
func (svc *Service) SetValue(ctx context.Context, learnerID, courseID, element, value string) error {
	var delta cmi.Delta
	switch element {
	case cmi.LessonStatus:
		delta.LessonStatus = &value
	case cmi.LessonLocation:
		delta.LessonLocation = &value
	case cmi.ScoreRaw:
		delta.ScoreRaw = &value
	case cmi.ScoreMin:
		delta.ScoreMin = &value
	case cmi.ScoreMax:
		delta.ScoreMax = &value
	case cmi.SuspendData:
		delta.SuspendData = &value
	case cmi.Exit:
		delta.Exit = &value
	case cmi.SessionTime:
		delta.SessionTime = &value
	default:
		if access, ok := cmi.Lookup(element); ok && access == cmi.ReadOnly {
			return core.NewValidationError(ErrReadOnly, core.FieldError{Field: "element", Error: ErrReadOnly.Error()})
		}
		return nil
	}
	_, err := svc.Commit(ctx, learnerID, courseID, delta)
	return err
}

// Commit merges a partial record into the stored one.
func (svc *Service) Commit(ctx context.Context, learnerID, courseID string, delta cmi.Delta) (Record, error) {
	if _, err := svc.activeCourse(ctx, courseID); err != nil {
		return Record{}, err
	}
	u, err := svc.toUpdate(delta)
	if err != nil {
		return Record{}, err
	}
	if u.IsEmpty() {
		return svc.Progress(ctx, learnerID, courseID)
	}
	rec, err := svc.repo.ApplyUpdate(ctx, learnerID, courseID, u, svc.now())
	return rec, errors.Wrap(err, "applying update")
}

// Finish persists the final delta and closes the session.
func (svc *Service) Finish(ctx context.Context, learnerID, courseID, sessionID string, delta cmi.Delta) (Record, error) {
	rec, err := svc.Commit(ctx, learnerID, courseID, delta)
	if err != nil {
		return Record{}, err
	}
	if sessionID == "" {
		return rec, nil
	}
	if _, err = svc.sessions.Close(ctx, sessionID, learnerID); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// RecordInteraction appends an interaction. Interactions are never updated.
func (svc *Service) RecordInteraction(ctx context.Context, learnerID, courseID string, in cmi.Interaction) (Interaction, error) {
	if err := svc.validate.Struct(in); err != nil {
		return Interaction{}, err
	}
	rec := Interaction{
		ID:              uuid.New().String(),
		LearnerID:       learnerID,
		CourseID:        courseID,
		InteractionID:   in.ID,
		Type:            in.Type,
		Description:     in.Description,
		LearnerResponse: in.LearnerResponse,
		CorrectResponse: in.CorrectResponse,
		Result:          in.Result,
		Weighting:       null.Float64FromPtr(in.Weighting),
		Latency:         cmi.DecodeTime(in.Latency),
		RecordedAt:      svc.now(),
	}
	rec, err := svc.repo.CreateInteraction(ctx, rec)
	return rec, errors.Wrap(err, "creating interaction")
}

// Progress returns the learner's record for a course; a course never started yields a fresh record.
func (svc *Service) Progress(ctx context.Context, learnerID, courseID string) (Record, error) {
	rec, err := svc.repo.GetRecord(ctx, learnerID, courseID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return NewRecord(learnerID, courseID), nil
		}
		return Record{}, errors.Wrap(err, "getting record")
	}
	return rec, nil
}

func (svc *Service) ListProgress(ctx context.Context, learnerID string, orderings ...core.DBOrdering) ([]Record, error) {
	recs, err := svc.repo.ListRecords(ctx, learnerID, orderings)
	return recs, errors.Wrap(err, "listing records")
}

func (svc *Service) Interactions(ctx context.Context, learnerID, courseID string) ([]Interaction, error) {
	ins, err := svc.repo.ListInteractions(ctx, learnerID, courseID)
	return ins, errors.Wrap(err, "listing interactions")
}

func (svc *Service) Sessions(ctx context.Context, learnerID, courseID string, limit int) ([]session.Record, error) {
	return svc.sessions.History(ctx, learnerID, courseID, limit)
}

// Eligibility evaluates the learner's record against the course passing score.
func (svc *Service) Eligibility(ctx context.Context, learnerID, courseID string) (Verdict, error) {
	c, err := svc.courses.GetCourse(ctx, courseID)
	if err != nil {
		return Verdict{}, errors.Wrap(err, "getting course")
	}
	rec, err := svc.Progress(ctx, learnerID, courseID)
	if err != nil {
		return Verdict{}, err
	}
	return Evaluate(rec, c.PassingScore), nil
}

// Reset deletes the learner's record and sessions for a course. Interactions are kept.
func (svc *Service) Reset(ctx context.Context, learnerID, courseID string) error {
	if err := svc.repo.DeleteRecord(ctx, learnerID, courseID); err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return svc.sessions.Forget(ctx, learnerID, courseID)
}

func (svc *Service) toUpdate(delta cmi.Delta) (Update, error) {
	if err := svc.validate.Struct(delta); err != nil {
		return Update{}, err
	}

	var u Update
	var fldErrs []core.FieldError
	if delta.LessonStatus != nil {
		if !cmi.IsVocabulary(*delta.LessonStatus) {
			fldErrs = append(fldErrs, core.FieldError{Field: "lesson_status", Error: ErrUnknownStatus.Error()})
		} else {
			status := cmi.Normalize(*delta.LessonStatus)
			u.LessonStatus = &status
		}
	}
	decimals := []struct {
		field string
		in    *string
		out   **float64
	}{
		{"score_raw", delta.ScoreRaw, &u.ScoreRaw},
		{"score_min", delta.ScoreMin, &u.ScoreMin},
		{"score_max", delta.ScoreMax, &u.ScoreMax},
	}
	for _, d := range decimals {
		if d.in == nil || strings.TrimSpace(*d.in) == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(*d.in), 64)
		if err != nil {
			fldErrs = append(fldErrs, core.FieldError{Field: d.field, Error: ErrNotANumber.Error()})
			continue
		}
		*d.out = &f
	}
	if delta.SessionTime != nil {
		if secs := cmi.DecodeTime(*delta.SessionTime); secs < 0 {
			fldErrs = append(fldErrs, core.FieldError{Field: "session_time", Error: ErrNegativeTime.Error()})
		} else {
			u.SessionSeconds = secs
		}
	}
	if len(fldErrs) > 0 {
		return Update{}, core.NewValidationError(errors.New("invalid data"), fldErrs...)
	}

	u.LessonLocation = delta.LessonLocation
	u.SuspendData = delta.SuspendData
	u.Exit = delta.Exit
	u.CompletionPercentage = delta.CompletionPercentage
	return u, nil
}
