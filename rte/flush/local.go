package flush

import (
	"context"

	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
	"github.com/Hanyshennawy/moe-scorm-lms/core/progress"
	"github.com/Hanyshennawy/moe-scorm-lms/core/session"
)

// LocalTransport talks to the progress service in process, for hosts embedding the backend.
type LocalTransport struct {
	svc     *progress.Service
	learner progress.Learner
	client  session.Client
}

var _ Transport = (*LocalTransport)(nil)

func NewLocalTransport(svc *progress.Service, learner progress.Learner, client session.Client) *LocalTransport {
	return &LocalTransport{svc: svc, learner: learner, client: client}
}

func (t *LocalTransport) Initialize(ctx context.Context, courseID string) (cmi.Launch, error) {
	return t.svc.Initialize(ctx, t.learner, courseID, t.client)
}

func (t *LocalTransport) GetValue(ctx context.Context, courseID, element string) (string, error) {
	return t.svc.GetValue(ctx, t.learner, courseID, element)
}

func (t *LocalTransport) SetValue(ctx context.Context, courseID, element, value string) error {
	return t.svc.SetValue(ctx, t.learner.ID, courseID, element, value)
}

func (t *LocalTransport) Commit(ctx context.Context, courseID string, delta cmi.Delta) error {
	_, err := t.svc.Commit(ctx, t.learner.ID, courseID, delta)
	return err
}

func (t *LocalTransport) Finish(ctx context.Context, courseID, sessionID string, delta cmi.Delta) error {
	_, err := t.svc.Finish(ctx, t.learner.ID, courseID, sessionID, delta)
	return err
}

func (t *LocalTransport) RecordInteraction(ctx context.Context, courseID string, in cmi.Interaction) error {
	_, err := t.svc.RecordInteraction(ctx, t.learner.ID, courseID, in)
	return err
}
