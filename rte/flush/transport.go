package flush

import (
	"context"

	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
)

// Transport carries runtime calls to the backend. Every call is bounded by ctx.
type Transport interface {
	Initialize(ctx context.Context, courseID string) (cmi.Launch, error)
	GetValue(ctx context.Context, courseID, element string) (string, error)
	SetValue(ctx context.Context, courseID, element, value string) error
	Commit(ctx context.Context, courseID string, delta cmi.Delta) error
	Finish(ctx context.Context, courseID, sessionID string, delta cmi.Delta) error
	RecordInteraction(ctx context.Context, courseID string, in cmi.Interaction) error
}
