// Package observe exposes pipeline progress to tooling. The observer
// is always present; deployments that don't want stage traces get the
// explicit no-op implementation, selected at startup by configuration.
package observe

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Pipeline stage names reported to the observer.
const (
	StageGenerating = "GENERATING"
	StageSelecting  = "SELECTING"
	StageValidating = "VALIDATING"
	StageRefining   = "REFINING"
	StageAccepted   = "ACCEPTED"
)

// Observer receives pipeline stage transitions for one turn.
type Observer interface {
	Stage(ctx context.Context, sessionID, stage, detail string)
}

// ZapObserver logs every stage transition through the context logger.
type ZapObserver struct{}

func NewZapObserver() *ZapObserver {
	return &ZapObserver{}
}

func (ZapObserver) Stage(ctx context.Context, sessionID, stage, detail string) {
	ctxzap.Info(ctx, "pipeline stage",
		zap.String("session_id", sessionID),
		zap.String("stage", stage),
		zap.String("detail", detail),
	)
}

// NopObserver discards stage transitions.
type NopObserver struct{}

func NewNopObserver() *NopObserver {
	return &NopObserver{}
}

func (NopObserver) Stage(ctx context.Context, sessionID, stage, detail string) {}
