package notify

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// NopNotifier is the explicit no-notification channel, selected by
// configuration rather than a nil check at the call site.
type NopNotifier struct{}

func NewNopNotifier() *NopNotifier {
	return &NopNotifier{}
}

func (NopNotifier) NotifyResult(ctx context.Context, recipient, resultURL string) {
	ctxzap.Debug(ctx, "notification channel disabled, skipping",
		zap.String("recipient", recipient),
	)
}
