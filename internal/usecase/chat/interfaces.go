package chat

import (
	"context"

	"github.com/northpole/elf-backend/internal/entity"
)

// LLMConnector is the completion call primitive: assembled messages
// and sampling parameters in, one or more completion texts out.
// Transient provider failures surface as entity.ErrRateLimited or
// entity.ErrProviderUnavailable.
type LLMConnector interface {
	Complete(ctx context.Context, req *entity.CompletionRequest) ([]string, error)
}

// Notifier delivers the result link to the gift sender. Fire and
// forget: implementations log failures and never return them.
type Notifier interface {
	NotifyResult(ctx context.Context, recipient, resultURL string)
}
