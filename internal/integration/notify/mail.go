package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/northpole/elf-backend/internal/config"
	"github.com/northpole/elf-backend/internal/integration/common"
	pkghttp "github.com/northpole/elf-backend/pkg/http"
	"go.uber.org/zap"
)

// MailConnector delivers the result-link notification through an HTTP
// mail relay. Delivery is best effort: sends are retried a bounded
// number of times and failures are logged, never returned.
type MailConnector struct {
	config    config.MailConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewMailConnector(
	cfg config.MailConnectorConfig,
	logger *zap.Logger,
) *MailConnector {
	return &MailConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type sendMailRequest struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NotifyResult emails the sender that the gift suggestions are ready.
func (c *MailConnector) NotifyResult(ctx context.Context, recipient, resultURL string) {
	req := &sendMailRequest{
		From:    c.config.FromAddress,
		To:      recipient,
		Subject: "Your gift suggestions are ready! 🎁",
		Body: fmt.Sprintf(
			"Ho ho ho! The interview is finished and the elves have prepared their gift ideas.\n\nSee them here: %s\n",
			resultURL),
	}

	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, c.config.SendEndpoint, req, nil)
		},
		append(c.config.Retry.ToRetryOptions(), retry.Context(ctx))...,
	)
	if err != nil {
		ctxzap.Error(ctx, "failed to send result notification mail",
			zap.String("recipient", recipient),
			zap.Error(err),
		)
		return
	}

	ctxzap.Info(ctx, "result notification mail sent", zap.String("recipient", recipient))
}
