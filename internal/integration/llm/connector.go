package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/northpole/elf-backend/internal/config"
	"github.com/northpole/elf-backend/internal/entity"
	"github.com/northpole/elf-backend/internal/integration/common"
	pkghttp "github.com/northpole/elf-backend/pkg/http"
	"go.uber.org/zap"
)

// Connector talks to an OpenAI-compatible chat completions endpoint.
// It implements the single call primitive the pipeline consumes:
// messages in, one or more completion texts out.
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	N           int           `json:"n"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete issues one chat completion call requesting req.N
// independent completions and returns them in choice order. Transient
// provider conditions are mapped to the dedicated error classes; the
// caller decides whether to surface or recover.
func (c *Connector) Complete(ctx context.Context, req *entity.CompletionRequest) ([]string, error) {
	ctxzap.Debug(ctx, "requesting chat completions",
		zap.Int("message_count", len(req.Messages)),
		zap.Float64("temperature", req.Temperature),
		zap.Int("n", req.N),
	)

	apiReq := chatCompletionRequest{
		Model:       c.config.Model,
		Messages:    toChatMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		N:           req.N,
	}

	var apiResp chatCompletionResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.CompletionsEndpoint, &apiReq, &apiResp)
	if err != nil {
		return nil, classifyError(err)
	}

	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: completion response has no choices", entity.ErrProvider)
	}

	completions := make([]string, 0, len(apiResp.Choices))
	for _, choice := range apiResp.Choices {
		completions = append(completions, choice.Message.Content)
	}

	ctxzap.Debug(ctx, "chat completions received", zap.Int("completion_count", len(completions)))

	return completions, nil
}

func toChatMessages(messages []entity.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// classifyError maps transport failures onto the provider error
// taxonomy. Rate limits and gateway/service unavailability are the
// transient class; timeouts count as unavailability.
func classifyError(err error) error {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", entity.ErrRateLimited, httpErr.Message)
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return fmt.Errorf("%w: HTTP %d", entity.ErrProviderUnavailable, httpErr.StatusCode)
		default:
			return fmt.Errorf("%w: %v", entity.ErrProvider, err)
		}
	}

	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", entity.ErrProviderUnavailable, err)
	}

	return fmt.Errorf("%w: %v", entity.ErrProvider, err)
}
