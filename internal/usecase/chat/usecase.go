package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/northpole/elf-backend/internal/entity"
	"github.com/northpole/elf-backend/internal/pkg/observe"
	"github.com/northpole/elf-backend/internal/pkg/parser"
	"github.com/northpole/elf-backend/internal/pkg/prompts"
	"github.com/northpole/elf-backend/internal/repository"
	"go.uber.org/zap"
)

// ChatUsecase implements the gift interview business logic: link
// minting, the next-question pipeline, suggestion synthesis and
// result retrieval.
type ChatUsecase struct {
	sessionRepo    repository.SessionRepository
	resultRepo     repository.ResultRepository
	llmConnector   LLMConnector
	notifier       Notifier
	observer       observe.Observer
	personas       map[string]prompts.Configuration
	defaultPersona string
	publicBaseURL  string
	logger         *zap.Logger
}

// NewUsecase creates a new chat use case
func NewUsecase(
	sessionRepo repository.SessionRepository,
	resultRepo repository.ResultRepository,
	llmConnector LLMConnector,
	notifier Notifier,
	observer observe.Observer,
	personas map[string]prompts.Configuration,
	defaultPersona string,
	publicBaseURL string,
	logger *zap.Logger,
) *ChatUsecase {
	return &ChatUsecase{
		sessionRepo:    sessionRepo,
		resultRepo:     resultRepo,
		llmConnector:   llmConnector,
		notifier:       notifier,
		observer:       observer,
		personas:       personas,
		defaultPersona: defaultPersona,
		publicBaseURL:  publicBaseURL,
		logger:         logger,
	}
}

// CreateChatLink mints a shareable chat link with an empty transcript.
func (uc *ChatUsecase) CreateChatLink(ctx context.Context, req *entity.CreateChatLinkRequest) (*entity.ChatSession, error) {
	persona := req.Persona
	if _, ok := uc.personas[persona]; !ok {
		persona = uc.defaultPersona
	}

	session := entity.ChatSession{
		ID:                uuid.New().String(),
		Persona:           persona,
		Status:            entity.SessionStatusPending,
		Budget:            req.Budget,
		NotificationEmail: req.NotificationEmail,
	}

	created, err := uc.sessionRepo.CreateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxzap.Info(ctx, "chat link minted",
		zap.String("session_id", created.ID),
		zap.String("persona", created.Persona),
	)

	return created, nil
}

// GetSession returns the session for a chat link.
func (uc *ChatUsecase) GetSession(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return session, nil
}

// StartChat produces the opening question for an empty transcript.
// Calling it again before any answer just returns the session with
// the already generated opener.
func (uc *ChatUsecase) StartChat(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Status == entity.SessionStatusCompleted {
		return nil, entity.ErrSessionCompleted
	}

	if len(session.Transcript) > 0 {
		return session, nil
	}

	return uc.runTurn(ctx, session, nil)
}

// SubmitAnswer records the recipient's answer and produces the next
// interview question. The transcript is committed only after the
// pipeline accepts a response: an aborted turn leaves it untouched.
func (uc *ChatUsecase) SubmitAnswer(ctx context.Context, sessionID, answer string) (*entity.ChatSession, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Status == entity.SessionStatusCompleted {
		return nil, entity.ErrSessionCompleted
	}

	userMessage := &entity.Message{Role: entity.RoleUser, Content: answer}

	return uc.runTurn(ctx, session, userMessage)
}

// runTurn executes one pipeline turn over the session transcript plus
// the optional pending user message, and commits both new messages on
// success.
func (uc *ChatUsecase) runTurn(ctx context.Context, session *entity.ChatSession, userMessage *entity.Message) (*entity.ChatSession, error) {
	cfg := uc.personaConfig(session.Persona)

	working := session.Transcript
	if userMessage != nil {
		working = append(append(entity.Transcript{}, session.Transcript...), *userMessage)
	}

	accepted, err := uc.nextResponse(ctx, cfg, session.ID, working, budgetOf(session))
	if err != nil {
		return nil, err
	}

	question := parser.ParseQuestion(ctx, accepted, cfg.QuestionTag, cfg.OptionsTag)

	session.Transcript = append(working, entity.Message{Role: entity.RoleAssistant, Content: question})

	updated, err := uc.sessionRepo.UpdateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	return updated, nil
}

// CompleteChat finishes the interview: synthesizes the suggestion
// list, stores it under a freshly minted result link, marks the
// session completed and notifies the sender. Completing twice returns
// the already stored result.
func (uc *ChatUsecase) CompleteChat(ctx context.Context, sessionID string) (*entity.GiftResult, string, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, "", fmt.Errorf("get session: %w", err)
	}

	if session.Status == entity.SessionStatusCompleted && session.ResultID != nil {
		result, err := uc.resultRepo.GetResultByID(ctx, *session.ResultID)
		if err != nil {
			return nil, "", fmt.Errorf("get stored result: %w", err)
		}
		return result, uc.resultURL(result.ID), nil
	}

	suggestions := uc.Synthesize(ctx, uc.personaConfig(session.Persona), session.Transcript, budgetOf(session))

	result := entity.GiftResult{
		ID:          uuid.New().String(),
		SessionID:   session.ID,
		Suggestions: suggestions,
	}

	saved, err := uc.resultRepo.SaveResult(ctx, result)
	if err != nil {
		return nil, "", fmt.Errorf("save result: %w", err)
	}

	session.Status = entity.SessionStatusCompleted
	session.ResultID = &saved.ID

	if _, err := uc.sessionRepo.UpdateSession(ctx, session); err != nil {
		return nil, "", fmt.Errorf("complete session: %w", err)
	}

	resultURL := uc.resultURL(saved.ID)

	if session.NotificationEmail != nil && *session.NotificationEmail != "" {
		uc.notifier.NotifyResult(ctx, *session.NotificationEmail, resultURL)
	}

	ctxzap.Info(ctx, "chat completed",
		zap.String("session_id", session.ID),
		zap.String("result_id", saved.ID),
		zap.Int("suggestion_count", len(saved.Suggestions)),
	)

	return saved, resultURL, nil
}

// GetResult returns the stored suggestion list for a result link.
func (uc *ChatUsecase) GetResult(ctx context.Context, resultID string) (*entity.GiftResult, error) {
	result, err := uc.resultRepo.GetResultByID(ctx, resultID)
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}

	return result, nil
}

func (uc *ChatUsecase) personaConfig(name string) *prompts.Configuration {
	if cfg, ok := uc.personas[name]; ok {
		return &cfg
	}

	cfg := uc.personas[uc.defaultPersona]
	return &cfg
}

func (uc *ChatUsecase) resultURL(resultID string) string {
	return fmt.Sprintf("%s/suggestions/%s", uc.publicBaseURL, resultID)
}

func budgetOf(session *entity.ChatSession) string {
	if session.Budget != nil {
		return *session.Budget
	}
	return ""
}
