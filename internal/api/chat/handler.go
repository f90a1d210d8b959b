package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/northpole/elf-backend/internal/entity"
	"github.com/northpole/elf-backend/internal/pkg/formatter"
	"github.com/northpole/elf-backend/internal/pkg/logger"
	"github.com/northpole/elf-backend/internal/pkg/response"
	"github.com/northpole/elf-backend/internal/pkg/validator"
	"go.uber.org/zap"
)

// festiveRetryMessage is the only user-visible failure text. Internal
// diagnostics stay in the logs; the recipient just sees the persona
// asking for patience.
const festiveRetryMessage = "Ho ho ho! The workshop is a little busy right now. Please try again in a moment! 🎄"

type Handler struct {
	usecase       ChatUsecase
	validator     *validator.Validator
	formatters    *formatter.Factory
	publicBaseURL string
}

func NewHandler(
	usecase ChatUsecase,
	validator *validator.Validator,
	formatters *formatter.Factory,
	publicBaseURL string,
) *Handler {
	return &Handler{
		usecase:       usecase,
		validator:     validator,
		formatters:    formatters,
		publicBaseURL: publicBaseURL,
	}
}

// CreateChatLink handles POST /chat-link - mint a shareable chat link
func (h *Handler) CreateChatLink(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateChatLink")

	var req entity.CreateChatLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateCreateChatLink(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.usecase.CreateChatLink(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, &entity.CreateChatLinkResponse{
		ChatID:  session.ID,
		ChatURL: fmt.Sprintf("%s/chat/%s", h.publicBaseURL, session.ID),
	})
}

// GetSession handles GET /chat/{id} - fetch session state
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", chi.URLParam(r, "id")),
		zap.String("action", "GetSession"),
	)

	session, err := h.usecase.GetSession(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toSessionDTO(session))
}

// StartChat handles POST /chat/{id}/start - generate the opening question
func (h *Handler) StartChat(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "StartChat"),
	)

	session, err := h.usecase.StartChat(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "chat started", zap.Int("transcript_len", len(session.Transcript)))

	response.Success(w, toSessionDTO(session))
}

// SubmitAnswer handles POST /chat/{id}/message - record an answer and
// produce the next question
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "SubmitAnswer"),
	)

	var req entity.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateSubmitAnswer(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.usecase.SubmitAnswer(ctx, sessionID, req.Answer)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toSessionDTO(session))
}

// CompleteChat handles POST /chat/{id}/complete - finish the interview
func (h *Handler) CompleteChat(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "CompleteChat"),
	)

	result, resultURL, err := h.usecase.CompleteChat(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, &entity.CompleteChatResponse{
		ResultID:  result.ID,
		ResultURL: resultURL,
	})
}

// GetSuggestions handles GET /suggestions/{id} - fetch the gift list
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := logger.AddFields(r.Context(),
		zap.String("result_id", chi.URLParam(r, "id")),
		zap.String("action", "GetSuggestions"),
	)

	result, err := h.usecase.GetResult(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toResultDTO(result))
}

// ExportSuggestions handles GET /suggestions/{id}/export - download
// the gift list as markdown or PDF
func (h *Handler) ExportSuggestions(w http.ResponseWriter, r *http.Request) {
	resultID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("result_id", resultID),
		zap.String("action", "ExportSuggestions"),
	)

	format := formatter.ResultFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = formatter.FormatMarkdown
	}

	f, err := h.formatters.Create(format)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.usecase.GetResult(ctx, resultID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	data, err := f.Format(formatter.PlainText(result))
	if err != nil {
		ctxzap.Error(ctx, "failed to format gift list", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to format gift list")
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=gift-suggestions%s", f.FileExtension()))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "usecase error", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrSessionNotFound), errors.Is(err, entity.ErrResultNotFound):
		response.Error(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, entity.ErrSessionCompleted):
		response.Error(w, http.StatusConflict, "the interview is already finished")
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidFormat), errors.Is(err, entity.ErrInvalidParameter):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrRateLimited), errors.Is(err, entity.ErrProviderUnavailable):
		response.Error(w, http.StatusServiceUnavailable, festiveRetryMessage)
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
