package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/northpole/elf-backend/internal/entity"
	"github.com/northpole/elf-backend/internal/pkg/formatter"
	"github.com/northpole/elf-backend/internal/pkg/validator"
	"github.com/stretchr/testify/require"
)

// stubUsecase returns canned values per method; unset funcs panic,
// which is fine because each test exercises exactly one route.
type stubUsecase struct {
	createChatLink func(ctx context.Context, req *entity.CreateChatLinkRequest) (*entity.ChatSession, error)
	getSession     func(ctx context.Context, sessionID string) (*entity.ChatSession, error)
	startChat      func(ctx context.Context, sessionID string) (*entity.ChatSession, error)
	submitAnswer   func(ctx context.Context, sessionID, answer string) (*entity.ChatSession, error)
	completeChat   func(ctx context.Context, sessionID string) (*entity.GiftResult, string, error)
	getResult      func(ctx context.Context, resultID string) (*entity.GiftResult, error)
}

func (s *stubUsecase) CreateChatLink(ctx context.Context, req *entity.CreateChatLinkRequest) (*entity.ChatSession, error) {
	return s.createChatLink(ctx, req)
}

func (s *stubUsecase) GetSession(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
	return s.getSession(ctx, sessionID)
}

func (s *stubUsecase) StartChat(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
	return s.startChat(ctx, sessionID)
}

func (s *stubUsecase) SubmitAnswer(ctx context.Context, sessionID, answer string) (*entity.ChatSession, error) {
	return s.submitAnswer(ctx, sessionID, answer)
}

func (s *stubUsecase) CompleteChat(ctx context.Context, sessionID string) (*entity.GiftResult, string, error) {
	return s.completeChat(ctx, sessionID)
}

func (s *stubUsecase) GetResult(ctx context.Context, resultID string) (*entity.GiftResult, error) {
	return s.getResult(ctx, resultID)
}

func newTestRouter(uc ChatUsecase) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, validator.NewValidator(), formatter.NewFactory(), "http://localhost:8080"))
	return r
}

func TestCreateChatLink_ReturnsLink(t *testing.T) {
	uc := &stubUsecase{
		createChatLink: func(ctx context.Context, req *entity.CreateChatLinkRequest) (*entity.ChatSession, error) {
			return &entity.ChatSession{ID: "abc-123", Persona: "elf", Status: entity.SessionStatusPending}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat-link", strings.NewReader(`{"persona":"elf"}`))
	newTestRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp entity.CreateChatLinkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "abc-123", resp.ChatID)
	require.Equal(t, "http://localhost:8080/chat/abc-123", resp.ChatURL)
}

func TestCreateChatLink_InvalidEmail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat-link", strings.NewReader(`{"notification_email":"not-an-email"}`))
	newTestRouter(&stubUsecase{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateChatLink_MalformedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat-link", strings.NewReader(`{not json`))
	newTestRouter(&stubUsecase{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSession_NotFound(t *testing.T) {
	uc := &stubUsecase{
		getSession: func(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
			return nil, entity.ErrSessionNotFound
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chat/no-such-id", nil)
	newTestRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitAnswer_CompletedSessionConflict(t *testing.T) {
	uc := &stubUsecase{
		submitAnswer: func(ctx context.Context, sessionID, answer string) (*entity.ChatSession, error) {
			return nil, entity.ErrSessionCompleted
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/abc/message", strings.NewReader(`{"answer":"2. 18-30"}`))
	newTestRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitAnswer_BlankAnswerRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/abc/message", strings.NewReader(`{"answer":"   "}`))
	newTestRouter(&stubUsecase{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartChat_TransientProviderFailure(t *testing.T) {
	for _, cause := range []error{entity.ErrRateLimited, entity.ErrProviderUnavailable} {
		uc := &stubUsecase{
			startChat: func(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
				return nil, cause
			},
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/chat/abc/start", nil)
		newTestRouter(uc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		// The user sees the festive retry message, not the internal
		// diagnostic.
		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, festiveRetryMessage, resp.Error)
		require.NotContains(t, resp.Error, cause.Error())
	}
}

func TestCompleteChat_ReturnsResultReference(t *testing.T) {
	uc := &stubUsecase{
		completeChat: func(ctx context.Context, sessionID string) (*entity.GiftResult, string, error) {
			return &entity.GiftResult{ID: "res-1"}, "http://localhost:8080/suggestions/res-1", nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/abc/complete", nil)
	newTestRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.CompleteChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "res-1", resp.ResultID)
	require.Equal(t, "http://localhost:8080/suggestions/res-1", resp.ResultURL)
}

func TestGetSuggestions_ReturnsResult(t *testing.T) {
	uc := &stubUsecase{
		getResult: func(ctx context.Context, resultID string) (*entity.GiftResult, error) {
			return &entity.GiftResult{
				ID: resultID,
				Suggestions: []entity.GiftSuggestion{
					{Text: "🎁 A yoga mat", Keywords: "yoga mat"},
				},
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/suggestions/res-1", nil)
	newTestRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.GiftResultDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "res-1", resp.ID)
	require.Len(t, resp.Suggestions, 1)
}

func TestExportSuggestions_Markdown(t *testing.T) {
	uc := &stubUsecase{
		getResult: func(ctx context.Context, resultID string) (*entity.GiftResult, error) {
			return &entity.GiftResult{
				ID:          resultID,
				Suggestions: []entity.GiftSuggestion{{Text: "🎁 A scarf"}},
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/suggestions/res-1/export?format=markdown", nil)
	newTestRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "gift-suggestions.md")
	require.Contains(t, rec.Body.String(), "🎁 A scarf")
}

func TestExportSuggestions_DefaultsToMarkdown(t *testing.T) {
	uc := &stubUsecase{
		getResult: func(ctx context.Context, resultID string) (*entity.GiftResult, error) {
			return &entity.GiftResult{ID: resultID}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/suggestions/res-1/export", nil)
	newTestRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestExportSuggestions_UnsupportedFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/suggestions/res-1/export?format=docx", nil)
	newTestRouter(&stubUsecase{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSuggestions_NotFound(t *testing.T) {
	uc := &stubUsecase{
		getResult: func(ctx context.Context, resultID string) (*entity.GiftResult, error) {
			return nil, entity.ErrResultNotFound
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/suggestions/missing", nil)
	newTestRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
