package chat

import (
	"context"

	"github.com/northpole/elf-backend/internal/entity"
)

type ChatUsecase interface {
	CreateChatLink(ctx context.Context, req *entity.CreateChatLinkRequest) (*entity.ChatSession, error)
	GetSession(ctx context.Context, sessionID string) (*entity.ChatSession, error)
	StartChat(ctx context.Context, sessionID string) (*entity.ChatSession, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (*entity.ChatSession, error)
	CompleteChat(ctx context.Context, sessionID string) (*entity.GiftResult, string, error)
	GetResult(ctx context.Context, resultID string) (*entity.GiftResult, error)
}
