package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/northpole/elf-backend/internal/config"
	"go.uber.org/zap"
)

// TelegramNotifier posts the result link to a configured chat instead
// of sending mail. The recipient address is ignored; the channel is
// fixed per deployment.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger *zap.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    bot,
		chatID: cfg.ChatID,
		logger: logger,
	}, nil
}

func (t *TelegramNotifier) NotifyResult(ctx context.Context, recipient, resultURL string) {
	text := fmt.Sprintf("🎁 Gift suggestions are ready for %s: %s", recipient, resultURL)

	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		ctxzap.Error(ctx, "failed to send telegram notification", zap.Error(err))
		return
	}

	ctxzap.Info(ctx, "telegram notification sent", zap.Int64("chat_id", t.chatID))
}
