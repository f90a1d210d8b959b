package chat

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/northpole/elf-backend/internal/entity"
	"github.com/northpole/elf-backend/internal/pkg/parser"
	"github.com/northpole/elf-backend/internal/pkg/prompts"
	"go.uber.org/zap"
)

// Synthesize turns a finished transcript into the gift suggestion
// list. It runs after the interview, so it degrades instead of
// failing: any provider error yields the fixed fallback list rather
// than stranding a completed session without output.
func (uc *ChatUsecase) Synthesize(
	ctx context.Context,
	cfg *prompts.Configuration,
	transcript entity.Transcript,
	budget string,
) []entity.GiftSuggestion {
	summary := formatChatSummary(transcript)

	completions, err := uc.llmConnector.Complete(ctx, &entity.CompletionRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: cfg.SuggestionSystemPrompt(budget)},
			{Role: entity.RoleUser, Content: summary},
		},
		Temperature: cfg.Suggest.Temperature,
		MaxTokens:   cfg.Suggest.MaxTokens,
		N:           1,
	})
	if err != nil {
		ctxzap.Error(ctx, "gift synthesis failed, using fallback suggestions", zap.Error(err))
		return fallbackSuggestions()
	}

	parsed := parser.SplitSuggestions(completions[0], cfg.SuggestionGlyph, cfg.KeywordsTag)

	suggestions := make([]entity.GiftSuggestion, 0, len(parsed))
	for _, s := range parsed {
		suggestions = append(suggestions, entity.GiftSuggestion{Text: s.Text, Keywords: s.Keywords})
	}

	ctxzap.Info(ctx, "gift suggestions synthesized", zap.Int("count", len(suggestions)))

	return suggestions
}

// formatChatSummary renders the question/answer pairs as plain text.
// A trailing assistant message is an unanswered wrap-up and carries
// no information, so it is excluded.
func formatChatSummary(transcript entity.Transcript) string {
	var b strings.Builder
	b.WriteString("Chat summary:\n")

	for _, msg := range transcript.WithoutTrailingAssistant() {
		switch msg.Role {
		case entity.RoleAssistant:
			b.WriteString("Elf asked: " + msg.Content + "\n")
		case entity.RoleUser:
			b.WriteString("They answered: " + msg.Content + "\n")
		}
	}

	return b.String()
}

// fallbackSuggestions is the fixed degraded output used when the
// provider is unreachable after the interview has already finished.
func fallbackSuggestions() []entity.GiftSuggestion {
	return []entity.GiftSuggestion{
		{Text: "🎁 Based on their interests: A hobby-related gift"},
		{Text: "🎁 Something practical they mentioned wanting"},
		{Text: "🎁 A surprise gift that matches their preferences"},
	}
}
