package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/northpole/elf-backend/internal/entity"
	"github.com/northpole/elf-backend/internal/pkg/observe"
	"github.com/northpole/elf-backend/internal/pkg/prompts"
	"go.uber.org/zap"
)

// nextResponse runs one ensemble-and-critique turn: generate N
// candidates, pick the best, validate it, refine once on rejection.
// At most four model calls, no cycles; the refiner's output is
// accepted unconditionally. A provider failure at any stage aborts
// the turn and propagates.
func (uc *ChatUsecase) nextResponse(
	ctx context.Context,
	cfg *prompts.Configuration,
	sessionID string,
	transcript entity.Transcript,
	budget string,
) (string, error) {
	uc.observer.Stage(ctx, sessionID, observe.StageGenerating, fmt.Sprintf("%d candidates", cfg.Candidates))

	candidates, err := uc.generateCandidates(ctx, cfg, transcript, budget)
	if err != nil {
		return "", err
	}

	uc.observer.Stage(ctx, sessionID, observe.StageSelecting, "")

	chosen, selection, err := uc.selectResponse(ctx, cfg, transcript, candidates)
	if err != nil {
		return "", err
	}

	uc.observer.Stage(ctx, sessionID, observe.StageValidating, selection.Rationale)

	verdict, err := uc.validateResponse(ctx, cfg, transcript, chosen)
	if err != nil {
		return "", err
	}

	if verdict.Valid {
		uc.observer.Stage(ctx, sessionID, observe.StageAccepted, "validated")
		return chosen, nil
	}

	uc.observer.Stage(ctx, sessionID, observe.StageRefining, verdict.Reason)

	refined, err := uc.refineResponse(ctx, cfg, transcript, chosen, verdict.Reason, budget)
	if err != nil {
		return "", err
	}

	uc.observer.Stage(ctx, sessionID, observe.StageAccepted, "refined")
	return refined, nil
}

// generateCandidates issues one call requesting N independent
// completions of the same context. Non-zero temperature keeps the
// candidates diverse.
func (uc *ChatUsecase) generateCandidates(
	ctx context.Context,
	cfg *prompts.Configuration,
	transcript entity.Transcript,
	budget string,
) (entity.CandidateSet, error) {
	messages := make([]entity.Message, 0, len(transcript)+1)
	messages = append(messages, entity.Message{Role: entity.RoleSystem, Content: cfg.SystemPrompt(budget)})
	messages = append(messages, transcript...)

	completions, err := uc.llmConnector.Complete(ctx, &entity.CompletionRequest{
		Messages:    messages,
		Temperature: cfg.Generate.Temperature,
		MaxTokens:   cfg.Generate.MaxTokens,
		N:           cfg.Candidates,
	})
	if err != nil {
		return nil, fmt.Errorf("generate candidates: %w", err)
	}

	for i, candidate := range completions {
		ctxzap.Debug(ctx, "candidate generated",
			zap.Int("candidate", i+1),
			zap.String("text", candidate),
		)
	}

	return entity.CandidateSet(completions), nil
}

// selectResponse asks the model to rank the candidates against the
// conversation history and returns the winner. An unparseable or
// out-of-range choice falls back to the first candidate; selection
// never fails the pipeline except on a provider error.
func (uc *ChatUsecase) selectResponse(
	ctx context.Context,
	cfg *prompts.Configuration,
	transcript entity.Transcript,
	candidates entity.CandidateSet,
) (string, *entity.SelectionResult, error) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: cfg.SelectionCriteria},
	}

	if len(transcript) > 0 {
		messages = append(messages, entity.Message{Role: entity.RoleUser, Content: "Here is the conversation history:"})
		messages = append(messages, historyReplay(transcript)...)
	} else {
		messages = append(messages, entity.Message{Role: entity.RoleUser, Content: "This is the first question."})
	}

	messages = append(messages, entity.Message{Role: entity.RoleUser, Content: "Here are the candidate responses to choose from:"})
	for i, candidate := range candidates {
		messages = append(messages, entity.Message{
			Role:    entity.RoleUser,
			Content: fmt.Sprintf("Response %d: %s", i+1, candidate),
		})
	}

	completions, err := uc.llmConnector.Complete(ctx, &entity.CompletionRequest{
		Messages:    messages,
		Temperature: cfg.Select.Temperature,
		MaxTokens:   cfg.Select.MaxTokens,
		N:           1,
	})
	if err != nil {
		return "", nil, fmt.Errorf("select response: %w", err)
	}

	output := completions[0]

	index, ok := parseChosenIndex(output, len(candidates))
	if !ok {
		ctxzap.Warn(ctx, "selector output unparseable, falling back to first candidate",
			zap.String("selector_output", output),
		)
		index = 0
	}

	ctxzap.Debug(ctx, "candidate selected",
		zap.Int("chosen_index", index),
		zap.String("rationale", output),
	)

	return candidates[index], &entity.SelectionResult{ChosenIndex: index, Rationale: output}, nil
}

// parseChosenIndex reads the leading token of the selector output as
// a 1-based candidate number and converts it to a 0-based index.
func parseChosenIndex(output string, candidateCount int) (int, bool) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return 0, false
	}

	number, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}

	index := number - 1
	if index < 0 || index >= candidateCount {
		return 0, false
	}

	return index, true
}

// validateResponse checks the winner against the structural and
// topical rules. Only the exact sentinel literal counts as valid;
// any other output, including case or punctuation variants, is an
// invalid verdict carrying the full output as reason.
func (uc *ChatUsecase) validateResponse(
	ctx context.Context,
	cfg *prompts.Configuration,
	transcript entity.Transcript,
	candidate string,
) (*entity.ValidationVerdict, error) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: cfg.ValidationPrompt()},
		{Role: entity.RoleUser, Content: "Here is the conversation history and latest response to validate:"},
	}
	messages = append(messages, historyReplay(transcript)...)
	messages = append(messages, entity.Message{
		Role:    entity.RoleUser,
		Content: "Latest response to validate: " + candidate,
	})

	completions, err := uc.llmConnector.Complete(ctx, &entity.CompletionRequest{
		Messages:    messages,
		Temperature: cfg.Validate.Temperature,
		MaxTokens:   cfg.Validate.MaxTokens,
		N:           1,
	})
	if err != nil {
		return nil, fmt.Errorf("validate response: %w", err)
	}

	output := completions[0]

	if output == entity.ValidSentinel {
		return &entity.ValidationVerdict{Valid: true}, nil
	}

	ctxzap.Debug(ctx, "candidate rejected by validator", zap.String("reason", output))

	return &entity.ValidationVerdict{Valid: false, Reason: output}, nil
}

// refineResponse asks the model to repair its rejected answer given
// the stated violation. Whatever comes back is the final answer for
// this turn; there is no second validation pass.
func (uc *ChatUsecase) refineResponse(
	ctx context.Context,
	cfg *prompts.Configuration,
	transcript entity.Transcript,
	rejected string,
	reason string,
	budget string,
) (string, error) {
	messages := make([]entity.Message, 0, len(transcript)+3)
	messages = append(messages, entity.Message{Role: entity.RoleSystem, Content: cfg.RefinementSystemPrompt(budget)})
	messages = append(messages, transcript...)
	messages = append(messages,
		entity.Message{Role: entity.RoleAssistant, Content: rejected},
		entity.Message{Role: entity.RoleSystem, Content: "Please fix your response. " + reason},
	)

	completions, err := uc.llmConnector.Complete(ctx, &entity.CompletionRequest{
		Messages:    messages,
		Temperature: cfg.Refine.Temperature,
		MaxTokens:   cfg.Refine.MaxTokens,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("refine response: %w", err)
	}

	return completions[0], nil
}

// historyReplay renders the transcript as labeled user messages, the
// form the selector and validator prompts expect.
func historyReplay(transcript entity.Transcript) []entity.Message {
	replay := make([]entity.Message, 0, len(transcript))
	for _, msg := range transcript {
		switch msg.Role {
		case entity.RoleAssistant:
			replay = append(replay, entity.Message{Role: entity.RoleUser, Content: "Previous question: " + msg.Content})
		case entity.RoleUser:
			replay = append(replay, entity.Message{Role: entity.RoleUser, Content: "User answer: " + msg.Content})
		}
	}
	return replay
}
