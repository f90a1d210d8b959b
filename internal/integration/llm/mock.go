package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/northpole/elf-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector is an offline stand-in for the completions provider.
// It keys off the system prompt to tell the pipeline stages apart and
// returns well-formed canned output for each.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, req *entity.CompletionRequest) ([]string, error) {
	ctxzap.Info(ctx, "[MOCK] chat completion", zap.Int("n", req.N))

	system := ""
	if len(req.Messages) > 0 && req.Messages[0].Role == entity.RoleSystem {
		system = req.Messages[0].Content
	}

	switch {
	case strings.Contains(system, "response picker"):
		return []string{"1 - Clear options and a fresh topic"}, nil
	case strings.Contains(system, "validator"):
		return []string{entity.ValidSentinel}, nil
	case strings.Contains(system, "gift suggestion expert"):
		return []string{mockSuggestions}, nil
	default:
		completions := make([]string, 0, req.N)
		for i := 0; i < req.N; i++ {
			completions = append(completions, fmt.Sprintf(mockQuestion, i+1))
		}
		return completions, nil
	}
}

const mockQuestion = `<covered_questions>
None yet
</covered_questions>

<remaining_questions>
Age group (mandatory)
Gender (mandatory)
Hobbies or activities
</remaining_questions>

<thinking>
Candidate %d: age group comes first
</thinking>

<question>
Ho ho ho! My dear friend, what's your age group?
</question>

<multiple_choice_options>
1. Under 18
2. 18-25
3. 26-40
4. 41-60
5. 60+
</multiple_choice_options>`

const mockSuggestions = `🎁 A premium yoga mat with carrying strap - Perfect for their daily practice
<keywords>premium yoga mat strap</keywords>

🎁 A gourmet coffee bean subscription box - They mentioned loving artisanal coffee
<keywords>gourmet coffee subscription box</keywords>

🎁 A cozy reading blanket with pockets - Matches their favorite way to unwind
<keywords>reading blanket pockets cozy</keywords>

🎁 A set of craft chocolate bars from small makers - A small luxury within budget
<keywords>craft chocolate tasting set</keywords>

🎁 A compact instant camera - Fun and surprising, as they prefer
<keywords>instant camera compact</keywords>`
