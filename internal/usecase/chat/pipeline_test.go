package chat

import (
	"context"
	"testing"
	"time"

	"github.com/northpole/elf-backend/internal/entity"
	"github.com/northpole/elf-backend/internal/pkg/observe"
	"github.com/northpole/elf-backend/internal/pkg/prompts"
	"github.com/northpole/elf-backend/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedReply struct {
	out []string
	err error
}

// scriptedLLM replays a fixed reply per Complete call and records
// every request it saw. Running out of replies is an error, so an
// unexpected extra model call fails the test instead of hanging.
type scriptedLLM struct {
	replies []scriptedReply
	calls   []*entity.CompletionRequest
}

func (s *scriptedLLM) Complete(ctx context.Context, req *entity.CompletionRequest) ([]string, error) {
	s.calls = append(s.calls, req)
	if len(s.replies) == 0 {
		return nil, entity.ErrProvider
	}

	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply.out, reply.err
}

type recordingNotifier struct {
	recipients []string
	urls       []string
}

func (n *recordingNotifier) NotifyResult(ctx context.Context, recipient, resultURL string) {
	n.recipients = append(n.recipients, recipient)
	n.urls = append(n.urls, resultURL)
}

func newTestUsecase(llm *scriptedLLM, notifier *recordingNotifier) *ChatUsecase {
	personas := map[string]prompts.Configuration{
		"elf":   prompts.Elf(),
		"santa": prompts.Santa(),
	}

	return NewUsecase(
		repository.NewSessionMemory(time.Hour),
		repository.NewResultMemory(time.Hour),
		llm,
		notifier,
		observe.NewNopObserver(),
		personas,
		"elf",
		"http://localhost:8080",
		zap.NewNop(),
	)
}

func TestNextResponse_HappyPath(t *testing.T) {
	llm := &scriptedLLM{replies: []scriptedReply{
		{out: []string{"candidate one", "candidate two", "candidate three"}},
		{out: []string{"2 - good variety of options"}},
		{out: []string{"VALID"}},
	}}
	uc := newTestUsecase(llm, &recordingNotifier{})
	cfg := prompts.Elf()

	got, err := uc.nextResponse(context.Background(), &cfg, "sess-1", nil, "")
	require.NoError(t, err)
	require.Equal(t, "candidate two", got)

	// generate, select, validate and nothing else
	require.Len(t, llm.calls, 3)
	require.Equal(t, cfg.Candidates, llm.calls[0].N)
	require.Equal(t, 1, llm.calls[1].N)
	require.Equal(t, 1, llm.calls[2].N)
}

func TestNextResponse_SelectorFallbackOutOfRange(t *testing.T) {
	llm := &scriptedLLM{replies: []scriptedReply{
		{out: []string{"c1", "c2", "c3"}},
		{out: []string{"5 - I like this imaginary one"}},
		{out: []string{"VALID"}},
	}}
	uc := newTestUsecase(llm, &recordingNotifier{})
	cfg := prompts.Elf()

	got, err := uc.nextResponse(context.Background(), &cfg, "sess-1", nil, "")
	require.NoError(t, err)
	require.Equal(t, "c1", got)
}

func TestNextResponse_SelectorFallbackUnparseable(t *testing.T) {
	llm := &scriptedLLM{replies: []scriptedReply{
		{out: []string{"c1", "c2", "c3"}},
		{out: []string{"The best response is number two"}},
		{out: []string{"VALID"}},
	}}
	uc := newTestUsecase(llm, &recordingNotifier{})
	cfg := prompts.Elf()

	got, err := uc.nextResponse(context.Background(), &cfg, "sess-1", nil, "")
	require.NoError(t, err)
	require.Equal(t, "c1", got)
}

func TestNextResponse_RefineOnRejection(t *testing.T) {
	llm := &scriptedLLM{replies: []scriptedReply{
		{out: []string{"c1", "c2", "c3"}},
		{out: []string{"1 - fine"}},
		{out: []string{"INVALID because this is the fourth question about hobbies"}},
		{out: []string{"repaired response"}},
	}}
	uc := newTestUsecase(llm, &recordingNotifier{})
	cfg := prompts.Elf()

	got, err := uc.nextResponse(context.Background(), &cfg, "sess-1", nil, "")
	require.NoError(t, err)

	// The refiner's output is final: no second validation pass.
	require.Equal(t, "repaired response", got)
	require.Len(t, llm.calls, 4)

	// The refiner sees the rejected answer and the violation.
	refineReq := llm.calls[3]
	last := refineReq.Messages[len(refineReq.Messages)-1]
	require.Equal(t, entity.RoleSystem, last.Role)
	require.Equal(t, "Please fix your response. INVALID because this is the fourth question about hobbies", last.Content)
	rejected := refineReq.Messages[len(refineReq.Messages)-2]
	require.Equal(t, entity.RoleAssistant, rejected.Role)
	require.Equal(t, "c1", rejected.Content)
}

func TestNextResponse_SentinelMustMatchExactly(t *testing.T) {
	for _, verdict := range []string{"VALID.", "Valid", " VALID", "VALID because it is fine"} {
		llm := &scriptedLLM{replies: []scriptedReply{
			{out: []string{"c1", "c2", "c3"}},
			{out: []string{"1 - fine"}},
			{out: []string{verdict}},
			{out: []string{"repaired"}},
		}}
		uc := newTestUsecase(llm, &recordingNotifier{})
		cfg := prompts.Elf()

		got, err := uc.nextResponse(context.Background(), &cfg, "sess-1", nil, "")
		require.NoError(t, err, "verdict %q", verdict)
		require.Equal(t, "repaired", got, "verdict %q should trigger refinement", verdict)
		require.Len(t, llm.calls, 4, "verdict %q", verdict)
	}
}

func TestNextResponse_ProviderErrorAborts(t *testing.T) {
	llm := &scriptedLLM{replies: []scriptedReply{
		{err: entity.ErrRateLimited},
	}}
	uc := newTestUsecase(llm, &recordingNotifier{})
	cfg := prompts.Elf()

	_, err := uc.nextResponse(context.Background(), &cfg, "sess-1", nil, "")
	require.ErrorIs(t, err, entity.ErrRateLimited)
	require.Len(t, llm.calls, 1)
}

func TestParseChosenIndex(t *testing.T) {
	tests := []struct {
		output string
		count  int
		index  int
		ok     bool
	}{
		{"2 - Best balance of distinct options and new topic area", 3, 1, true},
		{"1", 3, 0, true},
		{"3 - last one", 3, 2, true},
		{"0 - below range", 3, 0, false},
		{"4 - above range", 3, 0, false},
		{"two - spelled out", 3, 0, false},
		{"", 3, 0, false},
		{"   ", 3, 0, false},
	}

	for _, tt := range tests {
		index, ok := parseChosenIndex(tt.output, tt.count)
		require.Equal(t, tt.ok, ok, "output %q", tt.output)
		if tt.ok {
			require.Equal(t, tt.index, index, "output %q", tt.output)
		}
	}
}

func TestHistoryReplay(t *testing.T) {
	transcript := entity.Transcript{
		{Role: entity.RoleAssistant, Content: "Q1"},
		{Role: entity.RoleUser, Content: "A1"},
	}

	replay := historyReplay(transcript)

	require.Len(t, replay, 2)
	require.Equal(t, entity.RoleUser, replay[0].Role)
	require.Equal(t, "Previous question: Q1", replay[0].Content)
	require.Equal(t, entity.RoleUser, replay[1].Role)
	require.Equal(t, "User answer: A1", replay[1].Content)
}
