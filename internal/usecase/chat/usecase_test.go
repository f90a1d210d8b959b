package chat

import (
	"context"
	"testing"

	"github.com/northpole/elf-backend/internal/entity"
	"github.com/stretchr/testify/require"
)

const wellFormedQuestion = "<question>What is your age group?</question><multiple_choice_options>1. Under 18\n2. 18-30\n3. Over 30</multiple_choice_options>"

func turnReplies(candidates ...string) []scriptedReply {
	return []scriptedReply{
		{out: candidates},
		{out: []string{"1 - clear options"}},
		{out: []string{"VALID"}},
	}
}

func TestCreateChatLink_PersonaFallback(t *testing.T) {
	uc := newTestUsecase(&scriptedLLM{}, &recordingNotifier{})
	ctx := context.Background()

	session, err := uc.CreateChatLink(ctx, &entity.CreateChatLinkRequest{Persona: "grinch"})
	require.NoError(t, err)
	require.Equal(t, "elf", session.Persona)
	require.Equal(t, entity.SessionStatusPending, session.Status)
	require.NotEmpty(t, session.ID)
	require.Empty(t, session.Transcript)
}

func TestStartChat_ProducesOpeningQuestion(t *testing.T) {
	llm := &scriptedLLM{replies: turnReplies(wellFormedQuestion, "alt one", "alt two")}
	uc := newTestUsecase(llm, &recordingNotifier{})
	ctx := context.Background()

	session, err := uc.CreateChatLink(ctx, &entity.CreateChatLinkRequest{})
	require.NoError(t, err)

	started, err := uc.StartChat(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, started.Transcript, 1)
	require.Equal(t, entity.RoleAssistant, started.Transcript[0].Role)
	require.Equal(t, "What is your age group?\n1. Under 18\n2. 18-30\n3. Over 30", started.Transcript[0].Content)
}

func TestStartChat_Idempotent(t *testing.T) {
	llm := &scriptedLLM{replies: turnReplies(wellFormedQuestion, "a", "b")}
	uc := newTestUsecase(llm, &recordingNotifier{})
	ctx := context.Background()

	session, err := uc.CreateChatLink(ctx, &entity.CreateChatLinkRequest{})
	require.NoError(t, err)

	first, err := uc.StartChat(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, llm.calls, 3)

	// A second start does not touch the model and returns the same
	// transcript.
	second, err := uc.StartChat(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, llm.calls, 3)
	require.Equal(t, first.Transcript, second.Transcript)
}

func TestStartChat_UnknownSession(t *testing.T) {
	uc := newTestUsecase(&scriptedLLM{}, &recordingNotifier{})

	_, err := uc.StartChat(context.Background(), "no-such-id")
	require.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestSubmitAnswer_AppendsAnswerAndNextQuestion(t *testing.T) {
	llm := &scriptedLLM{replies: append(
		turnReplies(wellFormedQuestion, "a", "b"),
		turnReplies("<question>Favorite hobby?</question><multiple_choice_options>1. Reading\n2. Sports</multiple_choice_options>", "c", "d")...,
	)}
	uc := newTestUsecase(llm, &recordingNotifier{})
	ctx := context.Background()

	session, err := uc.CreateChatLink(ctx, &entity.CreateChatLinkRequest{})
	require.NoError(t, err)
	_, err = uc.StartChat(ctx, session.ID)
	require.NoError(t, err)

	updated, err := uc.SubmitAnswer(ctx, session.ID, "2. 18-30")
	require.NoError(t, err)
	require.Len(t, updated.Transcript, 3)
	require.Equal(t, entity.RoleUser, updated.Transcript[1].Role)
	require.Equal(t, "2. 18-30", updated.Transcript[1].Content)
	require.Equal(t, entity.RoleAssistant, updated.Transcript[2].Role)
	require.Equal(t, "Favorite hobby?\n1. Reading\n2. Sports", updated.Transcript[2].Content)
}

func TestSubmitAnswer_AbortedTurnLeavesTranscriptUntouched(t *testing.T) {
	llm := &scriptedLLM{replies: append(
		turnReplies(wellFormedQuestion, "a", "b"),
		scriptedReply{err: entity.ErrProviderUnavailable},
	)}
	uc := newTestUsecase(llm, &recordingNotifier{})
	ctx := context.Background()

	session, err := uc.CreateChatLink(ctx, &entity.CreateChatLinkRequest{})
	require.NoError(t, err)
	started, err := uc.StartChat(ctx, session.ID)
	require.NoError(t, err)

	_, err = uc.SubmitAnswer(ctx, session.ID, "2. 18-30")
	require.ErrorIs(t, err, entity.ErrProviderUnavailable)

	// Neither the answer nor a question was committed.
	current, err := uc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, started.Transcript, current.Transcript)
}

func TestSubmitAnswer_CompletedSession(t *testing.T) {
	llm := &scriptedLLM{replies: []scriptedReply{
		{out: []string{"🎁 A wooden chess set"}},
	}}
	uc := newTestUsecase(llm, &recordingNotifier{})
	ctx := context.Background()

	session, err := uc.CreateChatLink(ctx, &entity.CreateChatLinkRequest{})
	require.NoError(t, err)
	_, _, err = uc.CompleteChat(ctx, session.ID)
	require.NoError(t, err)

	_, err = uc.SubmitAnswer(ctx, session.ID, "an answer")
	require.ErrorIs(t, err, entity.ErrSessionCompleted)

	_, err = uc.StartChat(ctx, session.ID)
	require.ErrorIs(t, err, entity.ErrSessionCompleted)
}

func TestCompleteChat_StoresResultAndNotifies(t *testing.T) {
	llm := &scriptedLLM{replies: append(
		turnReplies(wellFormedQuestion, "a", "b"),
		scriptedReply{out: []string{"🎁 A yoga mat - for their practice\n<keywords>yoga mat</keywords>\n🎁 A coffee subscription"}},
	)}
	notifier := &recordingNotifier{}
	uc := newTestUsecase(llm, notifier)
	ctx := context.Background()

	email := "sender@example.com"
	session, err := uc.CreateChatLink(ctx, &entity.CreateChatLinkRequest{NotificationEmail: &email})
	require.NoError(t, err)
	_, err = uc.StartChat(ctx, session.ID)
	require.NoError(t, err)

	result, resultURL, err := uc.CompleteChat(ctx, session.ID)
	require.NoError(t, err)
	require.NotEmpty(t, result.ID)
	require.Equal(t, session.ID, result.SessionID)
	require.Len(t, result.Suggestions, 2)
	require.Equal(t, "🎁 A yoga mat - for their practice", result.Suggestions[0].Text)
	require.Equal(t, "yoga mat", result.Suggestions[0].Keywords)
	require.Equal(t, "http://localhost:8080/suggestions/"+result.ID, resultURL)

	completed, err := uc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, entity.SessionStatusCompleted, completed.Status)
	require.NotNil(t, completed.ResultID)
	require.Equal(t, result.ID, *completed.ResultID)

	require.Equal(t, []string{email}, notifier.recipients)
	require.Equal(t, []string{resultURL}, notifier.urls)

	stored, err := uc.GetResult(ctx, result.ID)
	require.NoError(t, err)
	require.Equal(t, result.Suggestions, stored.Suggestions)
}

func TestCompleteChat_Idempotent(t *testing.T) {
	llm := &scriptedLLM{replies: []scriptedReply{
		{out: []string{"🎁 A puzzle book"}},
	}}
	notifier := &recordingNotifier{}
	uc := newTestUsecase(llm, notifier)
	ctx := context.Background()

	email := "sender@example.com"
	session, err := uc.CreateChatLink(ctx, &entity.CreateChatLinkRequest{NotificationEmail: &email})
	require.NoError(t, err)

	first, firstURL, err := uc.CompleteChat(ctx, session.ID)
	require.NoError(t, err)
	calls := len(llm.calls)

	// Re-completing returns the stored result without another model
	// call or another notification.
	second, secondURL, err := uc.CompleteChat(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, firstURL, secondURL)
	require.Len(t, llm.calls, calls)
	require.Len(t, notifier.recipients, 1)
}

func TestCompleteChat_NoEmailNoNotification(t *testing.T) {
	llm := &scriptedLLM{replies: []scriptedReply{
		{out: []string{"🎁 A scarf"}},
	}}
	notifier := &recordingNotifier{}
	uc := newTestUsecase(llm, notifier)
	ctx := context.Background()

	session, err := uc.CreateChatLink(ctx, &entity.CreateChatLinkRequest{})
	require.NoError(t, err)

	_, _, err = uc.CompleteChat(ctx, session.ID)
	require.NoError(t, err)
	require.Empty(t, notifier.recipients)
}

func TestRunTurn_DegradedParseStillCommits(t *testing.T) {
	wrapUp := "And that's all I need to know! Ho ho ho! 🎅✨"
	llm := &scriptedLLM{replies: turnReplies(wrapUp, "a", "b")}
	uc := newTestUsecase(llm, &recordingNotifier{})
	ctx := context.Background()

	session, err := uc.CreateChatLink(ctx, &entity.CreateChatLinkRequest{})
	require.NoError(t, err)

	started, err := uc.StartChat(ctx, session.ID)
	require.NoError(t, err)

	// Output without markers is passed through verbatim.
	require.Len(t, started.Transcript, 1)
	require.Equal(t, wrapUp, started.Transcript[0].Content)
}
