package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tanpawarit/clinical-scribe/agent/agents/clinical"
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
	"github.com/tanpawarit/clinical-scribe/agent/conversation"
	promptx "github.com/tanpawarit/clinical-scribe/agent/prompt"
	retryx "github.com/tanpawarit/clinical-scribe/agent/retry"
	"github.com/tanpawarit/clinical-scribe/agent/session"
	toolx "github.com/tanpawarit/clinical-scribe/agent/tool"
)

type scriptedModel struct {
	mu        sync.Mutex
	responses []*schema.Message
	idx       int
	calls     int
}

func (f *scriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *scriptedModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

type fakeSTT struct{}

func (fakeSTT) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	return "", errors.New("unexpected transcription")
}

type fakeNormalizer struct{}

func (fakeNormalizer) Normalize(ctx context.Context, inputPath string) (string, error) {
	return "", errors.New("unexpected normalization")
}

type fakeRecords struct {
	mu          sync.Mutex
	transcripts []string
	notes       []contractx.SoapNote
	visits      []int64
}

func (f *fakeRecords) SaveTranscript(ctx context.Context, visitID int64, text string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcripts = append(f.transcripts, text)
	f.visits = append(f.visits, visitID)
	return int64(len(f.transcripts)), nil
}

func (f *fakeRecords) SaveSoapNote(ctx context.Context, visitID int64, note contractx.SoapNote) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, note)
	f.visits = append(f.visits, visitID)
	return int64(100 + len(f.notes)), nil
}

type counterThreads struct {
	mu sync.Mutex
	n  int
}

func (c *counterThreads) CreateThread(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("thread-%d", c.n), nil
}

type fakeConversation struct {
	mu    sync.Mutex
	turns []contractx.Turn
	err   error
	seeds []string
	sess  []contractx.Session
}

func (f *fakeConversation) Run(ctx context.Context, sess contractx.Session, seed string) ([]contractx.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeds = append(f.seeds, seed)
	f.sess = append(f.sess, sess)
	return f.turns, f.err
}

// onceRetrier runs a single attempt and keeps its partial turns.
type onceRetrier struct{}

func (onceRetrier) Execute(ctx context.Context, fn retryx.AttemptFunc) []contractx.Turn {
	turns, _ := fn(ctx, 1)
	return turns
}

func toolCall(id, name, args string) schema.ToolCall {
	return schema.ToolCall{
		ID:   id,
		Type: "function",
		Function: schema.FunctionCall{
			Name:      name,
			Arguments: args,
		},
	}
}

func newTestService(t *testing.T, conv *fakeConversation) (*Service, *session.Registry) {
	t.Helper()

	sessions, err := session.NewRegistry(&counterThreads{})
	if err != nil {
		t.Fatalf("session.NewRegistry() error = %v", err)
	}
	svc, err := New(sessions, conv, onceRetrier{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc, sessions
}

func TestProcessTurnVisit42EndToEnd(t *testing.T) {
	t.Parallel()

	const transcript = "Doctor: What brings you in? Patient: Headache for three days."
	models := map[contractx.AgentName]*scriptedModel{
		contractx.AgentTranscription: {
			responses: []*schema.Message{
				{Role: schema.Assistant, Content: transcript},
			},
		},
		contractx.AgentDocumentation: {
			responses: []*schema.Message{
				{
					Role: schema.Assistant,
					ToolCalls: []schema.ToolCall{
						toolCall("call_1", toolx.ToolSaveTranscript, `{"visit_id":42,"transcript_text":"`+transcript+`"}`),
						toolCall("call_2", toolx.ToolSaveSoapNote, `{"visit_id":"42","subjective":"Headache x3 days","objective":"Vitals stable","assessment":"Tension headache","treatment_plan":"Rest and fluids"}`),
					},
				},
				{Role: schema.Assistant, Content: "**Subjective:** Headache x3 days\n**Plan:** Rest and fluids"},
			},
		},
		contractx.AgentVerification: {
			responses: []*schema.Message{
				{Role: schema.Assistant, Content: "Documentation complete."},
			},
		},
	}
	factory := func(ctx context.Context, name contractx.AgentName) (einomodel.ToolCallingChatModel, error) {
		return models[name], nil
	}

	records := &fakeRecords{}
	bridge, err := toolx.NewBridge(fakeSTT{}, fakeNormalizer{}, records)
	if err != nil {
		t.Fatalf("NewBridge() error = %v", err)
	}
	agents, err := clinical.NewRegistryWith(context.Background(), promptx.LoadPromptSet(), factory, bridge, 4)
	if err != nil {
		t.Fatalf("NewRegistryWith() error = %v", err)
	}
	conv, err := conversation.NewOrchestrator(agents, conversation.Config{})
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}
	sessions, err := session.NewRegistry(&counterThreads{})
	if err != nil {
		t.Fatalf("session.NewRegistry() error = %v", err)
	}
	svc, err := New(sessions, conv, retryx.New(retryx.Config{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	threadID, err := svc.CreateSession(context.Background(), 42)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	turns, err := svc.ProcessTurn(context.Background(), ProcessRequest{
		ThreadID:   threadID,
		VisitID:    42,
		Transcript: transcript,
	})
	if err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}

	want := []string{"TranscriptionAgent", "DocumentationAgent", "VerificationAgent"}
	if len(turns) != len(want) {
		t.Fatalf("expected %d turns, got %#v", len(want), turns)
	}
	for i, author := range want {
		if turns[i].Author != author {
			t.Fatalf("turn %d author: got %s want %s", i, turns[i].Author, author)
		}
	}
	if turns[2].Content != "Documentation complete." {
		t.Fatalf("unexpected final turn: %q", turns[2].Content)
	}

	if len(records.transcripts) != 1 || records.transcripts[0] != transcript {
		t.Fatalf("unexpected saved transcripts: %#v", records.transcripts)
	}
	if len(records.notes) != 1 || records.notes[0].Assessment != "Tension headache" {
		t.Fatalf("unexpected saved notes: %#v", records.notes)
	}
	for _, v := range records.visits {
		if v != 42 {
			t.Fatalf("records must be saved under visit 42, got %d", v)
		}
	}
	if models[contractx.AgentDocumentation].calls != 2 {
		t.Fatalf("documentation model should be called twice, got %d", models[contractx.AgentDocumentation].calls)
	}
}

func TestProcessTurnRequiresInput(t *testing.T) {
	t.Parallel()

	conv := &fakeConversation{}
	svc, _ := newTestService(t, conv)

	_, err := svc.ProcessTurn(context.Background(), ProcessRequest{VisitID: 1, Transcript: "   "})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	_, err = svc.ProcessTurn(context.Background(), ProcessRequest{VisitID: 0, Transcript: "x"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(conv.seeds) != 0 {
		t.Fatal("conversation must not start on invalid input")
	}
}

func TestProcessTurnSeedMessage(t *testing.T) {
	t.Parallel()

	conv := &fakeConversation{turns: []contractx.Turn{{Author: "TranscriptionAgent", Content: "x", Ordinal: 1}}}
	svc, _ := newTestService(t, conv)

	if _, err := svc.ProcessTurn(context.Background(), ProcessRequest{VisitID: 7, Transcript: "Doctor: hi"}); err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}
	if _, err := svc.ProcessTurn(context.Background(), ProcessRequest{VisitID: 7, AudioPath: "/tmp/v7.mp3", Transcript: "ignored"}); err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}

	want := []string{
		"Process documentation for visit ID 7. Use the provided transcript: Doctor: hi",
		"Process documentation for visit ID 7. Record and transcribe the audio file: /tmp/v7.mp3",
	}
	for i, seed := range want {
		if conv.seeds[i] != seed {
			t.Fatalf("seed %d: got %q want %q", i, conv.seeds[i], seed)
		}
	}
	if conv.sess[0].ThreadID != conv.sess[1].ThreadID {
		t.Fatal("requests for the same visit without thread id must share a session")
	}
}

func TestProcessTurnAdoptsThreadID(t *testing.T) {
	t.Parallel()

	conv := &fakeConversation{}
	svc, sessions := newTestService(t, conv)

	if _, err := svc.ProcessTurn(context.Background(), ProcessRequest{ThreadID: "ext-1", VisitID: 3, Transcript: "t"}); err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}
	if conv.sess[0].ThreadID != "ext-1" || conv.sess[0].VisitID != 3 {
		t.Fatalf("unexpected session: %#v", conv.sess[0])
	}
	if sess, ok := sessions.Lookup(context.Background(), 3); !ok || sess.ThreadID != "ext-1" {
		t.Fatalf("thread must be registered: %#v", sess)
	}
}

func TestProcessTurnDegradedResult(t *testing.T) {
	t.Parallel()

	conv := &fakeConversation{
		turns: []contractx.Turn{{Author: "TranscriptionAgent", Content: "Doctor: hi", Ordinal: 1}},
		err:   errors.New("status code: 429, Rate limit is exceeded"),
	}
	svc, _ := newTestService(t, conv)

	turns, err := svc.ProcessTurn(context.Background(), ProcessRequest{VisitID: 9, Transcript: "Doctor: hi"})
	if err != nil {
		t.Fatalf("provider failures must not fail the call: %v", err)
	}
	if len(turns) != 1 || turns[0].Author != "TranscriptionAgent" {
		t.Fatalf("unexpected partial turns: %#v", turns)
	}
}

func TestProcessTurnEmptyResultIsNotNil(t *testing.T) {
	t.Parallel()

	conv := &fakeConversation{err: errors.New("boom")}
	svc, _ := newTestService(t, conv)

	turns, err := svc.ProcessTurn(context.Background(), ProcessRequest{VisitID: 9, Transcript: "t"})
	if err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}
	if turns == nil || len(turns) != 0 {
		t.Fatalf("expected empty non-nil turns, got %#v", turns)
	}
}

func TestCreateSession(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &fakeConversation{})

	first, err := svc.CreateSession(context.Background(), 5)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	second, err := svc.CreateSession(context.Background(), 5)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if first == second || !strings.HasPrefix(first, "thread-") {
		t.Fatalf("expected distinct threads, got %q and %q", first, second)
	}

	if _, err := svc.CreateSession(context.Background(), 0); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	sessions, _ := session.NewRegistry(&counterThreads{})
	if _, err := New(nil, &fakeConversation{}, onceRetrier{}); err == nil {
		t.Fatal("expected error for nil sessions")
	}
	if _, err := New(sessions, nil, onceRetrier{}); err == nil {
		t.Fatal("expected error for nil conversation")
	}
	if _, err := New(sessions, &fakeConversation{}, nil); err == nil {
		t.Fatal("expected error for nil retrier")
	}
}
