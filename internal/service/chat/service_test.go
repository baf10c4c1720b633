package chat_test

import (
	"context"
	"errors"
	"testing"

	chatModel "github.com/maumlab/counselbot/backend/internal/model/chat"
	"github.com/maumlab/counselbot/backend/internal/model/persona"
	chat "github.com/maumlab/counselbot/backend/internal/service/chat"
)

func counselor() persona.Persona {
	return persona.Seed()[0]
}

func TestCreateSessionSeedsGreeting(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, counselor())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	turns, err := svc.Transcript(ctx, session.ID, 0)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}

	if len(turns) != 1 {
		t.Fatalf("expected greeting turn only, got %d turns", len(turns))
	}
	if turns[0].Role != chatModel.RoleAssistant {
		t.Fatalf("greeting role = %s, want assistant", turns[0].Role)
	}
	if turns[0].Content != counselor().Greeting {
		t.Fatalf("greeting content = %q", turns[0].Content)
	}
}

func TestTranscriptSnapshotIdempotent(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, counselor())
	if _, err := svc.CommitExchange(ctx, session.ID, "속상해요", "그랬구나"); err != nil {
		t.Fatalf("CommitExchange err: %v", err)
	}

	first, err := svc.Transcript(ctx, session.ID, 0)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}
	second, err := svc.Transcript(ctx, session.ID, 0)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("snapshot lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("snapshot turn %d differs", i)
		}
	}
}

func TestTranscriptLimit(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, counselor())
	for i := 0; i < 3; i++ {
		if _, err := svc.CommitExchange(ctx, session.ID, "질문", "답변"); err != nil {
			t.Fatalf("CommitExchange err: %v", err)
		}
	}

	turns, err := svc.Transcript(ctx, session.ID, 2)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("limited snapshot length = %d, want 2", len(turns))
	}
	if turns[0].Role != chatModel.RoleUser || turns[1].Role != chatModel.RoleAssistant {
		t.Fatalf("unexpected tail roles: %s, %s", turns[0].Role, turns[1].Role)
	}
}

func TestCommitExchangeOrdering(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, counselor())
	const n = 4
	for i := 0; i < n; i++ {
		if _, err := svc.CommitExchange(ctx, session.ID, "질문", "답변"); err != nil {
			t.Fatalf("CommitExchange err: %v", err)
		}
	}

	turns, _ := svc.Transcript(ctx, session.ID, 0)
	if len(turns) != 1+2*n {
		t.Fatalf("transcript length = %d, want %d", len(turns), 1+2*n)
	}
	for i := 1; i < len(turns); i += 2 {
		if turns[i].Role != chatModel.RoleUser || turns[i+1].Role != chatModel.RoleAssistant {
			t.Fatalf("turns %d/%d roles = %s/%s, want user/assistant", i, i+1, turns[i].Role, turns[i+1].Role)
		}
	}
}

func TestMarkRiskSticky(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, counselor())

	if err := svc.MarkRisk(ctx, session.ID, true); err != nil {
		t.Fatalf("MarkRisk err: %v", err)
	}
	// A later risk-free turn must not clear the flag.
	if err := svc.MarkRisk(ctx, session.ID, false); err != nil {
		t.Fatalf("MarkRisk err: %v", err)
	}

	flagged, err := svc.RiskFlagged(ctx, session.ID)
	if err != nil {
		t.Fatalf("RiskFlagged err: %v", err)
	}
	if !flagged {
		t.Fatal("risk flag cleared, want sticky true")
	}
}

func TestBeginTurnRejectsOverlap(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx, counselor())

	if err := svc.BeginTurn(ctx, session.ID); err != nil {
		t.Fatalf("BeginTurn err: %v", err)
	}
	if err := svc.BeginTurn(ctx, session.ID); !errors.Is(err, chat.ErrTurnInFlight) {
		t.Fatalf("second BeginTurn err = %v, want ErrTurnInFlight", err)
	}

	svc.EndTurn(ctx, session.ID)
	if err := svc.BeginTurn(ctx, session.ID); err != nil {
		t.Fatalf("BeginTurn after EndTurn err: %v", err)
	}
}

func TestSessionNotFound(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("GetSession err = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.Transcript(ctx, "missing", 0); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("Transcript err = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.RiskFlagged(ctx, "missing"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("RiskFlagged err = %v, want ErrSessionNotFound", err)
	}
	if err := svc.MarkRisk(ctx, "missing", false); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("MarkRisk err = %v, want ErrSessionNotFound", err)
	}
}
