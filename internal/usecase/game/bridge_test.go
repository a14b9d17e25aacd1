package game

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "goban/internal/errors"
	"goban/internal/statuses"
)

func TestParseMoveDirective(t *testing.T) {
	tests := []struct {
		text string
		want *Directive
	}{
		{"I'll respond with MOVE: q16 to take the corner", &Directive{Kind: DirectiveMove, Coordinate: "Q16"}},
		{"move: e5", &Directive{Kind: DirectiveMove, Coordinate: "E5"}},
		{"MOVE:C3", &Directive{Kind: DirectiveMove, Coordinate: "C3"}},
		{"A tough position. MOVE: pass", &Directive{Kind: DirectivePass}},
		{"You win. move: RESIGN", &Directive{Kind: DirectiveResign}},
		{"Nice weather today.", nil},
		{"I might move toward the corner", nil},
	}
	for _, tt := range tests {
		got := ParseMoveDirective(tt.text)
		if tt.want == nil {
			if got != nil {
				t.Fatalf("ParseMoveDirective(%q) = %+v, want nil", tt.text, got)
			}
			continue
		}
		if got == nil || *got != *tt.want {
			t.Fatalf("ParseMoveDirective(%q) = %+v, want %+v", tt.text, got, tt.want)
		}
	}
}

func TestParseMoveDirectiveTakesFirstMarker(t *testing.T) {
	got := ParseMoveDirective("MOVE: D4 ... no wait, MOVE: Q16")
	if got == nil || got.Coordinate != "D4" {
		t.Fatalf("expected the first marker to win, got %+v", got)
	}
}

func TestBuildContextBlockOnlyWhenActive(t *testing.T) {
	u, _ := newTestUsecase(nil)
	s := createGame(t, u, "conv-1", statuses.ColorWhite)

	block, ok := BuildContextBlock(s)
	if !ok {
		t.Fatal("active game should produce a context block")
	}
	if !strings.Contains(block, "9x9") || !strings.Contains(block, "black to move") {
		t.Fatalf("block missing board header: %q", block)
	}
	if !strings.Contains(block, "Waiting for the human player's move") {
		t.Fatal("black to move with a white entity: block should say it is waiting")
	}

	s.Status = statuses.StatusScoring
	if _, ok := BuildContextBlock(s); ok {
		t.Fatal("no context block outside active play")
	}
}

func TestBuildContextBlockInstructsEntityOnItsTurn(t *testing.T) {
	u, _ := newTestUsecase(nil)
	s := createGame(t, u, "conv-1", statuses.ColorWhite)

	updated, err := u.MakeMove(context.Background(), s.ID, "", "E5")
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	block, ok := BuildContextBlock(updated)
	if !ok {
		t.Fatal("expected a context block")
	}
	if !strings.Contains(block, "MOVE: <coordinate>") {
		t.Fatalf("entity's turn should carry the move instruction: %q", block)
	}
	// The played stone shows up in the rendered board.
	if !strings.Contains(block, "X") {
		t.Fatalf("board rendering should show the black stone: %q", block)
	}
}

func TestChatTurnAppliesDirectiveFromText(t *testing.T) {
	u, _ := newTestUsecase(nil)
	s := createGame(t, u, "conv-1", statuses.ColorWhite)
	ctx := context.Background()

	if _, err := u.MakeMove(ctx, s.ID, "", "E5"); err != nil {
		t.Fatalf("move: %v", err)
	}

	result, err := u.ChatTurn(ctx, s.ID, "Interesting. MOVE: c3 should work here.")
	if err != nil {
		t.Fatalf("chat turn: %v", err)
	}
	if !result.Applied {
		t.Fatalf("directive should apply, got error %q", result.Error)
	}
	if result.Directive == nil || result.Directive.Coordinate != "C3" {
		t.Fatalf("directive = %+v", result.Directive)
	}
	if result.Game.ToMove != statuses.ColorBlack {
		t.Fatal("after the entity's move it is black's turn again")
	}
	if !strings.HasSuffix(result.Game.MoveHistory, ";W[cg]") {
		t.Fatalf("history = %q", result.Game.MoveHistory)
	}
}

func TestChatTurnReportsRejectionWithoutCorruption(t *testing.T) {
	u, _ := newTestUsecase(nil)
	s := createGame(t, u, "conv-1", statuses.ColorWhite)
	ctx := context.Background()

	// Black has not moved yet: the white entity is out of turn.
	result, err := u.ChatTurn(ctx, s.ID, "MOVE: E5")
	if err != nil {
		t.Fatalf("chat turn must not fail on a rejected move: %v", err)
	}
	if result.Applied {
		t.Fatal("out-of-turn directive must not apply")
	}
	if result.Error == "" {
		t.Fatal("rejection should be reported in the result")
	}

	stored, _ := u.GetGameByID(ctx, s.ID)
	if stored.ToMove != statuses.ColorBlack || stored.MoveHistory != "" {
		t.Fatal("rejected directive must leave the session untouched")
	}
}

func TestChatTurnWithoutDirective(t *testing.T) {
	u, _ := newTestUsecase(nil)
	s := createGame(t, u, "conv-1", statuses.ColorWhite)

	result, err := u.ChatTurn(context.Background(), s.ID, "Good luck, let's have a fun game!")
	if err != nil {
		t.Fatalf("chat turn: %v", err)
	}
	if result.Directive != nil || result.Applied {
		t.Fatal("text without a marker implies no move")
	}
}

func TestChatTurnGeneratesEntityReply(t *testing.T) {
	llm := &fakeLlm{reply: "A classic corner approach. MOVE: C3"}
	u, _ := newTestUsecase(llm)
	s := createGame(t, u, "conv-1", statuses.ColorWhite)
	ctx := context.Background()

	if _, err := u.MakeMove(ctx, s.ID, "", "E5"); err != nil {
		t.Fatalf("move: %v", err)
	}

	result, err := u.ChatTurn(ctx, s.ID, "")
	if err != nil {
		t.Fatalf("chat turn: %v", err)
	}
	if result.Reply != llm.reply {
		t.Fatalf("reply = %q", result.Reply)
	}
	if !result.Applied {
		t.Fatalf("generated move should apply, got error %q", result.Error)
	}
	if len(llm.seen) != 1 || !strings.Contains(llm.seen[0], "MOVE: <coordinate>") {
		t.Fatal("prompt should contain the context block instruction")
	}
}

func TestGenerateEntityReplyGuards(t *testing.T) {
	llm := &fakeLlm{reply: "MOVE: pass"}
	u, _ := newTestUsecase(llm)
	s := createGame(t, u, "conv-1", statuses.ColorWhite)
	ctx := context.Background()

	// Black to move: generating an entity reply is out of turn.
	if _, err := u.GenerateEntityReply(ctx, s); !errors.Is(err, apperrors.ErrWrongTurn) {
		t.Fatalf("expected ErrWrongTurn, got %v", err)
	}

	s.Status = statuses.StatusFinished
	if _, err := u.GenerateEntityReply(ctx, s); !errors.Is(err, apperrors.ErrGameNotActive) {
		t.Fatalf("expected ErrGameNotActive, got %v", err)
	}

	noLlm, _ := newTestUsecase(nil)
	s2 := createGame(t, noLlm, "conv-2", statuses.ColorBlack)
	if _, err := noLlm.GenerateEntityReply(ctx, s2); !errors.Is(err, apperrors.ErrInternal) {
		t.Fatalf("expected ErrInternal without a configured model, got %v", err)
	}
}
