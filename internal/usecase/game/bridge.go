package game

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"goban/internal/domain/board"
	"goban/internal/domain/game"
	"goban/internal/statuses"
)

// Directive kinds extracted from free-text replies.
const (
	DirectiveMove   = "move"
	DirectivePass   = "pass"
	DirectiveResign = "resign"
)

// Directive is a move intention found in conversation text.
type Directive struct {
	Kind       string `json:"kind"`
	Coordinate string `json:"coordinate,omitempty"`
}

// The bridge deliberately accepts only one shape of move announcement. Any
// other phrasing never reaches the rules engine.
var directivePattern = regexp.MustCompile(`(?i)move:\s*([a-z]+[0-9]*)`)

// ParseMoveDirective scans text for the first MOVE: marker, case-insensitive.
// "pass" and "resign" tokens map to their directives; any other token is
// treated as a coordinate, upper-cased. No marker means no move was implied.
func ParseMoveDirective(text string) *Directive {
	m := directivePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	token := strings.ToUpper(m[1])
	switch token {
	case "PASS":
		return &Directive{Kind: DirectivePass}
	case "RESIGN":
		return &Directive{Kind: DirectiveResign}
	}
	return &Directive{Kind: DirectiveMove, Coordinate: token}
}

// BuildContextBlock renders the game-state block injected into the entity's
// chat turn. Returns ok=false unless the game is active: the parallel text
// channel goes quiet once the game is over or being scored.
func BuildContextBlock(s *game.Session) (string, bool) {
	if s.Status != statuses.StatusActive {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[Go game in progress: %dx%d board, komi %.1f]\n", s.BoardSize, s.BoardSize, s.Komi)
	fmt.Fprintf(&b, "%s to move.\n\n", s.ToMove)
	b.WriteString(renderBoard(s.Board()))
	fmt.Fprintf(&b, "\nCaptures: black %d, white %d\n", s.Captures.Black, s.Captures.White)
	fmt.Fprintf(&b, "You are playing %s.\n", s.EntityColor)
	if s.IsEntityTurn {
		b.WriteString("It is your turn. Reply with a single line of the form MOVE: <coordinate> (for example MOVE: D4), or MOVE: pass, or MOVE: resign. You may add commentary around it.\n")
	} else {
		b.WriteString("Waiting for the human player's move. Do not announce a move of your own.\n")
	}
	return b.String(), true
}

func renderBoard(b board.Board) string {
	var out strings.Builder
	out.WriteString("  ")
	for col := 0; col < b.Size; col++ {
		fmt.Fprintf(&out, " %c", "ABCDEFGHJKLMNOPQRST"[col])
	}
	out.WriteString("\n")
	for row := 0; row < b.Size; row++ {
		fmt.Fprintf(&out, "%2d", b.Size-row)
		for col := 0; col < b.Size; col++ {
			switch b.Grid[row][col] {
			case board.Black:
				out.WriteString(" X")
			case board.White:
				out.WriteString(" O")
			default:
				out.WriteString(" .")
			}
		}
		out.WriteString("\n")
	}
	return out.String()
}

// ApplyDirective plays a parsed directive as the entity's color. Illegal or
// malformed directives come back as ordinary rejections with the session
// unchanged; they never corrupt state or flip the turn.
func (u *GameUseCase) ApplyDirective(ctx context.Context, gameID string, d *Directive) (*game.Session, error) {
	s, err := u.store.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	switch d.Kind {
	case DirectivePass:
		return u.Pass(ctx, gameID, s.EntityColor)
	case DirectiveResign:
		return u.Resign(ctx, gameID, s.EntityColor)
	default:
		return u.MakeMove(ctx, gameID, s.EntityColor, d.Coordinate)
	}
}

// ChatTurnResult reports one conversational turn: the entity's reply text,
// the directive found in it (if any), and the resulting snapshot.
type ChatTurnResult struct {
	Reply     string        `json:"reply,omitempty"`
	Directive *Directive    `json:"directive,omitempty"`
	Applied   bool          `json:"applied"`
	Error     string        `json:"error,omitempty"`
	Game      *game.Session `json:"game"`
}

// ChatTurn processes one conversational turn for the entity. With text it
// parses and applies whatever directive the text carries; with empty text it
// first asks the language model for a reply. Move rejections are reported in
// the result, not raised: a bad AI move must not fail the chat turn.
func (u *GameUseCase) ChatTurn(ctx context.Context, gameID, text string) (*ChatTurnResult, error) {
	s, err := u.store.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	result := &ChatTurnResult{Game: s}

	if text == "" {
		reply, err := u.GenerateEntityReply(ctx, s)
		if err != nil {
			return nil, err
		}
		result.Reply = reply
		text = reply
	}

	d := ParseMoveDirective(text)
	if d == nil {
		return result, nil
	}
	result.Directive = d

	updated, err := u.ApplyDirective(ctx, gameID, d)
	if err != nil {
		result.Error = err.Error()
		if updated != nil {
			result.Game = updated
		}
		return result, nil
	}
	result.Applied = true
	result.Game = updated
	return result, nil
}
