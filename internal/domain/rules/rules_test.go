package rules

import (
	"errors"
	"reflect"
	"testing"

	"goban/internal/domain/board"
	"goban/internal/domain/game"
	apperrors "goban/internal/errors"
	"goban/internal/statuses"
)

func newSession(size int) *game.Session {
	return &game.Session{
		ID:             "g1",
		ConversationID: "c1",
		BoardSize:      size,
		Komi:           6.5,
		EntityColor:    statuses.ColorWhite,
		BoardState:     board.New(size).Grid,
		ToMove:         statuses.ColorBlack,
		Status:         statuses.StatusActive,
	}
}

func mustMove(t *testing.T, s *game.Session, color, coord string) {
	t.Helper()
	c, err := board.ParseCoord(coord, s.BoardSize)
	if err != nil {
		t.Fatalf("bad test coordinate %q: %v", coord, err)
	}
	if err := AttemptMove(s, color, c); err != nil {
		t.Fatalf("%s at %s rejected: %v", color, coord, err)
	}
}

func attempt(t *testing.T, s *game.Session, color, coord string) error {
	t.Helper()
	c, err := board.ParseCoord(coord, s.BoardSize)
	if err != nil {
		t.Fatalf("bad test coordinate %q: %v", coord, err)
	}
	return AttemptMove(s, color, c)
}

// checkLibertyInvariant asserts every group on the board has at least one
// liberty. Any violation is an engine bug.
func checkLibertyInvariant(t *testing.T, s *game.Session) {
	t.Helper()
	b := s.Board()
	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			c := board.Coord{Row: row, Col: col}
			if b.At(c) == board.Empty {
				continue
			}
			if len(b.Liberties(b.GroupAt(c))) == 0 {
				t.Fatalf("group at %v survived with zero liberties", c)
			}
		}
	}
}

func TestMoveAlternatesTurnAndEntityFlag(t *testing.T) {
	s := newSession(9)
	mustMove(t, s, statuses.ColorBlack, "E5")

	if s.ToMove != statuses.ColorWhite {
		t.Fatalf("to_move = %s, want white", s.ToMove)
	}
	if !s.IsEntityTurn {
		t.Fatal("entity plays white, so it should be the entity's turn")
	}
	if s.MoveHistory != ";B[ee]" {
		t.Fatalf("move history = %q, want ;B[ee]", s.MoveHistory)
	}
	checkLibertyInvariant(t, s)
}

func TestWrongTurnRejected(t *testing.T) {
	s := newSession(9)
	if err := attempt(t, s, statuses.ColorWhite, "E5"); !errors.Is(err, apperrors.ErrWrongTurn) {
		t.Fatalf("expected ErrWrongTurn, got %v", err)
	}
}

func TestOccupiedPointRejected(t *testing.T) {
	s := newSession(9)
	mustMove(t, s, statuses.ColorBlack, "E5")
	if err := attempt(t, s, statuses.ColorWhite, "E5"); !errors.Is(err, apperrors.ErrOccupiedPoint) {
		t.Fatalf("expected ErrOccupiedPoint, got %v", err)
	}
}

func TestRejectionIsIdempotent(t *testing.T) {
	s := newSession(9)
	mustMove(t, s, statuses.ColorBlack, "E5")

	before := s.Clone()
	err1 := attempt(t, s, statuses.ColorWhite, "E5")
	err2 := attempt(t, s, statuses.ColorWhite, "E5")

	if !errors.Is(err1, apperrors.ErrOccupiedPoint) || !errors.Is(err2, apperrors.ErrOccupiedPoint) {
		t.Fatalf("expected identical ErrOccupiedPoint twice, got %v / %v", err1, err2)
	}
	if !reflect.DeepEqual(before, s.Clone()) {
		t.Fatal("rejected moves must leave the session byte-for-byte identical")
	}
}

func TestCaptureSingleStone(t *testing.T) {
	s := newSession(9)
	b := s.Board()
	// White stone at C3 with black on three of its four neighbors.
	c3, _ := board.ParseCoord("C3", 9)
	b.Place(c3, board.White)
	for _, coord := range []string{"C4", "C2", "B3"} {
		c, _ := board.ParseCoord(coord, 9)
		b.Place(c, board.Black)
	}

	// The fourth neighbor completes the capture.
	mustMove(t, s, statuses.ColorBlack, "D3")

	if s.Captures.Black != 1 {
		t.Fatalf("black captures = %d, want 1", s.Captures.Black)
	}
	if s.Board().At(c3) != board.Empty {
		t.Fatal("captured stone should leave C3 empty")
	}
	if s.KoPoint != "" {
		t.Fatalf("capturing group has several liberties, ko point should be clear, got %q", s.KoPoint)
	}
	checkLibertyInvariant(t, s)
}

func TestSuicideRejected(t *testing.T) {
	s := newSession(9)
	b := s.Board()
	for _, coord := range []string{"A8", "B9"} {
		c, _ := board.ParseCoord(coord, 9)
		b.Place(c, board.Black)
	}
	s.ToMove = statuses.ColorWhite

	before := s.Clone()
	if err := attempt(t, s, statuses.ColorWhite, "A9"); !errors.Is(err, apperrors.ErrSuicideMove) {
		t.Fatalf("expected ErrSuicideMove, got %v", err)
	}
	if !reflect.DeepEqual(before, s.Clone()) {
		t.Fatal("suicide rejection must not mutate the session")
	}
}

func TestKoForbidsImmediateRecaptureOnly(t *testing.T) {
	s := newSession(9)
	b := s.Board()
	// Classic ko shape around E5 (4,4) and D5 (4,3).
	for _, coord := range []string{"E6", "E4", "F5"} {
		c, _ := board.ParseCoord(coord, 9)
		b.Place(c, board.Black)
	}
	for _, coord := range []string{"E5", "D6", "D4", "C5"} {
		c, _ := board.ParseCoord(coord, 9)
		b.Place(c, board.White)
	}

	// Black takes the ko.
	mustMove(t, s, statuses.ColorBlack, "D5")
	if s.Captures.Black != 1 {
		t.Fatalf("black captures = %d, want 1", s.Captures.Black)
	}
	e5, _ := board.ParseCoord("E5", 9)
	if s.KoPoint != e5.Key() {
		t.Fatalf("ko point = %q, want %q", s.KoPoint, e5.Key())
	}

	// Immediate recapture is forbidden.
	if err := attempt(t, s, statuses.ColorWhite, "E5"); !errors.Is(err, apperrors.ErrKoViolation) {
		t.Fatalf("expected ErrKoViolation, got %v", err)
	}

	// The rejection consumed nothing: the ko point still stands.
	if s.KoPoint != e5.Key() {
		t.Fatalf("rejected attempt must not clear the ko point, got %q", s.KoPoint)
	}

	// White plays elsewhere, black answers, and the recapture is legal again.
	mustMove(t, s, statuses.ColorWhite, "A1")
	if s.KoPoint != "" {
		t.Fatalf("any other committed move clears the ko point, got %q", s.KoPoint)
	}
	mustMove(t, s, statuses.ColorBlack, "A3")
	mustMove(t, s, statuses.ColorWhite, "E5")

	if s.Captures.White != 1 {
		t.Fatalf("white captures = %d, want 1", s.Captures.White)
	}
	d5, _ := board.ParseCoord("D5", 9)
	if s.KoPoint != d5.Key() {
		t.Fatalf("retaking the ko re-establishes it at D5, got %q", s.KoPoint)
	}
	checkLibertyInvariant(t, s)
}

func TestMultiStoneCaptureSetsNoKo(t *testing.T) {
	s := newSession(9)
	b := s.Board()
	// Two white stones in the corner, surrounded except for one liberty.
	for _, coord := range []string{"A9", "B9"} {
		c, _ := board.ParseCoord(coord, 9)
		b.Place(c, board.White)
	}
	for _, coord := range []string{"A8", "B8"} {
		c, _ := board.ParseCoord(coord, 9)
		b.Place(c, board.Black)
	}

	mustMove(t, s, statuses.ColorBlack, "C9")

	if s.Captures.Black != 2 {
		t.Fatalf("black captures = %d, want 2", s.Captures.Black)
	}
	if s.KoPoint != "" {
		t.Fatalf("multi-stone capture never sets a ko point, got %q", s.KoPoint)
	}
	checkLibertyInvariant(t, s)
}

func TestTwoConsecutivePassesEnterScoring(t *testing.T) {
	s := newSession(9)
	mustMove(t, s, statuses.ColorBlack, "E5")

	if err := Pass(s, statuses.ColorWhite); err != nil {
		t.Fatalf("white pass: %v", err)
	}
	if s.Status != statuses.StatusActive {
		t.Fatalf("one pass must not leave active, got %s", s.Status)
	}
	if err := Pass(s, statuses.ColorBlack); err != nil {
		t.Fatalf("black pass: %v", err)
	}
	if s.Status != statuses.StatusScoring {
		t.Fatalf("status = %s, want scoring", s.Status)
	}
	if s.MoveHistory != ";B[ee];W[];B[]" {
		t.Fatalf("move history = %q", s.MoveHistory)
	}

	// Moves and passes are rejected once in scoring.
	if err := attempt(t, s, statuses.ColorWhite, "C3"); !errors.Is(err, apperrors.ErrGameNotActive) {
		t.Fatalf("expected ErrGameNotActive for move in scoring, got %v", err)
	}
	if err := Pass(s, statuses.ColorWhite); !errors.Is(err, apperrors.ErrGameNotActive) {
		t.Fatalf("expected ErrGameNotActive for pass in scoring, got %v", err)
	}

	// Resign stays available from scoring.
	if err := Resign(s, statuses.ColorWhite); err != nil {
		t.Fatalf("resign from scoring: %v", err)
	}
	if s.Status != statuses.StatusFinished || s.Winner != statuses.ColorBlack {
		t.Fatalf("status/winner = %s/%s, want finished/black", s.Status, s.Winner)
	}
}

func TestMoveResetsConsecutivePasses(t *testing.T) {
	s := newSession(9)
	mustMove(t, s, statuses.ColorBlack, "E5")
	if err := Pass(s, statuses.ColorWhite); err != nil {
		t.Fatalf("pass: %v", err)
	}
	mustMove(t, s, statuses.ColorBlack, "C3")

	if s.ConsecutivePasses != 0 {
		t.Fatalf("consecutive passes = %d, want 0", s.ConsecutivePasses)
	}
	if err := Pass(s, statuses.ColorWhite); err != nil {
		t.Fatalf("pass: %v", err)
	}
	if s.Status != statuses.StatusActive {
		t.Fatal("a single pass after a move must not enter scoring")
	}
}

func TestPassClearsKoPoint(t *testing.T) {
	s := newSession(9)
	s.KoPoint = "4,4"
	if err := Pass(s, statuses.ColorBlack); err != nil {
		t.Fatalf("pass: %v", err)
	}
	if s.KoPoint != "" {
		t.Fatalf("pass should clear the ko point, got %q", s.KoPoint)
	}
}

func TestResignFinishesImmediately(t *testing.T) {
	s := newSession(9)
	mustMove(t, s, statuses.ColorBlack, "E5")

	// White may resign even though it is not validated against the turn,
	// and black may resign out of turn too.
	if err := Resign(s, statuses.ColorBlack); err != nil {
		t.Fatalf("resign: %v", err)
	}
	if s.Status != statuses.StatusFinished {
		t.Fatalf("status = %s, want finished", s.Status)
	}
	if s.Winner != statuses.ColorWhite {
		t.Fatalf("winner = %s, want white", s.Winner)
	}

	if err := attempt(t, s, statuses.ColorWhite, "C3"); !errors.Is(err, apperrors.ErrGameNotActive) {
		t.Fatalf("expected ErrGameNotActive after resignation, got %v", err)
	}
	if err := Pass(s, statuses.ColorWhite); !errors.Is(err, apperrors.ErrGameNotActive) {
		t.Fatalf("expected ErrGameNotActive for pass after resignation, got %v", err)
	}
	if err := Resign(s, statuses.ColorWhite); !errors.Is(err, apperrors.ErrGameNotActive) {
		t.Fatalf("resign on a finished game must fail, got %v", err)
	}
}

func TestOutOfBoundsRejected(t *testing.T) {
	s := newSession(9)
	err := AttemptMove(s, statuses.ColorBlack, board.Coord{Row: 9, Col: 0})
	if !errors.Is(err, apperrors.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}
