package rules

import (
	apperrors "goban/internal/errors"

	"goban/internal/domain/board"
	"goban/internal/domain/game"
	"goban/internal/domain/sgf"
	"goban/internal/statuses"
)

func stoneOf(color string) board.Stone {
	switch color {
	case statuses.ColorBlack:
		return board.Black
	case statuses.ColorWhite:
		return board.White
	}
	return board.Empty
}

func sgfLetter(color string) string {
	if color == statuses.ColorBlack {
		return "B"
	}
	return "W"
}

func opponent(color string) string {
	if color == statuses.ColorBlack {
		return statuses.ColorWhite
	}
	return statuses.ColorBlack
}

// AttemptMove validates and applies one stone placement. Captures are
// resolved, the ko point re-established or cleared, and the turn alternated.
// On any rejection the session is left untouched: the move is applied to a
// scratch copy of the grid and only committed once legal.
func AttemptMove(s *game.Session, color string, c board.Coord) error {
	if s.Status != statuses.StatusActive {
		return apperrors.ErrGameNotActive
	}
	stone := stoneOf(color)
	if stone == board.Empty || color != s.ToMove {
		return apperrors.ErrWrongTurn
	}
	b := s.Board()
	if !b.InBounds(c) {
		return apperrors.ErrOutOfBounds
	}
	if b.At(c) != board.Empty {
		return apperrors.ErrOccupiedPoint
	}
	if s.KoPoint != "" && s.KoPoint == c.Key() {
		return apperrors.ErrKoViolation
	}

	scratch := b.Clone()
	scratch.Place(c, stone)

	// Lift every adjacent enemy group left without liberties.
	captured := 0
	var koCandidate board.Coord
	counted := make(map[board.Coord]bool)
	for _, n := range scratch.Neighbors(c) {
		if scratch.At(n) != stone.Opponent() || counted[n] {
			continue
		}
		group := scratch.GroupAt(n)
		for _, g := range group {
			counted[g] = true
		}
		if len(scratch.Liberties(group)) == 0 {
			scratch.Remove(group)
			captured += len(group)
			koCandidate = group[0]
		}
	}

	moving := scratch.GroupAt(c)
	if len(scratch.Liberties(moving)) == 0 {
		// Scratch copy is discarded, so nothing to undo.
		return apperrors.ErrSuicideMove
	}

	s.SetBoard(scratch)
	if stone == board.Black {
		s.Captures.Black += captured
	} else {
		s.Captures.White += captured
	}
	s.MoveHistory = sgf.AppendMove(s.MoveHistory, sgfLetter(color), c.SGF())
	s.ConsecutivePasses = 0
	if captured == 1 && len(moving) == 1 && len(scratch.Liberties(moving)) == 1 {
		s.KoPoint = koCandidate.Key()
	} else {
		s.KoPoint = ""
	}
	advanceTurn(s)
	return nil
}

// Pass records a pass for the side to move. The second consecutive pass
// moves the game into scoring; the game does not auto-finish.
func Pass(s *game.Session, color string) error {
	if s.Status != statuses.StatusActive {
		return apperrors.ErrGameNotActive
	}
	if stoneOf(color) == board.Empty || color != s.ToMove {
		return apperrors.ErrWrongTurn
	}

	s.MoveHistory = sgf.AppendMove(s.MoveHistory, sgfLetter(color), "")
	s.ConsecutivePasses++
	s.KoPoint = ""
	if s.ConsecutivePasses >= 2 {
		s.Status = statuses.StatusScoring
	}
	advanceTurn(s)
	return nil
}

// Resign ends the game immediately in favor of the other side. Either color
// may resign out of turn, from active play or from scoring.
func Resign(s *game.Session, color string) error {
	if !s.Live() {
		return apperrors.ErrGameNotActive
	}
	if stoneOf(color) == board.Empty {
		return apperrors.ErrWrongTurn
	}

	s.Winner = opponent(color)
	s.Status = statuses.StatusFinished
	return nil
}

func advanceTurn(s *game.Session) {
	s.ToMove = opponent(s.ToMove)
	s.IsEntityTurn = s.ToMove == s.EntityColor
}
