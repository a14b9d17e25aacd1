package game

import (
	"time"

	"goban/internal/domain/board"
	"goban/internal/statuses"
)

// Session is one Go game bound to a chat conversation. The board grid is the
// canonical state; the move history is a derived, append-only audit log.
type Session struct {
	ID                string          `json:"id" bson:"_id"`
	ConversationID    string          `json:"conversation_id" bson:"conversation_id"`
	BoardSize         int             `json:"board_size" bson:"board_size"`
	Komi              float64         `json:"komi" bson:"komi"`
	EntityColor       string          `json:"entity_color" bson:"entity_color"`
	EntityID          string          `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	BoardState        [][]board.Stone `json:"board_state" bson:"board_state"`
	ToMove            string          `json:"to_move" bson:"to_move"`
	KoPoint           string          `json:"ko_point,omitempty" bson:"ko_point,omitempty"`
	MoveHistory       string          `json:"move_history" bson:"move_history"`
	ConsecutivePasses int             `json:"consecutive_passes" bson:"consecutive_passes"`
	Captures          Captures        `json:"captures" bson:"captures"`
	Status            string          `json:"status" bson:"status"`
	IsEntityTurn      bool            `json:"is_entity_turn" bson:"is_entity_turn"`
	Winner            string          `json:"winner,omitempty" bson:"winner,omitempty"`
	BlackScore        *float64        `json:"black_score,omitempty" bson:"black_score,omitempty"`
	WhiteScore        *float64        `json:"white_score,omitempty" bson:"white_score,omitempty"`
	CreatedAt         time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" bson:"updated_at"`
}

// Captures counts stones taken by each side.
type Captures struct {
	Black int `json:"black" bson:"black"`
	White int `json:"white" bson:"white"`
}

// Board wraps the session grid as a board.Board. The grid is shared;
// mutations must go through a clone.
func (s *Session) Board() board.Board {
	return board.FromGrid(s.BoardState)
}

func (s *Session) SetBoard(b board.Board) {
	s.BoardState = b.Grid
}

// Live reports whether the session still accepts game operations.
func (s *Session) Live() bool {
	return s.Status == statuses.StatusActive || s.Status == statuses.StatusScoring
}

// Clone deep-copies the session so a mutation can be applied all-or-nothing
// and published as a fresh snapshot.
func (s *Session) Clone() *Session {
	out := *s
	out.BoardState = s.Board().Clone().Grid
	if s.BlackScore != nil {
		v := *s.BlackScore
		out.BlackScore = &v
	}
	if s.WhiteScore != nil {
		v := *s.WhiteScore
		out.WhiteScore = &v
	}
	return &out
}
