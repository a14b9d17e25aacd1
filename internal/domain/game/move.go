package game

// @name CreateGameRequest
type CreateGameRequest struct {
	ConversationID string   `json:"conversation_id"`
	BoardSize      int      `json:"board_size"`
	Komi           *float64 `json:"komi,omitempty"`
	EntityColor    string   `json:"entity_color"`
	EntityID       string   `json:"entity_id,omitempty"`
}

// @name MoveRequest
type MoveRequest struct {
	GameID     string `json:"game_id"`
	Coordinate string `json:"coordinate"`
}

// @name GameRequest
type GameRequest struct {
	GameID string `json:"game_id"`
	Color  string `json:"color,omitempty"`
}

// @name ScoreRequest
type ScoreRequest struct {
	GameID   string `json:"game_id"`
	Finalize *bool  `json:"finalize,omitempty"`
}

// @name ChatTurnRequest
type ChatTurnRequest struct {
	GameID string `json:"game_id"`
	Text   string `json:"text,omitempty"`
}

// MoveResponse reports a move attempt. On failure Game carries the unchanged
// snapshot.
type MoveResponse struct {
	Success bool     `json:"success"`
	Game    *Session `json:"game,omitempty"`
	Error   string   `json:"error,omitempty"`
}
