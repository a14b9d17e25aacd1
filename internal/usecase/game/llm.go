package game

import (
	"context"
	"fmt"

	"goban/internal/domain/game"
	apperrors "goban/internal/errors"
)

type LlmStore interface {
	SendRequestToLlm(request string) (response string, err error)
}

// GenerateEntityReply asks the language model for the entity's next chat
// message, priming it with the current game-state block. The reply is plain
// text; callers extract the move through ParseMoveDirective so that the
// model's output passes the same legality checks as a human move.
func (u *GameUseCase) GenerateEntityReply(ctx context.Context, s *game.Session) (string, error) {
	if u.llm == nil {
		return "", fmt.Errorf("%w: no language model configured", apperrors.ErrInternal)
	}
	block, ok := BuildContextBlock(s)
	if !ok {
		return "", apperrors.ErrGameNotActive
	}
	if !s.IsEntityTurn {
		return "", apperrors.ErrWrongTurn
	}

	prompt := block + "\nRecent moves: " + historyOrNone(s.MoveHistory) + "\n"
	reply, err := u.llm.SendRequestToLlm(prompt)
	if err != nil {
		return "", err
	}
	return reply, nil
}

func historyOrNone(history string) string {
	if history == "" {
		return "(none yet)"
	}
	return history
}
