package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"goban/internal/domain/board"
	"goban/internal/domain/game"
	"goban/internal/domain/rules"
	"goban/internal/domain/score"
	"goban/internal/domain/sgf"
	apperrors "goban/internal/errors"
	"goban/internal/statuses"
)

const DefaultKomi = 6.5

type GameStore interface {
	GenerateGameID(ctx context.Context) string
	PutGame(ctx context.Context, s *game.Session) error
	UpdateGame(ctx context.Context, s *game.Session) error
	GetGameByID(ctx context.Context, id string) (*game.Session, error)
	ListGames(ctx context.Context, conversationID string, status string) ([]*game.Session, error)
	GetActiveGameByConversation(ctx context.Context, conversationID string) (*game.Session, error)
	DeleteGame(ctx context.Context, id string) error

	SaveSGF(ctx context.Context, gameID string, sgfText string) error
	LoadSGF(ctx context.Context, gameID string) (string, error)
	DeleteSGF(ctx context.Context, gameID string) error
}

type GameUseCase struct {
	store GameStore
	llm   LlmStore
	log   *zap.SugaredLogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGameUseCase(store GameStore, llm LlmStore, log *zap.SugaredLogger) *GameUseCase {
	return &GameUseCase{
		store: store,
		llm:   llm,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor serializes mutations per game id. Snapshot reads stay lock-free:
// every committed mutation replaces the whole document, so readers only ever
// see a fully applied state.
func (u *GameUseCase) lockFor(gameID string) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()
	l, ok := u.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		u.locks[gameID] = l
	}
	return l
}

func (u *GameUseCase) forgetLock(gameID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.locks, gameID)
}

// CreateGame starts a new session for a conversation. A conversation may
// hold at most one live game: creation is rejected, not silently replaced,
// while an active or scoring game exists.
func (u *GameUseCase) CreateGame(ctx context.Context, req game.CreateGameRequest) (*game.Session, error) {
	if req.BoardSize != 9 && req.BoardSize != 13 && req.BoardSize != 19 {
		return nil, fmt.Errorf("%w: board size must be 9, 13 or 19", apperrors.ErrCreateGameFailed)
	}
	if req.EntityColor != statuses.ColorBlack && req.EntityColor != statuses.ColorWhite {
		return nil, fmt.Errorf("%w: entity color must be black or white", apperrors.ErrCreateGameFailed)
	}
	if req.ConversationID == "" {
		return nil, fmt.Errorf("%w: conversation_id is required", apperrors.ErrCreateGameFailed)
	}

	if _, err := u.store.GetActiveGameByConversation(ctx, req.ConversationID); err == nil {
		return nil, apperrors.ErrGameAlreadyActive
	} else if !errors.Is(err, apperrors.ErrGameNotFound) {
		return nil, err
	}

	komi := DefaultKomi
	if req.Komi != nil {
		komi = *req.Komi
	}

	now := time.Now()
	s := &game.Session{
		ID:             u.store.GenerateGameID(ctx),
		ConversationID: req.ConversationID,
		BoardSize:      req.BoardSize,
		Komi:           komi,
		EntityColor:    req.EntityColor,
		EntityID:       req.EntityID,
		BoardState:     board.New(req.BoardSize).Grid,
		ToMove:         statuses.ColorBlack,
		Status:         statuses.StatusActive,
		IsEntityTurn:   req.EntityColor == statuses.ColorBlack,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := u.store.PutGame(ctx, s); err != nil {
		return nil, fmt.Errorf("%w: storing new game: %v", apperrors.ErrInternal, err)
	}

	u.seedRecord(ctx, s)
	return s, nil
}

func (u *GameUseCase) GetGameByID(ctx context.Context, id string) (*game.Session, error) {
	return u.store.GetGameByID(ctx, id)
}

func (u *GameUseCase) ListGames(ctx context.Context, conversationID, status string) ([]*game.Session, error) {
	return u.store.ListGames(ctx, conversationID, status)
}

func (u *GameUseCase) GetActiveGameByConversation(ctx context.Context, conversationID string) (*game.Session, error) {
	return u.store.GetActiveGameByConversation(ctx, conversationID)
}

// MakeMove plays a stone for color at the display coordinate. An empty color
// plays for the side to move. On rejection the stored session is returned
// unchanged alongside the error.
func (u *GameUseCase) MakeMove(ctx context.Context, gameID, color, coordinate string) (*game.Session, error) {
	l := u.lockFor(gameID)
	l.Lock()
	defer l.Unlock()

	s, err := u.store.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if color == "" {
		color = s.ToMove
	}

	c, err := board.ParseCoord(coordinate, s.BoardSize)
	if err != nil {
		return s, fmt.Errorf("%w: %v", apperrors.ErrOutOfBounds, err)
	}

	work := s.Clone()
	if err := rules.AttemptMove(work, color, c); err != nil {
		return s, err
	}
	work.UpdatedAt = time.Now()

	if err := u.store.UpdateGame(ctx, work); err != nil {
		return s, err
	}
	u.mirrorMove(ctx, work, color, c.SGF())
	return work, nil
}

func (u *GameUseCase) Pass(ctx context.Context, gameID, color string) (*game.Session, error) {
	l := u.lockFor(gameID)
	l.Lock()
	defer l.Unlock()

	s, err := u.store.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if color == "" {
		color = s.ToMove
	}

	work := s.Clone()
	if err := rules.Pass(work, color); err != nil {
		return s, err
	}
	work.UpdatedAt = time.Now()

	if err := u.store.UpdateGame(ctx, work); err != nil {
		return s, err
	}
	u.mirrorMove(ctx, work, color, "")
	return work, nil
}

func (u *GameUseCase) Resign(ctx context.Context, gameID, color string) (*game.Session, error) {
	l := u.lockFor(gameID)
	l.Lock()
	defer l.Unlock()

	s, err := u.store.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if color == "" {
		color = s.ToMove
	}

	work := s.Clone()
	if err := rules.Resign(work, color); err != nil {
		return s, err
	}
	work.UpdatedAt = time.Now()

	if err := u.store.UpdateGame(ctx, work); err != nil {
		return s, err
	}
	return work, nil
}

// Score computes the area score. With finalize the game must be in scoring
// and transitions to finished with the result recorded; without it the call
// is a pure projection usable at any status for live estimates.
func (u *GameUseCase) Score(ctx context.Context, gameID string, finalize bool) (*game.Session, score.Score, error) {
	l := u.lockFor(gameID)
	l.Lock()
	defer l.Unlock()

	s, err := u.store.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, score.Score{}, err
	}

	result := score.Compute(s.Board(), s.Komi)
	if !finalize {
		return s, result, nil
	}
	if s.Status != statuses.StatusScoring {
		return s, result, apperrors.ErrGameNotActive
	}

	work := s.Clone()
	work.BlackScore = &result.Black
	work.WhiteScore = &result.White
	if result.Winner != statuses.ResultDraw {
		work.Winner = result.Winner
	}
	work.Status = statuses.StatusFinished
	work.UpdatedAt = time.Now()

	if err := u.store.UpdateGame(ctx, work); err != nil {
		return s, result, err
	}
	return work, result, nil
}

func (u *GameUseCase) DeleteGame(ctx context.Context, gameID string) error {
	l := u.lockFor(gameID)
	l.Lock()
	defer l.Unlock()

	if err := u.store.DeleteGame(ctx, gameID); err != nil {
		return err
	}
	if err := u.store.DeleteSGF(ctx, gameID); err != nil {
		u.log.Warnf("failed to drop sgf mirror for game %s: %v", gameID, err)
	}
	u.forgetLock(gameID)
	return nil
}

// seedRecord writes the initial SGF record for a new game. The mirror is a
// derived artifact: failures are logged, never fatal.
func (u *GameUseCase) seedRecord(ctx context.Context, s *game.Session) {
	black, white := "human", "entity"
	if s.EntityColor == statuses.ColorBlack {
		black, white = "entity", "human"
	}
	record := sgf.NewRecord(s.BoardSize, s.Komi, black, white, s.CreatedAt.Format("2006-01-02"))
	if err := u.store.SaveSGF(ctx, s.ID, sgf.Serialize(&record)); err != nil {
		u.log.Warnf("failed to seed sgf mirror for game %s: %v", s.ID, err)
	}
}

func (u *GameUseCase) mirrorMove(ctx context.Context, s *game.Session, color, coords string) {
	letter := "W"
	if color == statuses.ColorBlack {
		letter = "B"
	}
	record, err := u.store.LoadSGF(ctx, s.ID)
	if err != nil {
		u.log.Warnf("failed to load sgf mirror for game %s: %v", s.ID, err)
		return
	}
	if err := u.store.SaveSGF(ctx, s.ID, sgf.AppendMoveToRecord(record, letter, coords)); err != nil {
		u.log.Warnf("failed to update sgf mirror for game %s: %v", s.ID, err)
	}
}
