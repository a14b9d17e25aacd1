package game

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"goban/internal/adapters"
	"goban/internal/bootstrap"
	"goban/internal/domain/game"
	"goban/internal/domain/score"
	apperrors "goban/internal/errors"
	"goban/internal/httpresponse"
	repo "goban/internal/repository"
	gameuc "goban/internal/usecase/game"
	"goban/internal/utils"
)

type GameHandler struct {
	cfg    bootstrap.Config
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase

	watchersMu sync.Mutex
	watchers   map[string][]*websocket.Conn
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewGameHandler(cfg bootstrap.Config, log *zap.SugaredLogger, mongoAdapter *adapters.AdapterMongo, redisAdapter *adapters.AdapterRedis, llmAdapter *adapters.LlmAdapter) *GameHandler {
	var llm gameuc.LlmStore
	if llmAdapter != nil {
		llm = repo.NewLlmRepository(llmAdapter, log)
	}
	store := repo.NewGameRepository(cfg, log, redisAdapter.GetClient(), mongoAdapter.Database)
	return newGameHandler(cfg, log, gameuc.NewGameUseCase(store, llm, log))
}

func newGameHandler(cfg bootstrap.Config, log *zap.SugaredLogger, uc *gameuc.GameUseCase) *GameHandler {
	return &GameHandler{
		cfg:      cfg,
		log:      log,
		gameUC:   uc,
		watchers: make(map[string][]*websocket.Conn),
	}
}

func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	var req game.CreateGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Errorf("new game decode error: %v", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := g.gameUC.CreateGame(r.Context(), req)
	if err != nil {
		g.log.Errorf("create game failed: %v", err)
		httpresponse.WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}

	g.log.Infof("new game %s created for conversation %s", s.ID, s.ConversationID)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, s)
}

func (g *GameHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "game_id is required")
		return
	}

	s, err := g.gameUC.GetGameByID(r.Context(), gameID)
	if err != nil {
		httpresponse.WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, s)
}

func (g *GameHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	status := r.URL.Query().Get("status")

	sessions, err := g.gameUC.ListGames(r.Context(), conversationID, status)
	if err != nil {
		httpresponse.WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}
	if sessions == nil {
		sessions = []*game.Session{}
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, sessions)
}

func (g *GameHandler) HandleActiveGame(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	s, err := g.gameUC.GetActiveGameByConversation(r.Context(), conversationID)
	if err != nil {
		httpresponse.WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, s)
}

func (g *GameHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req game.MoveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.GameID == "" || req.Coordinate == "" {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "game_id and coordinate are required")
		return
	}

	s, err := g.gameUC.MakeMove(r.Context(), req.GameID, "", req.Coordinate)
	if err != nil {
		if s == nil {
			httpresponse.WriteErrorResponse(w, statusForError(err), err.Error())
			return
		}
		// Rejected move: report it alongside the unchanged snapshot.
		httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.MoveResponse{
			Success: false,
			Game:    s,
			Error:   err.Error(),
		})
		return
	}

	g.broadcast(req.GameID, s)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.MoveResponse{Success: true, Game: s})
}

func (g *GameHandler) HandlePass(w http.ResponseWriter, r *http.Request) {
	g.handleTurnAction(w, r, g.gameUC.Pass)
}

func (g *GameHandler) HandleResign(w http.ResponseWriter, r *http.Request) {
	g.handleTurnAction(w, r, g.gameUC.Resign)
}

func (g *GameHandler) handleTurnAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, gameID, color string) (*game.Session, error)) {
	var req game.GameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.GameID == "" {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "game_id is required")
		return
	}

	s, err := action(r.Context(), req.GameID, req.Color)
	if err != nil {
		httpresponse.WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}

	g.broadcast(req.GameID, s)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, s)
}

// ScoreResponse pairs the breakdown with the (possibly finalized) snapshot.
type ScoreResponse struct {
	Score score.Score   `json:"score"`
	Game  *game.Session `json:"game"`
}

func (g *GameHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	var req game.ScoreRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.GameID == "" {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "game_id is required")
		return
	}

	finalize := true
	if req.Finalize != nil {
		finalize = *req.Finalize
	}

	s, result, err := g.gameUC.Score(r.Context(), req.GameID, finalize)
	if err != nil {
		httpresponse.WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}

	if finalize {
		g.broadcast(req.GameID, s)
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, ScoreResponse{Score: result, Game: s})
}

func (g *GameHandler) HandleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "game_id is required")
		return
	}

	if err := g.gameUC.DeleteGame(r.Context(), gameID); err != nil {
		httpresponse.WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}

	g.closeWatchers(gameID)
	g.log.Infof("game %s deleted", gameID)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "game deleted")
}

// ContextBlockResponse carries the textual game-state block for injection
// into a chat turn. Empty when the game is not active.
type ContextBlockResponse struct {
	ContextBlock string `json:"context_block,omitempty"`
	Active       bool   `json:"active"`
}

func (g *GameHandler) HandleContextBlock(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "game_id is required")
		return
	}

	s, err := g.gameUC.GetGameByID(r.Context(), gameID)
	if err != nil {
		httpresponse.WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}

	block, ok := gameuc.BuildContextBlock(s)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, ContextBlockResponse{ContextBlock: block, Active: ok})
}

func (g *GameHandler) HandleChatTurn(w http.ResponseWriter, r *http.Request) {
	var req game.ChatTurnRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.GameID == "" {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "game_id is required")
		return
	}

	result, err := g.gameUC.ChatTurn(r.Context(), req.GameID, req.Text)
	if err != nil {
		g.log.Errorf("chat turn failed for game %s: %v", req.GameID, err)
		httpresponse.WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}

	if result.Applied {
		g.broadcast(req.GameID, result.Game)
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, result)
}

// HandleWatchGame upgrades to a websocket and streams a full snapshot after
// every committed mutation. The first message is the current state.
func (g *GameHandler) HandleWatchGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "game_id is required")
		return
	}

	s, err := g.gameUC.GetGameByID(r.Context(), gameID)
	if err != nil {
		httpresponse.WriteErrorResponse(w, statusForError(err), err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Errorf("websocket upgrade error: %v", err)
		return
	}

	// gorilla allows at most one writer per connection. Every write to a
	// registered conn happens under watchersMu, the snapshot included.
	g.watchersMu.Lock()
	if err := conn.WriteJSON(s); err != nil {
		g.watchersMu.Unlock()
		conn.Close()
		return
	}
	g.watchers[gameID] = append(g.watchers[gameID], conn)
	g.watchersMu.Unlock()

	// Reader loop only detects disconnects; watchers never send.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				g.removeWatcher(gameID, conn)
				conn.Close()
				return
			}
		}
	}()
}

func (g *GameHandler) broadcast(gameID string, s *game.Session) {
	g.watchersMu.Lock()
	defer g.watchersMu.Unlock()

	alive := g.watchers[gameID][:0]
	for _, conn := range g.watchers[gameID] {
		if err := conn.WriteJSON(s); err != nil {
			conn.Close()
			continue
		}
		alive = append(alive, conn)
	}
	if len(alive) == 0 {
		delete(g.watchers, gameID)
	} else {
		g.watchers[gameID] = alive
	}
}

func (g *GameHandler) removeWatcher(gameID string, conn *websocket.Conn) {
	g.watchersMu.Lock()
	defer g.watchersMu.Unlock()

	conns := g.watchers[gameID]
	for i, c := range conns {
		if c == conn {
			g.watchers[gameID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(g.watchers[gameID]) == 0 {
		delete(g.watchers, gameID)
	}
}

func (g *GameHandler) closeWatchers(gameID string) {
	g.watchersMu.Lock()
	defer g.watchersMu.Unlock()

	for _, conn := range g.watchers[gameID] {
		conn.Close()
	}
	delete(g.watchers, gameID)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrGameAlreadyActive):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInternal):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
