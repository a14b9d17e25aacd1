package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"goban/internal/adapters"
	"goban/internal/bootstrap"
	gameDelivery "goban/internal/delivery/game"
	ownMiddleware "goban/internal/middleware"
)

type mainDeliveryHandler struct {
	game *gameDelivery.GameHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, *cfg)
	defer databaseAdapters.mongoAdapter.Close(ctx)
	defer databaseAdapters.redisAdapter.Close(ctx)

	var llmAdapter *adapters.LlmAdapter
	if cfg.MistralApiKey != "" {
		llmAdapter = adapters.NewLlmAdapter(cfg.MistralApiKey, cfg.MistralModel)
	} else {
		logger.Warn("MISTRAL_API_KEY not set, entity move generation disabled")
	}

	r := chi.NewRouter()
	handlers := &mainDeliveryHandler{
		game: gameDelivery.NewGameHandler(*cfg, logger, databaseAdapters.mongoAdapter, databaseAdapters.redisAdapter, llmAdapter),
	}
	handlers.Router(r, cfg.IsLocalCors)

	port := ":" + cfg.ServerPort
	logger.Infof("Server is running on port %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)

	r.Post("/newGame", h.game.HandleNewGame)
	r.Get("/getGameById", h.game.HandleGetGame)
	r.Get("/listGames", h.game.HandleListGames)
	r.Get("/getActiveGame", h.game.HandleActiveGame)
	r.Post("/makeMove", h.game.HandleMove)
	r.Post("/pass", h.game.HandlePass)
	r.Post("/resign", h.game.HandleResign)
	r.Post("/score", h.game.HandleScore)
	r.Delete("/deleteGame", h.game.HandleDeleteGame)
	r.Get("/contextBlock", h.game.HandleContextBlock)
	r.Post("/chatTurn", h.game.HandleChatTurn)
	r.Get("/watchGame", h.game.HandleWatchGame)
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(&cfg)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize MongoDB", zap.Error(err))
	}

	redisAdapter := adapters.NewAdapterRedis(&cfg)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	log.Info("Database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Infof("Received signal %s, shutting down", sig)
	cancelFunc()

	time.Sleep(time.Second)
	os.Exit(0)
}
