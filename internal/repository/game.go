package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"goban/internal/bootstrap"
	"goban/internal/domain/game"
	apperrors "goban/internal/errors"
	"goban/internal/statuses"
)

const gamesCollection = "games"

type GameRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewGameRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *GameRepository {
	return &GameRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

func (g *GameRepository) GenerateGameID(ctx context.Context) string {
	return uuid.New().String()
}

func (g *GameRepository) PutGame(ctx context.Context, s *game.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := g.mongo.Collection(gamesCollection).InsertOne(ctx, s)
	if err != nil {
		g.log.Errorf("failed to insert game %s: %v", s.ID, err)
		return apperrors.ErrCreateGameFailed
	}
	return nil
}

func (g *GameRepository) UpdateGame(ctx context.Context, s *game.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": s.ID}
	res, err := g.mongo.Collection(gamesCollection).ReplaceOne(ctx, filter, s)
	if err != nil {
		g.log.Errorf("failed to update game %s: %v", s.ID, err)
		return apperrors.ErrInternal
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrGameNotFound
	}
	return nil
}

func (g *GameRepository) GetGameByID(ctx context.Context, id string) (*game.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s game.Session
	err := g.mongo.Collection(gamesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrGameNotFound
	} else if err != nil {
		g.log.Errorf("failed to fetch game %s: %v", id, err)
		return nil, apperrors.ErrInternal
	}
	return &s, nil
}

func (g *GameRepository) ListGames(ctx context.Context, conversationID string, status string) ([]*game.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if conversationID != "" {
		filter["conversation_id"] = conversationID
	}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := g.mongo.Collection(gamesCollection).Find(ctx, filter)
	if err != nil {
		g.log.Errorf("failed to list games: %v", err)
		return nil, apperrors.ErrInternal
	}
	defer cursor.Close(ctx)

	var sessions []*game.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		g.log.Errorf("failed to decode games: %v", err)
		return nil, apperrors.ErrInternal
	}
	return sessions, nil
}

// GetActiveGameByConversation finds the single live (active or scoring)
// game of a conversation.
func (g *GameRepository) GetActiveGameByConversation(ctx context.Context, conversationID string) (*game.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"conversation_id": conversationID,
		"status": bson.M{
			"$in": []string{statuses.StatusActive, statuses.StatusScoring},
		},
	}

	var s game.Session
	err := g.mongo.Collection(gamesCollection).FindOne(ctx, filter).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrGameNotFound
	} else if err != nil {
		g.log.Errorf("failed to fetch active game for conversation %s: %v", conversationID, err)
		return nil, apperrors.ErrInternal
	}
	return &s, nil
}

func (g *GameRepository) DeleteGame(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := g.mongo.Collection(gamesCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		g.log.Errorf("failed to delete game %s: %v", id, err)
		return apperrors.ErrInternal
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrGameNotFound
	}
	return nil
}

func sgfKey(gameID string) string {
	return "sgf:" + gameID
}

func (g *GameRepository) SaveSGF(ctx context.Context, gameID string, sgfText string) error {
	return g.redis.Set(ctx, sgfKey(gameID), sgfText, 0).Err()
}

func (g *GameRepository) LoadSGF(ctx context.Context, gameID string) (string, error) {
	return g.redis.Get(ctx, sgfKey(gameID)).Result()
}

func (g *GameRepository) DeleteSGF(ctx context.Context, gameID string) error {
	return g.redis.Del(ctx, sgfKey(gameID)).Err()
}
