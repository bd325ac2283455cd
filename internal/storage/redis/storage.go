package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okeefe/typeduel/internal/model"
	"github.com/okeefe/typeduel/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, roomKey(room.ID), data, s.cfg.RoomTTL)
	pipe.SAdd(ctx, roomIndexKey(), string(room.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, roomKey(id))
	pipe.SRem(ctx, roomIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	count, err := s.client.Exists(ctx, roomKey(id)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Storage) ListRoomIDs(ctx context.Context) ([]model.RoomID, error) {
	members, err := s.client.SMembers(ctx, roomIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]model.RoomID, 0, len(members))
	for _, m := range members {
		id := model.RoomID(m)
		// The index can hold ids whose room key expired; drop them lazily
		exists, err := s.RoomExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			_ = s.client.SRem(ctx, roomIndexKey(), m).Err()
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Passage operations

func (s *Storage) SavePassages(ctx context.Context, passages []string) error {
	data, err := json.Marshal(passages)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, passagesKey(), data, 0).Err()
}

func (s *Storage) GetPassages(ctx context.Context) ([]string, error) {
	data, err := s.client.Get(ctx, passagesKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var passages []string
	if err := json.Unmarshal(data, &passages); err != nil {
		return nil, err
	}
	return passages, nil
}
