package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a session.
var ErrSnapshotNotFound = errors.New("session snapshot not found")

// Snapshot is the durable form of a session. Password material never
// appears: the state's secret fields are excluded from serialization.
type Snapshot struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository persists session snapshots so onboarding survives restarts.
type Repository interface {
	Save(ctx context.Context, snap Snapshot) error
	Find(ctx context.Context, id string) (Snapshot, error)
	Delete(ctx context.Context, id string) error
}

const (
	sessionPrefix     = "onboarding:session:v1:"
	defaultSessionTTL = 24 * time.Hour
)

// RedisRepository implements Repository on Redis with a rolling TTL.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository builds a Redis-backed snapshot repository. ttl <= 0
// selects the default of 24 hours.
func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisRepository{client: client, ttl: ttl}
}

func (r *RedisRepository) Save(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, sessionPrefix+snap.ID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *RedisRepository) Find(ctx context.Context, id string) (Snapshot, error) {
	payload, err := r.client.Get(ctx, sessionPrefix+id).Result()
	if err == redis.Nil {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("find snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
