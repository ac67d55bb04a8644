package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-athlete-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Fixed key prefixes for the two named blobs: the serialized profile snapshot
// and the opaque auth token.
const (
	snapshotKeyPrefix = "session:snapshot:"
	tokenKeyPrefix    = "session:token:"
)

// store is the Redis-backed snapshot store. Values are whole JSON blobs; no
// partial updates.
type store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore builds the snapshot store. A zero ttl keeps blobs until sign-out
// clears them. A nil client yields a store that persists nothing, so sessions
// still work without Redis, just without restore-from-snapshot.
func NewStore(client *redis.Client, ttl time.Duration) domain.SnapshotStore {
	if client == nil {
		return noopStore{}
	}
	return &store{client: client, ttl: ttl}
}

type noopStore struct{}

func (noopStore) SaveSnapshot(context.Context, string, domain.Snapshot) error { return nil }
func (noopStore) LoadSnapshot(context.Context, string) (*domain.Snapshot, error) {
	return nil, nil
}
func (noopStore) SaveAuthToken(context.Context, string, string) error   { return nil }
func (noopStore) LoadAuthToken(context.Context, string) (string, error) { return "", nil }
func (noopStore) Clear(context.Context, string) error                   { return nil }

func (s *store) SaveSnapshot(ctx context.Context, userID string, snap domain.Snapshot) error {
	snap.SchemaVersion = domain.SnapshotSchemaVersion
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.client.Set(ctx, snapshotKeyPrefix+userID, data, s.ttl).Err()
}

// LoadSnapshot returns (nil, nil) when no snapshot exists or when the stored
// blob carries an unknown schema version: stale snapshots are ignored, not
// errors.
func (s *store) LoadSnapshot(ctx context.Context, userID string) (*domain.Snapshot, error) {
	data, err := s.client.Get(ctx, snapshotKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil
	}
	if snap.SchemaVersion != domain.SnapshotSchemaVersion {
		return nil, nil
	}
	return &snap, nil
}

func (s *store) SaveAuthToken(ctx context.Context, userID, token string) error {
	return s.client.Set(ctx, tokenKeyPrefix+userID, token, s.ttl).Err()
}

func (s *store) LoadAuthToken(ctx context.Context, userID string) (string, error) {
	token, err := s.client.Get(ctx, tokenKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// Clear removes both blobs. Called on sign-out and on expired sessions.
func (s *store) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, snapshotKeyPrefix+userID, tokenKeyPrefix+userID).Err()
}
