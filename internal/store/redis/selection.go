package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Store handles Redis operations for persisted resource selections.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// SaveSelection replaces a course module's selection with the given about
// URIs. The write is full-replace, never incremental: the old list is
// dropped and the new one written in a single pipeline. The list keeps
// the caller's order, which is the order the player walks at playback.
func (s *Store) SaveSelection(ctx context.Context, cmid int, abouts []string) error {
	key := SelectionKey(cmid)

	cleaned := make([]interface{}, 0, len(abouts))
	for _, about := range abouts {
		about = strings.TrimSpace(about)
		if about == "" {
			return fmt.Errorf("invalid resource URI in selection for cmid %d", cmid)
		}
		cleaned = append(cleaned, about)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(cleaned) > 0 {
		pipe.RPush(ctx, key, cleaned...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}

	return nil
}

// GetSelection retrieves the persisted selection for a course module, in
// the order it was saved. An unknown cmid yields an empty list, not an
// error.
func (s *Store) GetSelection(ctx context.Context, cmid int) ([]string, error) {
	abouts, err := s.client.LRange(ctx, SelectionKey(cmid), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get selection: %w", err)
	}
	return abouts, nil
}

// DeleteSelection removes a course module's selection entirely.
func (s *Store) DeleteSelection(ctx context.Context, cmid int) error {
	if err := s.client.Del(ctx, SelectionKey(cmid)).Err(); err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}
	return nil
}
