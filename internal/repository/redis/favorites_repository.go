package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"phoneGuide/business/advisor"
	"phoneGuide/pkg/logger"

	"github.com/redis/go-redis/v9"
)

var _ advisor.FavoritesRepository = (*FavoritesRepository)(nil)

// favoritesKey is the fixed key pattern holding a JSON-encoded array of
// favorite model names per client.
const favoritesKeyPrefix = "phoneguide:favorites:"

type FavoritesRepository struct {
	client *redis.Client
}

func NewFavoritesRepository(client *redis.Client) *FavoritesRepository {
	return &FavoritesRepository{
		client: client,
	}
}

// Load reads the favorites set for a client. A missing key or a corrupt
// payload degrades to an empty set; the failure is logged, never surfaced.
func (r *FavoritesRepository) Load(ctx context.Context, clientID string) ([]string, error) {
	key := favoritesKeyPrefix + clientID

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to get favorites from Redis: %w", err)
	}

	var favorites []string
	if err := json.Unmarshal([]byte(val), &favorites); err != nil {
		logger.Error("Failed to decode stored favorites, starting empty", "client_id", clientID, "error", err)
		return []string{}, nil
	}

	return favorites, nil
}

// Save rewrites the whole favorites set. Called on every toggle.
func (r *FavoritesRepository) Save(ctx context.Context, clientID string, favorites []string) error {
	key := favoritesKeyPrefix + clientID

	jsonData, err := json.Marshal(favorites)
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}

	if err := r.client.Set(ctx, key, jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to store favorites in Redis: %w", err)
	}

	return nil
}
