package redisstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store keeps the catalog as one JSON string under a fixed redis key, with no expiry.
type Store struct {
	client *redis.Client
	key    string
	log    *zap.Logger
}

func New(client *redis.Client, key string, log *zap.Logger) *Store {
	return &Store{
		client: client,
		key:    key,
		log:    log.Named("catalog.cache.redis"),
	}
}

func (s *Store) Load(ctx context.Context) ([]domain.Product, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.Product{}, nil
		}
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, &domain.CorruptCacheError{Key: s.key, Err: err}
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *Store) ReplaceAll(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return err
	}

	s.log.Debug("cache persisted", zap.Int("products", len(products)))
	return nil
}
