package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one key/value row of the catalog_cache table created by the
// 0001_catalog_cache migration. The catalog uses a single row.
type Entry struct {
	Key       string         `gorm:"column:cache_key;primaryKey;size:120"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "catalog_cache" }

type Store struct {
	db  *gorm.DB
	key string
	log *zap.Logger
}

func New(db *gorm.DB, key string, log *zap.Logger) *Store {
	return &Store{
		db:  db,
		key: key,
		log: log.Named("catalog.cache.sql"),
	}
}

func (s *Store) Load(ctx context.Context) ([]domain.Product, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where("cache_key = ?", s.key).Take(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []domain.Product{}, nil
		}
		return nil, err
	}

	var products []domain.Product
	if err := json.Unmarshal(e.Value, &products); err != nil {
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

	e := Entry{Key: s.key, Value: datatypes.JSON(raw), UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return err
	}

	s.log.Debug("cache persisted", zap.Int("products", len(products)))
	return nil
}
