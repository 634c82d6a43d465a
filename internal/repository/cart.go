package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"studio-storefront/internal/cart"
	"studio-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository stores carts in the cart_records table. It satisfies
// cart.Persistence.
type CartRepository interface {
	cart.Persistence
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{db: db}
}

func (r *cartRepoImpl) Load(ctx context.Context, key string) (*cart.Record, error) {
	var row model.CartRecord
	err := r.db.WithContext(ctx).
		Where("session_key = ?", key).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cart.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart record: %w", err)
	}

	rec := &cart.Record{ExpiresAt: row.ExpiresAt}
	if err := json.Unmarshal(row.Items, &rec.Items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	return rec, nil
}

func (r *cartRepoImpl) Save(ctx context.Context, key string, record cart.Record) error {
	items, err := json.Marshal(record.Items)
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}

	row := model.CartRecord{
		SessionKey: key,
		Items:      items,
		ExpiresAt:  record.ExpiresAt,
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"items", "expires_at", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save cart record: %w", err)
	}
	return nil
}

func (r *cartRepoImpl) Delete(ctx context.Context, key string) error {
	err := r.db.WithContext(ctx).
		Where("session_key = ?", key).
		Delete(&model.CartRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete cart record: %w", err)
	}
	return nil
}

// DeleteExpired removes every record whose expiry is before now.
func (r *cartRepoImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.CartRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired carts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
