package repository

import (
	"context"
	"fmt"
	"time"

	"studio-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository is the ledger of processed webhook events and notified
// orders.
type EventRepository interface {
	// Claim records eventID and reports whether this caller was first.
	Claim(ctx context.Context, eventID, eventType string) (bool, error)
}

type eventRepoImpl struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepoImpl{db: db}
}

func (r *eventRepoImpl) Claim(ctx context.Context, eventID, eventType string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ProcessedEvent{
			EventID:     eventID,
			EventType:   eventType,
			ProcessedAt: time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("claim event %s: %w", eventID, result.Error)
	}
	return result.RowsAffected == 1, nil
}
