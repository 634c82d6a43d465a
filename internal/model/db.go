package model

import "time"

// CartRecord is the persisted cart of one browsing session.
type CartRecord struct {
	SessionKey string    `gorm:"primaryKey;size:64;not null"`
	Items      []byte    `gorm:"type:blob;not null"` // JSON encoded []CartLineItem
	ExpiresAt  time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type ProcessedEvent struct {
	EventID     string `gorm:"primaryKey;size:255;not null"` // stripe event id or order:<session id>
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
