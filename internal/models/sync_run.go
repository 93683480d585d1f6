package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncRun is a write-only audit row recorded per processed invocation.
// The pipeline itself never reads it back.
type SyncRun struct {
	ID          string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string    `json:"tenant_id" gorm:"not null"`
	EventType   string    `json:"event_type" gorm:"not null"`
	Status      RunStatus `json:"status" gorm:"default:SUCCESS"`
	ItemCount   int       `json:"item_count"`
	MarketCount int       `json:"market_count"`
	Message     string    `json:"message"`
	Error       *string   `json:"error"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RunStatus string

const (
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
	RunStatusNoMatch RunStatus = "NO_MATCH"
)

func (r *SyncRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
