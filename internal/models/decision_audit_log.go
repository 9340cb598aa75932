package models

import (
	"time"

	"github.com/google/uuid"
)

type DecisionAuditLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID   uuid.UUID `gorm:"index"`
	DecisionID  uuid.UUID `gorm:"index"`
	EntityType  string
	Action      string // accepted | rejected | overridden | bulk_accepted | ambiguous_registry
	PreviousID  string
	NewID       string
	PerformedBy string
	Reason      string
	CreatedAt   time.Time
}
