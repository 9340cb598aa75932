package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MatchingSession struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Filename       string
	Country        string
	Columns        datatypes.JSON // original upload header, in order
	TotalRecords   int
	ProcessedCount int
	Status         string `gorm:"index"` // processing | review | completed | failed
	FailureReason  string
	StartedAt      time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
}
