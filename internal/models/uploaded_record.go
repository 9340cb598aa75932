package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UploadedRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID        uuid.UUID `gorm:"index"`
	Position         int       `gorm:"index"`
	Company          string
	GovernmentEntity string
	Country          string
	Extra            datatypes.JSON // passthrough columns, untouched
	CreatedAt        time.Time
}
