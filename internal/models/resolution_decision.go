package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ResolutionDecision struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID     uuid.UUID `gorm:"index"`
	RecordID      uuid.UUID `gorm:"index"`
	EntityType    string    `gorm:"index"` // company | government
	State         string    `gorm:"index"` // exact | proposed | accepted | rejected | minted
	EITIID        string    `gorm:"column:eiti_id"`
	SuggestedID   string    `gorm:"column:suggested_id"`
	SuggestedName string
	Score         float64
	MatchDetails  datatypes.JSON
	DecidedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
