package models

import "time"

// ReferenceEntity is one cached registry row. The matching core only reads
// this table; it is written exclusively by the registry refresher.
type ReferenceEntity struct {
	EITIID     string `gorm:"column:eiti_id;primaryKey"`
	EntityType string `gorm:"primaryKey;index"` // company | government
	Name       string `gorm:"index"`
	Country    string `gorm:"index"`
	FetchedAt  time.Time
}
