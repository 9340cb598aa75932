package repository

import (
	"eiti-matching-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// BySession returns a session's records in upload order.
func (r *RecordRepository) BySession(sessionID uuid.UUID) ([]models.UploadedRecord, error) {
	var records []models.UploadedRecord
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&records).Error
	return records, err
}

// GetByID fetches a single uploaded record.
func (r *RecordRepository) GetByID(id uuid.UUID) (*models.UploadedRecord, error) {
	var record models.UploadedRecord
	if err := r.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
