package repository

import (
	"strings"
	"time"

	"eiti-matching-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReferenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// Expose DB if needed
func (r *ReferenceRepository) DB() *gorm.DB {
	return r.db
}

// ByCountry returns the cached registry snapshot for one entity type and
// country. Ordered by eiti_id so the matcher iterates the pool in a fixed,
// documented order (tie breaks depend on it).
func (r *ReferenceRepository) ByCountry(entityType, country string) ([]models.ReferenceEntity, error) {
	var refs []models.ReferenceEntity
	err := r.db.
		Where("entity_type = ? AND UPPER(country) = ?", entityType, strings.ToUpper(country)).
		Order("eiti_id ASC").
		Find(&refs).Error
	return refs, err
}

// Search is used by the review UI to let an operator pick an arbitrary
// reference, not just the suggested one.
func (r *ReferenceRepository) Search(entityType, country, query string, limit int) ([]models.ReferenceEntity, error) {
	var refs []models.ReferenceEntity
	dbQuery := r.db.Model(&models.ReferenceEntity{}).Where("entity_type = ?", entityType)

	if country != "" {
		dbQuery = dbQuery.Where("UPPER(country) = ?", strings.ToUpper(country))
	}
	if query != "" {
		dbQuery = dbQuery.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	if limit > 0 {
		dbQuery = dbQuery.Limit(limit)
	}

	err := dbQuery.Order("eiti_id ASC").Find(&refs).Error
	return refs, err
}

// GetByID fetches a single reference entity.
func (r *ReferenceRepository) GetByID(entityType, eitiID string) (*models.ReferenceEntity, error) {
	var ref models.ReferenceEntity
	err := r.db.First(&ref, "entity_type = ? AND eiti_id = ?", entityType, eitiID).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// UpsertSnapshot stores freshly fetched registry rows, ignoring identifiers
// already cached.
func (r *ReferenceRepository) UpsertSnapshot(refs []models.ReferenceEntity) (int64, error) {
	if len(refs) == 0 {
		return 0, nil
	}
	now := time.Now()
	for i := range refs {
		refs[i].FetchedAt = now
	}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&refs)
	return result.RowsAffected, result.Error
}

// CountByType reports snapshot sizes per entity type.
func (r *ReferenceRepository) CountByType() (map[string]int64, error) {
	type row struct {
		EntityType string
		Count      int64
	}
	var rows []row
	err := r.db.Model(&models.ReferenceEntity{}).
		Select("entity_type, COUNT(*) as count").
		Group("entity_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.EntityType] = r.Count
	}
	return counts, nil
}
