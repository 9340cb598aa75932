package reconciliation

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"eiti-matching-backend/internal/models"
	"eiti-matching-backend/internal/repository"
	"eiti-matching-backend/internal/services/matching"
	"eiti-matching-backend/internal/services/registry"
	"eiti-matching-backend/internal/services/resolution"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrSessionNotReady is returned when an export is requested before the
// session has been finalized.
var ErrSessionNotReady = errors.New("session not finalized")

type Service struct {
	refRepo       *repository.ReferenceRepository
	recordRepo    *repository.RecordRepository
	db            *gorm.DB
	fetcher       *registry.Fetcher
	progressCache sync.Map // sessionID -> *Progress
}

type Progress struct {
	ProcessedCount int
	Total          int
	Status         string
}

func NewService(
	refRepo *repository.ReferenceRepository,
	recordRepo *repository.RecordRepository,
	fetcher *registry.Fetcher,
) *Service {
	return &Service{
		refRepo:    refRepo,
		recordRepo: recordRepo,
		fetcher:    fetcher,
		db:         refRepo.DB(),
	}
}

// CreateSession creates a new MatchingSession in DB
func (s *Service) CreateSession(filename string) *models.MatchingSession {
	session := &models.MatchingSession{
		ID:        uuid.New(),
		Filename:  filename,
		Status:    "processing",
		StartedAt: time.Now(),
		CreatedAt: time.Now(),
	}

	s.db.Create(session)
	return session
}

func (s *Service) GetSession(sessionID uuid.UUID) (*models.MatchingSession, error) {
	var session models.MatchingSession
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// ProcessUpload parses the uploaded CSV and runs the matching stages for the
// session: normalize, exact join, fuzzy suggestion. Operator decisions come
// later through Accept/Reject; Finalize mints identifiers for the rest.
func (s *Service) ProcessUpload(sessionID uuid.UUID, r io.Reader) {
	header, records, err := ParseUpload(r)
	if err != nil {
		s.failSession(sessionID, err)
		return
	}
	if len(records) == 0 {
		s.failSession(sessionID, errors.New("upload contains no data rows"))
		return
	}

	// the upload carries one country per file; filter the registry by it
	country := records[0].Country
	columnsJSON, _ := json.Marshal(header)
	s.db.Model(&models.MatchingSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"country":       country,
			"columns":       datatypes.JSON(columnsJSON),
			"total_records": len(records),
		})

	stored := s.storeRecords(sessionID, records)

	count := 0
	for _, entity := range matching.EntityTypes {
		pool, err := s.loadRegistry(entity, country)
		if err != nil {
			s.failSession(sessionID, err)
			return
		}
		count = s.matchEntity(sessionID, entity, records, stored, pool, count)
	}

	s.db.Model(&models.MatchingSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"processed_count": len(records),
			"status":          "review",
		})

	s.MarkSessionReadyCache(sessionID, len(records))
	log.Println("session", sessionID, "matched, records:", len(records))
}

func (s *Service) storeRecords(sessionID uuid.UUID, records []matching.Record) []models.UploadedRecord {
	stored := make([]models.UploadedRecord, len(records))
	for i, rec := range records {
		extraJSON, _ := json.Marshal(rec.Extra)
		stored[i] = models.UploadedRecord{
			ID:               uuid.New(),
			SessionID:        sessionID,
			Position:         i,
			Company:          rec.Company,
			GovernmentEntity: rec.GovernmentEntity,
			Country:          rec.Country,
			Extra:            extraJSON,
			CreatedAt:        time.Now(),
		}
	}
	s.db.CreateInBatches(stored, 200)
	return stored
}

// matchEntity runs exact then fuzzy matching for one entity type and
// persists a ResolutionDecision per record.
func (s *Service) matchEntity(
	sessionID uuid.UUID,
	entity matching.EntityType,
	records []matching.Record,
	stored []models.UploadedRecord,
	pool matching.Registry,
	count int,
) int {
	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Name(entity)
	}

	exact := matching.MatchExact(names, pool)
	for _, amb := range exact.Ambiguities {
		log.Printf("WARN registry has duplicate name %q: kept %s, dropped %s", amb.Name, amb.KeptID, amb.DroppedID)
		s.appendAudit(models.DecisionAuditLog{
			SessionID:  sessionID,
			EntityType: string(entity),
			Action:     "ambiguous_registry",
			NewID:      amb.KeptID,
			PreviousID: amb.DroppedID,
			Reason:     amb.Name,
		})
	}

	decisions := make([]models.ResolutionDecision, 0, len(records))
	for i := range records {
		decision := models.ResolutionDecision{
			ID:         uuid.New(),
			SessionID:  sessionID,
			RecordID:   stored[i].ID,
			EntityType: string(entity),
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}

		if ref, ok := exact.Matched[i]; ok {
			decision.State = string(resolution.StateExact)
			decision.EITIID = ref.EITIID
		} else if sug, ok := matching.Suggest(names[i], pool); ok {
			decision.State = string(resolution.StateProposed)
			decision.SuggestedID = sug.Reference.EITIID
			decision.SuggestedName = sug.Reference.Name
			decision.Score = sug.Score
			details, _ := json.Marshal(map[string]interface{}{
				"record_name":    names[i],
				"suggested_name": sug.Reference.Name,
				"score":          sug.Score,
				"pool_size":      len(pool),
			})
			decision.MatchDetails = details
		} else {
			// empty candidate pool: nothing to propose, the record goes
			// straight to a minted identifier unless an operator intervenes
			decision.State = string(resolution.StateRejected)
		}

		decisions = append(decisions, decision)

		count++
		if count%100 == 0 {
			s.UpdateSessionProgress(sessionID, count)
			s.UpdateProgressCache(sessionID, count)
		}
	}
	s.db.CreateInBatches(decisions, 200)
	return count
}

func (s *Service) loadRegistry(entity matching.EntityType, country string) (matching.Registry, error) {
	refs, err := s.refRepo.ByCountry(string(entity), country)
	if err != nil {
		return nil, err
	}
	pool := make(matching.Registry, len(refs))
	for i, ref := range refs {
		pool[i] = matching.Reference{EITIID: ref.EITIID, Name: ref.Name, Country: ref.Country}
	}
	return pool, nil
}

func (s *Service) failSession(sessionID uuid.UUID, cause error) {
	log.Println("session", sessionID, "failed:", cause)
	s.db.Model(&models.MatchingSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":         "failed",
			"failure_reason": cause.Error(),
		})
	if val, ok := s.progressCache.Load(sessionID); ok {
		val.(*Progress).Status = "failed"
	}
}

// Accept resolves a decision to a reference entity. An empty eitiID accepts
// the stored fuzzy suggestion; any other value overrides it with the given
// registry entry.
func (s *Service) Accept(decisionID uuid.UUID, eitiID, performedBy string) (*models.ResolutionDecision, error) {
	var decision models.ResolutionDecision
	if err := s.db.First(&decision, "id = ?", decisionID).Error; err != nil {
		return nil, err
	}
	switch decision.State {
	case string(resolution.StateExact), string(resolution.StateMinted):
		return nil, fmt.Errorf("%w: decision %s is %s", resolution.ErrAlreadyResolved, decisionID, decision.State)
	}

	action := "accepted"
	if eitiID == "" {
		eitiID = decision.SuggestedID
	} else if eitiID != decision.SuggestedID {
		action = "overridden"
	}
	if eitiID == "" {
		return nil, errors.New("no suggestion to accept and no reference given")
	}
	if _, err := s.refRepo.GetByID(decision.EntityType, eitiID); err != nil {
		return nil, fmt.Errorf("unknown reference %s: %w", eitiID, err)
	}

	previous := decision.EITIID
	decision.State = string(resolution.StateAccepted)
	decision.EITIID = eitiID
	decision.DecidedBy = performedBy
	decision.UpdatedAt = time.Now()
	s.db.Save(&decision)

	s.appendAudit(models.DecisionAuditLog{
		SessionID:   decision.SessionID,
		DecisionID:  decision.ID,
		EntityType:  decision.EntityType,
		Action:      action,
		PreviousID:  previous,
		NewID:       eitiID,
		PerformedBy: performedBy,
	})
	return &decision, nil
}

// Reject declines all suggestions for a decision; the record stays
// unresolved and Finalize will mint a fresh identifier.
func (s *Service) Reject(decisionID uuid.UUID, performedBy string) (*models.ResolutionDecision, error) {
	var decision models.ResolutionDecision
	if err := s.db.First(&decision, "id = ?", decisionID).Error; err != nil {
		return nil, err
	}
	switch decision.State {
	case string(resolution.StateExact), string(resolution.StateMinted):
		return nil, fmt.Errorf("%w: decision %s is %s", resolution.ErrAlreadyResolved, decisionID, decision.State)
	}

	previous := decision.EITIID
	decision.State = string(resolution.StateRejected)
	decision.EITIID = ""
	decision.DecidedBy = performedBy
	decision.UpdatedAt = time.Now()
	s.db.Save(&decision)

	s.appendAudit(models.DecisionAuditLog{
		SessionID:   decision.SessionID,
		DecisionID:  decision.ID,
		EntityType:  decision.EntityType,
		Action:      "rejected",
		PreviousID:  previous,
		PerformedBy: performedBy,
	})
	return &decision, nil
}

// BulkAccept accepts every pending suggestion at or above minScore.
func (s *Service) BulkAccept(sessionID uuid.UUID, minScore float64, performedBy string) (int64, error) {
	result := s.db.Model(&models.ResolutionDecision{}).
		Where("session_id = ? AND state = ? AND score >= ? AND suggested_id <> ''",
			sessionID, string(resolution.StateProposed), minScore).
		Updates(map[string]interface{}{
			"state":      string(resolution.StateAccepted),
			"eiti_id":    gorm.Expr("suggested_id"),
			"decided_by": performedBy,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}

	s.appendAudit(models.DecisionAuditLog{
		SessionID:   sessionID,
		Action:      "bulk_accepted",
		PerformedBy: performedBy,
		Reason:      fmt.Sprintf("score >= %.0f, %d decisions", minScore, result.RowsAffected),
	})
	return result.RowsAffected, nil
}

// Finalize mints fresh identifiers for every record still unresolved and
// closes the session. A record without an identifier afterwards is an
// internal invariant violation and fails the session.
func (s *Service) Finalize(sessionID uuid.UUID) (*models.MatchingSession, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == "completed" {
		return session, nil
	}

	var pending []models.ResolutionDecision
	if err := s.db.
		Where("session_id = ? AND state IN ?", sessionID,
			[]string{string(resolution.StateProposed), string(resolution.StateRejected)}).
		Find(&pending).Error; err != nil {
		return nil, err
	}

	for i := range pending {
		pending[i].State = string(resolution.StateMinted)
		pending[i].EITIID = uuid.NewString()
		pending[i].UpdatedAt = time.Now()
		s.db.Save(&pending[i])
	}

	// consistency check: every decision must carry an identifier now
	var holes int64
	if err := s.db.Model(&models.ResolutionDecision{}).
		Where("session_id = ? AND eiti_id = ''", sessionID).
		Count(&holes).Error; err != nil {
		return nil, err
	}
	if holes > 0 {
		s.failSession(sessionID, resolution.ErrUnresolvedRecord)
		return nil, fmt.Errorf("%w: %d decisions without identifier", resolution.ErrUnresolvedRecord, holes)
	}

	now := time.Now()
	s.db.Model(&models.MatchingSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":       "completed",
			"completed_at": now,
		})
	return s.GetSession(sessionID)
}

// ExportCSV writes the resolved table: original columns in upload order plus
// one identifier column per entity type. UTF-8, header row, no index column.
func (s *Service) ExportCSV(sessionID uuid.UUID, w io.Writer) error {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session.Status != "completed" {
		return fmt.Errorf("%w: session is %s", ErrSessionNotReady, session.Status)
	}

	var header []string
	if err := json.Unmarshal(session.Columns, &header); err != nil {
		return fmt.Errorf("unmarshal session columns: %w", err)
	}

	records, err := s.recordRepo.BySession(sessionID)
	if err != nil {
		return err
	}

	ids, err := s.identifiersByRecord(sessionID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	outHeader := append(append([]string{}, header...),
		matching.EntityCompany.IDColumn(), matching.EntityGovernment.IDColumn())
	if err := writer.Write(outHeader); err != nil {
		return err
	}

	for _, rec := range records {
		var extra map[string]string
		if len(rec.Extra) > 0 {
			_ = json.Unmarshal(rec.Extra, &extra)
		}

		row := make([]string, 0, len(outHeader))
		for _, col := range header {
			switch col {
			case columnCompany:
				row = append(row, rec.Company)
			case columnGovernment:
				row = append(row, rec.GovernmentEntity)
			case columnCountry:
				row = append(row, rec.Country)
			default:
				row = append(row, extra[col])
			}
		}
		row = append(row, ids[rec.ID][matching.EntityCompany], ids[rec.ID][matching.EntityGovernment])
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (s *Service) identifiersByRecord(sessionID uuid.UUID) (map[uuid.UUID]map[matching.EntityType]string, error) {
	var decisions []models.ResolutionDecision
	if err := s.db.Where("session_id = ?", sessionID).Find(&decisions).Error; err != nil {
		return nil, err
	}
	ids := make(map[uuid.UUID]map[matching.EntityType]string)
	for _, d := range decisions {
		if ids[d.RecordID] == nil {
			ids[d.RecordID] = make(map[matching.EntityType]string)
		}
		ids[d.RecordID][matching.EntityType(d.EntityType)] = d.EITIID
	}
	return ids, nil
}

// DecisionRow is a decision joined with its record's name for review listings.
type DecisionRow struct {
	models.ResolutionDecision
	RecordName string `json:"record_name"`
	Country    string `json:"country"`
}

// ListDecisions pages through a session's decisions for one entity type,
// optionally filtered by state and free-text search over the record name.
func (s *Service) ListDecisions(
	sessionID uuid.UUID,
	entityType string,
	state string,
	cursor string,
	limit int,
	search string,
) ([]DecisionRow, string, bool) {

	var rows []DecisionRow
	query := s.db.Model(&models.ResolutionDecision{}).
		Select(`resolution_decisions.*,
			CASE WHEN resolution_decisions.entity_type = 'government'
				THEN uploaded_records.government_entity
				ELSE uploaded_records.company END AS record_name,
			uploaded_records.country`).
		Joins("JOIN uploaded_records ON uploaded_records.id = resolution_decisions.record_id").
		Where("resolution_decisions.session_id = ?", sessionID).
		Order("resolution_decisions.id ASC").
		Limit(limit + 1)

	if entityType != "" && entityType != "all" {
		query = query.Where("resolution_decisions.entity_type = ?", entityType)
	}
	if state != "" && state != "all" {
		query = query.Where("resolution_decisions.state = ?", state)
	}
	if cursor != "" {
		query = query.Where("resolution_decisions.id > ?", cursor)
	}
	if search != "" {
		likeQuery := "%" + search + "%"
		query = query.Where(
			"uploaded_records.company ILIKE ? OR uploaded_records.government_entity ILIKE ?",
			likeQuery, likeQuery,
		)
	}

	query.Scan(&rows)

	hasMore := false
	var nextCursor string

	if len(rows) > limit {
		hasMore = true
		nextCursor = rows[limit-1].ID.String()
		rows = rows[:limit]
	}

	return rows, nextCursor, hasMore
}

type SessionStats struct {
	Total int64 `json:"total"`

	ExactCount    int64 `json:"exact_count"`
	ProposedCount int64 `json:"proposed_count"`
	AcceptedCount int64 `json:"accepted_count"`
	RejectedCount int64 `json:"rejected_count"`
	MintedCount   int64 `json:"minted_count"`
}

type statRow struct {
	EntityType string
	State      string
	Count      int64
}

// Stats reports decision counts per entity type grouped by state.
func (s *Service) Stats(sessionID uuid.UUID) (map[string]SessionStats, error) {
	var rows []statRow
	err := s.db.Model(&models.ResolutionDecision{}).
		Where("session_id = ?", sessionID).
		Select("entity_type, state, COUNT(*) as count").
		Group("entity_type, state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]SessionStats)
	for _, r := range rows {
		entry := stats[r.EntityType]
		entry.Total += r.Count
		switch r.State {
		case string(resolution.StateExact):
			entry.ExactCount = r.Count
		case string(resolution.StateProposed):
			entry.ProposedCount = r.Count
		case string(resolution.StateAccepted):
			entry.AcceptedCount = r.Count
		case string(resolution.StateRejected):
			entry.RejectedCount = r.Count
		case string(resolution.StateMinted):
			entry.MintedCount = r.Count
		}
		stats[r.EntityType] = entry
	}
	return stats, nil
}

// RefreshRegistry re-fetches the remote declaration dataset and upserts the
// snapshot. Matching sessions always read the stored snapshot, never the
// remote source directly.
func (s *Service) RefreshRegistry() (map[string]int64, error) {
	refs, err := s.fetcher.Fetch()
	if err != nil {
		return nil, err
	}
	added, err := s.refRepo.UpsertSnapshot(refs)
	if err != nil {
		return nil, err
	}
	log.Println("registry refreshed, rows fetched:", len(refs), "new:", added)
	return s.refRepo.CountByType()
}

func (s *Service) appendAudit(entry models.DecisionAuditLog) {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	s.db.Create(&entry)
}

// UpdateSessionProgress updates the processed count in a session
func (s *Service) UpdateSessionProgress(id uuid.UUID, count int) error {
	return s.db.Model(&models.MatchingSession{}).
		Where("id = ?", id).
		Update("processed_count", count).
		Error
}

func (s *Service) UpdateProgressCache(sessionID uuid.UUID, count int) {
	val, _ := s.progressCache.LoadOrStore(sessionID, &Progress{
		ProcessedCount: 0,
		Total:          0,
		Status:         "processing",
	})
	p := val.(*Progress)
	p.ProcessedCount = count
	s.progressCache.Store(sessionID, p)
}

// MarkSessionReadyCache marks matching done; the session waits on review.
func (s *Service) MarkSessionReadyCache(sessionID uuid.UUID, total int) {
	val, _ := s.progressCache.LoadOrStore(sessionID, &Progress{})
	p := val.(*Progress)
	p.ProcessedCount = total
	p.Total = total
	p.Status = "review"
	s.progressCache.Store(sessionID, p)
}

func (s *Service) ReferenceRepo() *repository.ReferenceRepository {
	return s.refRepo
}

func (s *Service) RecordRepo() *repository.RecordRepository {
	return s.recordRepo
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
