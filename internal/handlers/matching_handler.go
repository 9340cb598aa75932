package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	service "eiti-matching-backend/internal/services/reconciliation"
	"eiti-matching-backend/internal/services/resolution"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MatchingHandler struct {
	service *service.Service
}

func NewMatchingHandler(s *service.Service) *MatchingHandler {
	return &MatchingHandler{service: s}
}

// Upload handles CSV uploads, creates a session, and matches in background
func (h *MatchingHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	log.Println("Received file:", header.Filename, "size:", header.Size)

	// buffer before responding: the multipart file closes with the request
	body, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}

	session := h.service.CreateSession(header.Filename)

	go h.service.ProcessUpload(session.ID, bytes.NewReader(body))

	c.JSON(http.StatusAccepted, gin.H{
		"session_id": session.ID.String(),
		"status":     "processing",
	})
}

func (h *MatchingHandler) GetSessionProgress(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}
	session, err := h.service.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"processed_count": session.ProcessedCount,
		"total":           session.TotalRecords,
		"status":          session.Status,
		"failure_reason":  session.FailureReason,
	})
}

func (h *MatchingHandler) ListDecisions(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	entityType := c.Query("entity")
	state := c.Query("state")
	cursor := c.Query("cursor")
	search := c.Query("search")
	limit := 50

	rows, nextCursor, hasMore := h.service.ListDecisions(sessionID, entityType, state, cursor, limit, search)
	stats, _ := h.service.Stats(sessionID) // ignore error for now

	c.JSON(http.StatusOK, gin.H{
		"items":       rows,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
		"stats":       stats,
	})
}

func (h *MatchingHandler) GetStats(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}
	stats, err := h.service.Stats(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// AcceptDecision accepts the fuzzy suggestion, or any other reference the
// operator picked instead.
func (h *MatchingHandler) AcceptDecision(c *gin.Context) {
	decisionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid decision ID"})
		return
	}

	var payload struct {
		EITIID      string `json:"eiti_id"` // empty: accept the suggestion
		PerformedBy string `json:"performed_by"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	decision, err := h.service.Accept(decisionID, payload.EITIID, payload.PerformedBy)
	if err != nil {
		if errors.Is(err, resolution.ErrAlreadyResolved) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "suggestion accepted", "decision": decision})
}

func (h *MatchingHandler) RejectDecision(c *gin.Context) {
	decisionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid decision ID"})
		return
	}

	var payload struct {
		PerformedBy string `json:"performed_by"`
	}
	_ = c.BindJSON(&payload) // body optional

	decision, err := h.service.Reject(decisionID, payload.PerformedBy)
	if err != nil {
		if errors.Is(err, resolution.ErrAlreadyResolved) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "suggestion rejected", "decision": decision})
}

func (h *MatchingHandler) BulkAccept(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	minScore := 90.0
	if raw := c.Query("min_score"); raw != "" {
		minScore, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_score"})
			return
		}
	}

	count, err := h.service.BulkAccept(sessionID, minScore, c.Query("performed_by"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "bulk accept completed",
		"decisions_updated": count,
	})
}

// Finalize mints identifiers for everything still unresolved and closes the
// session; afterwards the resolved CSV can be downloaded.
func (h *MatchingHandler) Finalize(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	session, err := h.service.Finalize(sessionID)
	if err != nil {
		if errors.Is(err, resolution.ErrUnresolvedRecord) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "session finalized", "session": session})
}

func (h *MatchingHandler) Download(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=resolved_%s.csv", sessionID))

	if err := h.service.ExportCSV(sessionID, c.Writer); err != nil {
		if errors.Is(err, service.ErrSessionNotReady) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
}

func (h *MatchingHandler) SearchRegistry(c *gin.Context) {
	entityType := c.Query("entity")
	if entityType == "" {
		entityType = "company"
	}

	refs, err := h.service.ReferenceRepo().Search(entityType, c.Query("country"), c.Query("q"), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": refs})
}

func (h *MatchingHandler) RefreshRegistry(c *gin.Context) {
	counts, err := h.service.RefreshRegistry()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "registry refreshed", "counts": counts})
}
