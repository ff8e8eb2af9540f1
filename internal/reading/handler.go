package reading

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bookhub/internal/auth"
	"bookhub/internal/events"
	"bookhub/internal/media"
	"bookhub/pkg/liberr"
	"bookhub/pkg/models"
)

type Handler struct {
	Repo   *Repo
	Finder *media.Finder
	Hub    *events.Hub
}

func NewHandler(repo *Repo, finder *media.Finder, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Finder: finder, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reading", h.list)
	rg.POST("/reading", h.addOrUpdate)
	rg.PUT("/reading/:media_id", h.addOrUpdate)
	rg.DELETE("/reading/:media_id", h.remove)
	rg.GET("/reading/:media_id", h.getOne)
}

type upsertReq struct {
	MediaID     string `json:"media_id"` // required for POST
	CurrentPage int    `json:"current_page"`
	Status      string `json:"status"`
}

func (h *Handler) addOrUpdate(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req upsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	mediaID := strings.TrimSpace(req.MediaID)
	if mediaID == "" {
		mediaID = strings.TrimSpace(c.Param("media_id"))
	}
	if mediaID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media_id required"})
		return
	}

	status := normalizeStatus(req.Status)
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "status must be one of: reading, completed, want_to_read, abandoned",
		})
		return
	}

	if req.CurrentPage < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_page must be >= 0"})
		return
	}

	// Progress can only be tracked on media the user can see.
	q, err := h.Finder.Visible(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, liberr.ErrUnauthorizedScope) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scope failed"})
		return
	}
	visible, err := h.Finder.GetByID(c.Request.Context(), q, mediaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if visible == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	item := toItem(claims.UserID, mediaID, req.CurrentPage, status)
	if err := h.Repo.Upsert(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	// Return canonical stored row including updated_at
	saved, err := h.Repo.Get(c.Request.Context(), claims.UserID, mediaID)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	if h.Hub != nil {
		ev := events.ReadingEvent{
			Type:        events.TypeReadingUpdate,
			UserID:      claims.UserID,
			MediaID:     mediaID,
			CurrentPage: saved.CurrentPage,
			Status:      saved.Status,
			At:          time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status := strings.TrimSpace(c.Query("status"))
	if status != "" {
		status = normalizeStatus(status)
		if status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.List(c.Request.Context(), claims.UserID, status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	mediaID := strings.TrimSpace(c.Param("media_id"))
	if mediaID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media_id required"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), claims.UserID, mediaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		ev := events.ReadingEvent{
			Type:    events.TypeReadingDelete,
			UserID:  claims.UserID,
			MediaID: mediaID,
			At:      time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) getOne(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	mediaID := strings.TrimSpace(c.Param("media_id"))
	if mediaID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media_id required"})
		return
	}

	it, err := h.Repo.Get(c.Request.Context(), claims.UserID, mediaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if it == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, it)
}

func normalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reading":
		return "reading"
	case "completed":
		return "completed"
	case "want to read", "want_to_read", "wanttoread":
		return "want_to_read"
	case "abandoned", "dropped":
		return "abandoned"
	default:
		return ""
	}
}

func toItem(userID, mediaID string, page int, status string) (it models.ReadingItem) {
	it.UserID = userID
	it.MediaID = mediaID
	it.CurrentPage = page
	it.Status = status
	return
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
