package media

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bookhub/internal/auth"
	"bookhub/internal/events"
	"bookhub/pkg/liberr"
)

type Handler struct {
	Finder *Finder
	Repo   *Repo
	Hub    *events.Hub
}

func NewHandler(finder *Finder, repo *Repo, hub *events.Hub) *Handler {
	return &Handler{Finder: finder, Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)                         // GET /media
	rg.GET("/:id", h.getByID)                  // GET /media/:id
	rg.PATCH("/:id/metadata", h.patchMetadata) // PATCH /media/:id/metadata
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q, err := h.Finder.Visible(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, liberr.ErrUnauthorizedScope) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scope failed"})
		return
	}

	if kw := c.Query("q"); kw != "" {
		q = q.Keyword(kw)
	}
	if series := c.Query("series"); series != "" {
		q = q.SeriesContains(series)
	}
	if writer := c.Query("writer"); writer != "" {
		q = q.WriterContains(writer)
	}
	if lib := c.Query("library"); lib != "" {
		q = q.InLibrary(lib)
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	total, err := h.Finder.Count(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Finder.FindPage(c.Request.Context(), q, limit, offset)
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

func (h *Handler) getByID(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q, err := h.Finder.Visible(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, liberr.ErrUnauthorizedScope) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scope failed"})
		return
	}

	m, err := h.Finder.GetByID(c.Request.Context(), q, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) patchMetadata(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// The item must be visible to the caller before it can be edited.
	q, err := h.Finder.Visible(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, liberr.ErrUnauthorizedScope) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scope failed"})
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	visible, err := h.Finder.GetByID(c.Request.Context(), q, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if visible == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var in MetadataInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ok, err := h.Repo.UpdateMetadata(c.Request.Context(), id, in)
	if err != nil {
		var invalid *liberr.InvalidFieldValueError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": invalid.Error(), "field": invalid.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	updated, err := h.Finder.GetByID(c.Request.Context(), q, id)
	if err != nil || updated == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch updated failed"})
		return
	}

	if h.Hub != nil {
		ev := events.MetadataEvent{
			Type:     events.TypeMediaMetadataUpdate,
			EntityID: id,
			At:       time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, updated)
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
