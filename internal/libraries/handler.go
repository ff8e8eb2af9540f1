package libraries

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookhub/internal/events"
	"bookhub/pkg/models"
)

// Handler exposes library administration. All routes are expected to be
// mounted behind auth.RequireServerOwner.
type Handler struct {
	Repo *Repo
	Hub  *events.Hub
}

func NewHandler(repo *Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id/exclusions", h.listExclusions)
	rg.PUT("/:id/exclusions/:user_id", h.exclude)
	rg.DELETE("/:id/exclusions/:user_id", h.include)
}

type createReq struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Path = strings.TrimSpace(req.Path)
	if req.Name == "" || req.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and path required"})
		return
	}

	lib := models.Library{
		ID:   uuid.NewString(),
		Name: req.Name,
		Path: req.Path,
	}
	if err := h.Repo.Create(c.Request.Context(), lib); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	created, err := h.Repo.GetByID(c.Request.Context(), lib.ID)
	if err != nil || created == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch created failed"})
		return
	}

	if h.Hub != nil {
		ev := events.MetadataEvent{
			Type:     events.TypeLibraryCreate,
			EntityID: created.ID,
			At:       time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) list(c *gin.Context) {
	libs, err := h.Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": libs, "total": len(libs)})
}

func (h *Handler) listExclusions(c *gin.Context) {
	lib, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if lib == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	users, err := h.Repo.ListExclusions(c.Request.Context(), lib.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"library_id": lib.ID, "excluded_users": users})
}

func (h *Handler) exclude(c *gin.Context) {
	lib, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if lib == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := h.Repo.ExcludeUser(c.Request.Context(), lib.ID, c.Param("user_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "exclude failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "excluded"})
}

func (h *Handler) include(c *gin.Context) {
	ok, err := h.Repo.IncludeUser(c.Request.Context(), c.Param("id"), c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "include failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "included"})
}
