package authors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookhub/internal/auth"
	"bookhub/pkg/liberr"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:name", h.getAuthor)
	rg.GET("/:name/books", h.getBooks)
	rg.GET("/:name/series", h.getSeries)
	rg.GET("/:name/series/:title/books", h.getSeriesBooks)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, liberr.ErrUnauthorizedScope) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve failed"})
}

// getAuthor assembles the aggregate with the fields named in
// ?include=books,series (default: both top-level fields, no nested
// series books).
func (h *Handler) getAuthor(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	p := Projection{Books: true, Series: true}
	if include := c.Query("include"); include != "" {
		p = Projection{}
		for _, field := range strings.Split(include, ",") {
			switch strings.TrimSpace(strings.ToLower(field)) {
			case "books":
				p.Books = true
			case "series":
				p.Series = true
			case "series.books":
				p.SeriesBooks = true
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown include field: " + field})
				return
			}
		}
	}

	author, err := h.Service.Assemble(c.Request.Context(), claims.UserID, name, p)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := gin.H{"name": author.Name}
	if p.Books {
		resp["books"] = author.Books
	}
	if p.Series || p.SeriesBooks {
		resp["series"] = author.Series
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getBooks(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	books, err := h.Service.Books(c.Request.Context(), claims.UserID, c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": books, "total": len(books)})
}

func (h *Handler) getSeries(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	titles, err := h.Service.SeriesTitles(c.Request.Context(), claims.UserID, c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": titles, "total": len(titles)})
}

func (h *Handler) getSeriesBooks(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	books, err := h.Service.SeriesBooks(c.Request.Context(), claims.UserID, c.Param("title"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": books, "total": len(books)})
}
