package mappings

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flowdesk/internal/auth"
	"flowdesk/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/mappings", h.list)
	rg.POST("/mappings", h.create)
	rg.DELETE("/mappings/:id", h.remove)
}

type createReq struct {
	CollectionID string              `json:"collection_id"`
	Name         string              `json:"name"`
	Mapping      models.FieldMapping `json:"mapping"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.CollectionID = strings.TrimSpace(req.CollectionID)
	req.Name = strings.TrimSpace(req.Name)
	if req.CollectionID == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection_id and name required"})
		return
	}
	if len(req.Mapping) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mapping required"})
		return
	}

	p := models.MappingPreset{
		ID:           uuid.NewString(),
		OperatorID:   claims.OperatorID,
		CollectionID: req.CollectionID,
		Name:         req.Name,
		Mapping:      req.Mapping,
	}
	if err := h.Repo.Create(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save mapping failed"})
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	presets, err := h.Repo.List(c.Request.Context(), claims.OperatorID, strings.TrimSpace(c.Query("collection_id")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list mappings failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mappings": presets})
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err := h.Repo.Delete(c.Request.Context(), c.Param("id"), claims.OperatorID)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete mapping failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
