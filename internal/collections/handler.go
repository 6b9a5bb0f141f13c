// Package collections proxies schema browsing to the remote CMS so the UI
// can render collections and build field mappings. Nothing is cached.
package collections

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"flowdesk/internal/webflow"
)

// ClientSource hands out a CMS client for the calling operator, or writes
// the error response itself and returns false.
type ClientSource interface {
	ClientFor(c *gin.Context) (*webflow.Client, bool)
}

type Handler struct {
	Clients ClientSource
}

func NewHandler(clients ClientSource) *Handler {
	return &Handler{Clients: clients}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sites", h.sites)
	rg.GET("/sites/:site_id/collections", h.collections)
	rg.GET("/collections/:collection_id", h.collection)
}

func (h *Handler) sites(c *gin.Context) {
	client, ok := h.Clients.ClientFor(c)
	if !ok {
		return
	}

	sites, err := client.Sites(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sites": sites})
}

func (h *Handler) collections(c *gin.Context) {
	siteID := strings.TrimSpace(c.Param("site_id"))
	if siteID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site_id required"})
		return
	}

	client, ok := h.Clients.ClientFor(c)
	if !ok {
		return
	}

	cols, err := client.Collections(c.Request.Context(), siteID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": cols})
}

func (h *Handler) collection(c *gin.Context) {
	collectionID := strings.TrimSpace(c.Param("collection_id"))
	if collectionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection_id required"})
		return
	}

	client, ok := h.Clients.ClientFor(c)
	if !ok {
		return
	}

	col, err := client.Collection(c.Request.Context(), collectionID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, col)
}
