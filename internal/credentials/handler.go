package credentials

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"flowdesk/internal/auth"
	"flowdesk/internal/webflow"
	"flowdesk/pkg/utils"
)

type Handler struct {
	Repo *Repo
	CMS  utils.CMSConfig
	Log  zerolog.Logger

	// One client (and so one rate limiter) per token, shared across requests.
	mu      sync.Mutex
	clients map[string]*webflow.Client
}

func NewHandler(repo *Repo, cms utils.CMSConfig, log zerolog.Logger) *Handler {
	return &Handler{Repo: repo, CMS: cms, Log: log, clients: make(map[string]*webflow.Client)}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/credentials", h.get)
	rg.PUT("/credentials", h.put)
	rg.DELETE("/credentials", h.remove)
	rg.POST("/credentials/verify", h.verify)
}

// ClientFor builds a paced CMS client from the operator's stored token.
// Callers get a credential error before any remote call happens.
func (h *Handler) ClientFor(c *gin.Context) (*webflow.Client, bool) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	cred, err := h.Repo.Get(c.Request.Context(), claims.OperatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load credential failed"})
		return nil, false
	}
	if cred == nil {
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": "no api token stored"})
		return nil, false
	}
	if err := webflow.ValidateToken(cred.APIToken); err != nil {
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
		return nil, false
	}

	return h.clientForToken(cred.APIToken), true
}

func (h *Handler) clientForToken(token string) *webflow.Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[token]; ok {
		return client
	}
	if h.clients == nil {
		h.clients = make(map[string]*webflow.Client)
	}
	client := webflow.NewClient(token, h.CMS, h.Log)
	h.clients[token] = client
	return client
}

type putReq struct {
	APIToken string `json:"api_token"`
}

func (h *Handler) put(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req putReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	token := strings.TrimSpace(req.APIToken)
	if err := webflow.ValidateToken(token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Repo.Upsert(c.Request.Context(), claims.OperatorID, token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save credential failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *Handler) get(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	cred, err := h.Repo.Get(c.Request.Context(), claims.OperatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load credential failed"})
		return
	}
	if cred == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no api token stored"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"api_token":  mask(cred.APIToken),
		"updated_at": cred.UpdatedAt.UTC(),
	})
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Repo.Delete(c.Request.Context(), claims.OperatorID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete credential failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// verify asks the remote API whether the stored token actually works.
func (h *Handler) verify(c *gin.Context) {
	client, ok := h.ClientFor(c)
	if !ok {
		return
	}

	if err := client.VerifyToken(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "authorized"})
}

// mask keeps only the tail, enough for the operator to recognize the token.
func mask(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
