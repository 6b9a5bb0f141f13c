package importer

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"flowdesk/internal/auth"
	"flowdesk/internal/progress"
	"flowdesk/internal/webflow"
	"flowdesk/pkg/models"
)

// maxUploadBytes caps one uploaded import file.
const maxUploadBytes = 16 << 20

type ClientSource interface {
	ClientFor(c *gin.Context) (*webflow.Client, bool)
}

type Handler struct {
	Clients ClientSource
	Runs    *RunRepo
	Hub     *progress.Hub
	Log     zerolog.Logger

	// one import run at a time
	running sync.Mutex
}

func NewHandler(clients ClientSource, runs *RunRepo, hub *progress.Hub, log zerolog.Logger) *Handler {
	return &Handler{Clients: clients, Runs: runs, Hub: hub, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/imports/parse", h.parse)
	rg.POST("/imports/preview", h.preview)
	rg.POST("/imports/run", h.run)
	rg.GET("/imports/runs", h.listRuns)
	rg.GET("/imports/runs/:id", h.getRun)
}

// parse accepts the uploaded file and returns its source columns plus a few
// raw rows. A parse failure only aborts this file load.
func (h *Handler) parse(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read upload failed"})
		return
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	columns, rows, err := ParseUpload(header.Filename, data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n := previewRows
	if len(rows) < n {
		n = len(rows)
	}
	c.JSON(http.StatusOK, gin.H{
		"columns": columns,
		"total":   len(rows),
		"preview": rows[:n],
		"rows":    rows,
	})
}

type previewReq struct {
	Rows    []models.ImportRow  `json:"rows"`
	Mapping models.FieldMapping `json:"mapping"`
}

// preview runs the dry-run classification over the mapped rows.
func (h *Handler) preview(c *gin.Context) {
	var req previewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	mapped := ApplyMapping(req.Rows, req.Mapping)
	c.JSON(http.StatusOK, DryRun(mapped))
}

type runReq struct {
	CollectionID string              `json:"collection_id"`
	Rows         []models.ImportRow  `json:"rows"`
	Mapping      models.FieldMapping `json:"mapping"`
	Mode         string              `json:"mode"` // "upsert" (default) or "create"
	Live         bool                `json:"live"`
}

type runEvent struct {
	Type string `json:"type"`
	Event
}

// run executes one import synchronously, broadcasting progress over the
// websocket hub and persisting the outcome.
func (h *Handler) run(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req runReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.CollectionID = strings.TrimSpace(req.CollectionID)
	if req.CollectionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection_id required"})
		return
	}
	mode := strings.TrimSpace(req.Mode)
	if mode == "" {
		mode = "upsert"
	}
	if mode != "upsert" && mode != "create" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be upsert or create"})
		return
	}
	if len(req.Rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rows required"})
		return
	}

	client, ok := h.Clients.ClientFor(c)
	if !ok {
		return
	}

	// validate the mapping against the live schema before touching items
	col, err := client.Collection(c.Request.Context(), req.CollectionID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if unknown := ValidateMapping(req.Mapping, col); len(unknown) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "mapping targets unknown fields",
			"unknown_fields": unknown,
		})
		return
	}

	if !h.running.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "an import is already running"})
		return
	}
	defer h.running.Unlock()

	runID := uuid.NewString()
	runner := &Runner{
		Store: client,
		Log:   h.Log.With().Str("run_id", runID).Logger(),
		RunID: runID,
		Progress: func(ev Event) {
			h.Hub.BroadcastJSON(runEvent{Type: "import.progress", Event: ev})
		},
	}

	mapped := ApplyMapping(req.Rows, req.Mapping)
	started := time.Now().UTC()

	var result models.ImportResult
	if mode == "create" {
		result = runner.CreateAll(c.Request.Context(), req.CollectionID, mapped, req.Live)
	} else {
		result, err = runner.Reconcile(c.Request.Context(), req.CollectionID, mapped, req.Live)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
	}

	run := models.ImportRun{
		ID:           runID,
		OperatorID:   claims.OperatorID,
		CollectionID: req.CollectionID,
		Mode:         mode,
		Live:         req.Live,
		Total:        result.Total,
		Created:      result.Created,
		Updated:      result.Updated,
		Failed:       result.Failed(),
		Errors:       result.Errors,
		StartedAt:    started,
		FinishedAt:   time.Now().UTC(),
	}
	if err := h.Runs.Insert(c.Request.Context(), run); err != nil {
		// the import itself succeeded; surface the result anyway
		h.Log.Error().Err(err).Str("run_id", runID).Msg("persist import run failed")
	}

	c.JSON(http.StatusOK, gin.H{"run_id": runID, "result": result})
}

func (h *Handler) listRuns(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 20
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	runs, err := h.Runs.List(c.Request.Context(), claims.OperatorID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list runs failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *Handler) getRun(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	run, err := h.Runs.Get(c.Request.Context(), c.Param("id"), claims.OperatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get run failed"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, run)
}
