package assets

import (
	"encoding/base64"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"flowdesk/internal/webflow"
)

// maxImageBytes caps one uploaded image.
const maxImageBytes = 32 << 20

type ClientSource interface {
	ClientFor(c *gin.Context) (*webflow.Client, bool)
}

type Handler struct {
	Clients ClientSource
	Log     zerolog.Logger
}

func NewHandler(clients ClientSource, log zerolog.Logger) *Handler {
	return &Handler{Clients: clients, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assets/process", h.process)
	rg.POST("/assets/upload", h.upload)
}

type processedFile struct {
	FileName string `json:"file_name"`
	Size     int    `json:"size"`
	Data     string `json:"data"` // base64
}

type processError struct {
	FileName string `json:"file_name"`
	Message  string `json:"message"`
}

// process resizes/crops every image in the multipart batch. A bad file is
// reported and skipped, like a failed import row.
func (h *Handler) process(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files field required"})
		return
	}

	opts := Options{
		Width:   formInt(c, "width"),
		Height:  formInt(c, "height"),
		Mode:    c.PostForm("mode"),
		Format:  c.PostForm("format"),
		Quality: formInt(c, "quality"),
	}
	// Normalized here so output names carry the same format the encoder used.
	if err := opts.normalize(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		processed []processedFile
		failures  []processError
	)
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			failures = append(failures, processError{FileName: fh.Filename, Message: err.Error()})
			continue
		}

		out, err := Process(data, opts)
		if err != nil {
			failures = append(failures, processError{FileName: fh.Filename, Message: err.Error()})
			continue
		}

		processed = append(processed, processedFile{
			FileName: OutputName(fh.Filename, opts.Format),
			Size:     len(out),
			Data:     base64.StdEncoding.EncodeToString(out),
		})
	}

	h.Log.Info().
		Int("processed", len(processed)).
		Int("failed", len(failures)).
		Msg("asset batch processed")

	c.JSON(http.StatusOK, gin.H{
		"processed": processed,
		"errors":    failures,
	})
}

// upload pushes one file into the site's asset library.
func (h *Handler) upload(c *gin.Context) {
	siteID := strings.TrimSpace(c.PostForm("site_id"))
	if siteID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site_id required"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil || len(data) > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read upload failed"})
		return
	}

	client, ok := h.Clients.ClientFor(c)
	if !ok {
		return
	}

	asset, err := client.UploadAsset(c.Request.Context(), siteID, header.Filename, data)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, asset)
}

func formInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.PostForm(key)))
	if err != nil {
		return 0
	}
	return n
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageBytes))
}
