package webflow

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"flowdesk/pkg/models"
)

// Asset upload is two-step: register the file with the CMS, then POST the
// bytes to the storage URL it hands back.

type assetMetaResponse struct {
	ID            string            `json:"id"`
	ContentType   string            `json:"contentType"`
	HostedURL     string            `json:"hostedUrl"`
	UploadURL     string            `json:"uploadUrl"`
	UploadDetails map[string]string `json:"uploadDetails"`
}

// UploadAsset registers fileName on the site and uploads data to the
// storage endpoint the CMS designates.
func (c *Client) UploadAsset(ctx context.Context, siteID, fileName string, data []byte) (*models.Asset, error) {
	sum := md5.Sum(data)

	var meta assetMetaResponse
	path := fmt.Sprintf("/sites/%s/assets", siteID)
	payload := map[string]string{
		"fileName": fileName,
		"fileHash": hex.EncodeToString(sum[:]),
	}
	if err := c.do(ctx, http.MethodPost, path, payload, &meta); err != nil {
		return nil, err
	}

	if meta.UploadURL != "" {
		if err := c.postToStorage(ctx, meta.UploadURL, meta.UploadDetails, fileName, data); err != nil {
			return nil, err
		}
	}

	return &models.Asset{
		ID:          meta.ID,
		ContentType: meta.ContentType,
		HostedURL:   meta.HostedURL,
		FileName:    fileName,
	}, nil
}

// postToStorage performs the storage-provider multipart POST. The provider
// requires its presigned fields before the file part.
func (c *Client) postToStorage(ctx context.Context, uploadURL string, details map[string]string, fileName string, data []byte) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("cms: wait for rate limit: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range details {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("cms: write upload field: %w", err)
		}
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return fmt.Errorf("cms: create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("cms: write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cms: close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return fmt.Errorf("cms: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cms: upload: %w", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return nil
}
