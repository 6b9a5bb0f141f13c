// Package webflow is the client for the Webflow Data API (v2). All calls go
// through a shared fixed-interval rate limiter so batch runs stay under the
// API's request-rate ceiling.
package webflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"flowdesk/pkg/utils"
)

// APIError is a non-2xx response from the CMS.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("cms: status %d: %s", e.StatusCode, body)
}

type Client struct {
	base     string
	token    string
	http     *http.Client
	limiter  *rate.Limiter
	pageSize int
	log      zerolog.Logger
}

func NewClient(token string, cfg utils.CMSConfig, logger zerolog.Logger) *Client {
	return &Client{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(cfg.RateInterval), 1),
		pageSize: cfg.PageSize,
		log:      logger,
	}
}

// PageSize is the fixed item-listing page size the remote API allows.
func (c *Client) PageSize() int { return c.pageSize }

// ValidateToken checks the token's shape before any remote call is made.
func ValidateToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("cms: api token is empty")
	}
	if strings.ContainsAny(token, " \t\n") {
		return fmt.Errorf("cms: api token contains whitespace")
	}
	return nil
}

// do issues one authenticated request, paced by the limiter, decoding the
// JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("cms: wait for rate limit: %w", err)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("cms: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("cms: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("cms request")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cms: request: %w", err)
	}

	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("cms: decode response: %w", err)
		}
	}
	return nil
}

// VerifyToken asks the remote API whether the stored token is authorized.
func (c *Client) VerifyToken(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/token/authorized", nil, nil)
}
