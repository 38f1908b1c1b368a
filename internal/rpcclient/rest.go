package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Klingon-tech/klingnet-wallet/internal/log"
)

// HTTPError is returned by Get and Post for non-2xx replies. Code and
// Message come from the node's {"error":{"code","message"}} body when
// present.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http status %d", e.Status)
	}
	return fmt.Sprintf("http status %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 HTTPError.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound
}

// Get requests path below the endpoint and decodes the JSON reply into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.url(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return c.rest(ctx, http.MethodGet, target, "", nil, out)
}

// Post sends body with the given content type to path and decodes the JSON
// reply into out. A nil out discards the reply.
func (c *Client) Post(ctx context.Context, path, contentType string, body []byte, out any) error {
	return c.rest(ctx, http.MethodPost, c.url(path), contentType, body, out)
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.endpoint, "/") + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) rest(ctx context.Context, method, target, contentType string, body []byte, out any) error {
	if err := c.pace(ctx); err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s %s: build request: %w", method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: http request: %w", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, target, err)
	}
	log.RPC.Trace().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("rest call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{Status: resp.StatusCode}
		var wrapped struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &wrapped) == nil {
			httpErr.Code, httpErr.Message = wrapped.Error.Code, wrapped.Error.Message
		}
		return fmt.Errorf("%s %s: %w", method, target, httpErr)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, target, ErrInvalidResponse, err)
	}
	return nil
}
