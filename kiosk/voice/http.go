//go:build !tinygo

package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// maxResponseBytes caps how much of a reply is read.
const maxResponseBytes = 64 << 10

// HTTPClient posts recordings to a speech server.
type HTTPClient struct {
	URL  string
	HTTP *http.Client

	// NewRequestID defaults to uuid.NewString.
	NewRequestID func() string
}

// NewHTTPClient returns a client for serverURL with a 30s timeout.
func NewHTTPClient(serverURL string) *HTTPClient {
	return &HTTPClient{
		URL:          serverURL,
		HTTP:         &http.Client{Timeout: 30 * time.Second},
		NewRequestID: uuid.NewString,
	}
}

func (c *HTTPClient) Submit(ctx context.Context, wav []byte, taskContext string) (Action, error) {
	if c.URL == "" {
		return Action{}, errors.New("voice: server url not configured")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return Action{}, fmt.Errorf("voice: parse url: %w", err)
	}
	if taskContext != "" {
		q := u.Query()
		q.Set("context", taskContext)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(wav))
	if err != nil {
		return Action{}, fmt.Errorf("voice: build request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")
	newID := c.NewRequestID
	if newID == nil {
		newID = uuid.NewString
	}
	id := newID()
	req.Header.Set("X-Request-ID", id)

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Action{}, fmt.Errorf("voice: request %s: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Action{}, fmt.Errorf("voice: request %s: read body: %w", id, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Action{}, &StatusError{Code: resp.StatusCode, RequestID: id}
	}

	var a Action
	if err := json.Unmarshal(body, &a); err != nil {
		return Action{}, fmt.Errorf("voice: request %s: decode: %w", id, err)
	}
	if a.Kind == "" {
		a.Kind = KindNone
	}
	return a, nil
}

// StatusError is returned for a non-200 reply.
type StatusError struct {
	Code      int
	RequestID string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("voice: request %s: server returned HTTP %d", e.RequestID, e.Code)
}
