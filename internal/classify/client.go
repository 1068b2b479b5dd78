package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"moodlift/internal/frames"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Config configures the HTTP classifier.
type Config struct {
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient talks to the classification service over JSON/HTTP.
type HTTPClient struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

var _ Classifier = (*HTTPClient)(nil)

type request struct {
	Image string `json:"image"`
}

type response struct {
	Emotion *string `json:"emotion"`
}

// NewHTTPClient validates cfg and returns a client.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("classify: endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &HTTPClient{
		endpoint:   endpoint,
		timeout:    cfg.Timeout,
		httpClient: hc,
	}, nil
}

// Classify posts the frame as a data URI and returns the emotion string the
// service answered with verbatim, including empty and unknown strings. Only a
// missing or null emotion field is an error.
func (c *HTTPClient) Classify(ctx context.Context, frame frames.Frame) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(request{Image: frame.DataURI()})
	if err != nil {
		return "", transportErr("encode request", 0, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", transportErr("build request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportErr("post", 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", transportErr("read response", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", transportErr("post", resp.StatusCode, fmt.Errorf("body=%s", strings.TrimSpace(string(raw))))
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", transportErr("decode response", resp.StatusCode, err)
	}
	if out.Emotion == nil {
		return "", transportErr("decode response", resp.StatusCode, errors.New("missing emotion field"))
	}
	return *out.Emotion, nil
}
