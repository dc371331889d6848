package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/lecternapp/lectern/pkg/logger"
)

// Client talks to an Ollama-compatible inference service over its local HTTP
// API. Only the synchronous /api/generate endpoint is used; streaming is
// disabled since the pipeline wants one complete response.
type Client struct {
	host       string
	httpClient *http.Client
}

// NewClient creates a client for the service at host
// (e.g. http://localhost:11434).
func NewClient(host string, timeout time.Duration) *Client {
	return &Client{
		host:       strings.TrimRight(host, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate sends prompt to model and returns the generated text. Error
// classification distinguishes "service down" from "model missing" from
// "took too long" so each can be surfaced with its own guidance.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.host + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug(logger.CategorySummary, "POST %s (model=%s, prompt=%d chars)", url, model, len(prompt))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var gr generateResponse
		_ = json.Unmarshal(body, &gr)
		if resp.StatusCode == http.StatusNotFound || strings.Contains(gr.Error, "not found") {
			return "", fmt.Errorf("%w: %s", ErrModelNotFound, model)
		}
		return "", fmt.Errorf("inference service returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if gr.Error != "" {
		return "", fmt.Errorf("inference service error: %s", gr.Error)
	}
	if strings.TrimSpace(gr.Response) == "" {
		return "", fmt.Errorf("inference service returned an empty response")
	}

	return gr.Response, nil
}

// classifyTransportError maps low-level HTTP errors onto the package's
// sentinel taxonomy.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}
