package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/utils"
	"go.uber.org/zap"
)

// DefaultURL is where the companion classification service listens
const DefaultURL = "http://localhost:3001/check-high-priority"

// Client is an implementation of core.PriorityClient backed by a plain HTTP endpoint
type Client struct {
	url            string
	httpClient     *http.Client
	maxPreviewSize int
	logger         *zap.Logger
	textProcessor  *utils.TextProcessor
}

// NewClient creates a new endpoint client
func NewClient(url string, timeout time.Duration, maxPreviewSize int, logger *zap.Logger, textProcessor *utils.TextProcessor) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:            url,
		httpClient:     &http.Client{Timeout: timeout},
		maxPreviewSize: maxPreviewSize,
		logger:         logger,
		textProcessor:  textProcessor,
	}
}

// CheckPriority posts the preview to the classification service
func (c *Client) CheckPriority(ctx context.Context, req core.PriorityRequest) (*core.PriorityResponse, error) {
	req.PreviewText = c.textProcessor.ProcessText(req.PreviewText, c.maxPreviewSize)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call classification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("classification service returned %s: %s", resp.Status, bytes.TrimSpace(body))
	}

	var out core.PriorityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode classification response: %w", err)
	}

	c.logger.Debug("Classification service response",
		zap.Bool("is_high_priority", out.IsHighPriority),
		zap.Strings("keywords", out.Keywords))
	return &out, nil
}
