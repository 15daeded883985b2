package backend

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

	"github.com/gofiber/fiber/v2/log"

	"github.com/tripcraft/planner/internal/pkg/env"
)

const (
	TriggerPath    = "/api/plan/trigger"
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20
)

// Config holds the settings for talking to the planning backend
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	CallbackToken string
}

// ConfigFromEnv reads BACKEND_API_URL, BACKEND_API_TIMEOUT and BACKEND_CALLBACK_TOKEN
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		BaseURL:       strings.TrimRight(strings.TrimSpace(env.GetEnv("BACKEND_API_URL", "")), "/"),
		Timeout:       DefaultTimeout,
		CallbackToken: strings.TrimSpace(env.GetEnv("BACKEND_CALLBACK_TOKEN", "")),
	}
	if raw := strings.TrimSpace(env.GetEnv("BACKEND_API_TIMEOUT", "")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BACKEND_API_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the required settings are present
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("BACKEND_API_URL is not configured")
	}
	if c.Timeout <= 0 {
		return errors.New("backend timeout must be positive")
	}
	return nil
}

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("planning backend returned status=%d body=%s", e.StatusCode, e.Body)
}

// Client calls the planning backend
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client whose requests are bounded by cfg.Timeout
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// TriggerPlan posts a job request and returns the backend's acknowledgement.
// A body that is not JSON is returned as a JSON string.
func (c *Client) TriggerPlan(ctx context.Context, req JobRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+TriggerPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		log.Errorf("[Backend] Trigger for %s failed after %s: %v", req.TripPlanID, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	log.Infof("[Backend] Trigger for %s accepted (status=%d, took %s)", req.TripPlanID, resp.StatusCode, time.Since(start))

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("null"), nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed), nil
	}
	wrapped, err := json.Marshal(string(trimmed))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(wrapped), nil
}
