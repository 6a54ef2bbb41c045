package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/infra"
)

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = errors.New("replicate: api token is required")

const (
	defaultBaseURL      = "https://api.replicate.com"
	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 120 * time.Second
	defaultHTTPTimeout  = 30 * time.Second
)

// Options configures the prediction API client.
type Options struct {
	Token        string
	BaseURL      string
	HTTPClient   *http.Client
	Logger       *infra.Logger
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Client performs HTTP calls to the remote prediction API and drives the
// create-then-poll workflow.
type Client struct {
	token        string
	baseURL      string
	httpClient   *http.Client
	logger       *infra.Logger
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// PredictionRequest is the create-prediction body: a model version identifier
// plus the already-normalized input payload. Sent verbatim.
type PredictionRequest struct {
	Version string `json:"version"`
	Input   any    `json:"input"`
}

// Prediction mirrors the provider's job object. Output is provider-defined and
// deliberately left untyped; its shape varies by model and is only
// pattern-matched during extraction.
type Prediction struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Input      any    `json:"input,omitempty"`
	Output     any    `json:"output,omitempty"`
	OutputText string `json:"output_text,omitempty"`
	Error      any    `json:"error,omitempty"`
	Logs       string `json:"logs,omitempty"`
	Metrics    any    `json:"metrics,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	URLs       struct {
		Get    string `json:"get,omitempty"`
		Cancel string `json:"cancel,omitempty"`
	} `json:"urls,omitempty"`
}

// IsTerminal reports whether no further state change will occur for the
// prediction. The in-flight status names are provider-defined and never
// interpreted here; only membership in the terminal set matters.
func (p *Prediction) IsTerminal() bool {
	if p == nil {
		return false
	}
	switch p.Status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

// RunResult is the final prediction snapshot plus the wall-clock time the run
// took, in seconds rounded to two decimals.
type RunResult struct {
	Prediction     *Prediction
	ElapsedSeconds float64
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, ErrMissingToken
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	timeout := opts.PollTimeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		token:        token,
		baseURL:      baseURL,
		httpClient:   httpClient,
		logger:       logger,
		pollInterval: interval,
		pollTimeout:  timeout,
	}, nil
}

// Create submits one prediction and returns the provider's initial snapshot.
func (c *Client) Create(ctx context.Context, req PredictionRequest) (*Prediction, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/v1/predictions", bytes.NewReader(body))
}

// Get fetches the current snapshot of a prediction by its identifier.
func (c *Client) Get(ctx context.Context, id string) (*Prediction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("replicate: prediction id is required")
	}
	return c.do(ctx, http.MethodGet, c.baseURL+"/v1/predictions/"+id, nil)
}

// Run creates a prediction and polls it until a terminal status is observed or
// the polling budget elapses. The timeout is checked before each sleep, so a
// poll that would start past the budget is never issued. A prediction that
// terminates as "failed" or "canceled" is a normal result here; only transport
// and timeout failures are errors.
func (c *Client) Run(ctx context.Context, req PredictionRequest) (*RunResult, error) {
	start := time.Now()
	pred, err := c.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("prediction_id", pred.ID).
		Str("status", pred.Status).
		Msg("replicate: prediction created")

	for !pred.IsTerminal() {
		if time.Since(start) > c.pollTimeout {
			c.logger.Warn().
				Str("prediction_id", pred.ID).
				Str("status", pred.Status).
				Dur("budget", c.pollTimeout).
				Msg("replicate: polling budget exceeded")
			return nil, &TimeoutError{Last: pred}
		}
		if err := sleep(ctx, c.pollInterval); err != nil {
			return nil, err
		}
		next, err := c.Get(ctx, pred.ID)
		if err != nil {
			return nil, err
		}
		pred = next
		c.logger.Debug().
			Str("prediction_id", pred.ID).
			Str("status", pred.Status).
			Msg("replicate: polled prediction")
	}

	elapsed := math.Round(time.Since(start).Seconds()*100) / 100
	c.logger.Info().
		Str("prediction_id", pred.ID).
		Str("status", pred.Status).
		Float64("elapsed_seconds", elapsed).
		Msg("replicate: prediction finished")
	return &RunResult{Prediction: pred, ElapsedSeconds: elapsed}, nil
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader) (*Prediction, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("replicate: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token "+c.token)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("replicate: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("replicate: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var pred Prediction
	if err := json.Unmarshal(raw, &pred); err != nil {
		return nil, fmt.Errorf("replicate: decode response: %w", err)
	}
	return &pred, nil
}

// sleep waits for the poll interval without busy-waiting. It is the only
// suspension point of the polling loop.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
