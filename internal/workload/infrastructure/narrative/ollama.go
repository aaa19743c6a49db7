package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// OllamaConfig configures the Ollama client.
type OllamaConfig struct {
	Endpoint string
	Model    string
	// Timeout bounds one explanation including retries.
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// RateInterval is the minimum spacing between requests.
	RateInterval       time.Duration
	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration
}

// DefaultOllamaConfig targets a local Ollama daemon.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		Endpoint:           "http://localhost:11434",
		Model:              "llama3.2",
		Timeout:            10 * time.Second,
		MaxRetries:         2,
		RetryBackoff:       250 * time.Millisecond,
		RateInterval:       200 * time.Millisecond,
		BreakerFailures:    5,
		BreakerOpenTimeout: 30 * time.Second,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// retryableError marks failures worth another attempt.
type retryableError struct {
	err error
}

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

// OllamaGenerator calls POST /api/generate. Requests are paced by a rate
// limiter and run behind a circuit breaker; every failure surfaces as
// services.ErrUpstreamGenerator.
type OllamaGenerator struct {
	config  OllamaConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
	metrics observability.Metrics
}

func NewOllamaGenerator(cfg OllamaConfig, logger *slog.Logger, metrics observability.Metrics) *OllamaGenerator {
	defaults := DefaultOllamaConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaults.Endpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaults.BreakerFailures
	}
	if cfg.BreakerOpenTimeout <= 0 {
		cfg.BreakerOpenTimeout = defaults.BreakerOpenTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	limit := rate.Inf
	if cfg.RateInterval > 0 {
		limit = rate.Every(cfg.RateInterval)
	}

	g := &OllamaGenerator{
		config:  cfg,
		client:  &http.Client{},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		metrics: metrics,
	}
	g.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "narrative",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// A caller that gives up says nothing about the daemon's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return g
}

// BreakerState reports the circuit breaker state, for health output.
func (g *OllamaGenerator) BreakerState() string {
	return g.breaker.State().String()
}

func (g *OllamaGenerator) ExplainStress(ctx context.Context, facts services.StressFacts) (string, error) {
	prompt, err := stressPrompt(facts)
	if err != nil {
		return "", err
	}
	text, err := g.generate(ctx, "stress", prompt)
	if err != nil {
		return "", err
	}
	explanation, err := parseStressReply(text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", services.ErrUpstreamGenerator, err)
	}
	return explanation, nil
}

func (g *OllamaGenerator) ExplainPriorities(ctx context.Context, facts []services.PriorityFacts) ([]string, error) {
	if len(facts) == 0 {
		return []string{}, nil
	}
	prompt, err := priorityPrompt(facts)
	if err != nil {
		return nil, err
	}
	text, err := g.generate(ctx, "priorities", prompt)
	if err != nil {
		return nil, err
	}
	reasons, err := parsePriorityReply(text, len(facts))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", services.ErrUpstreamGenerator, err)
	}
	return reasons, nil
}

// generate returns the raw model output for prompt.
func (g *OllamaGenerator) generate(ctx context.Context, kind, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	start := time.Now()
	text, err := g.breaker.Execute(func() (string, error) {
		return g.generateWithRetry(ctx, prompt)
	})
	elapsed := time.Since(start)

	status := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status = "open"
	case errors.Is(err, context.Canceled):
		status = "canceled"
	case err != nil:
		status = "error"
	}
	tags := []observability.Tag{observability.T("kind", kind), observability.T(observability.StatusKey, status)}
	g.metrics.Counter(observability.MetricNarrativeCalls, 1, tags...)
	g.metrics.Timing(observability.MetricNarrativeDuration, elapsed, tags...)

	if err != nil {
		g.logger.WarnContext(ctx, "narrative generation failed",
			"kind", kind,
			observability.DurationKey, elapsed.Milliseconds(),
			observability.ErrorKey, err,
		)
		return "", fmt.Errorf("%w: %w", services.ErrUpstreamGenerator, err)
	}
	return text, nil
}

func (g *OllamaGenerator) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  g.config.Model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	backoff := g.config.RetryBackoff
	var lastErr error
	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("cancelled during retry: %w (last error: %w)", ctx.Err(), lastErr)
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait: %w", err)
		}

		text, err := g.post(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var retryable retryableError
		if !errors.As(err, &retryable) || ctx.Err() != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("giving up after %d attempts: %w", g.config.MaxRetries+1, lastErr)
}

func (g *OllamaGenerator) post(ctx context.Context, body []byte) (string, error) {
	url := strings.TrimRight(g.config.Endpoint, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", retryableError{fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", retryableError{fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", retryableError{statusErr}
		}
		return "", statusErr
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}
	return out.Response, nil
}
