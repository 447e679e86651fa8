package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

const (
	defaultBaseURL     = "https://api.artifactsmmo.com"
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 5
	defaultBackoffBase = time.Second
)

// Game API error codes the controller reacts to. The server reports them both
// as the HTTP status and in the error body.
const (
	CodeNotConsumable     = 476
	CodeMissingTradeItems = 478
	CodeActionLocked      = 486
	CodeAlreadyAtLocation = 490
	CodeInventoryFull     = 497
	CodeCooldownActive    = 499
	CodeContentNotFound   = 598
)

// StatusError carries a non-retryable game API error code for callers that
// map codes to domain decisions.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// IsStatus reports whether err is a StatusError with the given code
func IsStatus(err error, code int) bool {
	se, ok := err.(*StatusError)
	return ok && se.Code == code
}

// Client talks to the game API. One instance is shared by every character:
// the rate limiter and circuit breaker guard the account-wide request budget.
// Retries go through the Clock so tests with a MockClock run instantly.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *circuitBreaker
	baseURL     string
	token       string
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
}

// Options tune the client beyond its defaults. Zero values fall back.
type Options struct {
	BaseURL           string
	MaxRetries        int
	BackoffBase       time.Duration
	RequestsPerSecond float64
	Clock             shared.Clock
}

// NewClient creates a client authenticated with the given account token.
// Defaults: 5 req/sec with burst 5, 5 retries, 1s exponential backoff with
// jitter.
func NewClient(token string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = defaultBackoffBase
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.Clock == nil {
		opts.Clock = shared.NewRealClock()
	}
	burst := int(opts.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
		breaker:     newCircuitBreaker(10, 30*time.Second, opts.Clock),
		baseURL:     opts.BaseURL,
		token:       token,
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
		clock:       opts.Clock,
	}
}

// apiErrorBody is the error envelope the game API wraps failures in
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// addJitter returns a duration between 50% and 150% of the original value
func addJitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.5 + rand.Float64()))
}

// request makes one logical API call with rate limiting and exponential
// backoff retries. Network failures, 429s, 5xx (except the game's own
// 4xx-style codes above 500) and the cooldown-active code retry; everything
// else surfaces as a StatusError.
func (c *Client) request(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	return c.breaker.Call(func() error {
		return c.requestOnce(ctx, method, path, body, result)
	})
}

func (c *Client) requestOnce(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		var reqBody io.Reader
		if body != nil {
			jsonData, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to marshal request body: %w", err)
			}
			reqBody = bytes.NewBuffer(jsonData)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("network error: %w", err)
			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			c.clock.Sleep(addJitter(c.backoffBase * time.Duration(1<<attempt)))
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if result != nil {
				if err := json.Unmarshal(respBody, result); err != nil {
					return fmt.Errorf("failed to unmarshal response: %w", err)
				}
			}
			return nil
		}

		code := resp.StatusCode
		var envelope apiErrorBody
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error.Code != 0 {
			code = envelope.Error.Code
		}

		if retryableCode(code) {
			lastErr = &StatusError{Code: code, Message: string(respBody)}
			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			c.clock.Sleep(addJitter(c.backoffBase * time.Duration(1<<attempt)))
			continue
		}

		return &StatusError{Code: code, Message: envelope.Error.Message}
	}

	if lastErr != nil {
		return fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return fmt.Errorf("max retries exceeded")
}

// retryableCode reports whether the code is transient. The cooldown-active
// code retries because the cooldown it complains about expires on its own;
// the game's other custom codes above 500 are decisions, not outages.
func retryableCode(code int) bool {
	switch {
	case code == http.StatusTooManyRequests:
		return true
	case code == CodeCooldownActive:
		return true
	case code == CodeActionLocked:
		return true
	case code == CodeContentNotFound:
		return false
	case code >= 500:
		return true
	default:
		return false
	}
}
