package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	api "github.com/GriffinCanCode/AgentOS/pipecore/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipe"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/resilience"
)

// Config configures a Client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// Retry applies to transport failures and to 503 (PipeFull) answers
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// RequestsPerSecond limits outgoing calls; zero means unlimited
	RequestsPerSecond float64
}

// DefaultConfig returns a Config for a server at baseURL
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		Timeout:      30 * time.Second,
		UserAgent:    "pipecore-client/1.0",
		RetryMax:     4,
		RetryWaitMin: 50 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	}
}

// Client talks to a pipecore server. It wraps resty with retries, a
// client-side rate limit and a circuit breaker.
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *resilience.Breaker
	Mu      sync.RWMutex
}

// New creates a client from cfg
func New(cfg Config) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil
	retryClient.CheckRetry = retryPolicy
	// hand the last response back so its error body can be decoded
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTransport(&retryablehttp.RoundTripper{Client: retryClient})

	breaker := resilience.New("pipecore", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: serverHealthy,
	})

	c := &Client{
		Resty:   restyClient,
		Limiter: rate.NewLimiter(rate.Inf, 0),
		Breaker: breaker,
	}
	c.SetRateLimit(cfg.RequestsPerSecond)
	return c
}

// retryPolicy retries transport failures and full pipes. Other API errors
// are final.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return resp.StatusCode == http.StatusServiceUnavailable, nil
}

// serverHealthy reports whether err leaves the server looking healthy
func serverHealthy(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status < http.StatusInternalServerError ||
			apiErr.Status == http.StatusServiceUnavailable
	}
	return err == nil
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if rps <= 0 {
		c.Limiter = rate.NewLimiter(rate.Inf, 0)
	} else {
		c.Limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
}

// SetHeader adds a default header
func (c *Client) SetHeader(key, value string) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetHeader(key, value)
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.Breaker.State()
}

// do sends one request through the limiter and breaker. result receives the
// decoded body of a successful response.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}, query map[string]string) error {
	c.Mu.RLock()
	limiter := c.Limiter
	c.Mu.RUnlock()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	return c.Breaker.Execute(func() error {
		c.Mu.RLock()
		req := c.Resty.R().
			SetContext(ctx).
			SetError(&api.ErrorResponse{})
		c.Mu.RUnlock()

		if body != nil {
			req.SetBody(body)
		}
		if result != nil {
			req.SetResult(result)
		}
		if len(query) > 0 {
			req.SetQueryParams(query)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		if resp.IsError() {
			return newAPIError(resp)
		}
		return nil
	})
}

// APIError is a failed API call. It unwraps to the pipe sentinel of its
// kind, so errors.Is(err, pipe.ErrPipeFull) works across the wire.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func newAPIError(resp *resty.Response) *APIError {
	e := &APIError{Status: resp.StatusCode(), Kind: "Internal", Message: resp.Status()}
	if body, ok := resp.Error().(*api.ErrorResponse); ok && body.Kind != "" {
		e.Kind = body.Kind
		e.Message = body.Error
	}
	return e
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pipecore: %s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return pipe.KindError(e.Kind)
}
