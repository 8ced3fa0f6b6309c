package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GriffinCanCode/docdesk/internal/infrastructure/config"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/docdesk/internal/shared/id"
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Client talks to the document backend. Every call shares one cookie jar,
// so the backend session established at login is sent with each request.
// Nothing is retried: failures surface to the caller once.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
	baseURL *url.URL
}

// Option customizes a Client
type Option func(*Client)

// WithLogger sets the client logger
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l.Component("backend") }
}

// WithMetrics records per-operation call outcomes
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer opens a span for every backend call
func WithTracer(t *tracing.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithHTTPClient replaces the transport, e.g. with an httptest server client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.resty.SetTransport(hc.Transport) }
}

// New creates a backend client from configuration
func New(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", cfg.BaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if cookie, ok := parseCookie(cfg.SessionCookie); ok {
		jar.SetCookies(base, []*http.Cookie{cookie})
	}

	// Pooled transport only; retries stay off on both layers.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	restyClient := resty.New().
		SetBaseURL(base.String()).
		SetTransport(retryClient.HTTPClient.Transport).
		SetCookieJar(jar).
		SetRetryCount(0).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetHeader("User-Agent", cfg.UserAgent)
	if cfg.Timeout > 0 {
		restyClient.SetTimeout(cfg.Timeout)
	}

	c := &Client{
		resty:   restyClient,
		limiter: newLimiter(cfg.RequestsPerSecond),
		logger:  logging.NewNop(),
		baseURL: base,
	}
	for _, opt := range opts {
		opt(c)
	}
	restyClient.SetLogger(c.logger.Sugar())

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 10
	}
	c.breaker = resilience.New("backend", resilience.Settings{
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(name string, from, to resilience.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			c.metrics.SetBreakerState(int(to))
		},
	})

	restyClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		tracing.Inject(req.Context(), req.Header)
		if req.Header.Get(tracing.HeaderTraceID) == "" {
			req.SetHeader(tracing.HeaderTraceID, id.NewRequestID().String())
		}
		return nil
	})

	return c, nil
}

// BaseURL returns the backend root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// BreakerName returns the circuit breaker name
func (c *Client) BreakerName() string {
	return c.breaker.Name()
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// BreakerCounts returns the circuit breaker counts for the current interval
func (c *Client) BreakerCounts() resilience.Counts {
	return c.breaker.Counts()
}

// Cookies returns the cookies the jar would send to the backend
func (c *Client) Cookies() []*http.Cookie {
	return c.resty.GetClient().Jar.Cookies(c.baseURL)
}

// request waits for the limiter and returns a request bound to ctx
func (c *Client) request(ctx context.Context, op string) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &types.NetworkError{Op: op, Err: fmt.Errorf("rate limit: %w", err)}
	}
	return c.resty.R().SetContext(ctx), nil
}

// ids labels a backend span with the folder and document a call targets
type ids map[string]int64

// execute runs one backend call through the breaker and maps the outcome
// onto the error taxonomy. A nil error means a 2xx response.
func (c *Client) execute(ctx context.Context, op string, tags ids, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	timer := monitoring.NewTimer(c.metrics, op)
	span, ctx := c.tracer.StartSpan(ctx, "backend."+op)
	for key, value := range tags {
		span.SetTag(key, strconv.FormatInt(value, 10))
	}
	defer func() {
		span.Finish()
		c.tracer.Submit(span)
	}()

	req, err := c.request(ctx, op)
	if err != nil {
		timer.Stop(monitoring.OutcomeNetwork)
		span.SetError(err)
		return nil, err
	}

	resp, err := resilience.Do(c.breaker, func() (*resty.Response, error) {
		resp, err := send(req)
		if err != nil {
			return nil, &types.NetworkError{Op: op, Err: err}
		}
		if resp.IsError() || resp.StatusCode() >= http.StatusMultipleChoices {
			return resp, &types.BackendError{Op: op, Status: resp.StatusCode(), Message: errorMessage(resp)}
		}
		return resp, nil
	})

	switch {
	case err == nil:
		timer.Stop(monitoring.OutcomeSuccess)
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		err = &types.NetworkError{Op: op, Err: err}
		timer.Stop(monitoring.OutcomeNetwork)
	case types.IsBackend(err):
		timer.Stop(monitoring.OutcomeBackend)
	default:
		timer.Stop(monitoring.OutcomeNetwork)
	}

	if resp != nil {
		span.SetStatus(resp.StatusCode())
	}
	if err != nil {
		span.SetError(err)
		c.logger.Debug("backend call failed", zap.String("op", op), zap.Error(err))
	}
	return resp, err
}

// countsAsHealthy keeps caller mistakes (4xx) from tripping the breaker
func countsAsHealthy(err error) bool {
	if err == nil {
		return true
	}
	var be *types.BackendError
	return errors.As(err, &be) && be.Status < http.StatusInternalServerError
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func parseCookie(raw string) (*http.Cookie, bool) {
	name, value, ok := strings.Cut(strings.TrimSpace(raw), "=")
	if !ok || name == "" {
		return nil, false
	}
	return &http.Cookie{Name: name, Value: value, Path: "/"}, true
}
