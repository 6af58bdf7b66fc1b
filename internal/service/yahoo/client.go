package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"Cephu/internal/domain/models"
	"Cephu/internal/domain/repository"
	"Cephu/internal/service/ratelimit"
	xhttp "Cephu/pkg/http"
	applogger "Cephu/pkg/logger"
	"Cephu/pkg/validation"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Option configures Client.
type Option func(*Client)

// Client downloads OHLCV bars from the v8 chart endpoint.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	transport http.RoundTripper
	http      *xhttp.Client
	limiter   *ratelimit.Limiter
	metrics   repository.Metrics
	log       *applogger.Logger
}

// New creates a chart client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		timeout:   15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = xhttp.NewClient(xhttp.WithTimeout(c.timeout), xhttp.WithTransport(c.transport))
	return c
}

// WithBaseURL points the client at another host, mostly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithMetrics(m repository.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// SetLogger sets an optional logger.
func (c *Client) SetLogger(l *applogger.Logger) { c.log = l }

// FetchBars downloads the bars of symbol over period at interval. An empty
// answer is models.ErrNoData; malformed arguments are models.ErrInvalidInput.
func (c *Client) FetchBars(ctx context.Context, symbol, period string, interval repository.Interval) (models.Series, error) {
	if err := validation.ValidateSymbol(symbol); err != nil {
		return models.Series{}, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if err := validation.ValidatePeriod(period); err != nil {
		return models.Series{}, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if !repository.IsValidInterval(interval) {
		return models.Series{}, fmt.Errorf("%w: unsupported interval %q", models.ErrInvalidInput, interval)
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(symbol))
	if c.limiter != nil {
		host := endpoint
		if u, err := url.Parse(endpoint); err == nil {
			host = u.Host
		}
		if err := c.limiter.Wait(ctx, host); err != nil {
			return models.Series{}, fmt.Errorf("rate limit %s: %w", symbol, err)
		}
	}

	start := time.Now()
	series, err := c.fetch(ctx, endpoint, symbol, period, interval)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordError("fetch")
		}
		return models.Series{}, err
	}
	if c.metrics != nil {
		c.metrics.RecordFetch(symbol, time.Since(start).Seconds(), len(series.Bars))
	}
	if c.log != nil {
		c.log.Debug("bars fetched",
			applogger.String("symbol", symbol),
			applogger.String("period", period),
			applogger.String("interval", string(interval)),
			applogger.Int("bars", len(series.Bars)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return series, nil
}

func (c *Client) fetch(ctx context.Context, endpoint, symbol, period string, interval repository.Interval) (models.Series, error) {
	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     endpoint,
		Headers: map[string]string{"User-Agent": c.userAgent, "Accept": "application/json"},
		QueryParams: map[string][]string{
			"range":          {period},
			"interval":       {string(interval)},
			"includePrePost": {"false"},
		},
	})
	if err != nil {
		return models.Series{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	var chart chartResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&chart)

	if resp.StatusCode == http.StatusNotFound {
		return models.Series{}, fmt.Errorf("fetch %s: %w", symbol, models.ErrNoData)
	}
	if resp.StatusCode != http.StatusOK {
		return models.Series{}, fmt.Errorf("fetch %s: unexpected status %d", symbol, resp.StatusCode)
	}
	if decodeErr != nil {
		return models.Series{}, fmt.Errorf("decode %s: %w", symbol, decodeErr)
	}
	if chart.Chart.Error != nil {
		return models.Series{}, fmt.Errorf("fetch %s: %s: %s", symbol, chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return models.Series{}, fmt.Errorf("fetch %s: %w", symbol, models.ErrNoData)
	}

	series := chart.Chart.Result[0].toSeries(symbol, string(interval))
	if series.Empty() {
		return models.Series{}, fmt.Errorf("fetch %s: %w", symbol, models.ErrNoData)
	}
	return series, nil
}
