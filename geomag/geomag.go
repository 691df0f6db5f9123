// Package geomag queries the NOAA geomagnetic calculator web service for
// magnetic declination.
package geomag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tzneal/ausgrid/internal/config"
	"github.com/tzneal/ausgrid/internal/metrics"
)

// DefaultURL is the NOAA declination calculator endpoint.
const DefaultURL = "https://www.ngdc.noaa.gov/geomag-web/calculators/calculateDeclination"

// Config configures the declination client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string // WMM or IGRF
	Timeout time.Duration
}

// ConfigFromEnv reads AUSGRID_GEOMAG_URL (default DefaultURL),
// AUSGRID_GEOMAG_KEY (required) and AUSGRID_GEOMAG_TIMEOUT (default 10s),
// after loading an optional .env file.
func ConfigFromEnv() (Config, error) {
	config.Load()
	cfg := Config{
		BaseURL: config.String("AUSGRID_GEOMAG_URL", DefaultURL),
		APIKey:  strings.TrimSpace(config.String("AUSGRID_GEOMAG_KEY", "")),
		Model:   config.String("AUSGRID_GEOMAG_MODEL", "WMM"),
	}
	if cfg.APIKey == "" {
		return cfg, errors.New("AUSGRID_GEOMAG_KEY is required")
	}
	timeout, err := config.Duration("AUSGRID_GEOMAG_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.Timeout = timeout
	return cfg, nil
}

// Client implements ausgrid.Declinator. It is safe for concurrent use.
type Client struct {
	session *http.Client
	baseURL string
	apiKey  string
	model   string
	logger  *slog.Logger
}

// NewClient returns a client for the configured service.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("geomag api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = "WMM"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		session: &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		logger:  logger,
	}, nil
}

type declinationResponse struct {
	Result []struct {
		Date        float64 `json:"date"`
		Declination float64 `json:"declination"`
	} `json:"result"`
	Model string `json:"model"`
}

// Declination returns the magnetic declination in degrees (east positive)
// at the location, elevation (metres) and date.
func (c *Client) Declination(ctx context.Context, lat, lng, elevation float64, date time.Time) (float64, error) {
	q := url.Values{}
	q.Set("lat1", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon1", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("elevation", strconv.FormatFloat(elevation, 'f', -1, 64))
	q.Set("elevationUnits", "M")
	q.Set("model", c.model)
	q.Set("startYear", strconv.Itoa(date.Year()))
	q.Set("startMonth", strconv.Itoa(int(date.Month())))
	q.Set("startDay", strconv.Itoa(date.Day()))
	q.Set("resultFormat", "json")
	q.Set("key", c.apiKey)
	endpoint := c.baseURL + "?" + q.Encode()

	start := time.Now()
	decl, err := c.fetch(ctx, endpoint)
	metrics.ObserveCollaborator("geomag", start, err)
	if err != nil {
		c.logger.Warn("declination request failed", "lat", lat, "lng", lng, "error", err)
		return 0, fmt.Errorf("geomag declination: %w", err)
	}
	c.logger.Debug("declination", "lat", lat, "lng", lng, "declination", decl, "elapsed", time.Since(start))
	return decl, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (float64, error) {
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var body declinationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(body.Result) == 0 {
		return 0, errors.New("response has no result")
	}
	return body.Result[0].Declination, nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Body)
}

func (c *Client) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries network errors, 429 and 5xx responses with exponential
// backoff until the context is cancelled.
func (c *Client) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	const maxAttempts = 4
	backoff := 200 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}
		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}
		c.logger.Debug("retrying declination request", "attempt", attempt, "backoff", backoff, "error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}
