package esios

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// dayURLLayout is the date format the archive endpoint expects in its query
// string (dd-MM-yyyy).
const dayURLLayout = "02-01-2006"

// NetworkError reports a connect or read failure for one source URL.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("esios: fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ClientOptions parameterise the provider HTTP client.
type ClientOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client downloads PVPC payloads from the e·sios archive endpoint.
type Client struct {
	opts    ClientOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewClient constructs a provider client.
func NewClient(opts ClientOptions, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.esios.ree.es/archives/80/download_json"
	}

	return &Client{
		opts:    opts,
		logger:  logger.With().Str("component", "esios_client").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// DayURL builds the archive URL for one provider-local day.
func (c *Client) DayURL(day time.Time) string {
	return fmt.Sprintf("%s?date=%s", c.baseURL, day.Format(dayURLLayout))
}

// Fetch GETs one source URL and returns the full response body. Connect and
// read failures, and non-200 statuses, are NetworkErrors. An empty body is
// returned as-is; callers treat it as nothing to do.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "pvpcwatch/1.0")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	c.logger.Debug().Str("url", url).Int("bytes", len(body)).Msg("payload downloaded")
	return body, nil
}
