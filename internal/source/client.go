// Package source fetches task instances from the upstream family calendar
// service, with a deterministic mock generator used as a fallback when the
// upstream is unreachable.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	"calkids/internal/calendar"
	"calkids/internal/dates"
	"calkids/internal/model"
)

// ErrUnavailable is returned when the upstream cannot be reached after
// retries. Callers decide whether to surface the error or fall back to
// mock data.
var ErrUnavailable = errors.New("calendar source unavailable")

const (
	requestTimeout = 10 * time.Second
	maxRetries     = 2
	retryBase      = 200 * time.Millisecond
)

// errPermanent marks upstream errors that retrying cannot fix, such as a
// 4xx response.
type errPermanent struct{ err error }

func (e errPermanent) Error() string { return e.err.Error() }
func (e errPermanent) Unwrap() error { return e.err }

// Client fetches and normalizes task payloads from an upstream calendar API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates an upstream client. baseURL points at the calendar
// service root, e.g. "https://calendar.example.com".
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

// FetchRange retrieves all task instances for a household between two days
// inclusive. The upstream may answer with a flat array, a week envelope, or
// a single-day envelope; all three shapes decode to the same instances.
// Transient failures are retried with exponential backoff before giving up
// with ErrUnavailable.
func (c *Client) FetchRange(ctx context.Context, householdID string, from, to time.Time) ([]model.TaskInstance, error) {
	u := fmt.Sprintf("%s/tasks?household=%s&from=%s&to=%s",
		c.baseURL, url.QueryEscape(householdID), dates.DayKey(from), dates.DayKey(to))

	var body []byte
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		data, err := c.fetch(ctx, u)
		if err != nil {
			var perm errPermanent
			if errors.As(err, &perm) {
				return err
			}
			c.logger.Warn("upstream fetch failed, retrying", "url", u, "error", err)
			return retry.RetryableError(err)
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	instances, err := calendar.DecodePayload(body)
	if err != nil {
		return nil, fmt.Errorf("decode upstream payload: %w", err)
	}
	return instances, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("upstream returned status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, errPermanent{err}
		}
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	return data, nil
}
