package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"bandroom/internal/metrics"
	"bandroom/internal/models"

	"github.com/rs/zerolog"
)

// ErrNoEndpoint - шлюз создан без URL удалённого хранилища
var ErrNoEndpoint = errors.New("remote endpoint is not configured")

// Client talks to the single remote document-store endpoint: a GET returns
// the whole dataset, a POST overwrites it. Writes are best-effort; the
// caller is expected to absorb failures.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *zerolog.Logger
}

func New(endpoint string, timeout time.Duration, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// WithAPIKey attaches the key the document store expects in x-api-key.
func (c *Client) WithAPIKey(key string) *Client {
	c.apiKey = key
	return c
}

// FetchAll reads the full dataset. Fields missing from the response default
// to empty collections. Safe to call repeatedly.
func (c *Client) FetchAll(ctx context.Context) (models.Snapshot, error) {
	if c.endpoint == "" {
		return models.Snapshot{}, ErrNoEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("build fetch request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncFetch("error")
		return models.Snapshot{}, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.IncFetch("error")
		return models.Snapshot{}, fmt.Errorf("fetch dataset: unexpected status %d", resp.StatusCode)
	}

	var snapshot models.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		metrics.IncFetch("error")
		return models.Snapshot{}, fmt.Errorf("decode dataset: %w", err)
	}

	metrics.IncFetch("ok")
	return snapshot, nil
}

// PushAll overwrites the remote dataset with the given snapshot. This is a
// full overwrite with no conflict detection: concurrent pushes race and the
// later write silently wins. The returned error is for logging only; by
// contract it is not retried and not surfaced to users.
func (c *Client) PushAll(ctx context.Context, snapshot models.Snapshot) error {
	if c.endpoint == "" {
		return ErrNoEndpoint
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncPush("error")
		return fmt.Errorf("push dataset: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.IncPush("error")
		return fmt.Errorf("push dataset: unexpected status %d", resp.StatusCode)
	}

	metrics.IncPush("ok")
	if c.logger != nil {
		c.logger.Debug().
			Int("bookings", len(snapshot.Bookings)).
			Int("rules", len(snapshot.Rules)).
			Int("specials", len(snapshot.SpecialSchedules)).
			Msg("snapshot pushed")
	}
	return nil
}
