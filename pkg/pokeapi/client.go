// Package pokeapi is a small read-only client for the PokeAPI REST
// endpoints the pipeline consumes. Requests are retried per a
// RetryPolicy; the client is stateless across calls.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pokedata/pokepipeline/models"
)

type Client struct {
	baseURL string
	client  *http.Client
	policy  RetryPolicy
	logger  *slog.Logger

	// sleep is swapped out in tests to avoid real backoff delays.
	sleep func(time.Duration)
}

// NewClient builds a client from run configuration.
func NewClient(cfg *models.Config, logger *slog.Logger) *Client {
	maxAttempts := cfg.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		policy: RetryPolicy{
			MaxAttempts: maxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
			Retryable:   DefaultRetryable,
		},
		logger: logger,
		sleep:  time.Sleep,
	}
}

// GetPokemon fetches the pokemon document for an id.
func (c *Client) GetPokemon(ctx context.Context, id int) (*models.Pokemon, error) {
	var p models.Pokemon
	if _, err := c.GetJSON(ctx, fmt.Sprintf("%s/pokemon/%d", c.baseURL, id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetSpecies fetches a species document by its resource URL, as
// referenced from a pokemon document.
func (c *Client) GetSpecies(ctx context.Context, url string) (*models.Species, error) {
	var s models.Species
	if _, err := c.GetJSON(ctx, url, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetEvolutionChain fetches an evolution-chain document by URL.
func (c *Client) GetEvolutionChain(ctx context.Context, url string) (*models.EvolutionChain, error) {
	var ec models.EvolutionChain
	if _, err := c.GetJSON(ctx, url, &ec); err != nil {
		return nil, err
	}
	return &ec, nil
}

// GetJSON issues a GET and decodes the response body into out,
// retrying transient failures per the client's policy. It returns the
// number of attempts made, so callers can log retry counts.
func (c *Client) GetJSON(ctx context.Context, url string, out any) (int, error) {
	body, attempts, err := c.getBody(ctx, url)
	if err != nil {
		return attempts, err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return attempts, &FetchError{
			URL:        url,
			StatusCode: http.StatusOK,
			Attempts:   attempts,
			Err:        fmt.Errorf("failed to decode response body: %w", err),
		}
	}
	if attempts > 1 {
		c.logger.Info("request succeeded after retries", "url", url, "retries", attempts-1)
	}
	return attempts, nil
}

func (c *Client) getBody(ctx context.Context, url string) ([]byte, int, error) {
	var lastStatus int
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.policy.backoff(attempt - 1)
			c.logger.Warn("retrying request", "url", url, "attempt", attempt, "delay", delay.String())
			select {
			case <-ctx.Done():
				return nil, attempt - 1, &FetchError{URL: url, Attempts: attempt - 1, Err: ctx.Err()}
			default:
			}
			c.sleep(delay)
		}

		body, status, err := c.fetchOnce(ctx, url)
		if err == nil && status == http.StatusOK {
			return body, attempt, nil
		}
		lastStatus, lastErr = status, err

		if !c.policy.Retryable(status, err) {
			return nil, attempt, &FetchError{URL: url, StatusCode: status, Attempts: attempt, Err: err}
		}
		if err != nil {
			c.logger.Warn("request failed", "url", url, "attempt", attempt, "error", err)
		} else {
			c.logger.Warn("request returned transient status", "url", url, "attempt", attempt, "status", status)
		}
	}

	return nil, c.policy.MaxAttempts, &FetchError{
		URL:        url,
		StatusCode: lastStatus,
		Attempts:   c.policy.MaxAttempts,
		Err:        lastErr,
	}
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
