package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// BreakerClient wraps a Client with per-host circuit breakers, so an
// outage of one registry host (say the downloads API) does not take
// requests to the others down with it.
type BreakerClient struct {
	client   *Client
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

// NewBreakerClient creates a circuit breaker wrapper around c.
// If c is nil, DefaultClient() is used.
func NewBreakerClient(c *Client) *BreakerClient {
	if c == nil {
		c = DefaultClient()
	}
	return &BreakerClient{
		client:   c,
		breakers: make(map[string]*circuit.Breaker),
	}
}

// breaker returns or creates a circuit breaker for the given host.
func (bc *BreakerClient) breaker(host string) *circuit.Breaker {
	bc.mu.RLock()
	breaker, exists := bc.breakers[host]
	bc.mu.RUnlock()

	if exists {
		return breaker
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists := bc.breakers[host]; exists {
		return breaker
	}

	// Trips after 5 consecutive failures, then retries with
	// exponential backoff.
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	opts := &circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	}
	breaker = circuit.NewBreakerWithOptions(opts)

	bc.breakers[host] = breaker
	return breaker
}

// GetJSON fetches url through the host's circuit breaker.
// A 404 counts as a valid upstream answer, not a failure: looking up a
// run of nonexistent package names must never trip the breaker.
func (bc *BreakerClient) GetJSON(ctx context.Context, rawURL string, v any) error {
	host := hostOf(rawURL)
	breaker := bc.breaker(host)

	if !breaker.Ready() {
		return fmt.Errorf("circuit breaker open for %s: %w", host, ErrUnavailable)
	}

	var opErr error
	err := breaker.Call(func() error {
		opErr = bc.client.GetJSON(ctx, rawURL, v)
		var httpErr *HTTPError
		if errors.As(opErr, &httpErr) && httpErr.IsNotFound() {
			return nil
		}
		return opErr
	}, 0)
	if err != nil {
		return err
	}
	return opErr
}

// BreakerState returns the current state ("open" or "closed") of each
// host's circuit breaker, for health reporting.
func (bc *BreakerClient) BreakerState() map[string]string {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	states := make(map[string]string)
	for host, breaker := range bc.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

// hostOf extracts the host from a URL for circuit breaker grouping.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		// Fallback to simple truncation
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
