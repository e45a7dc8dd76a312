package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

const maxResponseBytes = 4 << 20

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// An unknown city is a caller problem, not a provider outage.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var fault *ProviderFault
			return errors.As(err, &fault) && !fault.retryable()
		},
	})
}

// doRequest executes the request built by buildRequest with retries,
// exponential backoff and a circuit breaker, returning the 2xx body.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	backoff BackoffConfig,
	op string,
	buildRequest func(ctx context.Context) (*http.Request, error),
) ([]byte, error) {
	var attempt int

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, err
		}

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := client.Do(req)
			if execErr != nil {
				return nil, &NetworkFault{Op: op, Err: redactURL(execErr)}
			}
			defer resp.Body.Close()

			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			if readErr != nil {
				return nil, &NetworkFault{Op: op, Err: redactURL(readErr)}
			}

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return nil, parseProviderFault(resp.StatusCode, body)
			}
			return body, nil
		})

		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, fmt.Errorf("%s: unexpected result type from circuit breaker", op)
			}
			return body, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %w: %v", op, ErrCircuitOpen, err)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if !shouldRetry(err) || attempt >= backoff.MaxRetries {
			return nil, err
		}

		delay := backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > backoff.MaxInterval && backoff.MaxInterval > 0 {
			delay = backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

func shouldRetry(err error) bool {
	var fault *ProviderFault
	if errors.As(err, &fault) {
		return fault.retryable()
	}
	var netFault *NetworkFault
	return errors.As(err, &netFault)
}

// redactURL drops the request URL from transport errors; its query carries
// the API key.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
