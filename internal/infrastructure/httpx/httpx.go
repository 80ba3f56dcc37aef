package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// ErrDecode marks a 2xx response whose body did not decode into out.
var ErrDecode = errors.New("decode response")

// StatusError is returned for non-2xx responses after retries are exhausted
// (5xx) or immediately (anything else).
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

const maxErrBody = 256

// Client issues JSON requests with bounded exponential retry on transport
// errors and 5xx. Limiter, when set, gates every attempt.
type Client struct {
	HTTP    *http.Client
	Token   string
	Limiter *rate.Limiter

	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 1 * time.Second
	exp.MaxElapsedTime = 3 * time.Second
	if c.InitialInterval > 0 {
		exp.InitialInterval = c.InitialInterval
	}
	if c.MaxInterval > 0 {
		exp.MaxInterval = c.MaxInterval
	}
	if c.MaxElapsed > 0 {
		exp.MaxElapsedTime = c.MaxElapsed
	}
	return backoff.WithContext(exp, ctx)
}

// GetJSON fetches url and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.DoJSON(ctx, req, out)
}

// DoJSON sends req and decodes a 2xx body into out. req must not carry a body
// that cannot be replayed.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	req = req.WithContext(ctx)

	op := func() error {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		resp, err := hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
			se := &StatusError{Code: resp.StatusCode, Body: string(body)}
			if resp.StatusCode >= 500 {
				return se
			}
			return backoff.Permanent(se)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %w", ErrDecode, err))
		}
		return nil
	}
	return backoff.Retry(op, c.backOff(ctx))
}
