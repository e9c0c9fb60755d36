// internal/adapters/amadeus/client.go
package amadeus

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"tripsearch/internal/adapters/observability"
	"tripsearch/internal/domain"
)

const (
	TestBaseURL       = "https://test.api.amadeus.com"
	ProductionBaseURL = "https://api.amadeus.com"

	providerName = "Amadeus"
	maxAttempts  = 4
	maxRetryWait = 2 * time.Second
)

// BaseURLFor maps AMADEUS_ENV to a hostname; anything but "production" is the sandbox.
func BaseURLFor(env string) string {
	if strings.EqualFold(env, "production") || strings.EqualFold(env, "prod") {
		return ProductionBaseURL
	}
	return TestBaseURL
}

type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RPS          int
	Timeout      time.Duration
}

// Client talks to the Amadeus self-service APIs. It is safe for concurrent use:
// the token source and limiter are shared, requests are independent.
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(opt Options) (*Client, error) {
	if opt.ClientID == "" || opt.ClientSecret == "" {
		return nil, fmt.Errorf("amadeus client id and secret are required")
	}
	if opt.BaseURL == "" {
		opt.BaseURL = TestBaseURL
	}
	if opt.RPS <= 0 {
		opt.RPS = 5
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 20 * time.Second
	}
	base := strings.TrimRight(opt.BaseURL, "/")

	cc := clientcredentials.Config{
		ClientID:     opt.ClientID,
		ClientSecret: opt.ClientSecret,
		TokenURL:     base + "/v1/security/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	// token requests use their own bounded client
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: opt.Timeout})
	hc := cc.Client(tokenCtx)
	hc.Timeout = opt.Timeout

	return &Client{
		base: base,
		hc:   hc,
		rl:   rate.NewLimiter(rate.Limit(opt.RPS), opt.RPS),
	}, nil
}

// ---- errors ----

var (
	ErrNotFound     = fmt.Errorf("amadeus: %w", domain.ErrNotFound)
	ErrUnauthorized = errors.New("amadeus: unauthorized")
	ErrForbidden    = errors.New("amadeus: forbidden")
)

// APIError is a non-2xx answer from Amadeus (or its token endpoint).
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amadeus: status %d: %s", e.Status, e.Detail())
}

// Detail prefers the structured errors[].detail/title fields, then the raw body.
func (e *APIError) Detail() string {
	if gjson.ValidBytes(e.Body) {
		var parts []string
		gjson.GetBytes(e.Body, "errors").ForEach(func(_, v gjson.Result) bool {
			msg := v.Get("detail").String()
			if msg == "" {
				msg = v.Get("title").String()
			}
			if msg != "" {
				parts = append(parts, msg)
			}
			return true
		})
		if len(parts) == 0 {
			if d := gjson.GetBytes(e.Body, "error_description").String(); d != "" {
				parts = append(parts, d)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	if b := strings.TrimSpace(string(e.Body)); b != "" {
		return b
	}
	return http.StatusText(e.Status)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound, domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	}
	return false
}

// upstream converts any transport/API failure into the domain error shape.
func upstream(err error) error {
	if err == nil {
		return nil
	}
	detail := err.Error()
	var ae *APIError
	if errors.As(err, &ae) {
		detail = ae.Detail()
	}
	return &domain.UpstreamError{Provider: providerName, Detail: detail, Err: err}
}

// ---- transport ----

// get performs a GET with client-side rate limiting and JSON decode into out.
// Only 429 is retried, honoring Retry-After up to maxRetryWait and never past
// the ctx deadline; faults (5xx, transport errors) are returned at once.
func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/vnd.amadeus+json, application/json")
		req.Header.Set("User-Agent", "tripsearch/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("amadeus", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var re *oauth2.RetrieveError
			if errors.As(err, &re) {
				status := http.StatusUnauthorized
				if re.Response != nil {
					status = re.Response.StatusCode
				}
				return &APIError{Status: status, Body: re.Body}
			}
			return err
		}
		observability.ObserveExternal("amadeus", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode %s: %w", endpoint, err)
			}
			return nil

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusTooManyRequests:
			wait := retryAfter(resp)
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = &APIError{Status: resp.StatusCode, Body: b}
			if i == maxAttempts-1 || !fitsDeadline(ctx, wait) || !sleepCtx(ctx, wait) {
				return lastErr
			}
			continue

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return &APIError{Status: resp.StatusCode, Body: b}
		}
	}

	return lastErr
}

// fitsDeadline reports whether waiting d is worthwhile: within maxRetryWait
// and leaving time before ctx's deadline.
func fitsDeadline(ctx context.Context, d time.Duration) bool {
	if d > maxRetryWait {
		return false
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= d {
		return false
	}
	return true
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff: 200ms, 400ms, 800ms... plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
