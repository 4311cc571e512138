package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.spotify.com/v1/"
	DefaultTimeout = 30 * time.Second

	maxBodySize  = 32 << 20
	maxErrorBody = 512
)

// RetryBudget bounds the attempts made for a single page.
type RetryBudget struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryBudget returns 3 attempts spaced 2 seconds apart.
func DefaultRetryBudget() RetryBudget {
	return RetryBudget{MaxAttempts: 3, Delay: 2 * time.Second}
}

func (b RetryBudget) backoff(ctx context.Context) backoff.BackOff {
	attempts := max(b.MaxAttempts, 1)
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(b.Delay), uint64(attempts-1)),
		ctx,
	)
}

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Temporary reports whether the request may succeed if repeated.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// FetchError is returned when a page could not be obtained.
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	if e.Attempts > 0 {
		msg += fmt.Sprintf(" (after %d attempts)", e.Attempts)
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetcherOpts configures a [Fetcher]. Zero values select defaults.
type FetcherOpts struct {
	BaseURL    string
	Token      *oauth2.Token
	HTTPClient *http.Client
	Budget     RetryBudget
	Limiter    *rate.Limiter
	Observer   Observer
	Timeout    time.Duration
}

// Fetcher performs authorized GET requests against the Web API and walks paginated collections.
type Fetcher struct {
	base     *url.URL
	client   *http.Client
	budget   RetryBudget
	limiter  *rate.Limiter
	observer Observer
}

// NewFetcher creates a [Fetcher] sending the token as a bearer credential on every request.
func NewFetcher(opts FetcherOpts) (*Fetcher, error) {
	if opts.Token == nil || opts.Token.AccessToken == "" {
		return nil, fmt.Errorf("%w: access token", shared.ErrMissingCredentials)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %v", shared.ErrInvalidConfig, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var transport http.RoundTripper
	if opts.HTTPClient != nil {
		transport = opts.HTTPClient.Transport
	}
	client := &http.Client{
		Timeout:   timeout,
		Transport: &oauth2.Transport{Source: oauth2.StaticTokenSource(opts.Token), Base: transport},
	}

	budget := opts.Budget
	if budget.MaxAttempts <= 0 {
		budget = DefaultRetryBudget()
	}

	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}

	return &Fetcher{base: base, client: client, budget: budget, limiter: opts.Limiter, observer: observer}, nil
}

// Resolve returns the absolute form of target with params appended to its query.
func (f *Fetcher) Resolve(target string, params url.Values) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(target, "/"))
	if err != nil {
		return "", fmt.Errorf("%w: url %q: %v", shared.ErrInvalidArgument, target, err)
	}
	resolved := f.base.ResolveReference(ref).String()
	if len(params) == 0 {
		return resolved, nil
	}
	sep := "?"
	if strings.Contains(resolved, "?") {
		sep = "&"
	}
	return resolved + sep + params.Encode(), nil
}

// Get fetches a single resource and decodes it into out.
func (f *Fetcher) Get(ctx context.Context, target string, params url.Values, out any) error {
	resolved, err := f.Resolve(target, params)
	if err != nil {
		return err
	}
	return f.retry(ctx, resolved, func(body []byte) error {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrMalformedPage, err)
		}
		return nil
	})
}

// GetOne fetches a single page of a collection, retrying within the budget.
func (f *Fetcher) GetOne(ctx context.Context, target string, params url.Values) (*models.Page, error) {
	resolved, err := f.Resolve(target, params)
	if err != nil {
		return nil, err
	}
	return f.getPage(ctx, resolved)
}

// FetchAll walks a collection from its first page and returns every item in server order.
//
// The first request carries limit=pageSize; later requests use the server's next link verbatim.
// On any failure the collected items are discarded.
func (f *Fetcher) FetchAll(ctx context.Context, target string, pageSize int) (models.ItemCollection, error) {
	params := url.Values{}
	if pageSize > 0 {
		params.Set("limit", strconv.Itoa(pageSize))
	}

	current, err := f.Resolve(target, params)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	items := models.ItemCollection{}
	for {
		if seen[current] {
			return nil, &FetchError{URL: current, Err: shared.ErrPaginationLoop}
		}
		seen[current] = true

		page, err := f.getPage(ctx, current)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Items...)
		f.observer.OnPage(current, len(page.Items), len(items), page.TotalOr(-1))

		if !page.HasNext() {
			return items, nil
		}
		current = *page.Next
	}
}

func (f *Fetcher) getPage(ctx context.Context, target string) (*models.Page, error) {
	var page models.Page
	err := f.retry(ctx, target, func(body []byte) error {
		var p models.Page
		if err := json.Unmarshal(body, &p); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrMalformedPage, err)
		}
		if p.Items == nil {
			return fmt.Errorf("%w: missing items", shared.ErrMalformedPage)
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// retry runs one GET with the budget, handing each 2xx body to decode.
// A decode error counts as a failed attempt.
func (f *Fetcher) retry(ctx context.Context, target string, decode func([]byte) error) error {
	attempts := 0
	status := 0

	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		attempts++
		f.observer.OnRequest(target, attempts)

		body, code, err := f.do(ctx, target)
		status = code
		if err != nil {
			return err
		}
		return decode(body)
	}

	notify := func(err error, _ time.Duration) {
		f.observer.OnRetry(target, attempts, err)
	}

	err := backoff.RetryNotify(op, f.budget.backoff(ctx), notify)
	if err == nil {
		return nil
	}

	fe := &FetchError{URL: target, StatusCode: status, Attempts: attempts}
	var se *StatusError
	switch {
	case ctx.Err() != nil:
		fe.Err = ctx.Err()
	case errors.As(err, &se) && se.Code == http.StatusUnauthorized:
		fe.Err = fmt.Errorf("%w: %w", shared.ErrUnauthorized, err)
	case errors.As(err, &se) && !se.Temporary():
		fe.Err = fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	default:
		fe.Err = fmt.Errorf("%w: %w", shared.ErrFetchExhausted, err)
	}
	return fe
}

func (f *Fetcher) do(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, backoff.Permanent(fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, backoff.Permanent(ctx.Err())
		}
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Code: resp.StatusCode, Body: truncate(string(body), maxErrorBody)}
		if se.Temporary() {
			return nil, resp.StatusCode, se
		}
		return nil, resp.StatusCode, backoff.Permanent(se)
	}
	return body, resp.StatusCode, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
