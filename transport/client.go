package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	security "github.com/goliatone/go-security-jwt"
)

// DefaultTimeout bounds every outbound call unless overridden.
const DefaultTimeout = 10 * time.Second

const maxBodySize = 1 << 20

var errDecode = errors.New("malformed response body")

// Client performs outbound calls and decodes JSON responses into out.
// A nil out discards the body.
type Client interface {
	Send(ctx context.Context, req *http.Request, out any) error
	Get(ctx context.Context, url string, out any) error
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per call timeout of the default http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithRetry retries Get calls that failed on the network or with a 5xx/429
// status, up to maxTries attempts in total. Send is never retried.
func WithRetry(maxTries uint, initialInterval time.Duration) Option {
	return func(c *HTTPClient) {
		c.maxTries = maxTries
		if initialInterval > 0 {
			c.retryInterval = initialInterval
		}
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(logger security.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = security.NormalizeLogger(logger)
	}
}

// HTTPClient is a stateless Client over net/http. It is safe to share
// across goroutines.
type HTTPClient struct {
	client        *http.Client
	timeout       time.Duration
	maxTries      uint
	retryInterval time.Duration
	logger        security.Logger
}

var _ Client = (*HTTPClient)(nil)

// New creates an HTTPClient.
func New(opts ...Option) *HTTPClient {
	c := &HTTPClient{
		timeout:       DefaultTimeout,
		maxTries:      1,
		retryInterval: 200 * time.Millisecond,
		logger:        security.DefaultLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

// HTTPClient exposes the underlying client for libraries that drive their
// own requests.
func (c *HTTPClient) HTTPClient() *http.Client {
	return c.client
}

// Send executes req and decodes a 2xx JSON body into out. The response body
// is always closed.
func (c *HTTPClient) Send(ctx context.Context, req *http.Request, out any) error {
	if req == nil {
		return &Error{Err: errors.New("nil request")}
	}
	return c.do(req.WithContext(ctx), out)
}

// Get fetches rawURL and decodes a 2xx JSON body into out.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, out any) error {
	attempt := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			target := redact(rawURL)
			return struct{}{}, backoff.Permanent(&Error{Method: http.MethodGet, URL: target, Err: scrubURLError(err, target)})
		}
		req.Header.Set("Accept", "application/json")

		err = c.do(req, out)
		var terr *Error
		if err != nil && errors.As(err, &terr) && !retryable(terr) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	if c.maxTries <= 1 {
		_, err := attempt()
		return unwrapPermanent(err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	policy.Reset()

	_, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("transport retrying GET %s in %v: %v", redact(rawURL), next, err)
		}),
	)
	if err == nil {
		return nil
	}

	var terr *Error
	if errors.As(err, &terr) {
		return terr
	}
	return &Error{Method: http.MethodGet, URL: redact(rawURL), Err: err}
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	target := redact(req.URL.String())

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Method: req.Method, URL: target, Err: scrubURLError(err, target)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &Error{Method: req.Method, URL: target, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Method: req.Method,
			URL:    target,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{
			Method: req.Method,
			URL:    target,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
			Err:    fmt.Errorf("%w: %v", errDecode, err),
		}
	}

	return nil
}

// Send executes req through c and returns the decoded body.
func Send[T any](ctx context.Context, c Client, req *http.Request) (T, error) {
	var out T
	if err := c.Send(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Get fetches rawURL through c and returns the decoded body.
func Get[T any](ctx context.Context, c Client, rawURL string) (T, error) {
	var out T
	if err := c.Get(ctx, rawURL, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// NewFormRequest builds a URL-encoded POST request.
func NewFormRequest(ctx context.Context, rawURL string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		target := redact(rawURL)
		return nil, &Error{Method: http.MethodPost, URL: target, Err: scrubURLError(err, target)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// IsMalformed reports whether err was caused by an undecodable body.
func IsMalformed(err error) bool {
	return errors.Is(err, errDecode)
}

func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}

// redact strips query values so secrets passed as parameters never reach
// logs or error messages.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if i := strings.IndexByte(rawURL, '?'); i >= 0 {
			return rawURL[:i] + "?xxx"
		}
		return rawURL
	}
	if u.RawQuery == "" {
		return u.String()
	}
	query := u.Query()
	for key := range query {
		query.Set(key, "xxx")
	}
	u.RawQuery = query.Encode()
	return u.String()
}

// scrubURLError replaces the URL a *url.Error carries with target.
func scrubURLError(err error, target string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &url.Error{Op: uerr.Op, URL: target, Err: uerr.Err}
	}
	return err
}
