// Package remote performs the network calls against the financial-data
// backend, one per domain, mapping transport outcomes into typed errors.
// It holds no cache and never retries; both belong to the caller.
package remote

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/wealthlens/wealthlens/internal/domain"
)

const (
	// DefaultTimeout bounds one financial-sync call.
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 8 << 20
)

// Config carries the client's construction parameters.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client fetches one domain per call over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// NewClient builds a remote client. A zero Timeout falls back to
// DefaultTimeout.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: cfg.BaseURL,
		logger:  logger.Named("remote"),
		now:     time.Now,
	}
}

// Fetch performs the single POST for one domain and decodes the body.
// Failures come back as *Error with a classified kind; a deadline expiry
// is always KindTimeout.
func (c *Client) Fetch(ctx context.Context, d domain.Domain) (domain.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.http.Timeout)
	defer cancel()

	endpoint := c.baseURL + d.Endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString("{}"))
	if err != nil {
		return domain.Snapshot{}, &Error{Kind: KindUnknown, Domain: d, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	started := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		kind := classifyTransport(err)
		c.logger.Warn("fetch failed",
			zap.String("domain", d.String()),
			zap.String("kind", kind.String()),
			zap.Error(err))
		return domain.Snapshot{}, &Error{Kind: kind, Domain: d, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		err := errors.New(http.StatusText(resp.StatusCode))
		c.logger.Warn("fetch returned non-OK status",
			zap.String("domain", d.String()),
			zap.Int("status", resp.StatusCode))
		return domain.Snapshot{}, &Error{Kind: KindHTTPStatus, Domain: d, Status: resp.StatusCode, Err: err}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Snapshot{}, &Error{Kind: classifyTransport(err), Domain: d, Err: err}
	}

	snap, err := domain.Decode(d, body, c.now())
	if err != nil {
		return domain.Snapshot{}, &Error{Kind: KindMalformedBody, Domain: d, Err: err}
	}

	c.logger.Debug("fetch completed",
		zap.String("domain", d.String()),
		zap.Duration("elapsed", c.now().Sub(started)))
	return snap, nil
}

// classifyTransport separates deadline expiries from connectivity
// failures so timeouts are never reported as KindUnknown.
func classifyTransport(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return KindNoConnection
	}
	return KindUnknown
}
