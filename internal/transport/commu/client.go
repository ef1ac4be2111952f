// Package commu is the GraphQL client for the Commu notice backend.
package commu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/domain/notice"
	"github.com/commu-practical/helpmap/internal/logger"
	"github.com/commu-practical/helpmap/internal/metrics"
)

const (
	providerName = "commu"

	msgNetwork      = "Network error while contacting Commu API."
	msgUnsuccessful = "Commu API returned an unsuccessful response."

	maxResponseBytes = 4 << 20
)

// Config holds the notice backend settings.
type Config struct {
	Endpoint      string
	BearerToken   string
	Timeout       time.Duration // per attempt
	RetryAttempts int
	RetryDelay    time.Duration
	UserAgent     string
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// Client queries noticesWhereDistance.
type Client struct {
	endpoint  string
	token     string
	timeout   time.Duration
	attempts  int
	delay     time.Duration
	userAgent string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient creates a notice backend client.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		token:     cfg.BearerToken,
		timeout:   timeout,
		attempts:  attempts,
		delay:     max(cfg.RetryDelay, 0),
		userAgent: cfg.UserAgent,
		http:      hc,
		logger:    l,
	}
}

// Fetch runs one notice query with bounded retries. Failures are returned as
// *domain.UpstreamError.
func (c *Client) Fetch(ctx context.Context, q notice.Query) (notice.Page, error) {
	body, err := json.Marshal(graphQLRequest{
		Query: nearbyNoticesQuery,
		Variables: queryVariables{
			Distance: q.DistanceKm,
			Lat:      q.Lat,
			Long:     q.Long,
			First:    q.PageSize,
			Page:     q.Page,
		},
	})
	if err != nil {
		return notice.Page{}, fmt.Errorf("encode query: %w", err)
	}

	log := logger.FromContext(ctx, c.logger)

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.delay); err != nil {
				return notice.Page{}, &domain.UpstreamError{Kind: domain.KindNetwork, Message: msgNetwork}
			}
		}

		page, retryable, err := c.attempt(ctx, body, q)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		log.Debug("commu attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.attempts),
			zap.Error(err),
		)
	}
	return notice.Page{}, lastErr
}

// attempt performs one POST. retryable reports whether another attempt may succeed.
func (c *Client) attempt(ctx context.Context, body []byte, q notice.Query) (_ notice.Page, retryable bool, err error) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		if err != nil {
			outcome = string(domain.KindOf(err))
		}
		metrics.ObserveUpstream(providerName, outcome, start)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return notice.Page{}, false, &domain.UpstreamError{Kind: domain.KindUpstream, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return notice.Page{}, true, &domain.UpstreamError{Kind: domain.KindNetwork, Message: msgNetwork}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return notice.Page{}, true, &domain.UpstreamError{Kind: domain.KindNetwork, Status: resp.StatusCode, Message: msgNetwork}
	}

	var parsed graphQLResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	if !ok || len(parsed.Errors) > 0 {
		return notice.Page{}, isRetryableStatus(resp.StatusCode), classify(resp.StatusCode, parsed.Errors)
	}
	if decodeErr != nil {
		return notice.Page{}, false, &domain.UpstreamError{Kind: domain.KindUpstream, Status: resp.StatusCode, Message: msgUnsuccessful}
	}

	result := parsed.Data.NoticesWhereDistance
	if result == nil {
		return notice.Page{Notices: []notice.Notice{}, Paginator: toPaginator(nil, 0, q.Page, q.PageSize)}, false, nil
	}
	notices := toNotices(result.Data)
	return notice.Page{
		Notices:   notices,
		Paginator: toPaginator(result.PaginatorInfo, len(notices), q.Page, q.PageSize),
	}, false, nil
}

// classify maps a failed response onto the error taxonomy.
func classify(status int, errs []graphQLError) *domain.UpstreamError {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Message != "" {
			messages = append(messages, e.Message)
		}
	}
	message := strings.Join(messages, " | ")

	kind := domain.KindUpstream
	if status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(strings.ToLower(message), "unauth") {
		kind = domain.KindAuth
	}
	if message == "" {
		message = msgUnsuccessful
	}
	return &domain.UpstreamError{Kind: kind, Status: status, Message: message}
}

func isRetryableStatus(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err() //nolint:wrapcheck // context error is the signal
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // context error is the signal
	case <-t.C:
		return nil
	}
}
