// Package footballdata collects teams and matches from a
// football-data.org style provider. All outbound traffic goes through
// a shared per-source rate limiter, a retry policy for transient
// failures, and a circuit breaker that sheds load once the provider
// starts failing consistently.
package footballdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/matchpulse/collector/internal/platform/logging"
	"github.com/matchpulse/collector/internal/platform/ratelimit"
	"github.com/matchpulse/collector/internal/platform/resilience"
	"github.com/matchpulse/collector/internal/usecase"
)

const (
	defaultBaseURL  = "https://api.football-data.org/v4"
	authTokenHeader = "X-Auth-Token"
	maxBodyBytes    = 6 << 20
)

var authHeaderRegex = regexp.MustCompile(`(?i)x-auth-token:\s*\S+`)
var errProviderTransient = crerr.New("football-data transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	SourceName     string
	Timeout        time.Duration
	Retry          resilience.RetryPolicy
	Logger         *logging.Logger
	Limiter        *ratelimit.SourceLimiter
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	sourceName string
	retry      resilience.RetryPolicy
	logger     *logging.Logger
	limiter    *ratelimit.SourceLimiter
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	retry := cfg.Retry
	if retry.Classify == nil {
		retry.Classify = IsTransient
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		sourceName: strings.TrimSpace(cfg.SourceName),
		retry:      retry,
		logger:     logger,
		limiter:    cfg.Limiter,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
}

// IsTransient reports whether an error is worth another attempt.
// Permission rejections are final for the current run; throttling,
// network failures, and 5xx responses are not.
func IsTransient(err error) bool {
	return crerr.Is(err, errProviderTransient)
}

func (c *Client) SourceName() string {
	return c.sourceName
}

// Close releases idle upstream connections. Safe to call more than
// once.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// FetchCompetitions lists the competitions visible to the configured
// token.
func (c *Client) FetchCompetitions(ctx context.Context) ([]usecase.ExternalCompetition, error) {
	var envelope competitionsEnvelope
	if err := c.doJSON(ctx, "/competitions", nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch competitions: %w", err)
	}
	return parseCompetitions(envelope), nil
}

// FetchTeams returns the teams registered in one competition, plus the
// count of payload rows dropped as malformed.
func (c *Client) FetchTeams(ctx context.Context, competitionID int64) (usecase.ExternalTeamBatch, error) {
	if competitionID <= 0 {
		return usecase.ExternalTeamBatch{}, fmt.Errorf("%w: competition id must be greater than zero", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/competitions/%d/teams", competitionID)
	var envelope teamsEnvelope
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return usecase.ExternalTeamBatch{}, fmt.Errorf("fetch teams competition_id=%d: %w", competitionID, err)
	}
	return parseTeams(envelope), nil
}

// FetchMatches returns the matches of one competition inside the given
// date window. Zero dates leave the window open on that side.
func (c *Client) FetchMatches(ctx context.Context, competitionID int64, dateFrom, dateTo time.Time) (usecase.ExternalMatchBatch, error) {
	if competitionID <= 0 {
		return usecase.ExternalMatchBatch{}, fmt.Errorf("%w: competition id must be greater than zero", usecase.ErrInvalidInput)
	}

	query := map[string]string{}
	if !dateFrom.IsZero() {
		query["dateFrom"] = dateFrom.UTC().Format("2006-01-02")
	}
	if !dateTo.IsZero() {
		query["dateTo"] = dateTo.UTC().Format("2006-01-02")
	}

	path := fmt.Sprintf("/competitions/%d/matches", competitionID)
	var envelope matchesEnvelope
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return usecase.ExternalMatchBatch{}, fmt.Errorf("fetch matches competition_id=%d: %w", competitionID, err)
	}
	return parseMatches(envelope), nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "provider circuit breaker rejected request", "source", c.sourceName, "state", c.breaker.State())
		return fmt.Errorf("%w: match data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if reqErr != nil && IsTransient(reqErr) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var raw []byte
	err := c.retry.Do(ctx, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, c.sourceName); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.token != "" {
			req.Header.Set(authTokenHeader, c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: send request: %s", errProviderTransient, c.sanitize(err.Error()))
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("%w: read response body: %v", errProviderTransient, readErr)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			raw = body
			return nil
		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: provider rejected token status=%d", usecase.ErrPermission, resp.StatusCode)
		case resp.StatusCode == http.StatusTooManyRequests:
			// Throttling keeps the rate-limit sentinel for callers but
			// stays retryable: the next attempt waits on the limiter
			// before going out again.
			return crerr.Mark(
				fmt.Errorf("%w: provider throttled request status=%d", usecase.ErrRateLimited, resp.StatusCode),
				errProviderTransient,
			)
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: provider resource missing status=%d", usecase.ErrNotFound, resp.StatusCode)
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: provider status=%d body=%s", errProviderTransient, resp.StatusCode, abbreviateBody(body))
		default:
			return fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(body))
		}
	})
	if err != nil {
		c.logger.WarnContext(ctx, "provider request failed", "source", c.sourceName, "url", fullURL, "error", c.sanitize(err.Error()))
		return nil, err
	}

	return raw, nil
}

func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if c.token != "" {
		value = strings.ReplaceAll(value, c.token, "REDACTED")
	}
	return authHeaderRegex.ReplaceAllString(value, "X-Auth-Token: REDACTED")
}

func abbreviateBody(raw []byte) string {
	value := strings.TrimSpace(string(raw))
	if len(value) > 200 {
		return value[:200] + "..."
	}
	return value
}
