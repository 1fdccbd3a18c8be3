package catalog

import (
	"bytes"
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

	"go.uber.org/zap"

	"github.com/tomsolo12/dct-search/internal/domain"
	"github.com/tomsolo12/dct-search/internal/domain/query"
	"github.com/tomsolo12/dct-search/internal/domain/search/request"
	"github.com/tomsolo12/dct-search/internal/domain/search/result"
	"github.com/tomsolo12/dct-search/internal/domain/suggest"
	"github.com/tomsolo12/dct-search/internal/metrics"
)

// Client talks to the catalog backend over HTTP. It owns the error
// mapping of the boundary: transport failures become ErrUnavailable,
// deadline expiry becomes ErrTimeout, non-2xx responses become
// HTTPError, and undecodable bodies become ErrMalformedResponse.
type Client struct {
	base         string
	apiKey       string
	http         *http.Client
	queryTimeout time.Duration
	suggestLimit int
	logger       *zap.Logger
}

// Config holds catalog backend connection settings.
type Config struct {
	BaseURL         string
	APIKey          string
	RequestTimeout  time.Duration
	QueryTimeout    time.Duration // ad-hoc query execution budget
	SuggestionLimit int
	Logger          *zap.Logger
}

// New creates a catalog backend client.
func New(cfg Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	queryTimeout := cfg.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = 30 * time.Second
	}
	limit := cfg.SuggestionLimit
	if limit <= 0 {
		limit = suggest.DefaultLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:         strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		http:         &http.Client{Timeout: timeout},
		queryTimeout: queryTimeout,
		suggestLimit: limit,
		logger:       logger,
	}
}

// Suggestions fetches lookahead suggestions for the given text.
func (c *Client) Suggestions(ctx context.Context, q string) ([]suggest.Item, error) {
	endpoint := c.base + "/api/search/suggestions?" + url.Values{
		"q":     {q},
		"limit": {strconv.Itoa(c.suggestLimit)},
	}.Encode()

	var resp suggestionsResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp, "suggestions"); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// SearchTables executes a faceted table search.
func (c *Client) SearchTables(ctx context.Context, req *request.Request) (result.Page, error) {
	body := searchBodyFromRequest(req)

	var resp searchResponse
	err := c.doJSON(ctx, http.MethodPost, c.base+"/api/search/tables", body, &resp, "search")
	if err != nil {
		return result.Page{}, err
	}
	return pageFromResponse(resp), nil
}

// ExecuteQuery runs an ad-hoc query against a data source under the
// configured timeout budget. Budget expiry is reported as ErrTimeout,
// distinct from transport failures.
func (c *Client) ExecuteQuery(ctx context.Context, sourceID int, sql string) (query.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	body := queryBody{
		SourceID:  sourceID,
		SQL:       sql,
		TimeoutMS: int(c.queryTimeout / time.Millisecond),
	}

	var resp queryResultBody
	if err := c.doJSON(ctx, http.MethodPost, c.base+"/api/query/execute", body, &resp, "query"); err != nil {
		return query.Result{}, err
	}
	return resp.toDomain(), nil
}

// Ping checks backend reachability.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return domain.NewHTTPError(resp.StatusCode, "")
	}
	return nil
}

// doJSON issues a request, maps boundary errors, and decodes the
// response body into out.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any, op string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(op, "error").Observe(time.Since(start).Seconds())
		return c.mapTransportErr(err)
	}
	defer resp.Body.Close()

	metrics.BackendRequestDuration.
		WithLabelValues(op, strconv.Itoa(resp.StatusCode)).
		Observe(time.Since(start).Seconds())

	if resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", op, domain.ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// mapTransportErr classifies a failed round trip. Deadline expiry is a
// timeout (the budget ran out); everything else is the backend being
// unreachable.
func (c *Client) mapTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
}

// decodeError extracts the server-supplied message from a non-success
// response when one is present.
func (c *Client) decodeError(resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return domain.NewHTTPError(resp.StatusCode, "")
	}
	var envelope errorResponse
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Message == "" {
		c.logger.Debug("backend error without decodable message",
			zap.Int("status", resp.StatusCode),
			zap.Int("body_bytes", len(data)),
		)
		return domain.NewHTTPError(resp.StatusCode, "")
	}
	return domain.NewHTTPError(resp.StatusCode, envelope.Message)
}
