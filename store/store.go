// Package store is the client for the remote record store: a bearer-token
// HTTP API exposing an ordered list of video records. Transient failures
// (429 and 5xx) are retried with doubling backoff up to a fixed budget;
// everything a caller sees is one of the package sentinel errors, never a
// transport-level failure.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrUnavailable means the store was unreachable or kept failing
	// after the retry budget was exhausted.
	ErrUnavailable = errors.New("store: unavailable")

	// ErrMalformedResponse means the response did not match the expected
	// record schema; the operation is aborted with no partial effect.
	ErrMalformedResponse = errors.New("store: malformed response")
)

// Record is one row of the remote store.
type Record struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// Fields is the tabular payload of a record.
type Fields struct {
	VideoID     string   `json:"videoId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Duration    string   `json:"duration"`
	URL         string   `json:"url"`
	EmbedURLs   []string `json:"embedUrls"`
	Thumbnail   string   `json:"thumbnail"`
	CreatedAt   string   `json:"createdAt"`
	Status      string   `json:"status"`
	ViewCount   int      `json:"viewCount"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	Author      string   `json:"author"`
}

// Config holds client settings. Zero values fall back to defaults.
type Config struct {
	BaseURL        string
	Token          string
	RequestTimeout time.Duration // per-request, default 15s
	MaxRetries     int           // retries after the first attempt, default 3
	InitialBackoff time.Duration // default 500ms, doubles per retry
	RequestsPerSec float64       // rate gate, default 5
}

// Client talks to the record store. It serializes retries for one logical
// operation and never issues concurrent duplicates of the same request.
type Client struct {
	baseURL    string
	token      string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

// New creates a record-store client.
func New(cfg Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	backoff := cfg.InitialBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		http:       &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		maxRetries: retries,
		backoff:    backoff,
	}
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// List fetches every record, following the offset pagination token until
// the store stops returning one.
func (c *Client) List(ctx context.Context) ([]Record, error) {
	var all []Record
	offset := ""
	for {
		target := c.baseURL
		if offset != "" {
			target += "?offset=" + url.QueryEscape(offset)
		}
		body, err := c.do(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		for _, r := range page.Records {
			if r.ID == "" {
				return nil, fmt.Errorf("%w: record without id", ErrMalformedResponse)
			}
		}
		all = append(all, page.Records...)

		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

type createRequest struct {
	Fields Fields `json:"fields"`
}

// Create inserts one record and returns it with the server-assigned ID.
func (c *Client) Create(ctx context.Context, fields Fields) (Record, error) {
	payload, err := json.Marshal(createRequest{Fields: fields})
	if err != nil {
		return Record{}, fmt.Errorf("marshal record: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL, payload)
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if rec.ID == "" {
		return Record{}, fmt.Errorf("%w: created record without id", ErrMalformedResponse)
	}
	return rec, nil
}

// do runs one logical request with the retry loop. 429 and 5xx responses
// and transport errors are retried with doubling backoff; other non-2xx
// statuses abort immediately.
func (c *Client) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			}
			backoff *= 2
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				lastErr = readErr
				continue
			}
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}
	}
	return nil, fmt.Errorf("%w: retries exhausted: %v", ErrUnavailable, lastErr)
}
