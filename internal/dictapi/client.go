// Package dictapi is the HTTP client for the remote word API.
package dictapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/words"
)

// ErrInvalidJSON is returned when a successful response carries a body that
// is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON from server")

const maxBody = 4 << 20

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// AppOrigin is the origin the dictionary app is served from. Cookies are
	// only kept when it matches the API origin.
	AppOrigin string
	Timeout   time.Duration
	Transport http.RoundTripper
	Now       func() time.Time
	Logger    zerolog.Logger
}

// Client implements words.Store over HTTP.
type Client struct {
	base   *url.URL
	http   *http.Client
	now    func() time.Time
	logger zerolog.Logger
}

var _ words.Store = (*Client)(nil)

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	hc := &http.Client{Timeout: opts.Timeout, Transport: opts.Transport}
	if SameOrigin(opts.BaseURL, opts.AppOrigin) {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Client{base: base, http: hc, now: now, logger: opts.Logger}, nil
}

// SameOrigin compares scheme, host and port of two URLs. An empty or
// unparsable URL never matches.
func SameOrigin(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil || ua.Host == "" {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil || ub.Host == "" {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) && strings.EqualFold(ua.Host, ub.Host)
}

// CredentialsIncluded reports whether the client keeps cookies.
func (c *Client) CredentialsIncluded() bool {
	return c.http.Jar != nil
}

// List returns the user's words. A body that is valid JSON but not an array
// yields an empty list.
func (c *Client) List(ctx context.Context, userID string) ([]words.Word, error) {
	q := url.Values{"user_id": {userID}}
	c.bustCache(q)

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, []string{"api", "words"}, q, nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return []words.Word{}, nil
	}

	var list []words.Word
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return list, nil
}

func (c *Client) Create(ctx context.Context, w words.NewWord) error {
	return c.do(ctx, http.MethodPost, []string{"api", "words"}, nil, w, nil)
}

// Search looks up a word. A null body, a body without a word, or a 404 are
// reported as words.ErrNotFound.
func (c *Client) Search(ctx context.Context, userID, word string) (words.Word, error) {
	q := url.Values{"user_id": {userID}, "word": {word}}

	var found *words.Word
	err := c.do(ctx, http.MethodGet, []string{"api", "words", "search"}, q, nil, &found)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return words.Word{}, words.ErrNotFound
		}
		return words.Word{}, err
	}

	if found == nil || found.Word == "" {
		return words.Word{}, words.ErrNotFound
	}
	return *found, nil
}

func (c *Client) Delete(ctx context.Context, userID string, id words.ID) error {
	q := url.Values{"user_id": {userID}}
	return c.do(ctx, http.MethodDelete, []string{"api", "words", id.String()}, q, nil, nil)
}

func (c *Client) Stats(ctx context.Context, userID string) (words.Stats, error) {
	q := url.Values{"user_id": {userID}}
	c.bustCache(q)

	var st words.Stats
	if err := c.do(ctx, http.MethodGet, []string{"api", "stats"}, q, nil, &st); err != nil {
		return words.Stats{}, err
	}
	return st, nil
}

// Ping checks that the API host answers. Any response below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping %s: %w", c.base.Host, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= http.StatusInternalServerError {
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("server error (%d)", resp.StatusCode)}
	}
	return nil
}

// bustCache adds the "_" timestamp parameter so intermediaries never serve a
// stale listing.
func (c *Client) bustCache(q url.Values) {
	q.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))
}

// endpoint appends each segment to the base URL as one escaped path
// segment. Slashes, query characters and dot segments inside a segment never
// change which resource is addressed.
func (c *Client) endpoint(segments ...string) *url.URL {
	u := *c.base
	raw := strings.TrimSuffix(u.EscapedPath(), "/")
	for _, seg := range segments {
		escaped := url.PathEscape(seg)
		if strings.Trim(seg, ".") == "" {
			escaped = strings.Repeat("%2E", len(seg))
		}
		raw += "/" + escaped
	}

	path, err := url.PathUnescape(raw)
	if err != nil {
		path = raw
	}
	u.Path, u.RawPath = path, raw
	return &u
}

func (c *Client) do(ctx context.Context, method string, path []string, q url.Values, body, out any) error {
	u := c.endpoint(path...)
	u.RawQuery = q.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", u.Path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", c.now().Sub(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// errorMessage prefers the error or message field of a JSON body, then the
// raw body text, then a generic status message.
func errorMessage(status int, body []byte) string {
	text := strings.TrimSpace(string(body))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			return payload.Error
		case payload.Message != "":
			return payload.Message
		}
		return fmt.Sprintf("server error (%d)", status)
	}

	if text != "" {
		return text
	}
	return fmt.Sprintf("server error (%d)", status)
}
