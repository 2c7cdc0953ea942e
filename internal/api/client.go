// Package api is the HTTP client for the almanac events API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/javiermolinar/almanac/internal/dateutil"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/period"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

// Error is a non-2xx response from the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps a 404 to event.ErrEventNotFound.
func (e *Error) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return event.ErrEventNotFound
	}
	return nil
}

// Client talks to the events API. It implements event.Repository and the
// cache's period source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	loc        *time.Location
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLocation sets the time zone sent with period queries and used for
// returned times. time.Local is replaced by the host zone's IANA name.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) { c.loc = loc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the API rooted at baseURL, for example
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("api base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		loc:        time.Local,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.loc.String() == "Local" {
		loc, err := dateutil.LocalZone()
		if err != nil {
			return nil, fmt.Errorf("naming the time zone for the server: %w", err)
		}
		c.loc = loc
	}
	return c, nil
}

// ListDay returns the events overlapping a day.
func (c *Client) ListDay(ctx context.Context, d period.Day) ([]event.Event, error) {
	q := url.Values{}
	q.Set("date", d.String())
	q.Set("tz", c.loc.String())
	return c.list(ctx, "/events/day", q)
}

// ListWeek returns the events overlapping an ISO week.
func (c *Client) ListWeek(ctx context.Context, w period.Week) ([]event.Event, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(w.Year))
	q.Set("week", strconv.Itoa(w.Week))
	q.Set("tz", c.loc.String())
	return c.list(ctx, "/events/week", q)
}

// ListMonth returns the events overlapping a month.
func (c *Client) ListMonth(ctx context.Context, m period.Month) ([]event.Event, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(m.Year))
	q.Set("month", strconv.Itoa(int(m.Month)))
	q.Set("tz", c.loc.String())
	return c.list(ctx, "/events/month", q)
}

// ListByPeriod dispatches on the period granularity.
func (c *Client) ListByPeriod(ctx context.Context, key period.Key) ([]event.Event, error) {
	switch k := key.(type) {
	case period.Day:
		return c.ListDay(ctx, k)
	case period.Week:
		return c.ListWeek(ctx, k)
	case period.Month:
		return c.ListMonth(ctx, k)
	default:
		panic(fmt.Sprintf("api: unknown period key %T", key))
	}
}

// List returns the events matching a filter.
func (c *Client) List(ctx context.Context, fq event.Query) ([]event.Event, error) {
	return c.list(ctx, "/events", QueryValues(fq))
}

// QueryValues encodes a filter as URL query parameters.
func QueryValues(fq event.Query) url.Values {
	q := url.Values{}
	if !fq.Start.IsZero() {
		q.Set("start", fq.Start.Format(time.RFC3339))
	}
	if !fq.End.IsZero() {
		q.Set("end", fq.End.Format(time.RFC3339))
	}
	if fq.Sort != "" {
		q.Set("sort", string(fq.Sort))
		if fq.Order != "" {
			q.Set("ord", string(fq.Order))
		}
	}
	if fq.Limit > 0 {
		q.Set("limit", strconv.Itoa(fq.Limit))
	}
	return q
}

func (c *Client) list(ctx context.Context, path string, q url.Values) ([]event.Event, error) {
	var ws []Event
	if err := c.do(ctx, http.MethodGet, path, q, nil, &ws); err != nil {
		return nil, err
	}
	return ToEvents(ws, c.loc), nil
}

// Get returns one event.
func (c *Client) Get(ctx context.Context, id string) (event.Event, error) {
	var w Event
	if err := c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, nil, &w); err != nil {
		return event.Event{}, err
	}
	return ToEvent(w, c.loc), nil
}

// Create stores a new event and returns it with the assigned ID.
func (c *Client) Create(ctx context.Context, d event.Draft) (event.Event, error) {
	var resp struct {
		UUID string `json:"uuid"`
	}
	if err := c.do(ctx, http.MethodPost, "/events", nil, BodyFromDraft(d), &resp); err != nil {
		return event.Event{}, err
	}
	if resp.UUID == "" {
		return event.Event{}, errors.New("api: create returned no uuid")
	}
	return event.Event{
		ID:          resp.UUID,
		Title:       d.Title,
		Description: d.Description,
		Interval:    d.Interval,
	}, nil
}

// Update replaces the editable fields of an event.
func (c *Client) Update(ctx context.Context, id string, d event.Draft) error {
	return c.do(ctx, http.MethodPut, "/events/"+url.PathEscape(id), nil, BodyFromDraft(d), nil)
}

// Delete removes an event.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil, nil)
}

// Close is a no-op; the client holds no resources of its own.
func (c *Client) Close() error {
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var msg struct {
		Message string `json:"message"`
	}
	apiErr := &Error{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(data, &msg); err == nil && msg.Message != "" {
		apiErr.Message = msg.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
