package engage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"campusevents/internal/domain"
)

const searchPath = "/engage/api/discovery/event/search"

// Client talks to the Engage event discovery API
type Client struct {
	host       string
	imageHost  string
	httpClient *http.Client
	logger     *zap.Logger
}

// SearchParams selects one page of upcoming events
type SearchParams struct {
	EndsAfter time.Time
	Take      int
	Skip      int
}

// APIError is returned for a non-2xx response
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, truncate(e.Body, 200))
}

// DecodeError is returned when a response body is not the expected JSON shape
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type searchResponse struct {
	Value []domain.Event `json:"value"`
}

// NewClient creates a client. A nil httpClient gets one with the given timeout.
func NewClient(httpClient *http.Client, host, imageHost string, timeout time.Duration, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		host:       strings.TrimRight(host, "/"),
		imageHost:  strings.TrimRight(imageHost, "/"),
		httpClient: httpClient,
		logger:     logger.Named("engage"),
	}
}

// SearchEvents fetches one page of approved events ending after p.EndsAfter,
// ordered by start time. A missing or null "value" is an empty page.
func (c *Client) SearchEvents(ctx context.Context, p SearchParams) ([]domain.Event, error) {
	query := url.Values{}
	query.Set("endsAfter", FormatTimestamp(p.EndsAfter))
	query.Set("orderByField", "startsOn")
	query.Set("orderByDirection", "ascending")
	query.Set("status", "Approved")
	query.Set("take", strconv.Itoa(p.Take))
	query.Set("skip", strconv.Itoa(p.Skip))

	body, err := c.doRequest(ctx, searchPath, query)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	c.logger.Debug("page received", zap.Int("skip", p.Skip), zap.Int("count", len(resp.Value)))
	if resp.Value == nil {
		return []domain.Event{}, nil
	}
	return resp.Value, nil
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// EventURL is the deep link opened when an event is selected
func (c *Client) EventURL(id int64) string {
	return fmt.Sprintf("%s/engage/event/%d", c.host, id)
}

// ImageURL derives the full image URL; "" when the event has no image
func (c *Client) ImageURL(imagePath string) string {
	if imagePath == "" {
		return ""
	}
	return c.imageHost + "/clink/images/" + strings.TrimLeft(imagePath, "/")
}

// FormatTimestamp renders t the way the endpoint expects endsAfter (UTC, millisecond precision)
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
