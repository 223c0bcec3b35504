// Package notion implements worklog.ContentClient against the HTTP API of a
// Notion-style hosted content service: cursor pagination on reads, a fixed
// pacing delay after every mutation, and bounded constant-backoff retry on
// HTTP 429.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"worklog-go/internal/worklog"
)

const (
	defaultBaseURL    = "https://api.notion.com/v1"
	defaultAPIVersion = "2022-06-28"
	defaultPageSize   = 100

	defaultMutationDelay = 350 * time.Millisecond
	defaultRetryDelay    = time.Second
	defaultMaxRetries    = 3

	defaultTitleProperty = "Name"
	defaultDateProperty  = "Date"
)

// Client talks to the remote content service. All calls are synchronous;
// the zero concurrency is deliberate because the service rate-limits per
// integration token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	apiVersion string
	pageSize   int

	titleProperty string
	dateProperty  string

	mutationDelay time.Duration
	retryDelay    time.Duration
	maxRetries    uint64
	sleep         func(time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithHTTPClient replaces the transport.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpClient = h } }

// WithPageSize sets the pagination page size.
func WithPageSize(n int) Option { return func(c *Client) { c.pageSize = n } }

// WithProperties sets the database property names used for entry titles and
// dates.
func WithProperties(title, date string) Option {
	return func(c *Client) {
		if title != "" {
			c.titleProperty = title
		}
		if date != "" {
			c.dateProperty = date
		}
	}
}

// WithPacing sets the post-mutation delay and the 429 retry policy.
func WithPacing(mutationDelay, retryDelay time.Duration, maxRetries uint64) Option {
	return func(c *Client) {
		c.mutationDelay = mutationDelay
		c.retryDelay = retryDelay
		c.maxRetries = maxRetries
	}
}

// WithSleep replaces the sleep function, for tests.
func WithSleep(f func(time.Duration)) Option { return func(c *Client) { c.sleep = f } }

// New creates a Client authenticated with the given integration token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		baseURL:       defaultBaseURL,
		token:         token,
		apiVersion:    defaultAPIVersion,
		pageSize:      defaultPageSize,
		titleProperty: defaultTitleProperty,
		dateProperty:  defaultDateProperty,
		mutationDelay: defaultMutationDelay,
		retryDelay:    defaultRetryDelay,
		maxRetries:    defaultMaxRetries,
		sleep:         time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// paginated is the envelope of every list endpoint.
type paginated struct {
	Results    []json.RawMessage `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor string            `json:"next_cursor"`
}

// ListBlocks returns the direct blocks of a container in original order,
// following pagination cursors lazily.
func (c *Client) ListBlocks(ctx context.Context, containerID string) iter.Seq2[worklog.Block, error] {
	return func(yield func(worklog.Block, error) bool) {
		cursor := ""
		for {
			query := url.Values{"page_size": {strconv.Itoa(c.pageSize)}}
			if cursor != "" {
				query.Set("start_cursor", cursor)
			}

			var page paginated
			if err := c.do(ctx, http.MethodGet, "/blocks/"+containerID+"/children", query, nil, &page); err != nil {
				yield(worklog.Block{}, fmt.Errorf("listing blocks: %w", err))
				return
			}

			for _, raw := range page.Results {
				block, err := decodeBlock(raw)
				if !yield(block, err) {
					return
				}
			}

			if !page.HasMore || page.NextCursor == "" {
				return
			}
			cursor = page.NextCursor
		}
	}
}

// ListChildPages returns the child pages directly under a container.
func (c *Client) ListChildPages(ctx context.Context, containerID string) ([]worklog.Page, error) {
	var pages []worklog.Page
	for block, err := range c.ListBlocks(ctx, containerID) {
		if err != nil {
			return pages, err
		}
		if block.Type == worklog.BlockChildPage {
			pages = append(pages, worklog.Page{ID: block.ID, Title: block.ChildTitle()})
		}
	}
	return pages, nil
}

// CreatePage creates a database entry with its title and date properties
// set in the creation call, so no follow-up property update is needed.
func (c *Client) CreatePage(ctx context.Context, databaseID, title string, date time.Time) (worklog.Page, error) {
	body := map[string]any{
		"parent": map[string]any{"type": "database_id", "database_id": databaseID},
		"properties": map[string]any{
			c.titleProperty: titleProperty(title),
			c.dateProperty: map[string]any{
				"date": map[string]any{"start": date.Format("2006-01-02")},
			},
		},
	}

	var raw json.RawMessage
	if err := c.mutate(ctx, http.MethodPost, "/pages", body, &raw); err != nil {
		return worklog.Page{}, fmt.Errorf("creating page: %w", err)
	}
	return decodePage(raw)
}

// CreateChildPage creates an empty page nested under a page or block.
func (c *Client) CreateChildPage(ctx context.Context, parentID, title string) (worklog.Page, error) {
	body := map[string]any{
		"parent":     map[string]any{"type": "page_id", "page_id": parentID},
		"properties": map[string]any{"title": titleProperty(title)},
	}

	var raw json.RawMessage
	if err := c.mutate(ctx, http.MethodPost, "/pages", body, &raw); err != nil {
		return worklog.Page{}, fmt.Errorf("creating child page: %w", err)
	}
	return decodePage(raw)
}

// AppendBlock appends one block to a container and returns the created
// block with its server-assigned ID.
func (c *Client) AppendBlock(ctx context.Context, containerID string, spec worklog.BlockSpec) (worklog.Block, error) {
	body := map[string]any{
		"children": []any{encodeSpec(spec)},
	}

	var page paginated
	if err := c.mutate(ctx, http.MethodPatch, "/blocks/"+containerID+"/children", body, &page); err != nil {
		return worklog.Block{}, fmt.Errorf("appending block: %w", err)
	}
	if len(page.Results) == 0 {
		return worklog.Block{}, fmt.Errorf("appending block: service returned no created block")
	}
	return decodeBlock(page.Results[0])
}

// MovePage reparents a page under a new container.
func (c *Client) MovePage(ctx context.Context, pageID, newParentID string) error {
	body := map[string]any{
		"parent": map[string]any{"type": "page_id", "page_id": newParentID},
	}
	if err := c.mutate(ctx, http.MethodPatch, "/pages/"+pageID, body, nil); err != nil {
		return fmt.Errorf("moving page %s: %w", pageID, err)
	}
	return nil
}

// QueryByTitle returns the database entries whose title matches exactly,
// following pagination to the end.
func (c *Client) QueryByTitle(ctx context.Context, databaseID, title string) ([]worklog.Page, error) {
	var pages []worklog.Page
	cursor := ""
	for {
		body := map[string]any{
			"filter": map[string]any{
				"property": c.titleProperty,
				"title":    map[string]any{"equals": title},
			},
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		var page paginated
		if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", nil, body, &page); err != nil {
			return nil, fmt.Errorf("querying database: %w", err)
		}

		for _, raw := range page.Results {
			p, err := decodePage(raw)
			if err != nil {
				return pages, err
			}
			pages = append(pages, p)
		}

		if !page.HasMore || page.NextCursor == "" {
			return pages, nil
		}
		cursor = page.NextCursor
	}
}

// GetPage fetches a single page's metadata.
func (c *Client) GetPage(ctx context.Context, pageID string) (worklog.Page, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, nil, &raw); err != nil {
		return worklog.Page{}, fmt.Errorf("fetching page %s: %w", pageID, err)
	}
	return decodePage(raw)
}

// mutate performs a state-changing call and then pauses for the pacing
// delay, keeping the overall request rate under the service's limit.
func (c *Client) mutate(ctx context.Context, method, path string, body, out any) error {
	err := c.do(ctx, method, path, nil, body, out)
	c.sleep(c.mutationDelay)
	return err
}

// do performs one API call with bounded retry on rate limiting. Any other
// non-2xx response is permanent and surfaces as *worklog.RemoteError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := func() error {
		err := c.roundTrip(ctx, method, path, query, body, out)
		if err == nil {
			return nil
		}
		var rle *worklog.RateLimitError
		if errors.As(err, &rle) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), c.maxRetries), ctx)
	return backoff.Retry(op, policy)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &worklog.RateLimitError{
			RemoteError: worklog.RemoteError{Status: resp.StatusCode, Body: string(respBody)},
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &worklog.RemoteError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func titleProperty(title string) map[string]any {
	return map[string]any{
		"title": []any{
			map[string]any{"type": "text", "text": map[string]any{"content": title}},
		},
	}
}
