package worklog

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// Block kinds with special handling during a copy. Every other kind is
// passed through opaquely.
const (
	BlockChildPage     = "child_page"
	BlockChildDatabase = "child_database"
)

// Block is a single content block as returned by the remote service.
// Fields holds the kind-specific payload under its original keys and is
// never interpreted beyond the read-only fields stripped for copying.
type Block struct {
	ID          string
	Type        string
	HasChildren bool
	Fields      map[string]any
}

// ChildTitle returns the title of a child_page block.
func (b Block) ChildTitle() string {
	if t, ok := b.Fields["title"].(string); ok && t != "" {
		return t
	}
	return "Untitled"
}

// BlockSpec is the creatable form of a block: its kind plus a payload with
// all server-assigned fields removed. The remote service rejects creation
// payloads that still carry read-only fields.
type BlockSpec struct {
	Type   string
	Fields map[string]any
}

// Page is a document container: a root entry of the tracked database or a
// child page nested inside another page's block list.
type Page struct {
	ID    string
	Title string
}

// ContentClient is the typed boundary to the remote content service.
// Implementations own pagination, rate-limit pacing and bounded 429 retry;
// callers see either a result or a *RemoteError / *RateLimitError.
type ContentClient interface {
	// ListBlocks returns the direct blocks of a container in original order.
	// The sequence paginates lazily and is not restartable once consumed;
	// a fresh call starts over from the beginning. A pagination failure is
	// yielded as the final element's error.
	ListBlocks(ctx context.Context, containerID string) iter.Seq2[Block, error]

	// ListChildPages returns the child pages directly under a container,
	// metadata only, in block order.
	ListChildPages(ctx context.Context, containerID string) ([]Page, error)

	// CreatePage creates a new root entry in a database with its title and
	// date properties set at creation time.
	CreatePage(ctx context.Context, databaseID, title string, date time.Time) (Page, error)

	// CreateChildPage creates an empty page nested under a page or block.
	CreateChildPage(ctx context.Context, parentID, title string) (Page, error)

	// AppendBlock appends one block to a container and returns the created
	// block with its freshly assigned ID. The container may be a page or
	// another block.
	AppendBlock(ctx context.Context, containerID string, spec BlockSpec) (Block, error)

	// MovePage reparents a page under a new container. Content is untouched.
	MovePage(ctx context.Context, pageID, newParentID string) error

	// QueryByTitle returns the database entries whose title matches exactly.
	QueryByTitle(ctx context.Context, databaseID, title string) ([]Page, error)

	// GetPage fetches a single page's metadata.
	GetPage(ctx context.Context, pageID string) (Page, error)
}

// RemoteError is a non-2xx response from the remote service.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote service returned status %d: %s", e.Status, e.Body)
}

// RateLimitError is an HTTP 429. The client retries these a bounded number
// of times before surfacing the error to the caller.
type RateLimitError struct {
	RemoteError
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by remote service: %s", e.Body)
}
