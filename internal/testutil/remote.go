package testutil

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"worklog-go/internal/worklog"
)

// RemotePage is a page held by the MemoryRemote.
type RemotePage struct {
	ID         string
	Title      string
	ParentID   string
	DatabaseID string
	Date       string
}

type remoteBlock struct {
	id     string
	typ    string
	fields map[string]any
}

// MemoryRemote is an in-memory implementation of worklog.ContentClient. It
// models pages, ordered block lists and nesting the way the hosted service
// does, and supports per-call failure injection for resilience tests.
type MemoryRemote struct {
	mu     sync.Mutex
	nextID int

	pages     map[string]*RemotePage
	databases map[string][]string // databaseID -> ordered entry page IDs
	blocks    map[string]*remoteBlock
	children  map[string][]string // containerID -> ordered block IDs

	appendCalls  int
	failAppendAt map[int]bool
	failMove     map[string]bool
	failQuery    bool
}

// NewMemoryRemote creates an empty MemoryRemote.
func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{
		pages:        map[string]*RemotePage{},
		databases:    map[string][]string{},
		blocks:       map[string]*remoteBlock{},
		children:     map[string][]string{},
		failAppendAt: map[int]bool{},
		failMove:     map[string]bool{},
	}
}

// Seeding helpers

// AddPage registers a free-floating page (e.g. the template) under its own ID.
func (r *MemoryRemote) AddPage(id, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[id] = &RemotePage{ID: id, Title: title}
}

// AddBlock appends a content block to a container and returns its ID.
// Nested blocks are added by passing a block ID as the container.
func (r *MemoryRemote) AddBlock(containerID, typ string, fields map[string]any) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fields == nil {
		fields = map[string]any{}
	}
	id := r.newID("b")
	r.blocks[id] = &remoteBlock{id: id, typ: typ, fields: fields}
	r.children[containerID] = append(r.children[containerID], id)
	return id
}

// AddChildPage appends a child page to a container at the current position
// and returns the new page's ID. As on the real service, the child_page
// block shares the page's ID.
func (r *MemoryRemote) AddChildPage(containerID, title string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newID("p")
	r.pages[id] = &RemotePage{ID: id, Title: title, ParentID: containerID}
	r.blocks[id] = &remoteBlock{id: id, typ: worklog.BlockChildPage, fields: map[string]any{"title": title}}
	r.children[containerID] = append(r.children[containerID], id)
	return id
}

// AddChildPageWithoutTitle appends a child page whose block payload omits
// the title, so the page itself must be fetched to learn it. The service
// does this for pages whose titles were set after creation.
func (r *MemoryRemote) AddChildPageWithoutTitle(containerID, title string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newID("p")
	r.pages[id] = &RemotePage{ID: id, Title: title, ParentID: containerID}
	r.blocks[id] = &remoteBlock{id: id, typ: worklog.BlockChildPage, fields: map[string]any{}}
	r.children[containerID] = append(r.children[containerID], id)
	return id
}

// Failure injection

// FailAppendCall makes the nth AppendBlock call (1-based) fail.
func (r *MemoryRemote) FailAppendCall(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAppendAt[n] = true
}

// FailMove makes MovePage fail for the given page.
func (r *MemoryRemote) FailMove(pageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failMove[pageID] = true
}

// FailQueries makes QueryByTitle fail.
func (r *MemoryRemote) FailQueries() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failQuery = true
}

// worklog.ContentClient

func (r *MemoryRemote) ListBlocks(_ context.Context, containerID string) iter.Seq2[worklog.Block, error] {
	r.mu.Lock()
	ids := append([]string{}, r.children[containerID]...)
	r.mu.Unlock()

	return func(yield func(worklog.Block, error) bool) {
		for _, id := range ids {
			if !yield(r.resolveBlock(id), nil) {
				return
			}
		}
	}
}

func (r *MemoryRemote) ListChildPages(ctx context.Context, containerID string) ([]worklog.Page, error) {
	var pages []worklog.Page
	for b, err := range r.ListBlocks(ctx, containerID) {
		if err != nil {
			return pages, err
		}
		if b.Type == worklog.BlockChildPage {
			pages = append(pages, worklog.Page{ID: b.ID, Title: b.ChildTitle()})
		}
	}
	return pages, nil
}

func (r *MemoryRemote) CreatePage(_ context.Context, databaseID, title string, date time.Time) (worklog.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newID("p")
	r.pages[id] = &RemotePage{
		ID:         id,
		Title:      title,
		DatabaseID: databaseID,
		Date:       date.Format("2006-01-02"),
	}
	r.databases[databaseID] = append(r.databases[databaseID], id)
	return worklog.Page{ID: id, Title: title}, nil
}

func (r *MemoryRemote) CreateChildPage(_ context.Context, parentID, title string) (worklog.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newID("p")
	r.pages[id] = &RemotePage{ID: id, Title: title, ParentID: parentID}
	r.blocks[id] = &remoteBlock{id: id, typ: worklog.BlockChildPage, fields: map[string]any{"title": title}}
	r.children[parentID] = append(r.children[parentID], id)
	return worklog.Page{ID: id, Title: title}, nil
}

func (r *MemoryRemote) AppendBlock(_ context.Context, containerID string, spec worklog.BlockSpec) (worklog.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.appendCalls++
	if r.failAppendAt[r.appendCalls] {
		return worklog.Block{}, &worklog.RemoteError{Status: 500, Body: "injected append failure"}
	}

	fields := map[string]any{}
	for k, v := range spec.Fields {
		fields[k] = v
	}
	id := r.newID("b")
	r.blocks[id] = &remoteBlock{id: id, typ: spec.Type, fields: fields}
	r.children[containerID] = append(r.children[containerID], id)
	return worklog.Block{ID: id, Type: spec.Type, Fields: fields}, nil
}

func (r *MemoryRemote) MovePage(_ context.Context, pageID, newParentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failMove[pageID] {
		return &worklog.RemoteError{Status: 500, Body: "injected move failure"}
	}
	page, ok := r.pages[pageID]
	if !ok {
		return &worklog.RemoteError{Status: 404, Body: "page not found"}
	}

	// Leaving the database, becoming a child page of the new parent.
	if page.DatabaseID != "" {
		entries := r.databases[page.DatabaseID]
		for i, id := range entries {
			if id == pageID {
				r.databases[page.DatabaseID] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
		page.DatabaseID = ""
	}
	page.ParentID = newParentID
	r.blocks[pageID] = &remoteBlock{id: pageID, typ: worklog.BlockChildPage, fields: map[string]any{"title": page.Title}}
	r.children[newParentID] = append(r.children[newParentID], pageID)
	return nil
}

func (r *MemoryRemote) QueryByTitle(_ context.Context, databaseID, title string) ([]worklog.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failQuery {
		return nil, &worklog.RemoteError{Status: 500, Body: "injected query failure"}
	}

	var pages []worklog.Page
	for _, id := range r.databases[databaseID] {
		if p := r.pages[id]; p != nil && p.Title == title {
			pages = append(pages, worklog.Page{ID: p.ID, Title: p.Title})
		}
	}
	return pages, nil
}

func (r *MemoryRemote) GetPage(_ context.Context, pageID string) (worklog.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[pageID]
	if !ok {
		return worklog.Page{}, &worklog.RemoteError{Status: 404, Body: "page not found"}
	}
	return worklog.Page{ID: p.ID, Title: p.Title}, nil
}

// Inspection helpers

// Blocks returns the resolved blocks of a container in order.
func (r *MemoryRemote) Blocks(containerID string) []worklog.Block {
	r.mu.Lock()
	ids := append([]string{}, r.children[containerID]...)
	r.mu.Unlock()

	blocks := make([]worklog.Block, len(ids))
	for i, id := range ids {
		blocks[i] = r.resolveBlock(id)
	}
	return blocks
}

// Page returns a stored page by ID.
func (r *MemoryRemote) Page(id string) (RemotePage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[id]
	if !ok {
		return RemotePage{}, false
	}
	return *p, true
}

// PagesIn returns the entries of a database in insertion order.
func (r *MemoryRemote) PagesIn(databaseID string) []RemotePage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pages []RemotePage
	for _, id := range r.databases[databaseID] {
		if p := r.pages[id]; p != nil {
			pages = append(pages, *p)
		}
	}
	return pages
}

// ParentOf returns the parent container of a page.
func (r *MemoryRemote) ParentOf(pageID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.pages[pageID]; p != nil {
		return p.ParentID
	}
	return ""
}

func (r *MemoryRemote) resolveBlock(id string) worklog.Block {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.blocks[id]
	fields := map[string]any{}
	for k, v := range b.fields {
		fields[k] = v
	}
	return worklog.Block{
		ID:          b.id,
		Type:        b.typ,
		HasChildren: b.typ != worklog.BlockChildPage && len(r.children[id]) > 0,
		Fields:      fields,
	}
}

func (r *MemoryRemote) newID(prefix string) string {
	r.nextID++
	return fmt.Sprintf("%s%d", prefix, r.nextID)
}
