package notion_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"worklog-go/internal/notion"
	"worklog-go/internal/worklog"
)

func newTestClient(t *testing.T, handler http.Handler) (*notion.Client, *[]time.Duration) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var sleeps []time.Duration
	c := notion.New("test-token",
		notion.WithBaseURL(srv.URL),
		notion.WithPageSize(2),
		notion.WithPacing(350*time.Millisecond, 10*time.Millisecond, 3),
		notion.WithSleep(func(d time.Duration) { sleeps = append(sleeps, d) }),
	)
	return c, &sleeps
}

func wireBlock(id, text string) map[string]any {
	return map[string]any{
		"object":       "block",
		"id":           id,
		"type":         "paragraph",
		"has_children": false,
		"paragraph": map[string]any{
			"rich_text": []any{map[string]any{"type": "text", "plain_text": text}},
		},
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func TestListBlocks_FollowsPagination(t *testing.T) {
	t.Parallel()

	blocks := make([]map[string]any, 5)
	for i := range blocks {
		blocks[i] = wireBlock(fmt.Sprintf("b%d", i+1), fmt.Sprintf("text %d", i+1))
	}

	var requests []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/blocks/page-1/children" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		cursor := r.URL.Query().Get("start_cursor")
		requests = append(requests, cursor)

		start := 0
		switch cursor {
		case "":
		case "cur-2":
			start = 2
		case "cur-4":
			start = 4
		default:
			t.Errorf("unexpected cursor %q", cursor)
		}

		end := start + 2
		if end > len(blocks) {
			end = len(blocks)
		}
		resp := map[string]any{
			"results":  blocks[start:end],
			"has_more": end < len(blocks),
		}
		if end < len(blocks) {
			resp["next_cursor"] = fmt.Sprintf("cur-%d", end)
		}
		writeJSON(t, w, resp)
	})

	c, _ := newTestClient(t, handler)

	var got []string
	for b, err := range c.ListBlocks(context.Background(), "page-1") {
		if err != nil {
			t.Fatalf("ListBlocks() error = %v", err)
		}
		got = append(got, b.ID)
	}

	want := []string{"b1", "b2", "b3", "b4", "b5"}
	if len(got) != len(want) {
		t.Fatalf("got %d blocks %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block %d = %s, want %s", i, got[i], want[i])
		}
	}
	if len(requests) != 3 {
		t.Errorf("made %d paginated requests, want 3", len(requests))
	}
}

func TestListBlocks_SurfacesRemoteError(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"no such block"}`)
	})
	c, _ := newTestClient(t, handler)

	var lastErr error
	for _, err := range c.ListBlocks(context.Background(), "missing") {
		lastErr = err
	}

	var remoteErr *worklog.RemoteError
	if !errors.As(lastErr, &remoteErr) {
		t.Fatalf("error = %v, want *worklog.RemoteError", lastErr)
	}
	if remoteErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", remoteErr.Status)
	}
}

func TestAppendBlock_SendsSpecAndPaces(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got == "" {
			t.Error("missing Notion-Version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		writeJSON(t, w, map[string]any{"results": []any{wireBlock("new-1", "copied")}})
	})
	c, sleeps := newTestClient(t, handler)

	spec := worklog.BlockSpec{
		Type:   "paragraph",
		Fields: map[string]any{"rich_text": []any{map[string]any{"plain_text": "copied"}}},
	}
	created, err := c.AppendBlock(context.Background(), "dest-1", spec)
	if err != nil {
		t.Fatalf("AppendBlock() error = %v", err)
	}
	if created.ID != "new-1" {
		t.Errorf("created ID = %s, want new-1", created.ID)
	}

	children, ok := payload["children"].([]any)
	if !ok || len(children) != 1 {
		t.Fatalf("payload children = %v, want one element", payload["children"])
	}
	child := children[0].(map[string]any)
	if child["type"] != "paragraph" {
		t.Errorf("child type = %v, want paragraph", child["type"])
	}
	if _, found := child["paragraph"]; !found {
		t.Error("child payload missing paragraph body")
	}

	if len(*sleeps) != 1 || (*sleeps)[0] != 350*time.Millisecond {
		t.Errorf("pacing sleeps = %v, want one 350ms pause", *sleeps)
	}
}

func TestDo_RetriesRateLimitThenSucceeds(t *testing.T) {
	t.Parallel()

	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"message":"rate limited"}`)
			return
		}
		writeJSON(t, w, map[string]any{
			"id":         "page-1",
			"properties": map[string]any{"title": map[string]any{"title": []any{map[string]any{"plain_text": "Entry"}}}},
		})
	})
	c, _ := newTestClient(t, handler)

	page, err := c.GetPage(context.Background(), "page-1")
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if page.Title != "Entry" {
		t.Errorf("title = %q, want Entry", page.Title)
	}
	if attempts != 2 {
		t.Errorf("made %d attempts, want 2", attempts)
	}
}

func TestDo_RateLimitRetriesAreBounded(t *testing.T) {
	t.Parallel()

	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message":"rate limited"}`)
	})
	c, _ := newTestClient(t, handler)

	_, err := c.GetPage(context.Background(), "page-1")

	var rateErr *worklog.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("error = %v, want *worklog.RateLimitError", err)
	}
	// Initial attempt plus three retries.
	if attempts != 4 {
		t.Errorf("made %d attempts, want 4", attempts)
	}
}

func TestDo_OtherErrorsAreNotRetried(t *testing.T) {
	t.Parallel()

	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"validation error"}`)
	})
	c, _ := newTestClient(t, handler)

	_, err := c.GetPage(context.Background(), "page-1")

	var remoteErr *worklog.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("error = %v, want *worklog.RemoteError", err)
	}
	if attempts != 1 {
		t.Errorf("made %d attempts, want 1", attempts)
	}
}

func TestCreatePage_SetsTitleAndDateProperties(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pages" {
			t.Errorf("path = %s, want /pages", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		writeJSON(t, w, map[string]any{
			"id":         "page-9",
			"properties": map[string]any{"Name": map[string]any{"title": []any{map[string]any{"plain_text": "Entry"}}}},
		})
	})
	c, _ := newTestClient(t, handler)

	date := time.Date(2026, time.August, 28, 0, 0, 0, 0, worklog.Zone)
	page, err := c.CreatePage(context.Background(), "db-1", "Entry", date)
	if err != nil {
		t.Fatalf("CreatePage() error = %v", err)
	}
	if page.ID != "page-9" {
		t.Errorf("page ID = %s, want page-9", page.ID)
	}

	parent := payload["parent"].(map[string]any)
	if parent["database_id"] != "db-1" {
		t.Errorf("parent database_id = %v, want db-1", parent["database_id"])
	}

	props := payload["properties"].(map[string]any)
	if _, found := props["Name"]; !found {
		t.Error("payload missing title property")
	}
	dateProp, found := props["Date"].(map[string]any)
	if !found {
		t.Fatal("payload missing date property")
	}
	inner := dateProp["date"].(map[string]any)
	if inner["start"] != "2026-08-28" {
		t.Errorf("date start = %v, want 2026-08-28", inner["start"])
	}
}

func TestMovePage_ReparentsOnly(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/pages/page-1" {
			t.Errorf("got %s %s, want PATCH /pages/page-1", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		writeJSON(t, w, map[string]any{"id": "page-1"})
	})
	c, _ := newTestClient(t, handler)

	if err := c.MovePage(context.Background(), "page-1", "arch-1"); err != nil {
		t.Fatalf("MovePage() error = %v", err)
	}

	if len(payload) != 1 {
		t.Errorf("payload = %v, want only the parent field", payload)
	}
	parent := payload["parent"].(map[string]any)
	if parent["page_id"] != "arch-1" {
		t.Errorf("parent page_id = %v, want arch-1", parent["page_id"])
	}
}

func TestQueryByTitle_FiltersAndDecodes(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/databases/db-1/query" {
			t.Errorf("path = %s, want /databases/db-1/query", r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		filter := payload["filter"].(map[string]any)
		if filter["property"] != "Name" {
			t.Errorf("filter property = %v, want Name", filter["property"])
		}

		writeJSON(t, w, map[string]any{
			"results": []any{map[string]any{
				"id":         "page-5",
				"properties": map[string]any{"Name": map[string]any{"title": []any{map[string]any{"plain_text": "2026-08-28 (Fri)"}}}},
			}},
			"has_more": false,
		})
	})
	c, _ := newTestClient(t, handler)

	pages, err := c.QueryByTitle(context.Background(), "db-1", "2026-08-28 (Fri)")
	if err != nil {
		t.Fatalf("QueryByTitle() error = %v", err)
	}
	if len(pages) != 1 || pages[0].ID != "page-5" || pages[0].Title != "2026-08-28 (Fri)" {
		t.Errorf("pages = %+v, want one page-5 entry", pages)
	}
}
