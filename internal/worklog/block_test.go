package worklog_test

import (
	"testing"

	"worklog-go/internal/worklog"
)

func TestCleanForCopy(t *testing.T) {
	t.Parallel()

	t.Run("strips read-only fields and keeps payload", func(t *testing.T) {
		block := worklog.Block{
			ID:   "b1",
			Type: "heading_1",
			Fields: map[string]any{
				"rich_text":        []any{map[string]any{"plain_text": "Title"}},
				"color":            "default",
				"id":               "b1",
				"created_time":     "2026-08-01T00:00:00Z",
				"last_edited_time": "2026-08-02T00:00:00Z",
				"archived":         false,
				"parent":           map[string]any{"page_id": "p1"},
			},
		}

		spec, ok := worklog.CleanForCopy(block)
		if !ok {
			t.Fatal("CleanForCopy() rejected a copyable block")
		}
		if spec.Type != "heading_1" {
			t.Errorf("spec type = %s, want heading_1", spec.Type)
		}
		for _, key := range []string{"id", "created_time", "last_edited_time", "archived", "parent"} {
			if _, found := spec.Fields[key]; found {
				t.Errorf("read-only field %q survived cleaning", key)
			}
		}
		if _, found := spec.Fields["rich_text"]; !found {
			t.Error("rich_text missing from cleaned spec")
		}
		if _, found := spec.Fields["color"]; !found {
			t.Error("color missing from cleaned spec")
		}
	})

	t.Run("empty kinds produce an empty payload", func(t *testing.T) {
		block := worklog.Block{
			ID:     "b2",
			Type:   "divider",
			Fields: map[string]any{"created_time": "2026-08-01T00:00:00Z"},
		}

		spec, ok := worklog.CleanForCopy(block)
		if !ok {
			t.Fatal("CleanForCopy() rejected a divider")
		}
		if len(spec.Fields) != 0 {
			t.Errorf("divider payload = %v, want empty", spec.Fields)
		}
	})

	t.Run("rejects kinds handled elsewhere", func(t *testing.T) {
		for _, kind := range []string{worklog.BlockChildPage, worklog.BlockChildDatabase, "link_preview", "unsupported", ""} {
			if _, ok := worklog.CleanForCopy(worklog.Block{Type: kind}); ok {
				t.Errorf("CleanForCopy() accepted kind %q", kind)
			}
		}
	})
}
