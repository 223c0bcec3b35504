package notion

import (
	"encoding/json"
	"fmt"

	"worklog-go/internal/worklog"
)

// decodeBlock maps a wire block onto worklog.Block. The kind-specific
// payload lives under a key named after the kind and is kept opaque.
func decodeBlock(raw json.RawMessage) (worklog.Block, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return worklog.Block{}, fmt.Errorf("decoding block: %w", err)
	}

	kind, _ := m["type"].(string)
	if kind == "" {
		return worklog.Block{}, fmt.Errorf("decoding block: missing type")
	}

	block := worklog.Block{
		ID:   stringField(m, "id"),
		Type: kind,
	}
	if hc, ok := m["has_children"].(bool); ok {
		block.HasChildren = hc
	}
	if fields, ok := m[kind].(map[string]any); ok {
		block.Fields = fields
	} else {
		block.Fields = map[string]any{}
	}
	return block, nil
}

// encodeSpec produces the wire form of a creatable block.
func encodeSpec(spec worklog.BlockSpec) map[string]any {
	return map[string]any{
		"type":    spec.Type,
		spec.Type: spec.Fields,
	}
}

// decodePage maps a wire page onto worklog.Page, pulling the title out of
// whichever property carries the title array. Root entries name it after
// the database's title property; child pages always call it "title".
func decodePage(raw json.RawMessage) (worklog.Page, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return worklog.Page{}, fmt.Errorf("decoding page: %w", err)
	}

	page := worklog.Page{ID: stringField(m, "id")}
	if page.ID == "" {
		return worklog.Page{}, fmt.Errorf("decoding page: missing id")
	}

	props, _ := m["properties"].(map[string]any)
	for _, prop := range props {
		pm, ok := prop.(map[string]any)
		if !ok {
			continue
		}
		parts, ok := pm["title"].([]any)
		if !ok {
			continue
		}
		page.Title = joinTitle(parts)
		break
	}
	return page, nil
}

func joinTitle(parts []any) string {
	title := ""
	for _, part := range parts {
		pm, ok := part.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := pm["plain_text"].(string); ok {
			title += text
			continue
		}
		if inner, ok := pm["text"].(map[string]any); ok {
			if content, ok := inner["content"].(string); ok {
				title += content
			}
		}
	}
	return title
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
