package worklog

import (
	"context"
	"fmt"
	"strings"
)

// OutlineItem is one block in a depth-first sketch of a page.
type OutlineItem struct {
	Depth int
	Type  string
	Text  string
}

// Outline walks a page's block tree depth-first and returns a flattened
// sketch of it: block kinds with their plain text, indent level tracking
// nesting. Child pages are listed by title but not descended into.
func (s *Service) Outline(ctx context.Context, pageID string) ([]OutlineItem, error) {
	return s.outline(ctx, pageID, 0)
}

func (s *Service) outline(ctx context.Context, containerID string, depth int) ([]OutlineItem, error) {
	var items []OutlineItem

	for block, err := range s.client.ListBlocks(ctx, containerID) {
		if err != nil {
			return items, fmt.Errorf("listing blocks of %s: %w", containerID, err)
		}

		item := OutlineItem{Depth: depth, Type: block.Type}
		if block.Type == BlockChildPage {
			item.Text = block.ChildTitle()
		} else {
			item.Text = plainText(block)
		}
		items = append(items, item)

		if block.HasChildren && block.Type != BlockChildPage {
			sub, err := s.outline(ctx, block.ID, depth+1)
			items = append(items, sub...)
			if err != nil {
				return items, err
			}
		}
	}
	return items, nil
}

// ChildPages returns the pages nested directly under a container, in block
// order. Useful for checking what ended up in the archive.
func (s *Service) ChildPages(ctx context.Context, containerID string) ([]Page, error) {
	pages, err := s.client.ListChildPages(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("listing child pages of %s: %w", containerID, err)
	}
	return pages, nil
}

// plainText joins the plain_text parts of a block's rich text payload.
func plainText(b Block) string {
	richText, ok := b.Fields["rich_text"].([]any)
	if !ok {
		return ""
	}

	var parts []string
	for _, rt := range richText {
		m, ok := rt.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := m["plain_text"].(string); ok {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "")
}
