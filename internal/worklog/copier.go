package worklog

import (
	"context"
	"fmt"
)

// ChildMap records a child page placeholder created during a block copy.
// DestID is an empty page created in-place; the duplication engine fills it
// in a later recursive pass.
type ChildMap struct {
	SourceID string
	DestID   string
	Title    string
}

// CopyResult summarizes one block copy pass.
type CopyResult struct {
	Copied   int
	Children []ChildMap
	Errs     []error
}

// copyBlocks duplicates the direct blocks of sourceID into destID in
// original order, recursing depth-first into nested blocks.
//
// Child pages are not copied here. To keep their position among sibling
// blocks, an empty placeholder page is created at the exact point the
// child's turn arrives, and the source→dest mapping is recorded for the
// duplication engine to fill afterwards. Appending child pages at the end
// instead would lose the interleaving.
//
// Per-block failures are recorded and skipped; a bad block never stops the
// rest of the copy.
// childPageTitle resolves a child page's title for its placeholder. The
// block payload usually carries it; when it doesn't, the page itself is
// fetched, since a placeholder named "Untitled" would lose the real title
// even though the service knows it.
func (s *Service) childPageTitle(ctx context.Context, b Block) string {
	if t, ok := b.Fields["title"].(string); ok && t != "" {
		return t
	}
	page, err := s.client.GetPage(ctx, b.ID)
	if err != nil || page.Title == "" {
		return "Untitled"
	}
	return page.Title
}

func (s *Service) copyBlocks(ctx context.Context, sourceID, destID string) CopyResult {
	var res CopyResult

	for block, err := range s.client.ListBlocks(ctx, sourceID) {
		if err != nil {
			res.Errs = append(res.Errs, fmt.Errorf("listing blocks of %s: %w", sourceID, err))
			break
		}

		switch block.Type {
		case BlockChildPage:
			title := s.childPageTitle(ctx, block)
			placeholder, err := s.client.CreateChildPage(ctx, destID, title)
			if err != nil {
				s.logger.Error("creating child page placeholder failed", "title", title, "error", err)
				res.Errs = append(res.Errs, fmt.Errorf("creating placeholder for %q: %w", title, err))
				continue
			}
			s.logger.Info("child page placeholder created", "title", title, "id", placeholder.ID)
			res.Children = append(res.Children, ChildMap{
				SourceID: block.ID,
				DestID:   placeholder.ID,
				Title:    title,
			})
			res.Copied++

		case BlockChildDatabase:
			s.logger.Warn("child databases are not supported, skipping", "id", block.ID)

		default:
			spec, ok := CleanForCopy(block)
			if !ok {
				s.logger.Warn("skipping uncopyable block", "type", block.Type, "id", block.ID)
				continue
			}

			created, err := s.client.AppendBlock(ctx, destID, spec)
			if err != nil {
				s.logger.Error("copying block failed", "type", block.Type, "error", err)
				res.Errs = append(res.Errs, fmt.Errorf("copying %s block: %w", block.Type, err))
				continue
			}
			res.Copied++

			// Children attach to the created block, which must exist first.
			if block.HasChildren {
				sub := s.copyBlocks(ctx, block.ID, created.ID)
				res.Copied += sub.Copied
				res.Children = append(res.Children, sub.Children...)
				res.Errs = append(res.Errs, sub.Errs...)
			}
		}
	}

	return res
}
