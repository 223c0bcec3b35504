package worklog

import (
	"context"
	"fmt"
	"time"
)

// DuplicateResult reports what a full page duplication produced.
type DuplicateResult struct {
	Page   Page
	Blocks int
	Pages  int
	Errs   []error
}

// DuplicatePage produces a structural copy of the source page as a new
// entry in the target database. The destination root is created with its
// title and date properties in a single call, then the source's blocks are
// copied in order, and finally every child page placeholder created along
// the way is populated recursively.
//
// Only root creation is fatal. Block and child page failures are logged,
// collected in the result and skipped, so a partial copy is still returned.
func (s *Service) DuplicatePage(ctx context.Context, sourceID, databaseID, title string, date time.Time) (*DuplicateResult, error) {
	s.logger.Info("duplicating page", "source", sourceID, "title", title)

	page, err := s.client.CreatePage(ctx, databaseID, title, date)
	if err != nil {
		return nil, fmt.Errorf("creating entry %q: %w", title, err)
	}
	s.logger.Info("entry created", "id", page.ID, "title", title)

	res := &DuplicateResult{Page: page}
	copied := s.copyBlocks(ctx, sourceID, page.ID)
	res.Blocks = copied.Copied
	res.Errs = append(res.Errs, copied.Errs...)

	for _, child := range copied.Children {
		s.populateChild(ctx, child, res)
	}

	s.logger.Info("duplication finished",
		"title", title, "blocks", res.Blocks, "child_pages", res.Pages, "errors", len(res.Errs))
	return res, nil
}

// populateChild fills a placeholder page with the source child's own blocks
// and recurses into its children. The placeholder already exists and holds
// its position, so this pass only needs to copy content into it.
// Recursion ends when a page contains no child page blocks.
func (s *Service) populateChild(ctx context.Context, child ChildMap, res *DuplicateResult) {
	s.logger.Info("populating child page", "title", child.Title)
	res.Pages++

	copied := s.copyBlocks(ctx, child.SourceID, child.DestID)
	res.Blocks += copied.Copied
	if len(copied.Errs) > 0 {
		s.logger.Error("child page copied with errors", "title", child.Title, "errors", len(copied.Errs))
		res.Errs = append(res.Errs, copied.Errs...)
	}

	for _, grandchild := range copied.Children {
		s.populateChild(ctx, grandchild, res)
	}
}
