package worklog

import "context"

// ArchiveResult summarizes a weekly archive run over the seven dates of
// last week.
type ArchiveResult struct {
	Moved   int
	Skipped int
	Failed  int
}

// RunWeeklyArchive moves last week's entries (Monday through Sunday in the
// target timezone) into the archive container. Dates with no entry are
// normal skips, not failures: weekend dates never had one. A failed move is
// counted and logged, and the remaining dates are still processed.
func (s *Service) RunWeeklyArchive(ctx context.Context, databaseID, archiveID string) (ArchiveResult, error) {
	week := LastWeek(s.clock.Now())
	s.logger.Info("archiving last week",
		"from", week.Start.Format("2006-01-02"), "until", week.End.AddDate(0, 0, -1).Format("2006-01-02"))

	var res ArchiveResult
	for _, date := range week.Dates() {
		title := EntryTitle(date)

		pages, err := s.client.QueryByTitle(ctx, databaseID, title)
		if err != nil {
			s.logger.Error("entry lookup failed", "title", title, "error", err)
			res.Failed++
			continue
		}
		if len(pages) == 0 {
			s.logger.Info("no entry for date", "title", title)
			res.Skipped++
			continue
		}

		// First match wins when the same title appears more than once.
		page := pages[0]
		if err := s.client.MovePage(ctx, page.ID, archiveID); err != nil {
			s.logger.Error("moving entry failed", "title", title, "id", page.ID, "error", err)
			res.Failed++
			continue
		}
		s.logger.Info("entry archived", "title", title, "id", page.ID)
		res.Moved++
	}

	s.logger.Info("archive finished", "moved", res.Moved, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}
