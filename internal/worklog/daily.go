package worklog

import (
	"context"
	"fmt"
	"time"
)

// DailyStatus classifies the outcome for one date of a daily run.
type DailyStatus string

const (
	// StatusCreated means a new entry was duplicated from the template.
	StatusCreated DailyStatus = "created"
	// StatusExists means an entry with the expected title already exists.
	StatusExists DailyStatus = "exists"
	// StatusWeekend means the date falls on a weekend and no entry is made.
	StatusWeekend DailyStatus = "weekend"
)

// DailyEntry is the outcome for a single date of a daily run.
type DailyEntry struct {
	Date   time.Time
	Title  string
	Status DailyStatus
	Page   *Page
	Blocks int
	Errs   int
}

// RunDaily creates today's work log entry from the template, skipping
// weekends and dates that already have an entry. With prepareNext set, the
// next business day's entry is created in the same run.
//
// Running twice on the same day creates exactly one entry: the second run
// finds the existing title and reports StatusExists.
func (s *Service) RunDaily(ctx context.Context, templateID, databaseID string, prepareNext bool) ([]DailyEntry, error) {
	today := EntryDate(s.clock.Now())

	dates := []time.Time{today}
	if prepareNext {
		dates = append(dates, NextBusinessDay(today))
	}

	var entries []DailyEntry
	for _, date := range dates {
		entry, err := s.createForDate(ctx, templateID, databaseID, date)
		entries = append(entries, entry)
		if err != nil {
			return entries, err
		}
	}
	return entries, nil
}

func (s *Service) createForDate(ctx context.Context, templateID, databaseID string, date time.Time) (DailyEntry, error) {
	entry := DailyEntry{Date: date, Title: EntryTitle(date)}

	if IsWeekend(date) {
		s.logger.Info("weekend, skipping entry", "title", entry.Title)
		entry.Status = StatusWeekend
		return entry, nil
	}

	existing, err := s.client.QueryByTitle(ctx, databaseID, entry.Title)
	if err != nil {
		// A failed lookup is not worth aborting the run over: proceed with
		// creation and let the next run reconcile.
		s.logger.Warn("existing entry lookup failed, proceeding", "title", entry.Title, "error", err)
	}
	if len(existing) > 0 {
		s.logger.Info("entry already exists, skipping", "title", entry.Title, "id", existing[0].ID)
		entry.Status = StatusExists
		entry.Page = &existing[0]
		return entry, nil
	}

	result, err := s.DuplicatePage(ctx, templateID, databaseID, entry.Title, date)
	if err != nil {
		return entry, fmt.Errorf("creating daily entry: %w", err)
	}

	entry.Status = StatusCreated
	entry.Page = &result.Page
	entry.Blocks = result.Blocks
	entry.Errs = len(result.Errs)
	return entry, nil
}
