package worklog_test

import (
	"context"
	"testing"
	"time"

	"worklog-go/internal/testutil"
	"worklog-go/internal/worklog"
)

const archiveID = "arch"

// seedLastWeek creates entries for last week's weekdays (Mon-Fri), leaving
// the weekend without entries, and returns the created page IDs by title.
func seedLastWeek(t *testing.T, remote *testutil.MemoryRemote, now time.Time) map[string]string {
	t.Helper()

	ids := map[string]string{}
	for _, d := range worklog.LastWeek(now).Dates() {
		if worklog.IsWeekend(d) {
			continue
		}
		page, err := remote.CreatePage(context.Background(), databaseID, worklog.EntryTitle(d), d)
		if err != nil {
			t.Fatalf("seeding entry: %v", err)
		}
		ids[page.Title] = page.ID
	}
	return ids
}

func TestRunWeeklyArchive_MovesWeekAndSkipsGaps(t *testing.T) {
	t.Parallel()

	remote := testutil.NewMemoryRemote()
	remote.AddPage(archiveID, "Archive")
	ids := seedLastWeek(t, remote, friday)
	svc := newService(remote, friday)

	res, err := svc.RunWeeklyArchive(context.Background(), databaseID, archiveID)
	if err != nil {
		t.Fatalf("RunWeeklyArchive() error = %v", err)
	}

	if res.Moved != 5 || res.Skipped != 2 || res.Failed != 0 {
		t.Errorf("result = %+v, want moved=5 skipped=2 failed=0", res)
	}

	for title, id := range ids {
		if parent := remote.ParentOf(id); parent != archiveID {
			t.Errorf("entry %q parent = %q, want %q", title, parent, archiveID)
		}
	}
	if left := remote.PagesIn(databaseID); len(left) != 0 {
		t.Errorf("database still holds %d entries, want 0", len(left))
	}
}

func TestRunWeeklyArchive_CountsFailedMoves(t *testing.T) {
	t.Parallel()

	remote := testutil.NewMemoryRemote()
	remote.AddPage(archiveID, "Archive")
	ids := seedLastWeek(t, remote, friday)
	svc := newService(remote, friday)

	// Fail one midweek move; the rest of the week must still be processed.
	wednesday := worklog.LastWeek(friday).Start.AddDate(0, 0, 2)
	remote.FailMove(ids[worklog.EntryTitle(wednesday)])

	res, err := svc.RunWeeklyArchive(context.Background(), databaseID, archiveID)
	if err != nil {
		t.Fatalf("RunWeeklyArchive() error = %v", err)
	}

	if res.Moved != 4 || res.Skipped != 2 || res.Failed != 1 {
		t.Errorf("result = %+v, want moved=4 skipped=2 failed=1", res)
	}
}

func TestRunWeeklyArchive_EmptyWeek(t *testing.T) {
	t.Parallel()

	remote := testutil.NewMemoryRemote()
	remote.AddPage(archiveID, "Archive")
	svc := newService(remote, friday)

	res, err := svc.RunWeeklyArchive(context.Background(), databaseID, archiveID)
	if err != nil {
		t.Fatalf("RunWeeklyArchive() error = %v", err)
	}
	if res.Moved != 0 || res.Skipped != 7 || res.Failed != 0 {
		t.Errorf("result = %+v, want moved=0 skipped=7 failed=0", res)
	}
}

func TestRunWeeklyArchive_ArchiveListsMovedEntries(t *testing.T) {
	t.Parallel()

	remote := testutil.NewMemoryRemote()
	remote.AddPage(archiveID, "Archive")
	seedLastWeek(t, remote, friday)
	svc := newService(remote, friday)

	if _, err := svc.RunWeeklyArchive(context.Background(), databaseID, archiveID); err != nil {
		t.Fatalf("RunWeeklyArchive() error = %v", err)
	}

	pages, err := svc.ChildPages(context.Background(), archiveID)
	if err != nil {
		t.Fatalf("ChildPages() error = %v", err)
	}
	if len(pages) != 5 {
		t.Errorf("archive holds %d pages, want 5", len(pages))
	}
}
