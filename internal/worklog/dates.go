package worklog

import "time"

// Zone is the fixed target timezone for all date computations. Entries are
// dated in KST regardless of where the scheduler runs the process.
var Zone = time.FixedZone("KST", 9*60*60)

const entryTitleFormat = "2006-01-02 (Mon)"

// EntryTitle returns the expected title of the work log entry for a date.
func EntryTitle(t time.Time) string {
	return t.In(Zone).Format(entryTitleFormat)
}

// EntryDate truncates a time to its calendar date in the target timezone.
func EntryDate(t time.Time) time.Time {
	t = t.In(Zone)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Zone)
}

// IsWeekend reports whether the date falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.In(Zone).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NextBusinessDay returns the first weekday after the given date.
func NextBusinessDay(t time.Time) time.Time {
	next := EntryDate(t).AddDate(0, 0, 1)
	for IsWeekend(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// DateRange is a half-open interval [Start, End) of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Dates returns each calendar date in the range, in order.
func (r DateRange) Dates() []time.Time {
	var dates []time.Time
	for d := r.Start; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// LastWeek returns the Monday-through-Sunday week preceding the week that
// contains now. The result is a full calendar week even mid-week: given a
// Wednesday it still covers the prior Monday to Sunday, not a rolling
// seven-day window.
func LastWeek(now time.Time) DateRange {
	today := EntryDate(now)
	// Days since this week's Monday, with Monday as day zero.
	sinceMonday := (int(today.Weekday()) + 6) % 7
	thisMonday := today.AddDate(0, 0, -sinceMonday)
	return DateRange{
		Start: thisMonday.AddDate(0, 0, -7),
		End:   thisMonday,
	}
}
