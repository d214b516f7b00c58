package contract

import "time"

// AddMonths adds calendar months keeping the day of month, clamped to the
// last day of the target month (Jan 31 + 1 month = Feb 28 or 29).
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + months
	year := y + total/12
	month := total % 12
	if month < 0 {
		month += 12
		year--
	}
	target := time.Month(month + 1)
	if last := daysIn(year, target); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(year, target, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
