package services

import "time"

// DatePreset names a relative date window selectable in the dashboard.
type DatePreset string

const (
	PresetToday      DatePreset = "today"
	PresetYesterday  DatePreset = "yesterday"
	PresetThisWeek   DatePreset = "this_week"
	PresetLastWeek   DatePreset = "last_week"
	PresetThisMonth  DatePreset = "this_month"
	PresetLastMonth  DatePreset = "last_month"
	PresetThisYear   DatePreset = "this_year"
	PresetLastYear   DatePreset = "last_year"
	PresetLast7Days  DatePreset = "last_7_days"
	PresetLast30Days DatePreset = "last_30_days"
	PresetLast90Days DatePreset = "last_90_days"
	PresetCustom     DatePreset = "custom"
	PresetAll        DatePreset = "all"
)

const dayFormat = "2006-01-02"

// DateRange is an inclusive pair of local YYYY-MM-DD bounds. An empty bound
// imposes no limit on that side.
type DateRange struct {
	Start string
	End   string
}

// IsOpen reports whether the range imposes no filter at all.
func (r DateRange) IsOpen() bool {
	return r.Start == "" && r.End == ""
}

// Contains reports whether a YYYY-MM-DD day falls inside the range. The
// comparison is a plain string compare, which is correct for normalized
// date strings and sidesteps UTC conversion entirely.
func (r DateRange) Contains(day string) bool {
	if r.Start != "" && day < r.Start {
		return false
	}
	if r.End != "" && day > r.End {
		return false
	}
	return true
}

// ResolveDateRange computes the inclusive local-date bounds for a preset
// relative to now. For PresetCustom the explicit bounds are used as-is;
// PresetAll and an unset custom range are open. Weeks start on Monday.
func ResolveDateRange(preset DatePreset, customStart, customEnd string, now time.Time) DateRange {
	day := func(t time.Time) string { return t.Format(dayFormat) }

	switch preset {
	case PresetToday:
		return DateRange{Start: day(now), End: day(now)}
	case PresetYesterday:
		y := now.AddDate(0, 0, -1)
		return DateRange{Start: day(y), End: day(y)}
	case PresetThisWeek:
		return DateRange{Start: day(startOfWeek(now)), End: day(now)}
	case PresetLastWeek:
		start := startOfWeek(now).AddDate(0, 0, -7)
		return DateRange{Start: day(start), End: day(start.AddDate(0, 0, 6))}
	case PresetThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return DateRange{Start: day(start), End: day(now)}
	case PresetLastMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		start := first.AddDate(0, -1, 0)
		return DateRange{Start: day(start), End: day(first.AddDate(0, 0, -1))}
	case PresetThisYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return DateRange{Start: day(start), End: day(now)}
	case PresetLastYear:
		start := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year()-1, 12, 31, 0, 0, 0, 0, now.Location())
		return DateRange{Start: day(start), End: day(end)}
	case PresetLast7Days:
		return DateRange{Start: day(now.AddDate(0, 0, -6)), End: day(now)}
	case PresetLast30Days:
		return DateRange{Start: day(now.AddDate(0, 0, -29)), End: day(now)}
	case PresetLast90Days:
		return DateRange{Start: day(now.AddDate(0, 0, -89)), End: day(now)}
	case PresetCustom:
		return DateRange{Start: customStart, End: customEnd}
	case PresetAll, "":
		return DateRange{}
	default:
		return DateRange{}
	}
}

// startOfWeek returns the Monday of the week containing t.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, -(weekday - 1))
}
