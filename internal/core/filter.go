package core

import "sort"

// Period narrows a ledger to a calendar year and optionally a month.
// The zero value means all-time; Month is meaningless without Year.
type Period struct {
	Year  int
	Month int
}

// AllTime is the unfiltered period.
var AllTime = Period{}

// Contains reports whether the date falls inside the period.
func (p Period) Contains(d Date) bool {
	if p.Year == 0 {
		return true
	}
	if d.Year() != p.Year {
		return false
	}
	if p.Month == 0 {
		return true
	}
	return d.Month() == p.Month
}

// IsAllTime reports whether the period places no restriction.
func (p Period) IsAllTime() bool {
	return p.Year == 0
}

// FilterPeriod returns the entries whose date falls in the period, preserving
// row order. An empty result is a value, not an error; the caller decides how
// "no rows in period" differs from "no rows at all".
func FilterPeriod(entries []SessionEntry, p Period) []SessionEntry {
	if p.IsAllTime() {
		return entries
	}
	out := make([]SessionEntry, 0, len(entries))
	for _, e := range entries {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// Years lists the distinct years present in the ledger, most recent first.
// Period choices offered to a caller always come from the data, never from a
// fixed calendar range.
func Years(entries []SessionEntry) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, e := range entries {
		y := e.Date.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// MonthsOf lists the distinct months with entries in the given year, ascending.
func MonthsOf(entries []SessionEntry, year int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, e := range entries {
		if e.Date.Year() != year {
			continue
		}
		m := e.Date.Month()
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

// distinctDates returns the distinct dates present, sorted ascending.
func distinctDates(entries []SessionEntry) []Date {
	seen := map[string]Date{}
	for _, e := range entries {
		seen[e.Date.ISO()] = e.Date
	}
	out := make([]Date, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j].Time) })
	return out
}

// players returns the distinct player names present, sorted alphabetically.
func players(entries []SessionEntry) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, e := range entries {
		if _, ok := seen[e.Player]; ok {
			continue
		}
		seen[e.Player] = struct{}{}
		out = append(out, e.Player)
	}
	sort.Strings(out)
	return out
}
