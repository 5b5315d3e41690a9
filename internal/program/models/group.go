package models

import (
	"cmp"
	"slices"
)

// Group orders events by calendar day, then start time, then ID, and splits
// them into per-day buckets. The input slice is not modified.
func Group(events []Event) []Day {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, compareEvents)

	var days []Day
	for _, e := range sorted {
		key := e.Day()
		if n := len(days); n > 0 && days[n-1].Date == key {
			days[n-1].Events = append(days[n-1].Events, e)
			continue
		}
		days = append(days, Day{Date: key, Events: []Event{e}})
	}
	return days
}

func compareEvents(a, b Event) int {
	if c := cmp.Compare(a.Day(), b.Day()); c != 0 {
		return c
	}
	if c := a.StartTime.Compare(b.StartTime); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
