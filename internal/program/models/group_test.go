package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"raceday/internal/locale"
)

var programStart = time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC)

func eventsGen() *rapid.Generator[[]Event] {
	return rapid.Custom(func(t *rapid.T) []Event {
		ids := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,4}`), 0, 30, rapid.ID[string]).Draw(t, "ids")
		events := make([]Event, len(ids))
		for i, id := range ids {
			day := programStart.AddDate(0, 0, rapid.IntRange(0, 3).Draw(t, "day"))
			start := day.Add(7*time.Hour + time.Duration(rapid.IntRange(0, 6).Draw(t, "slot"))*30*time.Minute)
			events[i] = Event{
				ID: id,
				// Date carries a time of day on purpose; grouping must strip it.
				Date:      start,
				StartTime: start,
				Title:     locale.Text{locale.English: id},
			}
		}
		return events
	})
}

func flatten(days []Day) []Event {
	var out []Event
	for _, d := range days {
		out = append(out, d.Events...)
	}
	return out
}

func TestGroupOrdering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		events := eventsGen().Draw(t, "events")
		days := Group(events)

		assert.Len(t, flatten(days), len(events))
		for i := 1; i < len(days); i++ {
			if days[i-1].Date >= days[i].Date {
				t.Fatalf("dates not strictly ascending: %s then %s", days[i-1].Date, days[i].Date)
			}
		}
		for _, d := range days {
			for i, e := range d.Events {
				if e.Day() != d.Date {
					t.Fatalf("event %s on %s grouped under %s", e.ID, e.Day(), d.Date)
				}
				if i == 0 {
					continue
				}
				prev := d.Events[i-1]
				if prev.StartTime.After(e.StartTime) {
					t.Fatalf("events %s and %s out of start order", prev.ID, e.ID)
				}
				if prev.StartTime.Equal(e.StartTime) && prev.ID >= e.ID {
					t.Fatalf("tie between %s and %s not broken by id", prev.ID, e.ID)
				}
			}
		}
	})
}

func TestGroupIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		events := eventsGen().Draw(t, "events")
		once := Group(events)
		twice := Group(flatten(once))
		assert.Equal(t, once, twice)
	})
}

func TestGroupDoesNotMutateInput(t *testing.T) {
	events := []Event{
		{ID: "b", Date: programStart, StartTime: programStart.Add(9 * time.Hour)},
		{ID: "a", Date: programStart, StartTime: programStart.Add(8 * time.Hour)},
	}
	_ = Group(events)
	assert.Equal(t, "b", events[0].ID)
}

func TestGroupExample(t *testing.T) {
	sat := programStart.AddDate(0, 0, 1)
	events := []Event{
		{ID: "ultra-start", Date: sat, StartTime: sat.Add(5 * time.Hour)},
		{ID: "expo", Date: programStart, StartTime: programStart.Add(10 * time.Hour)},
		{ID: "half-start", Date: sat, StartTime: sat.Add(8 * time.Hour)},
		{ID: "10k-start", Date: sat, StartTime: sat.Add(8 * time.Hour)},
	}

	days := Group(events)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-06-12", days[0].Date)
	assert.Equal(t, "2026-06-13", days[1].Date)

	var ids []string
	for _, e := range days[1].Events {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"ultra-start", "10k-start", "half-start"}, ids)
	assert.Empty(t, Group(nil))
}

func TestValidateEvents(t *testing.T) {
	start := programStart.Add(9 * time.Hour)
	before := start.Add(-time.Minute)
	ok := Event{ID: "a", Date: programStart, StartTime: start, Title: locale.Text{locale.English: "Expo"}}

	require.NoError(t, ValidateEvents([]Event{ok}))

	dup := ok
	require.ErrorContains(t, ValidateEvents([]Event{ok, dup}), "duplicate")

	backwards := ok
	backwards.EndTime = &before
	require.ErrorContains(t, ValidateEvents([]Event{backwards}), "ends before")

	untitled := ok
	untitled.Title = locale.Text{locale.Romanian: "Expo"}
	require.Error(t, ValidateEvents([]Event{untitled}))

	noID := ok
	noID.ID = ""
	require.Error(t, ValidateEvents([]Event{noID}))
}
