package models

import (
	"errors"
	"fmt"
	"time"

	"raceday/internal/locale"
)

// DateLayout is the ISO calendar-day layout used as the grouping key.
const DateLayout = "2006-01-02"

// Event is one timed entry in the race weekend program.
//
// Invariants:
//   - ID is unique across the event set
//   - StartTime <= EndTime when EndTime is set
//   - Title carries the default-locale entry
type Event struct {
	ID          string
	Date        time.Time
	StartTime   time.Time
	EndTime     *time.Time
	Title       locale.Text
	Description locale.Text
}

// Day returns the calendar-day grouping key with time of day stripped.
func (e Event) Day() string {
	return e.Date.Format(DateLayout)
}

// Validate checks the single-event invariants.
func (e Event) Validate() error {
	if e.ID == "" {
		return errors.New("program event id is required")
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return fmt.Errorf("program event %s ends before it starts", e.ID)
	}
	if err := e.Title.Validate(); err != nil {
		return fmt.Errorf("program event %s title: %w", e.ID, err)
	}
	return nil
}

// ValidateEvents checks every event and that IDs are unique.
func ValidateEvents(events []Event) error {
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return err
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("duplicate program event id %s", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// Day is one calendar date of the program with its ordered events.
type Day struct {
	Date   string
	Events []Event
}

// LocalizedEvent is an Event rendered for one locale.
type LocalizedEvent struct {
	ID          string     `json:"id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
}

// LocalizedDay is a Day rendered for one locale.
type LocalizedDay struct {
	Date   string           `json:"date"`
	Events []LocalizedEvent `json:"events"`
}
