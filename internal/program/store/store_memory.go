package store

import (
	"context"
	"slices"
	"sync"

	"raceday/internal/program/models"
)

// InMemory keeps the program in process memory.
type InMemory struct {
	mu     sync.RWMutex
	events []models.Event
}

// NewInMemory validates and stores events.
func NewInMemory(events ...models.Event) (*InMemory, error) {
	if err := models.ValidateEvents(events); err != nil {
		return nil, err
	}
	return &InMemory{events: slices.Clone(events)}, nil
}

// ListEvents returns a copy of all program events in insertion order.
func (s *InMemory) ListEvents(_ context.Context) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events), nil
}

// Replace swaps the whole program after validating it.
func (s *InMemory) Replace(_ context.Context, events []models.Event) error {
	if err := models.ValidateEvents(events); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = slices.Clone(events)
	return nil
}
