package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"raceday/internal/locale"
	"raceday/internal/race"
	"raceday/internal/registration/models"
)

type naturalKey struct {
	email    string
	category race.Category
}

// InMemory keeps registrations in maps guarded by a single mutex. Bib
// counters live under the same lock so allocation and insert are atomic.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.Record
	byKey   map[naturalKey]uuid.UUID
	nextBib map[race.Category]int
}

// NewInMemory creates an empty store with every category at the start of its bib block.
func NewInMemory() *InMemory {
	next := make(map[race.Category]int)
	for _, r := range race.All() {
		next[r.Category] = r.FirstBib
	}
	return &InMemory{
		byID:    make(map[uuid.UUID]*models.Record),
		byKey:   make(map[naturalKey]uuid.UUID),
		nextBib: next,
	}
}

func (s *InMemory) Insert(_ context.Context, valid models.ValidRegistration, l locale.Locale, now time.Time) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := naturalKey{email: models.NormalizeEmail(valid.Email), category: valid.RaceCategory}
	if _, exists := s.byKey[key]; exists {
		return nil, ErrAlreadyUsed
	}
	bib, ok := s.nextBib[valid.RaceCategory]
	if !ok {
		return nil, fmt.Errorf("%w: unknown race category %q", ErrInvalidState, valid.RaceCategory)
	}
	s.nextBib[valid.RaceCategory] = bib + 1

	rec := models.NewRecord(uuid.New(), valid, l, now)
	rec.Email = key.email
	rec.BibNumber = &bib
	s.byID[rec.ID] = rec
	s.byKey[key] = rec.ID
	return rec.Clone(), nil
}

func (s *InMemory) FindByEmailAndCategory(_ context.Context, email string, category race.Category) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[naturalKey{email: models.NormalizeEmail(email), category: category}]
	if !ok {
		return nil, ErrNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *InMemory) UpdateConfirmationStatus(_ context.Context, id uuid.UUID, status models.ConfirmationStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	if err := rec.CanApplyConfirmation(status); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	rec.ApplyConfirmation(status, now)
	return nil
}

// Count returns the number of stored registrations.
func (s *InMemory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
