package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"raceday/internal/program/models"
)

type ProgramStoreSuite struct {
	suite.Suite
	ctx context.Context
}

func TestProgramStoreSuite(t *testing.T) {
	suite.Run(t, new(ProgramStoreSuite))
}

func (s *ProgramStoreSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *ProgramStoreSuite) TestDefaultProgramIsValid() {
	s.Require().NoError(models.ValidateEvents(DefaultProgram()))
}

func (s *ProgramStoreSuite) TestListReturnsCopy() {
	store, err := NewInMemory(DefaultProgram()...)
	s.Require().NoError(err)

	events, err := store.ListEvents(s.ctx)
	s.Require().NoError(err)
	s.Len(events, len(DefaultProgram()))

	events[0].ID = "mutated"
	again, err := store.ListEvents(s.ctx)
	s.Require().NoError(err)
	s.NotEqual("mutated", again[0].ID)
}

func (s *ProgramStoreSuite) TestRejectsInvalidProgram() {
	events := DefaultProgram()
	events[1].ID = events[0].ID

	_, err := NewInMemory(events...)
	s.Require().Error(err)

	store, err := NewInMemory()
	s.Require().NoError(err)
	s.Require().Error(store.Replace(s.ctx, events))

	s.Require().NoError(store.Replace(s.ctx, DefaultProgram()[:2]))
	got, err := store.ListEvents(s.ctx)
	s.Require().NoError(err)
	s.Len(got, 2)
}
