package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"raceday/internal/locale"
	"raceday/internal/program/models"
	"raceday/internal/program/service/mocks"
	dErrors "raceday/pkg/domain-errors"
)

type ProgramServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockStore *mocks.MockStore
	catalog   *locale.Catalog
	ctx       context.Context
}

func TestProgramServiceSuite(t *testing.T) {
	suite.Run(t, new(ProgramServiceSuite))
}

func (s *ProgramServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.catalog = locale.NewCatalog(locale.All...)
	s.ctx = context.Background()
}

func (s *ProgramServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ProgramServiceSuite) events() []models.Event {
	day := time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC)
	return []models.Event{
		{
			ID: "start-half", Date: day, StartTime: day.Add(8 * time.Hour),
			Title:       locale.Text{locale.English: "Half marathon start", locale.Romanian: "Start semimaraton"},
			Description: locale.Text{locale.English: "Main square"},
		},
		{
			ID: "start-ultra", Date: day, StartTime: day.Add(5 * time.Hour),
			Title: locale.Text{locale.English: "Ultra start"},
		},
	}
}

func (s *ProgramServiceSuite) TestScheduleLocalizesWithFallback() {
	s.mockStore.EXPECT().ListEvents(gomock.Any()).Return(s.events(), nil)
	svc := New(s.mockStore, s.catalog, WithCacheTTL(0))

	days, err := svc.Schedule(s.ctx, locale.Romanian)
	s.Require().NoError(err)
	s.Require().Len(days, 1)
	s.Equal("2026-06-13", days[0].Date)
	s.Require().Len(days[0].Events, 2)

	s.Equal("start-ultra", days[0].Events[0].ID)
	s.Equal("Ultra start", days[0].Events[0].Title)
	s.Equal("Start semimaraton", days[0].Events[1].Title)
	s.Equal("Main square", days[0].Events[1].Description)
}

func (s *ProgramServiceSuite) TestScheduleIsCachedAcrossLocales() {
	s.mockStore.EXPECT().ListEvents(gomock.Any()).Return(s.events(), nil).Times(1)
	svc := New(s.mockStore, s.catalog, WithCacheTTL(time.Minute))

	en, err := svc.Schedule(s.ctx, locale.English)
	s.Require().NoError(err)
	ro, err := svc.Schedule(s.ctx, locale.Romanian)
	s.Require().NoError(err)

	s.Equal("Half marathon start", en[0].Events[1].Title)
	s.Equal("Start semimaraton", ro[0].Events[1].Title)
}

func (s *ProgramServiceSuite) TestInvalidateReloads() {
	s.mockStore.EXPECT().ListEvents(gomock.Any()).Return(s.events(), nil).Times(2)
	svc := New(s.mockStore, s.catalog, WithCacheTTL(time.Minute))

	_, err := svc.Schedule(s.ctx, locale.English)
	s.Require().NoError(err)
	svc.Invalidate()
	_, err = svc.Schedule(s.ctx, locale.English)
	s.Require().NoError(err)
}

func (s *ProgramServiceSuite) TestStoreFailureIsInternal() {
	s.mockStore.EXPECT().ListEvents(gomock.Any()).Return(nil, errors.New("db down"))
	svc := New(s.mockStore, s.catalog)

	_, err := svc.Schedule(s.ctx, locale.English)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
