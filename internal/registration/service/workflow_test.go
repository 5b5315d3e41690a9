package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raceday/internal/locale"
	"raceday/internal/notification"
	"raceday/internal/race"
	"raceday/internal/registration/guard"
	"raceday/internal/registration/models"
	"raceday/internal/registration/service"
	"raceday/internal/registration/store"
	"raceday/pkg/email"
)

type outbox struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (o *outbox) Send(_ context.Context, msg email.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) messages() []email.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]email.Message(nil), o.sent...)
}

func newWorkflow(t *testing.T, transport notification.Transport, opts ...service.Option) (*service.Service, *store.InMemory) {
	t.Helper()
	catalog := locale.NewCatalog(locale.All...)
	templates, err := notification.DefaultTemplates(catalog)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewInMemory()
	dispatcher := notification.NewDispatcher(templates, transport, "Race Office <registration@example.com>",
		notification.WithLogger(logger))
	opts = append([]service.Option{service.WithLogger(logger)}, opts...)
	return service.New(st, dispatcher, catalog, opts...), st
}

func form(emailAddr, category string) models.FormData {
	return models.FormData{
		FirstName:             "Ana",
		LastName:              "Pop",
		Email:                 emailAddr,
		Phone:                 "+40 722 000 000",
		Country:               "RO",
		DateOfBirth:           "1990-05-01",
		RaceCategory:          category,
		EmergencyContactName:  "Ion Pop",
		EmergencyContactPhone: "+40 722 000 001",
		TermsAccepted:         true,
	}
}

func TestRomanianHalfMarathonIsConfirmed(t *testing.T) {
	box := &outbox{}
	svc, _ := newWorkflow(t, box)

	outcome, err := svc.Register(context.Background(), form("ana@example.com", "half"), "ro")
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeRegistered, outcome.Kind)
	require.NotNil(t, outcome.Dispatch)
	assert.Equal(t, models.DispatchSent, outcome.Dispatch.Status)
	assert.Equal(t, models.ConfirmationSent, outcome.Record.ConfirmationStatus)
	assert.Equal(t, 2001, *outcome.Record.BibNumber)

	msgs := box.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Înscriere confirmată la Semimaraton, Ana", msgs[0].Subject)
}

func TestRegisteringTwiceReturnsTheFirstRecord(t *testing.T) {
	box := &outbox{}
	svc, st := newWorkflow(t, box)
	ctx := context.Background()

	first, err := svc.Register(ctx, form("ana@example.com", "half"), "ro")
	require.NoError(t, err)
	second, err := svc.Register(ctx, form("Ana@Example.com", "half"), "en")
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeAlreadyRegistered, second.Kind)
	assert.Equal(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, 1, st.Count())
	assert.Len(t, box.messages(), 1)
}

func TestMissingTransportStillRegisters(t *testing.T) {
	svc, st := newWorkflow(t, nil)

	outcome, err := svc.Register(context.Background(), form("ana@example.com", "10k"), "fr")
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeRegistered, outcome.Kind)
	assert.Equal(t, models.DispatchOutcome{Status: models.DispatchFailed, Reason: models.DispatchReasonTransportUnavailable}, *outcome.Dispatch)
	stored, err := st.FindByID(context.Background(), outcome.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmationFailed, stored.ConfirmationStatus)
}

func TestResendAfterTransportRecovers(t *testing.T) {
	box := &outbox{err: fmt.Errorf("provider outage")}
	svc, st := newWorkflow(t, box)
	ctx := context.Background()

	outcome, err := svc.Register(ctx, form("ana@example.com", "marathon"), "de")
	require.NoError(t, err)
	require.Equal(t, models.ConfirmationFailed, outcome.Record.ConfirmationStatus)

	box.mu.Lock()
	box.err = nil
	box.mu.Unlock()

	rec, dispatch, err := svc.ResendConfirmation(ctx, outcome.Record.ID, "")
	require.NoError(t, err)
	assert.True(t, dispatch.Sent())
	assert.Equal(t, models.ConfirmationSent, rec.ConfirmationStatus)
	require.Len(t, box.messages(), 1)
	assert.Equal(t, "Marathon-Anmeldung bestätigt, Ana", box.messages()[0].Subject)

	stored, err := st.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmationSent, stored.ConfirmationStatus)

	_, _, err = svc.ResendConfirmation(ctx, rec.ID, "")
	require.NoError(t, err)
	assert.Len(t, box.messages(), 1)
}

func TestConcurrentIdenticalSubmissionsStoreOneRecord(t *testing.T) {
	for name, opts := range map[string][]service.Option{
		"without guard": nil,
		"with guard":    {service.WithGuard(guard.NewInMemory(0), 0)},
	} {
		t.Run(name, func(t *testing.T) {
			box := &outbox{}
			svc, st := newWorkflow(t, box, opts...)

			const n = 20
			var wg sync.WaitGroup
			outcomes := make([]models.Outcome, n)
			errs := make([]error, n)
			for i := range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					outcomes[i], errs[i] = svc.Register(context.Background(), form("ana@example.com", "ultra"), "en")
				}()
			}
			wg.Wait()

			registered := 0
			for i := range n {
				require.NoError(t, errs[i], "submission %d", i)
				switch outcomes[i].Kind {
				case models.OutcomeRegistered:
					registered++
				default:
					assert.Equal(t, models.OutcomeAlreadyRegistered, outcomes[i].Kind, "submission %d", i)
				}
			}
			assert.Equal(t, 1, registered)
			assert.Equal(t, 1, st.Count())
			assert.Len(t, box.messages(), 1)
		})
	}
}

// holdingStore parks the first lookup until release is closed.
type holdingStore struct {
	*store.InMemory
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (h *holdingStore) FindByEmailAndCategory(ctx context.Context, emailAddr string, category race.Category) (*models.Record, error) {
	first := false
	h.once.Do(func() { first = true })
	if first {
		close(h.entered)
		<-h.release
	}
	return h.InMemory.FindByEmailAndCategory(ctx, emailAddr, category)
}

func TestSubmissionWhileGuardHeldIsNotAnError(t *testing.T) {
	catalog := locale.NewCatalog(locale.All...)
	templates, err := notification.DefaultTemplates(catalog)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	box := &outbox{}
	st := &holdingStore{InMemory: store.NewInMemory(), entered: make(chan struct{}), release: make(chan struct{})}
	dispatcher := notification.NewDispatcher(templates, box, "Race Office <registration@example.com>", notification.WithLogger(logger))
	svc := service.New(st, dispatcher, catalog,
		service.WithLogger(logger),
		service.WithGuard(guard.NewInMemory(0), time.Minute),
	)

	var (
		first    models.Outcome
		firstErr error
		done     = make(chan struct{})
	)
	go func() {
		defer close(done)
		first, firstErr = svc.Register(context.Background(), form("ana@example.com", "half"), "en")
	}()
	<-st.entered

	second, err := svc.Register(context.Background(), form("ana@example.com", "half"), "en")
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeRegistered, second.Kind)

	close(st.release)
	<-done
	require.NoError(t, firstErr)
	assert.Equal(t, models.OutcomeAlreadyRegistered, first.Kind)
	assert.Equal(t, second.Record.ID, first.Record.ID)
	assert.Equal(t, 1, st.Count())
	assert.Len(t, box.messages(), 1)
}
