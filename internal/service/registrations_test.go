package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventgate/internal/apperrors"
	"eventgate/internal/models"
	"eventgate/internal/reference"
)

type fakeEvents struct {
	event *models.Event
}

func (f *fakeEvents) GetByID(_ context.Context, id int64) (*models.Event, error) {
	if f.event == nil || f.event.ID != id {
		return nil, nil
	}
	return f.event, nil
}

type fakeTickets struct {
	ticket *models.Ticket
}

func (f *fakeTickets) GetByID(_ context.Context, id int64) (*models.Ticket, error) {
	if f.ticket == nil || f.ticket.ID != id {
		return nil, nil
	}
	return f.ticket, nil
}

// fakeRegStore mimics the transactional guarantees of the real repository: a
// single mutex plays the role of the row lock, so capacity checks and the
// sold counter move together.
type fakeRegStore struct {
	mu       sync.Mutex
	capacity int
	sold     int
	nextID   int64
	regs     map[int64]*models.Registration
	byRef    map[string]int64

	refCollisions int // reject this many creates with ErrReferenceTaken
}

func newFakeRegStore(capacity int) *fakeRegStore {
	return &fakeRegStore{
		capacity: capacity,
		regs:     make(map[int64]*models.Registration),
		byRef:    make(map[string]int64),
	}
}

func (f *fakeRegStore) CreateConfirmed(_ context.Context, reg *models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.refCollisions > 0 {
		f.refCollisions--
		return apperrors.ErrReferenceTaken
	}
	if _, taken := f.byRef[reg.Reference]; taken {
		return apperrors.ErrReferenceTaken
	}
	if f.sold >= f.capacity {
		return apperrors.ErrSoldOut
	}

	f.nextID++
	f.sold++
	reg.ID = f.nextID
	reg.CreatedAt = time.Now()
	stored := *reg
	f.regs[reg.ID] = &stored
	f.byRef[reg.Reference] = reg.ID
	return nil
}

func (f *fakeRegStore) GetByID(_ context.Context, id int64) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[id]
	if !ok {
		return nil, nil
	}
	copied := *reg
	return &copied, nil
}

func (f *fakeRegStore) GetByReference(_ context.Context, ref string) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byRef[ref]
	if !ok {
		return nil, nil
	}
	copied := *f.regs[id]
	return &copied, nil
}

func (f *fakeRegStore) GetDetails(ctx context.Context, id int64) (*models.RegistrationDetails, error) {
	reg, err := f.GetByID(ctx, id)
	if err != nil || reg == nil {
		return nil, err
	}
	return &models.RegistrationDetails{Registration: *reg}, nil
}

func (f *fakeRegStore) List(_ context.Context, _ models.ListRegistrationsQuery) ([]models.Registration, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Registration, 0, len(f.regs))
	for _, reg := range f.regs {
		out = append(out, *reg)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRegStore) Update(_ context.Context, reg *models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *reg
	f.regs[reg.ID] = &stored
	return nil
}

func (f *fakeRegStore) Delete(_ context.Context, id int64) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if reg.Status == models.StatusConfirmed && f.sold > 0 {
		f.sold--
	}
	delete(f.regs, id)
	delete(f.byRef, reg.Reference)
	return reg, nil
}

func (f *fakeRegStore) MarkCheckedIn(_ context.Context, id int64) (*time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.regs[id]
	if !ok {
		return nil, false, nil
	}
	if reg.CheckedInAt != nil {
		return nil, false, nil
	}
	now := time.Now()
	reg.CheckedInAt = &now
	return &now, true, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (f *fakePublisher) Publish(subject string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	return nil
}

func newTestService(capacity int) (*RegistrationService, *fakeRegStore, *fakePublisher) {
	events := &fakeEvents{event: &models.Event{ID: 7, Title: "GopherCon", IsPublished: true}}
	tickets := &fakeTickets{ticket: &models.Ticket{ID: 3, EventID: 7, Type: "Standard", Quantity: capacity, IsActive: true}}
	store := newFakeRegStore(capacity)
	queue := &fakePublisher{}
	return NewRegistrationService(events, tickets, store, queue), store, queue
}

func attendee() *models.CreateRegistrationRequest {
	return &models.CreateRegistrationRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}
}

func TestRegisterSuccess(t *testing.T) {
	svc, store, queue := newTestService(10)

	reg, err := svc.Register(context.Background(), 7, 3, attendee())
	require.NoError(t, err)

	assert.Equal(t, models.StatusConfirmed, reg.Status)
	assert.Len(t, reg.Reference, reference.Length)
	assert.Equal(t, 1, store.sold)
	assert.Equal(t, []string{models.SubjectRegistrationConfirmed}, queue.subjects)
}

func TestRegisterConcurrentOversell(t *testing.T) {
	const capacity = 5
	const attempts = 40

	svc, store, _ := newTestService(capacity)

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), 7, 3, attendee())
		}(i)
	}
	wg.Wait()

	succeeded, soldOut := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperrors.ErrSoldOut):
			soldOut++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Exactly capacity registrations commit, every other attempt is told the
	// ticket sold out, and the counter never overshoots.
	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, attempts-capacity, soldOut)
	assert.Equal(t, capacity, store.sold)
	assert.Len(t, store.regs, capacity)
}

func TestRegisterReferenceCollisionRetries(t *testing.T) {
	svc, store, queue := newTestService(10)
	store.refCollisions = 2

	reg, err := svc.Register(context.Background(), 7, 3, attendee())
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Reference)
	assert.Len(t, queue.subjects, 1)
}

func TestRegisterReferenceCollisionExhausted(t *testing.T) {
	svc, store, queue := newTestService(10)
	store.refCollisions = maxReferenceAttempts

	_, err := svc.Register(context.Background(), 7, 3, attendee())
	require.ErrorIs(t, err, apperrors.ErrReferenceTaken)
	assert.Empty(t, queue.subjects)
}

func TestRegisterInactiveTicket(t *testing.T) {
	svc, _, _ := newTestService(10)
	svcTickets := svc.tickets.(*fakeTickets)
	svcTickets.ticket.IsActive = false

	_, err := svc.Register(context.Background(), 7, 3, attendee())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRegisterTicketFromOtherEvent(t *testing.T) {
	svc, _, _ := newTestService(10)
	svc.tickets.(*fakeTickets).ticket.EventID = 99

	_, err := svc.Register(context.Background(), 7, 3, attendee())
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRegisterUnknownEvent(t *testing.T) {
	svc, _, _ := newTestService(10)

	_, err := svc.Register(context.Background(), 12345, 3, attendee())
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRegisterPublishFailureStillSucceeds(t *testing.T) {
	svc, store, queue := newTestService(10)
	queue.err = errors.New("nats down")

	reg, err := svc.Register(context.Background(), 7, 3, attendee())
	require.NoError(t, err)
	assert.NotZero(t, reg.ID)
	assert.Equal(t, 1, store.sold)
}

func TestCheckInIdempotent(t *testing.T) {
	svc, _, _ := newTestService(10)

	reg, err := svc.Register(context.Background(), 7, 3, attendee())
	require.NoError(t, err)

	first, err := svc.CheckInByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.False(t, first.AlreadyCheckedIn)
	require.NotNil(t, first.Registration.CheckedInAt)
	firstAt := *first.Registration.CheckedInAt

	second, err := svc.CheckInByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyCheckedIn)
	require.NotNil(t, second.Registration.CheckedInAt)
	assert.Equal(t, firstAt, *second.Registration.CheckedInAt)
}

func TestCheckInByReferenceNormalizes(t *testing.T) {
	svc, _, _ := newTestService(10)

	reg, err := svc.Register(context.Background(), 7, 3, attendee())
	require.NoError(t, err)

	// Scanners and humans deliver lowercase and padded input.
	resp, err := svc.CheckInByReference(context.Background(), "  "+lower(reg.Reference)+" ")
	require.NoError(t, err)
	assert.False(t, resp.AlreadyCheckedIn)
	assert.Equal(t, reg.ID, resp.Registration.ID)
}

func TestCheckInUnknownReference(t *testing.T) {
	svc, _, _ := newTestService(10)

	_, err := svc.CheckInByReference(context.Background(), "ZZZZZZZZZZ")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteReleasesSeatAndPublishes(t *testing.T) {
	svc, store, queue := newTestService(1)

	reg, err := svc.Register(context.Background(), 7, 3, attendee())
	require.NoError(t, err)

	// Ticket is full now.
	_, err = svc.Register(context.Background(), 7, 3, attendee())
	require.ErrorIs(t, err, apperrors.ErrSoldOut)

	require.NoError(t, svc.Delete(context.Background(), reg.ID))
	assert.Equal(t, 0, store.sold)
	assert.Contains(t, queue.subjects, models.SubjectRegistrationDeleted)

	// The seat is available again.
	_, err = svc.Register(context.Background(), 7, 3, attendee())
	require.NoError(t, err)
}

func TestDeleteUnknownRegistration(t *testing.T) {
	svc, _, _ := newTestService(10)

	err := svc.Delete(context.Background(), 999)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateAppliesFields(t *testing.T) {
	svc, _, _ := newTestService(10)

	reg, err := svc.Register(context.Background(), 7, 3, attendee())
	require.NoError(t, err)

	email := "countess@example.com"
	status := models.StatusCancelled
	updated, err := svc.Update(context.Background(), reg.ID, &models.UpdateRegistrationRequest{
		Email:  &email,
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)
	assert.Equal(t, models.StatusCancelled, updated.Status)
	assert.Equal(t, "Ada", updated.FirstName)
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
