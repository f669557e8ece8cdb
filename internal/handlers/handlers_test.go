package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventgate/internal/apperrors"
	"eventgate/internal/models"
	"eventgate/internal/service"
)

type stubEvents struct{ event *models.Event }

func (s *stubEvents) GetByID(_ context.Context, id int64) (*models.Event, error) {
	if s.event == nil || s.event.ID != id {
		return nil, nil
	}
	return s.event, nil
}

type stubTickets struct{ ticket *models.Ticket }

func (s *stubTickets) GetByID(_ context.Context, id int64) (*models.Ticket, error) {
	if s.ticket == nil || s.ticket.ID != id {
		return nil, nil
	}
	return s.ticket, nil
}

type stubRegStore struct {
	capacity int
	sold     int
	nextID   int64
	regs     map[int64]*models.Registration
}

func newStubRegStore(capacity int) *stubRegStore {
	return &stubRegStore{capacity: capacity, regs: make(map[int64]*models.Registration)}
}

func (s *stubRegStore) CreateConfirmed(_ context.Context, reg *models.Registration) error {
	if s.sold >= s.capacity {
		return apperrors.ErrSoldOut
	}
	s.nextID++
	s.sold++
	reg.ID = s.nextID
	stored := *reg
	s.regs[reg.ID] = &stored
	return nil
}

func (s *stubRegStore) GetByID(_ context.Context, id int64) (*models.Registration, error) {
	reg, ok := s.regs[id]
	if !ok {
		return nil, nil
	}
	copied := *reg
	return &copied, nil
}

func (s *stubRegStore) GetByReference(_ context.Context, ref string) (*models.Registration, error) {
	for _, reg := range s.regs {
		if reg.Reference == ref {
			copied := *reg
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRegStore) GetDetails(ctx context.Context, id int64) (*models.RegistrationDetails, error) {
	reg, err := s.GetByID(ctx, id)
	if err != nil || reg == nil {
		return nil, err
	}
	return &models.RegistrationDetails{Registration: *reg}, nil
}

func (s *stubRegStore) List(_ context.Context, _ models.ListRegistrationsQuery) ([]models.Registration, int64, error) {
	out := make([]models.Registration, 0, len(s.regs))
	for _, reg := range s.regs {
		out = append(out, *reg)
	}
	return out, int64(len(out)), nil
}

func (s *stubRegStore) Update(_ context.Context, reg *models.Registration) error {
	stored := *reg
	s.regs[reg.ID] = &stored
	return nil
}

func (s *stubRegStore) Delete(_ context.Context, id int64) (*models.Registration, error) {
	reg, ok := s.regs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	delete(s.regs, id)
	return reg, nil
}

func (s *stubRegStore) MarkCheckedIn(_ context.Context, id int64) (*time.Time, bool, error) {
	reg, ok := s.regs[id]
	if !ok || reg.CheckedInAt != nil {
		return nil, false, nil
	}
	now := time.Now()
	reg.CheckedInAt = &now
	return &now, true, nil
}

type stubPublisher struct{}

func (stubPublisher) Publish(string, interface{}) error { return nil }

func setupRouter(store *stubRegStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	events := &stubEvents{event: &models.Event{ID: 7, Title: "GopherCon", IsPublished: true}}
	tickets := &stubTickets{ticket: &models.Ticket{ID: 3, EventID: 7, Type: "Standard", Quantity: store.capacity, IsActive: true}}

	services := &service.Services{
		Registrations: service.NewRegistrationService(events, tickets, store, stubPublisher{}),
	}
	h := NewHandlers(services, nil)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/events/:id/tickets/:ticketID/registrations", h.CreateRegistration)

	admin := api.Group("/admin")
	admin.GET("/registrations/:id", h.GetRegistration)
	admin.DELETE("/registrations/:id", h.DeleteRegistration)
	admin.POST("/registrations/:id/checkin", h.CheckInRegistration)
	admin.POST("/checkin", h.CheckInByReference)

	return r
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRegistration(t *testing.T) {
	r := setupRouter(newStubRegStore(10))

	w := postJSON(r, "/api/v1/events/7/tickets/3/registrations", models.CreateRegistrationRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var reg models.Registration
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	assert.Equal(t, models.StatusConfirmed, reg.Status)
	assert.NotEmpty(t, reg.Reference)
}

func TestCreateRegistrationSoldOut(t *testing.T) {
	r := setupRouter(newStubRegStore(1))

	body := models.CreateRegistrationRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	assert.Equal(t, http.StatusCreated, postJSON(r, "/api/v1/events/7/tickets/3/registrations", body).Code)

	w := postJSON(r, "/api/v1/events/7/tickets/3/registrations", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "sold out")
}

func TestCreateRegistrationUnknownTicket(t *testing.T) {
	r := setupRouter(newStubRegStore(10))

	w := postJSON(r, "/api/v1/events/7/tickets/99/registrations", models.CreateRegistrationRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRegistrationInvalidBody(t *testing.T) {
	r := setupRouter(newStubRegStore(10))

	// Missing email fails binding before the service is reached.
	w := postJSON(r, "/api/v1/events/7/tickets/3/registrations", gin.H{
		"first_name": "Ada",
		"last_name":  "Lovelace",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckInByReferenceFlow(t *testing.T) {
	store := newStubRegStore(10)
	r := setupRouter(store)

	w := postJSON(r, "/api/v1/events/7/tickets/3/registrations", models.CreateRegistrationRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var reg models.Registration
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	w = postJSON(r, "/api/v1/admin/checkin", models.CheckInByReferenceRequest{Reference: reg.Reference})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.CheckInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Checked in", resp.Message)
	require.NotNil(t, resp.Registration)
	assert.NotNil(t, resp.Registration.CheckedInAt)

	// A second scan reports the earlier check-in instead of failing.
	w = postJSON(r, "/api/v1/admin/checkin", models.CheckInByReferenceRequest{Reference: reg.Reference})
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Already checked in", resp.Message)
}

func TestCheckInUnknownReference(t *testing.T) {
	r := setupRouter(newStubRegStore(10))

	w := postJSON(r, "/api/v1/admin/checkin", models.CheckInByReferenceRequest{Reference: "ZZZZZZZZZZ"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRegistration(t *testing.T) {
	store := newStubRegStore(10)
	r := setupRouter(store)

	w := postJSON(r, "/api/v1/events/7/tickets/3/registrations", models.CreateRegistrationRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	req, _ := http.NewRequest("DELETE", "/api/v1/admin/registrations/1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, _ = http.NewRequest("GET", "/api/v1/admin/registrations/1", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
