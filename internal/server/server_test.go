package server

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

	"github.com/Tdsone/calendso/internal/calendarapi"
	"github.com/Tdsone/calendso/internal/engine"
	"github.com/Tdsone/calendso/internal/providers"
	"github.com/Tdsone/calendso/internal/registry"
	"github.com/Tdsone/calendso/internal/store"
	"github.com/Tdsone/calendso/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeVideoClient issues a fixed join link for every call.
type fakeVideoClient struct{}

func (fakeVideoClient) CreateMeeting(ctx context.Context, cred types.Credential, meeting types.Meeting) (*types.OperationResult, error) {
	return &types.OperationResult{
		Type:    cred.Type,
		Success: true,
		UID:     "zoom-123",
		CreatedEvent: &types.ProviderEvent{
			UID:  "zoom-123",
			ID:   "zoom-123",
			Type: cred.Type,
			URL:  "https://zoom.example/j/123",
		},
		OriginalEvent: meeting,
	}, nil
}

func (fakeVideoClient) UpdateMeeting(ctx context.Context, cred types.Credential, meeting types.Meeting, prior *types.ProviderReference) (*types.OperationResult, error) {
	return &types.OperationResult{
		Type:    cred.Type,
		Success: true,
		UID:     "zoom-123",
		UpdatedEvent: &types.ProviderEvent{
			UID:  "zoom-123",
			ID:   "zoom-123",
			Type: cred.Type,
			URL:  "https://zoom.example/j/123",
		},
		OriginalEvent: meeting,
	}, nil
}

func newTestServer(t *testing.T, creds []types.Credential) *Server {
	t.Helper()

	directory := providers.NewDirectory()
	directory.RegisterCalendar("google", calendarapi.NewTestClient())
	directory.RegisterVideo("zoom", fakeVideoClient{})

	reg := registry.New(creds, registry.Options{})
	bookingStore := store.NewMemoryStore()

	return NewServer(&Config{
		Engine: engine.New(reg, directory, bookingStore),
		Store:  bookingStore,
	})
}

func defaultCredentials() []types.Credential {
	return []types.Credential{
		{ID: 1, Type: "google_calendar"},
		{ID: 2, Type: "zoom_video"},
	}
}

func bookingPayload(location string) []byte {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	payload, _ := json.Marshal(map[string]interface{}{
		"title":      "Product sync",
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Add(30 * time.Minute).Format(time.RFC3339),
		"location":   location,
		"language":   "en",
		"organizer":  map[string]string{"name": "Host", "email": "host@example.com"},
		"attendees": []map[string]string{
			{"name": "Guest", "email": "guest@example.com"},
		},
	})
	return payload
}

func doRequest(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestCreateBooking(t *testing.T) {
	s := newTestServer(t, defaultCredentials())

	w := doRequest(s, "POST", "/bookings", bookingPayload("integrations:zoom"))

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		BookingUID string                    `json:"booking_uid"`
		Results    []types.OperationResult   `json:"results"`
		References []types.ProviderReference `json:"references"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.BookingUID)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "zoom_video", resp.Results[0].Type)
	assert.Equal(t, "google_calendar", resp.Results[1].Type)
	require.Len(t, resp.References, 2)
	assert.Equal(t, "zoom-123", resp.References[0].UID)

	// the booking is retrievable afterwards
	w = doRequest(s, "GET", "/bookings/"+resp.BookingUID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateBookingInvalidJSON(t *testing.T) {
	s := newTestServer(t, defaultCredentials())

	w := doRequest(s, "POST", "/bookings", []byte("{not json"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingValidation(t *testing.T) {
	s := newTestServer(t, defaultCredentials())

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	payload, _ := json.Marshal(map[string]interface{}{
		// no title
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Add(30 * time.Minute).Format(time.RFC3339),
		"language":   "en",
	})

	w := doRequest(s, "POST", "/bookings", payload)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title")
}

func TestCreateBookingWithoutVideoCredential(t *testing.T) {
	s := newTestServer(t, []types.Credential{{ID: 1, Type: "google_calendar"}})

	w := doRequest(s, "POST", "/bookings", bookingPayload("integrations:zoom"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no suitable video credential")
}

func TestRescheduleBooking(t *testing.T) {
	s := newTestServer(t, defaultCredentials())

	w := doRequest(s, "POST", "/bookings", bookingPayload("integrations:zoom"))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		BookingUID string                    `json:"booking_uid"`
		References []types.ProviderReference `json:"references"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doRequest(s, "PUT", "/bookings/"+created.BookingUID, bookingPayload("integrations:zoom"))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		BookingUID         string                    `json:"booking_uid"`
		Results            []types.OperationResult   `json:"results"`
		ReplacedReferences []types.ProviderReference `json:"replaced_references"`
		References         []types.ProviderReference `json:"references"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEqual(t, created.BookingUID, resp.BookingUID)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, created.References, resp.ReplacedReferences)

	// the old booking is gone, the new one is retrievable
	w = doRequest(s, "GET", "/bookings/"+created.BookingUID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doRequest(s, "GET", "/bookings/"+resp.BookingUID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRescheduleUnknownBooking(t *testing.T) {
	s := newTestServer(t, defaultCredentials())

	w := doRequest(s, "PUT", "/bookings/no-such-uid", bookingPayload("integrations:zoom"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBookingNotFound(t *testing.T) {
	s := newTestServer(t, defaultCredentials())

	w := doRequest(s, "GET", "/bookings/no-such-uid", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, defaultCredentials())

	w := doRequest(s, "GET", "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, defaultCredentials())

	w := doRequest(s, "GET", "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}
