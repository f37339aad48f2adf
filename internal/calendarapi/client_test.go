package calendarapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tdsone/calendso/internal/types"
)

func sampleMeeting() types.Meeting {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return types.Meeting{
		Title:     "Product sync",
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Location:  "https://zoom.example/j/123",
		Language:  "en",
	}
}

func TestCreateEvent(t *testing.T) {
	var gotAuth string
	var gotMeeting types.Meeting
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/events", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotMeeting))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(eventResponse{UID: "cal-42", URL: "https://calendar.example/e/cal-42"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	cred := types.Credential{ID: 1, Type: "google_calendar", Key: "cal-token"}

	result, err := client.CreateEvent(context.Background(), cred, sampleMeeting())

	require.NoError(t, err)
	assert.Equal(t, "Bearer cal-token", gotAuth)
	assert.Equal(t, "Product sync", gotMeeting.Title)
	assert.Equal(t, "https://zoom.example/j/123", gotMeeting.Location)

	assert.True(t, result.Success)
	assert.Equal(t, "google_calendar", result.Type)
	assert.Equal(t, "cal-42", result.UID)
	require.NotNil(t, result.CreatedEvent)
	assert.Equal(t, "https://calendar.example/e/cal-42", result.CreatedEvent.URL)
}

func TestCreateEventGeneratesUIDWhenBackendOmitsOne(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	cred := types.Credential{ID: 1, Type: "google_calendar"}

	result, err := client.CreateEvent(context.Background(), cred, sampleMeeting())

	require.NoError(t, err)
	assert.NotEmpty(t, result.UID)
}

func TestUpdateEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/events/cal-42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(eventResponse{UID: "cal-42"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	cred := types.Credential{ID: 1, Type: "google_calendar"}

	result, err := client.UpdateEvent(context.Background(), cred, sampleMeeting(), "cal-42")

	require.NoError(t, err)
	assert.Nil(t, result.CreatedEvent)
	require.NotNil(t, result.UpdatedEvent)
	assert.Equal(t, "cal-42", result.UpdatedEvent.UID)
}

func TestUpdateEventWithoutPriorCreates(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "POST", r.Method)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(eventResponse{UID: "cal-99"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	cred := types.Credential{ID: 1, Type: "google_calendar"}

	result, err := client.UpdateEvent(context.Background(), cred, sampleMeeting(), "")

	require.NoError(t, err)
	assert.Equal(t, "/events", gotPath)
	assert.Nil(t, result.CreatedEvent)
	require.NotNil(t, result.UpdatedEvent)
	assert.Equal(t, "cal-99", result.UpdatedEvent.UID)
}

func TestCreateEventBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream calendar unavailable"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	cred := types.Credential{ID: 1, Type: "google_calendar"}

	result, err := client.CreateEvent(context.Background(), cred, sampleMeeting())

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestTestClientRecordsMeetings(t *testing.T) {
	client := NewTestClient()
	cred := types.Credential{ID: 1, Type: "google_calendar"}

	created, err := client.CreateEvent(context.Background(), cred, sampleMeeting())
	require.NoError(t, err)
	assert.True(t, created.Success)
	assert.NotEmpty(t, created.UID)

	updated, err := client.UpdateEvent(context.Background(), cred, sampleMeeting(), created.UID)
	require.NoError(t, err)
	assert.Equal(t, created.UID, updated.UID)

	assert.Len(t, client.Created, 1)
	assert.Len(t, client.Updated, 1)
}
