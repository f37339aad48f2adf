package calendarapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/Tdsone/calendso/internal/types"
)

// eventResponse is the calendar backend's representation of an entry
type eventResponse struct {
	UID string `json:"uid"`
	URL string `json:"url,omitempty"`
}

// HTTPClient implements the calendar provider contract against a generic
// JSON calendar backend: POST /events to create, PUT /events/{uid} to
// update, bearer-authenticated with the credential key.
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP calendar client
func NewHTTPClient(endpoint string) *HTTPClient {
	return &HTTPClient{
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}
}

// CreateEvent creates a calendar entry for the meeting.
func (c *HTTPClient) CreateEvent(ctx context.Context, cred types.Credential, meeting types.Meeting) (*types.OperationResult, error) {
	ev, err := c.doEvent(ctx, "POST", c.endpoint+"/events", cred, meeting)
	if err != nil {
		return nil, err
	}

	log.Printf("Created calendar event %s via %s", ev.UID, cred.Type)
	return &types.OperationResult{
		Type:          cred.Type,
		Success:       true,
		UID:           ev.UID,
		CreatedEvent:  ev,
		OriginalEvent: meeting,
	}, nil
}

// UpdateEvent updates the entry identified by priorUID. With no prior uid
// the backend cannot be addressed, so the update degrades to a create.
func (c *HTTPClient) UpdateEvent(ctx context.Context, cred types.Credential, meeting types.Meeting, priorUID string) (*types.OperationResult, error) {
	if priorUID == "" {
		log.Printf("No prior calendar reference for %s, creating instead", cred.Type)
		result, err := c.CreateEvent(ctx, cred, meeting)
		if err != nil {
			return nil, err
		}
		result.UpdatedEvent = result.CreatedEvent
		result.CreatedEvent = nil
		return result, nil
	}

	ev, err := c.doEvent(ctx, "PUT", c.endpoint+"/events/"+priorUID, cred, meeting)
	if err != nil {
		return nil, err
	}

	log.Printf("Updated calendar event %s via %s", ev.UID, cred.Type)
	return &types.OperationResult{
		Type:          cred.Type,
		Success:       true,
		UID:           ev.UID,
		UpdatedEvent:  ev,
		OriginalEvent: meeting,
	}, nil
}

func (c *HTTPClient) doEvent(ctx context.Context, method, url string, cred types.Credential, meeting types.Meeting) (*types.ProviderEvent, error) {
	payload, err := json.Marshal(meeting)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meeting: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cred.Key != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", cred.Key))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("ERROR: Calendar request failed: %s", string(respBody))
		return nil, fmt.Errorf("calendar request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var event eventResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &event); err != nil {
			return nil, fmt.Errorf("failed to parse event response: %w", err)
		}
	}
	if event.UID == "" {
		event.UID = uuid.NewString()
	}

	return &types.ProviderEvent{
		UID:  event.UID,
		ID:   event.UID,
		Type: cred.Type,
		URL:  event.URL,
	}, nil
}

// TestClient is a no-op calendar backend for local runs: it records every
// meeting it sees and fabricates successful results.
type TestClient struct {
	Created []types.Meeting
	Updated []types.Meeting
}

// NewTestClient creates a new test client
func NewTestClient() *TestClient {
	return &TestClient{}
}

// CreateEvent implements the calendar contract for testing
func (c *TestClient) CreateEvent(ctx context.Context, cred types.Credential, meeting types.Meeting) (*types.OperationResult, error) {
	log.Printf("TEST CLIENT: calendar create received for %q", meeting.Title)
	c.Created = append(c.Created, meeting)
	uid := uuid.NewString()
	return &types.OperationResult{
		Type:    cred.Type,
		Success: true,
		UID:     uid,
		CreatedEvent: &types.ProviderEvent{
			UID:  uid,
			ID:   uid,
			Type: cred.Type,
		},
		OriginalEvent: meeting,
	}, nil
}

// UpdateEvent implements the calendar contract for testing
func (c *TestClient) UpdateEvent(ctx context.Context, cred types.Credential, meeting types.Meeting, priorUID string) (*types.OperationResult, error) {
	log.Printf("TEST CLIENT: calendar update received for %q (prior uid %q)", meeting.Title, priorUID)
	c.Updated = append(c.Updated, meeting)
	uid := priorUID
	if uid == "" {
		uid = uuid.NewString()
	}
	return &types.OperationResult{
		Type:    cred.Type,
		Success: true,
		UID:     uid,
		UpdatedEvent: &types.ProviderEvent{
			UID:  uid,
			ID:   uid,
			Type: cred.Type,
		},
		OriginalEvent: meeting,
	}, nil
}
