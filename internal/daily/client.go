package daily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/Tdsone/calendso/internal/types"
)

// roomRequest is the body of a Daily room create/configure call
type roomRequest struct {
	Properties roomProperties `json:"properties"`
}

type roomProperties struct {
	NotBefore int64 `json:"nbf,omitempty"`
	Expires   int64 `json:"exp,omitempty"`
}

// roomResponse is Daily's representation of a room
type roomResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Client provides the built-in video provider operations against a Daily
// style rooms API. Authentication uses a process-level API key because the
// built-in provider's synthetic credential carries no key of its own.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new built-in video client
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api.daily.co/v1"
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// CreateMeeting creates a room scoped to the meeting's time range.
func (c *Client) CreateMeeting(ctx context.Context, cred types.Credential, meeting types.Meeting) (*types.OperationResult, error) {
	room, err := c.doRoom(ctx, "POST", "/rooms", roomRequest{
		Properties: roomProperties{
			NotBefore: meeting.StartTime.Unix(),
			Expires:   meeting.EndTime.Unix(),
		},
	})
	if err != nil {
		return nil, err
	}

	ev := providerEvent(cred, room)
	log.Printf("Created room %s (url %s)", ev.UID, ev.URL)
	return &types.OperationResult{
		Type:          cred.Type,
		Success:       true,
		UID:           ev.UID,
		CreatedEvent:  ev,
		OriginalEvent: meeting,
	}, nil
}

// UpdateMeeting reconfigures the room named by the prior reference, or
// creates a fresh room when no reference was stored.
func (c *Client) UpdateMeeting(ctx context.Context, cred types.Credential, meeting types.Meeting, prior *types.ProviderReference) (*types.OperationResult, error) {
	if prior == nil || prior.UID == "" {
		log.Printf("No prior room reference, creating a new room instead")
		result, err := c.CreateMeeting(ctx, cred, meeting)
		if err != nil {
			return nil, err
		}
		result.UpdatedEvent = result.CreatedEvent
		result.CreatedEvent = nil
		return result, nil
	}

	room, err := c.doRoom(ctx, "POST", "/rooms/"+prior.UID, roomRequest{
		Properties: roomProperties{
			NotBefore: meeting.StartTime.Unix(),
			Expires:   meeting.EndTime.Unix(),
		},
	})
	if err != nil {
		return nil, err
	}

	ev := providerEvent(cred, room)
	log.Printf("Updated room %s", ev.UID)
	return &types.OperationResult{
		Type:          cred.Type,
		Success:       true,
		UID:           ev.UID,
		UpdatedEvent:  ev,
		OriginalEvent: meeting,
	}, nil
}

func providerEvent(cred types.Credential, room *roomResponse) *types.ProviderEvent {
	return &types.ProviderEvent{
		UID:  room.Name,
		ID:   room.Name,
		Type: cred.Type,
		URL:  room.URL,
		CallData: &types.VideoCallData{
			Type: cred.Type,
			ID:   room.Name,
			URL:  room.URL,
		},
	}
}

func (c *Client) doRoom(ctx context.Context, method, endpoint string, body roomRequest) (*roomResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")

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
		log.Printf("ERROR: Rooms API request failed: %s", string(respBody))
		return nil, fmt.Errorf("rooms API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var room roomResponse
	if err := json.Unmarshal(respBody, &room); err != nil {
		return nil, fmt.Errorf("failed to parse room response: %w", err)
	}
	return &room, nil
}
