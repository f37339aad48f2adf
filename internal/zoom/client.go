package zoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Tdsone/calendso/internal/types"
)

// meetingRequest is the body of a Zoom meeting create/update call
type meetingRequest struct {
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone"`
	Agenda    string `json:"agenda,omitempty"`
}

// meetingResponse is Zoom's representation of a meeting
type meetingResponse struct {
	ID       int64  `json:"id"`
	UUID     string `json:"uuid"`
	Topic    string `json:"topic"`
	JoinURL  string `json:"join_url"`
	Password string `json:"password"`
}

// Client provides the video-provider operations against the Zoom API. A
// credential's key carries the serialized OAuth token; expired tokens are
// refreshed through the OAuth config when one is set.
type Client struct {
	oauth      *OAuthConfig
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Zoom API client
func NewClient(oauth *OAuthConfig) *Client {
	return &Client{
		oauth:      oauth,
		baseURL:    "https://api.zoom.us/v2",
		httpClient: &http.Client{},
	}
}

// SetBaseURL overrides the API base URL, for tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// CreateMeeting provisions a scheduled Zoom meeting for the given meeting
// description and wraps the provider response as an OperationResult.
func (c *Client) CreateMeeting(ctx context.Context, cred types.Credential, meeting types.Meeting) (*types.OperationResult, error) {
	token, err := c.tokenFromCredential(cred)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	body := translateMeeting(meeting)
	resp, err := c.doJSON(ctx, "POST", "/users/me/meetings", token, body)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("empty meeting response from Zoom")
	}

	ev := providerEvent(cred, resp)
	log.Printf("Created Zoom meeting %s (join url %s)", ev.UID, ev.URL)
	return &types.OperationResult{
		Type:          cred.Type,
		Success:       true,
		UID:           ev.UID,
		CreatedEvent:  ev,
		OriginalEvent: meeting,
	}, nil
}

// UpdateMeeting updates the Zoom meeting identified by the prior reference.
// Without a prior reference the update degrades to a create.
func (c *Client) UpdateMeeting(ctx context.Context, cred types.Credential, meeting types.Meeting, prior *types.ProviderReference) (*types.OperationResult, error) {
	if prior == nil || prior.UID == "" {
		log.Printf("No prior Zoom reference, creating a new meeting instead")
		result, err := c.CreateMeeting(ctx, cred, meeting)
		if err != nil {
			return nil, err
		}
		result.UpdatedEvent = result.CreatedEvent
		result.CreatedEvent = nil
		return result, nil
	}

	token, err := c.tokenFromCredential(cred)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	body := translateMeeting(meeting)
	if _, err := c.doJSON(ctx, "PATCH", "/meetings/"+prior.UID, token, body); err != nil {
		return nil, err
	}

	// Zoom's PATCH returns no body, so fetch the updated meeting
	resp, err := c.doJSON(ctx, "GET", "/meetings/"+prior.UID, token, nil)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("empty meeting response from Zoom")
	}

	ev := providerEvent(cred, resp)
	log.Printf("Updated Zoom meeting %s", ev.UID)
	return &types.OperationResult{
		Type:          cred.Type,
		Success:       true,
		UID:           ev.UID,
		UpdatedEvent:  ev,
		OriginalEvent: meeting,
	}, nil
}

// translateMeeting maps the meeting description onto a Zoom scheduled
// meeting (type 2).
func translateMeeting(meeting types.Meeting) meetingRequest {
	return meetingRequest{
		Topic:     meeting.Title,
		Type:      2,
		StartTime: meeting.StartTime.UTC().Format(time.RFC3339),
		Duration:  int(meeting.EndTime.Sub(meeting.StartTime).Minutes()),
		Timezone:  "UTC",
		Agenda:    meeting.Description,
	}
}

// providerEvent normalizes a Zoom meeting response.
func providerEvent(cred types.Credential, resp *meetingResponse) *types.ProviderEvent {
	id := strconv.FormatInt(resp.ID, 10)
	return &types.ProviderEvent{
		UID:      id,
		ID:       id,
		Type:     cred.Type,
		Password: resp.Password,
		URL:      resp.JoinURL,
		CallData: &types.VideoCallData{
			Type:     cred.Type,
			ID:       id,
			Password: resp.Password,
			URL:      resp.JoinURL,
		},
	}
}

// tokenFromCredential parses the credential key and refreshes the token when
// it is expired or about to expire.
func (c *Client) tokenFromCredential(cred types.Credential) (*Token, error) {
	var token Token
	if err := json.Unmarshal([]byte(cred.Key), &token); err != nil {
		return nil, fmt.Errorf("failed to parse credential key: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("credential %d carries no access token", cred.ID)
	}

	if token.needsRefresh() {
		if c.oauth == nil {
			return nil, fmt.Errorf("OAuth configuration not set, cannot refresh token")
		}
		log.Println("Token expired, attempting to refresh")
		refreshed, err := c.oauth.RefreshToken(token.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
		return refreshed, nil
	}

	return &token, nil
}

// doJSON issues one authenticated API call and decodes the meeting response
// when the provider returns a body.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, token *Token, body interface{}) (*meetingResponse, error) {
	url := c.baseURL + endpoint
	log.Printf("Making request to Zoom API: %s %s", method, url)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		log.Printf("ERROR: Failed to create request: %v", err)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("ERROR: Failed to send request: %v", err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("ERROR: Failed to read response: %v", err)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("Zoom API response status: %d %s", resp.StatusCode, resp.Status)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("ERROR: API request failed: %s", string(respBody))
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if len(respBody) == 0 {
		return nil, nil
	}

	var meeting meetingResponse
	if err := json.Unmarshal(respBody, &meeting); err != nil {
		log.Printf("ERROR: Failed to parse meeting response: %v", err)
		return nil, fmt.Errorf("failed to parse meeting response: %w", err)
	}
	return &meeting, nil
}
