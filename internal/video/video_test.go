package video

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tdsone/calendso/internal/registry"
	"github.com/Tdsone/calendso/internal/types"
)

// fakeVideoClient records the prior reference each update receives.
type fakeVideoClient struct {
	createdWith []types.Credential
	priors      []*types.ProviderReference
	err         error
}

func (f *fakeVideoClient) CreateMeeting(ctx context.Context, cred types.Credential, meeting types.Meeting) (*types.OperationResult, error) {
	f.createdWith = append(f.createdWith, cred)
	if f.err != nil {
		return nil, f.err
	}
	return &types.OperationResult{
		Type:          cred.Type,
		Success:       true,
		UID:           "video-1",
		CreatedEvent:  &types.ProviderEvent{UID: "video-1", Type: cred.Type, URL: "https://video.example/j/1"},
		OriginalEvent: meeting,
	}, nil
}

func (f *fakeVideoClient) UpdateMeeting(ctx context.Context, cred types.Credential, meeting types.Meeting, prior *types.ProviderReference) (*types.OperationResult, error) {
	f.priors = append(f.priors, prior)
	if f.err != nil {
		return nil, f.err
	}
	return &types.OperationResult{
		Type:          cred.Type,
		Success:       true,
		UID:           "video-1",
		UpdatedEvent:  &types.ProviderEvent{UID: "video-1", Type: cred.Type},
		OriginalEvent: meeting,
	}, nil
}

type fakeDirectory struct {
	video *fakeVideoClient
}

func (d *fakeDirectory) CalendarFor(cred types.Credential) (types.CalendarClient, error) {
	return nil, fmt.Errorf("no calendar client in this test")
}

func (d *fakeDirectory) VideoFor(cred types.Credential) (types.VideoClient, error) {
	return d.video, nil
}

func TestCreateVideoEventWithoutCredential(t *testing.T) {
	reg := registry.New(nil, registry.Options{})
	orch := NewOrchestrator(reg, &fakeDirectory{video: &fakeVideoClient{}})

	result, err := orch.CreateVideoEvent(context.Background(), types.Meeting{Location: "integrations:zoom"})

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrNoSuitableCredential))
}

func TestCreateVideoEvent(t *testing.T) {
	client := &fakeVideoClient{}
	reg := registry.New([]types.Credential{{ID: 2, Type: "zoom_video"}}, registry.Options{})
	orch := NewOrchestrator(reg, &fakeDirectory{video: client})

	result, err := orch.CreateVideoEvent(context.Background(), types.Meeting{Location: "integrations:zoom"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "zoom_video", result.Type)
	require.Len(t, client.createdWith, 1)
	assert.Equal(t, 2, client.createdWith[0].ID)
}

func TestUpdateVideoEventCorrelatesPriorReference(t *testing.T) {
	client := &fakeVideoClient{}
	reg := registry.New([]types.Credential{{ID: 2, Type: "zoom_video"}}, registry.Options{})
	orch := NewOrchestrator(reg, &fakeDirectory{video: client})

	booking := &types.ExistingBooking{
		ID:  "booking-1",
		UID: "uid-1",
		References: []types.ProviderReference{
			{Type: "google_calendar", UID: "cal-1"},
			{Type: "zoom_video", UID: "zoom-old"},
			{Type: "zoom_video", UID: "zoom-newer"}, // first match wins
		},
	}

	_, err := orch.UpdateVideoEvent(context.Background(), types.Meeting{Location: "integrations:zoom"}, booking)

	require.NoError(t, err)
	require.Len(t, client.priors, 1)
	require.NotNil(t, client.priors[0])
	assert.Equal(t, "zoom-old", client.priors[0].UID)
}

func TestUpdateVideoEventWithoutPriorReference(t *testing.T) {
	client := &fakeVideoClient{}
	reg := registry.New([]types.Credential{{ID: 2, Type: "zoom_video"}}, registry.Options{})
	orch := NewOrchestrator(reg, &fakeDirectory{video: client})

	booking := &types.ExistingBooking{ID: "booking-1", UID: "uid-1"}

	_, err := orch.UpdateVideoEvent(context.Background(), types.Meeting{Location: "integrations:zoom"}, booking)

	require.NoError(t, err)
	require.Len(t, client.priors, 1)
	assert.Nil(t, client.priors[0])
}
