package video

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Tdsone/calendso/internal/metrics"
	"github.com/Tdsone/calendso/internal/registry"
	"github.com/Tdsone/calendso/internal/types"
)

// ErrNoSuitableCredential is returned when a video operation is attempted
// but no configured video credential matches the meeting's integration.
var ErrNoSuitableCredential = errors.New("no suitable video credential")

// Orchestrator creates and updates the single dedicated video-conference
// entry of a meeting using the credential resolved from the registry.
type Orchestrator struct {
	registry *registry.Registry
	clients  types.ClientDirectory
}

// NewOrchestrator creates a video orchestrator bound to one registry session.
func NewOrchestrator(reg *registry.Registry, clients types.ClientDirectory) *Orchestrator {
	return &Orchestrator{registry: reg, clients: clients}
}

// CreateVideoEvent provisions a new video conference for the meeting.
func (o *Orchestrator) CreateVideoEvent(ctx context.Context, meeting types.Meeting) (*types.OperationResult, error) {
	cred := o.registry.ResolveVideoCredential(meeting)
	if cred == nil {
		return nil, fmt.Errorf("location %q: %w", meeting.Location, ErrNoSuitableCredential)
	}

	client, err := o.clients.VideoFor(*cred)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve video client: %w", err)
	}

	log.Printf("Creating video meeting via %s", cred.Type)
	start := time.Now()
	result, err := client.CreateMeeting(ctx, *cred, meeting)
	metrics.ObserveDuration(cred.Type, "create", time.Since(start).Seconds())
	metrics.RecordOperation(cred.Type, "create", err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create video meeting (%s): %w", cred.Type, err)
	}
	return result, nil
}

// UpdateVideoEvent updates the existing video conference of a booking. The
// prior provider reference is correlated by credential type; when the
// booking carries none, the provider is called without one.
func (o *Orchestrator) UpdateVideoEvent(ctx context.Context, meeting types.Meeting, booking *types.ExistingBooking) (*types.OperationResult, error) {
	cred := o.registry.ResolveVideoCredential(meeting)
	if cred == nil {
		return nil, fmt.Errorf("location %q: %w", meeting.Location, ErrNoSuitableCredential)
	}

	client, err := o.clients.VideoFor(*cred)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve video client: %w", err)
	}

	var prior *types.ProviderReference
	if booking != nil {
		prior = findReference(booking.References, cred.Type)
	}
	if prior == nil {
		log.Printf("No prior %s reference on booking, provider will treat update as create", cred.Type)
	}

	log.Printf("Updating video meeting via %s", cred.Type)
	start := time.Now()
	result, err := client.UpdateMeeting(ctx, *cred, meeting, prior)
	metrics.ObserveDuration(cred.Type, "update", time.Since(start).Seconds())
	metrics.RecordOperation(cred.Type, "update", err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to update video meeting (%s): %w", cred.Type, err)
	}
	return result, nil
}

// findReference returns the first reference whose type equals credType, in
// stored order, or nil.
func findReference(refs []types.ProviderReference, credType string) *types.ProviderReference {
	for i := range refs {
		if refs[i].Type == credType {
			return &refs[i]
		}
	}
	return nil
}
