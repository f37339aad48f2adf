package calendar

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Tdsone/calendso/internal/metrics"
	"github.com/Tdsone/calendso/internal/registry"
	"github.com/Tdsone/calendso/internal/types"
)

// maxConcurrentUpdates caps the calendar update fan-out.
const maxConcurrentUpdates = 5

// Orchestrator drives calendar entries across the registry's calendar
// credentials. The credential set is fixed for the orchestration run.
type Orchestrator struct {
	registry *registry.Registry
	clients  types.ClientDirectory
}

// NewOrchestrator creates a calendar orchestrator bound to one registry
// session.
func NewOrchestrator(reg *registry.Registry, clients types.ClientDirectory) *Orchestrator {
	return &Orchestrator{registry: reg, clients: clients}
}

// CreateAll creates the calendar entry for the meeting. Only the first
// configured calendar credential is used (single-calendar policy); with no
// calendar credentials the result is empty, not an error.
func (o *Orchestrator) CreateAll(ctx context.Context, meeting types.Meeting) ([]types.OperationResult, error) {
	creds := o.registry.CalendarCredentials()
	if len(creds) == 0 {
		log.Printf("No calendar credentials configured, skipping calendar phase")
		return nil, nil
	}

	cred := creds[0]
	client, err := o.clients.CalendarFor(cred)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve calendar client: %w", err)
	}

	log.Printf("Creating calendar event via %s", cred.Type)
	start := time.Now()
	result, err := client.CreateEvent(ctx, cred, meeting)
	metrics.ObserveDuration(cred.Type, "create", time.Since(start).Seconds())
	metrics.RecordOperation(cred.Type, "create", err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event (%s): %w", cred.Type, err)
	}
	return []types.OperationResult{*result}, nil
}

// UpdateAll updates the calendar entries of an existing booking across every
// calendar credential, at most maxConcurrentUpdates at a time. Each update is
// correlated to its prior reference by credential type; a missing reference
// is passed through as an empty prior uid. The first failing operation fails
// the whole batch, but in-flight siblings are never cancelled and run to
// completion. Result order is unspecified.
func (o *Orchestrator) UpdateAll(ctx context.Context, meeting types.Meeting, booking *types.ExistingBooking) ([]types.OperationResult, error) {
	creds := o.registry.CalendarCredentials()
	results := make([]types.OperationResult, len(creds))

	var g errgroup.Group
	g.SetLimit(maxConcurrentUpdates)
	for i, cred := range creds {
		i, cred := i, cred
		g.Go(func() error {
			client, err := o.clients.CalendarFor(cred)
			if err != nil {
				return fmt.Errorf("failed to resolve calendar client: %w", err)
			}

			priorUID := ""
			if booking != nil {
				if ref := findReference(booking.References, cred.Type); ref != nil {
					priorUID = ref.UID
				}
			}

			log.Printf("Updating calendar event via %s (prior uid %q)", cred.Type, priorUID)
			start := time.Now()
			result, err := client.UpdateEvent(ctx, cred, meeting, priorUID)
			metrics.ObserveDuration(cred.Type, "update", time.Since(start).Seconds())
			metrics.RecordOperation(cred.Type, "update", err == nil)
			if err != nil {
				return fmt.Errorf("failed to update calendar event (%s): %w", cred.Type, err)
			}
			results[i] = *result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
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
