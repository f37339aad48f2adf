package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/Tdsone/calendso/internal/calendar"
	"github.com/Tdsone/calendso/internal/location"
	"github.com/Tdsone/calendso/internal/registry"
	"github.com/Tdsone/calendso/internal/types"
	"github.com/Tdsone/calendso/internal/video"
)

// ErrMissingRescheduleTarget is returned by Update when the reschedule uid
// is empty. It is raised before any store or provider call.
var ErrMissingRescheduleTarget = errors.New("missing reschedule target")

// Engine reconciles one logical meeting against the external scheduling
// backends. It is the only public surface; the location resolver, the
// registry and the two orchestrators are internal collaborators driven in a
// fixed order: video always before calendar, because a successful video
// booking rewrites the meeting's location to the real join link before
// calendar entries are built.
//
// The engine owns no state across calls: the credential set is fixed per
// registry session and the meeting value is copied, never shared.
type Engine struct {
	store    types.BookingStore
	video    *video.Orchestrator
	calendar *calendar.Orchestrator
}

// New wires an engine from a registry session, a client directory and the
// external booking store.
func New(reg *registry.Registry, clients types.ClientDirectory, store types.BookingStore) *Engine {
	return &Engine{
		store:    store,
		video:    video.NewOrchestrator(reg, clients),
		calendar: calendar.NewOrchestrator(reg, clients),
	}
}

// Create books the meeting on the video backend (when its location demands a
// dedicated integration) and then on the calendar backend, and derives the
// reference list the caller persists. Any provider failure aborts the call;
// side effects already produced (e.g. a created video meeting) are the
// caller's to compensate.
func (e *Engine) Create(ctx context.Context, meeting types.Meeting) (*types.CreateUpdateResult, error) {
	meeting = location.Process(meeting)

	var results []types.OperationResult
	if location.IsDedicatedIntegration(meeting.Location) {
		result, err := e.video.CreateVideoEvent(ctx, meeting)
		if err != nil {
			return nil, err
		}
		if result.Success && result.CreatedEvent != nil {
			meeting = rewriteVideoDetails(meeting, result.CreatedEvent)
		}
		results = append(results, *result)
	}

	calResults, err := e.calendar.CreateAll(ctx, meeting)
	if err != nil {
		return nil, err
	}
	results = append(results, calResults...)

	return &types.CreateUpdateResult{
		Results:            results,
		ReferencesToCreate: BuildReferences(results),
	}, nil
}

// Update replaces an existing booking identified by rescheduleUID: the video
// entry is updated first (with its prior reference), then every calendar
// entry, then the old booking's references, attendees and row are deleted
// concurrently. The deletions are awaited jointly but are not transactional.
//
// The returned ReferencesToCreate is the pre-update booking's reference set,
// not one derived from the new results; callers needing fresh references
// re-derive them from Results via BuildReferences.
func (e *Engine) Update(ctx context.Context, meeting types.Meeting, rescheduleUID string) (*types.CreateUpdateResult, error) {
	if rescheduleUID == "" {
		return nil, ErrMissingRescheduleTarget
	}

	booking, err := e.store.BookingByUID(ctx, rescheduleUID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve booking %q: %w", rescheduleUID, err)
	}

	meeting = location.Process(meeting)

	var results []types.OperationResult
	if location.IsDedicatedIntegration(meeting.Location) {
		result, err := e.video.UpdateVideoEvent(ctx, meeting, booking)
		if err != nil {
			return nil, err
		}
		if result.Success && result.UpdatedEvent != nil {
			meeting = rewriteVideoDetails(meeting, result.UpdatedEvent)
		}
		results = append(results, *result)
	}

	calResults, err := e.calendar.UpdateAll(ctx, meeting, booking)
	if err != nil {
		return nil, err
	}
	results = append(results, calResults...)

	// Three independent deletions, fired concurrently and awaited jointly.
	// A crash in between can leave orphans; accepted risk, not masked.
	var g errgroup.Group
	g.Go(func() error { return e.store.DeleteReferences(ctx, booking.ID) })
	g.Go(func() error { return e.store.DeleteAttendees(ctx, booking.ID) })
	g.Go(func() error { return e.store.DeleteBooking(ctx, booking.ID) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to clean up booking %s: %w", booking.ID, err)
	}
	log.Printf("Replaced booking %s (uid %s)", booking.ID, booking.UID)

	return &types.CreateUpdateResult{
		Results:            results,
		ReferencesToCreate: booking.References,
	}, nil
}

// rewriteVideoDetails copies the created video entry's join details onto the
// meeting so subsequent calendar entries embed the real link.
func rewriteVideoDetails(meeting types.Meeting, ev *types.ProviderEvent) types.Meeting {
	call := ev.CallData
	if call == nil {
		call = &types.VideoCallData{
			Type:     ev.Type,
			ID:       ev.ID,
			Password: ev.Password,
			URL:      ev.URL,
		}
	}
	meeting.VideoCallData = call
	if call.URL != "" {
		meeting.Location = call.URL
	}
	return meeting
}
