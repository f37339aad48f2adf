package types

import (
	"context"
	"errors"
	"time"
)

// ErrBookingNotFound is returned by a BookingStore when no booking matches
// the requested reschedule uid.
var ErrBookingNotFound = errors.New("booking not found")

// Attendee represents a person invited to a meeting
type Attendee struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"time_zone,omitempty"`
}

// VideoCallData carries the provider-issued join details for a dedicated
// video conference
type VideoCallData struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Password string `json:"password,omitempty"`
	URL      string `json:"url"`
}

// ConferenceRequest asks a calendar provider to provision a conference for
// the event. RequestID is stable for a given location string.
type ConferenceRequest struct {
	RequestID string `json:"request_id"`
	Location  string `json:"location"`
}

// Meeting is the logical meeting being reconciled against the external
// backends. The engine works on value copies; callers own the original.
type Meeting struct {
	UID               string             `json:"uid,omitempty"`
	Title             string             `json:"title"`
	Description       string             `json:"description,omitempty"`
	StartTime         time.Time          `json:"start_time"`
	EndTime           time.Time          `json:"end_time"`
	Organizer         Attendee           `json:"organizer"`
	Attendees         []Attendee         `json:"attendees"`
	Location          string             `json:"location,omitempty"`
	VideoCallData     *VideoCallData     `json:"video_call_data,omitempty"`
	ConferenceRequest *ConferenceRequest `json:"conference_request,omitempty"`
	Language          string             `json:"language"`
}

// Credential is an opaque, provider-scoped authorization handle. The Type
// suffix ("_calendar" or "_video") determines the provider class; the prefix
// names the concrete provider (e.g. "zoom_video", "google_calendar").
type Credential struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Key  string `json:"key"`
}

// ProviderEvent is the normalized entry a provider returns after a create or
// update operation.
type ProviderEvent struct {
	UID      string         `json:"uid"`
	ID       string         `json:"id,omitempty"`
	Type     string         `json:"type"`
	Password string         `json:"password,omitempty"`
	URL      string         `json:"url,omitempty"`
	CallData *VideoCallData `json:"call_data,omitempty"`
}

// OperationResult is produced once per provider operation and never mutated
// afterwards.
type OperationResult struct {
	Type          string         `json:"type"`
	Success       bool           `json:"success"`
	UID           string         `json:"uid"`
	CreatedEvent  *ProviderEvent `json:"created_event,omitempty"`
	UpdatedEvent  *ProviderEvent `json:"updated_event,omitempty"`
	OriginalEvent Meeting        `json:"original_event"`
}

// ProviderReference is the durable, caller-persisted record of a
// provider-side artifact.
type ProviderReference struct {
	ID              int    `json:"id,omitempty"`
	Type            string `json:"type"`
	UID             string `json:"uid"`
	MeetingID       string `json:"meeting_id,omitempty"`
	MeetingPassword string `json:"meeting_password,omitempty"`
	MeetingURL      string `json:"meeting_url,omitempty"`
}

// ExistingBooking is a previously persisted booking, fetched by reschedule
// uid. The engine never constructs one itself.
type ExistingBooking struct {
	ID         string              `json:"id"`
	UID        string              `json:"uid"`
	Title      string              `json:"title,omitempty"`
	Attendees  []Attendee          `json:"attendees,omitempty"`
	References []ProviderReference `json:"references"`
}

// CreateUpdateResult is returned by the engine's public entry points.
type CreateUpdateResult struct {
	Results            []OperationResult   `json:"results"`
	ReferencesToCreate []ProviderReference `json:"references_to_create"`
}

// CalendarClient is the wire client for one calendar backend
type CalendarClient interface {
	// CreateEvent creates a calendar entry for the meeting
	CreateEvent(ctx context.Context, cred Credential, meeting Meeting) (*OperationResult, error)

	// UpdateEvent updates the entry identified by priorUID. An empty
	// priorUID means no prior reference exists and the provider should
	// treat the call as a best-effort update or create.
	UpdateEvent(ctx context.Context, cred Credential, meeting Meeting, priorUID string) (*OperationResult, error)
}

// VideoClient is the wire client for one dedicated video-conferencing backend
type VideoClient interface {
	// CreateMeeting provisions a new video-conference entry
	CreateMeeting(ctx context.Context, cred Credential, meeting Meeting) (*OperationResult, error)

	// UpdateMeeting updates the conference identified by prior. A nil prior
	// means no reference was stored for this provider.
	UpdateMeeting(ctx context.Context, cred Credential, meeting Meeting, prior *ProviderReference) (*OperationResult, error)
}

// ClientDirectory resolves the wire client matching a credential
type ClientDirectory interface {
	CalendarFor(cred Credential) (CalendarClient, error)
	VideoFor(cred Credential) (VideoClient, error)
}

// BookingStore is the durable booking/attendee store the engine consults on
// reschedule. Lookups return ErrBookingNotFound when the uid is unknown.
type BookingStore interface {
	// BookingByUID resolves an existing booking by its reschedule uid
	BookingByUID(ctx context.Context, uid string) (*ExistingBooking, error)

	// CreateBooking persists a new booking with its references
	CreateBooking(ctx context.Context, booking *ExistingBooking) error

	// DeleteReferences removes all provider references for a booking
	DeleteReferences(ctx context.Context, bookingID string) error

	// DeleteAttendees removes all attendees for a booking
	DeleteAttendees(ctx context.Context, bookingID string) error

	// DeleteBooking removes the booking row itself
	DeleteBooking(ctx context.Context, bookingID string) error
}
