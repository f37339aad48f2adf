package location

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Tdsone/calendso/internal/types"
)

// IntegrationPrefix marks a location string that names a provider integration
// rather than a physical place or a static link.
const IntegrationPrefix = "integrations:"

// Kind is the closed set of integration kinds a location string can denote.
// It is produced once here so downstream components match on the variant
// instead of re-parsing strings.
type Kind int

const (
	// KindNone means the location does not name any known integration
	KindNone Kind = iota
	// KindGoogleMeet is a conference provisioned through the calendar entry
	KindGoogleMeet
	// KindZoom requires a dedicated Zoom meeting
	KindZoom
	// KindBuiltInVideo requires a room on the built-in video provider
	KindBuiltInVideo
	// KindOther is a recognized integration form with an unknown provider
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindGoogleMeet:
		return "google_meet"
	case KindZoom:
		return "zoom"
	case KindBuiltInVideo:
		return "daily"
	case KindOther:
		return "other"
	default:
		return "none"
	}
}

// IntegrationName strips the integrations: prefix from a location string,
// leaving the bare provider tag.
func IntegrationName(loc string) string {
	return strings.TrimPrefix(loc, IntegrationPrefix)
}

// KindOf classifies a location string. Both the bare tag ("zoom") and the
// prefixed form ("integrations:zoom") map to the same kind.
func KindOf(loc string) Kind {
	if loc == "" {
		return KindNone
	}
	switch IntegrationName(loc) {
	case "google_meet", "google:meet":
		return KindGoogleMeet
	case "zoom", "zoom_video":
		return KindZoom
	case "daily", "daily_video":
		return KindBuiltInVideo
	}
	if strings.HasPrefix(loc, IntegrationPrefix) {
		return KindOther
	}
	return KindNone
}

// IsDedicatedIntegration reports whether the location requires provisioning
// a distinct video-conferencing session via a provider API.
func IsDedicatedIntegration(loc string) bool {
	switch KindOf(loc) {
	case KindZoom, KindBuiltInVideo:
		return true
	}
	return false
}

// ResolveConferenceRequest derives a conference-creation request for
// recognized integration locations. The request identifier is a SHA1
// namespace uuid of the location string, so the same location always yields
// the same identifier and distinct locations never collide.
func ResolveConferenceRequest(loc string) *types.ConferenceRequest {
	switch KindOf(loc) {
	case KindGoogleMeet, KindZoom, KindBuiltInVideo:
		return &types.ConferenceRequest{
			RequestID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(loc)).String(),
			Location:  loc,
		}
	}
	return nil
}

// Process resolves the meeting's location. When the location string names an
// integration, the resolved conference request is merged into a copy of the
// meeting; all other fields are preserved. Unrecognized and plain locations
// pass through unchanged. Process never touches shared state.
func Process(meeting types.Meeting) types.Meeting {
	if !strings.Contains(meeting.Location, "integration") {
		return meeting
	}
	req := ResolveConferenceRequest(meeting.Location)
	if req == nil {
		return meeting
	}
	meeting.ConferenceRequest = req
	meeting.Location = req.Location
	return meeting
}
