package registry

import (
	"log"
	"strings"

	"github.com/Tdsone/calendso/internal/location"
	"github.com/Tdsone/calendso/internal/types"
)

const (
	calendarSuffix = "_calendar"
	videoSuffix    = "_video"

	// BuiltInVideoType is the credential type of the synthetic built-in
	// video provider appended when the feature is enabled.
	BuiltInVideoType = "daily_video"
)

// Options is the explicit construction-time configuration for a registry.
// The built-in video flag is passed here, never read from the environment
// inside orchestration logic.
type Options struct {
	EnableBuiltInVideo bool
}

// Registry partitions a flat credential list into calendar and video subsets
// for one orchestration session. The partition is fixed for the registry's
// lifetime.
type Registry struct {
	calendarCredentials []types.Credential
	videoCredentials    []types.Credential
}

// New builds a registry from the full credential list. Credentials whose
// type carries neither class suffix are ignored.
func New(credentials []types.Credential, opts Options) *Registry {
	r := &Registry{}
	for _, cred := range credentials {
		switch {
		case strings.HasSuffix(cred.Type, calendarSuffix):
			r.calendarCredentials = append(r.calendarCredentials, cred)
		case strings.HasSuffix(cred.Type, videoSuffix):
			r.videoCredentials = append(r.videoCredentials, cred)
		default:
			log.Printf("Ignoring credential %d with unclassified type %q", cred.ID, cred.Type)
		}
	}
	if opts.EnableBuiltInVideo {
		r.videoCredentials = append(r.videoCredentials, types.Credential{
			ID:   -1,
			Type: BuiltInVideoType,
		})
	}
	return r
}

// CalendarCredentials returns the calendar subset in input order.
func (r *Registry) CalendarCredentials() []types.Credential {
	return r.calendarCredentials
}

// VideoCredentials returns the video subset in input order, with the
// synthetic built-in credential last when enabled.
func (r *Registry) VideoCredentials() []types.Credential {
	return r.videoCredentials
}

// ResolveVideoCredential returns the first video credential matching the
// meeting's chosen integration, or nil when none matches. A nil result is
// not an error; the caller decides how to treat it.
func (r *Registry) ResolveVideoCredential(meeting types.Meeting) *types.Credential {
	name := location.IntegrationName(meeting.Location)
	if name == "" {
		return nil
	}
	for i := range r.videoCredentials {
		if strings.Contains(r.videoCredentials[i].Type, name) {
			return &r.videoCredentials[i]
		}
	}
	return nil
}
