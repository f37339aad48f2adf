package providers

import (
	"fmt"
	"strings"

	"github.com/Tdsone/calendso/internal/types"
)

// Directory maps provider slugs to their wire clients. A credential's slug
// is its type with the class suffix removed ("zoom_video" -> "zoom").
type Directory struct {
	calendars map[string]types.CalendarClient
	videos    map[string]types.VideoClient
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		calendars: make(map[string]types.CalendarClient),
		videos:    make(map[string]types.VideoClient),
	}
}

// RegisterCalendar registers a calendar client under a provider slug.
func (d *Directory) RegisterCalendar(slug string, client types.CalendarClient) {
	d.calendars[slug] = client
}

// RegisterVideo registers a video client under a provider slug.
func (d *Directory) RegisterVideo(slug string, client types.VideoClient) {
	d.videos[slug] = client
}

// CalendarFor resolves the calendar client for a credential.
func (d *Directory) CalendarFor(cred types.Credential) (types.CalendarClient, error) {
	slug := strings.TrimSuffix(cred.Type, "_calendar")
	if client, ok := d.calendars[slug]; ok {
		return client, nil
	}
	return nil, fmt.Errorf("no calendar client registered for credential type %q", cred.Type)
}

// VideoFor resolves the video client for a credential.
func (d *Directory) VideoFor(cred types.Credential) (types.VideoClient, error) {
	slug := strings.TrimSuffix(cred.Type, "_video")
	if client, ok := d.videos[slug]; ok {
		return client, nil
	}
	return nil, fmt.Errorf("no video client registered for credential type %q", cred.Type)
}
