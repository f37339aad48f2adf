package engine

import "github.com/Tdsone/calendso/internal/types"

// BuildReferences derives the caller-persisted reference list from operation
// results: one reference per result, uid and join details taken from the
// created entry when present. Used on the create path; reschedule callers
// may use it to re-derive fresh references from their results.
func BuildReferences(results []types.OperationResult) []types.ProviderReference {
	refs := make([]types.ProviderReference, 0, len(results))
	for _, result := range results {
		ref := types.ProviderReference{Type: result.Type}
		if ev := result.CreatedEvent; ev != nil {
			ref.UID = ev.UID
			ref.MeetingID = ev.ID
			ref.MeetingPassword = ev.Password
			ref.MeetingURL = ev.URL
		}
		refs = append(refs, ref)
	}
	return refs
}
