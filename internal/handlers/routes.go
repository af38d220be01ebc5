package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shorter/internal/ratelimit"
)

// RegisterRoutes registers the shortlink routes. Every command is a commit on the
// shortlink branch, so both routes share the write budget of the policy.
func RegisterRoutes(api huma.API, h *ShortlinkHandler) {
	writeLimits := ratelimit.EndpointConfig{Scope: ratelimit.ScopeWrite}

	huma.Register(api, huma.Operation{
		OperationID: "add-shortlink",
		Method:      http.MethodPost,
		Path:        "/shortlinks",
		Summary:     "Add shortlink",
		Description: "Commits a new alias, or overwrites one with force. A ttl schedules its removal.",
		Tags:        []string{"Shortlinks"},
		Metadata:    map[string]any{ratelimit.MetadataKey: writeLimits},
	}, h.AddShortlink)

	huma.Register(api, huma.Operation{
		OperationID: "remove-shortlink",
		Method:      http.MethodDelete,
		Path:        "/shortlinks",
		Summary:     "Remove shortlink",
		Description: "Commits the removal of an alias.",
		Tags:        []string{"Shortlinks"},
		Metadata:    map[string]any{ratelimit.MetadataKey: writeLimits},
	}, h.RemoveShortlink)
}
