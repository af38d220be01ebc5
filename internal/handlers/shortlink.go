package handlers

import (
	"context"

	"github.com/serroba/shorter/internal/command"
	"github.com/serroba/shorter/internal/shortener"
)

// Translator runs commands and renders their outcome.
type Translator interface {
	Add(ctx context.Context, inv command.Invocation) string
	Remove(ctx context.Context, inv command.Invocation) string
}

// ShortlinkHandler exposes shortlink commands over HTTP. Callers are trusted: verifying
// who may run them is left to the front end.
type ShortlinkHandler struct {
	translator Translator
}

// NewShortlinkHandler creates a new shortlink handler.
func NewShortlinkHandler(translator Translator) *ShortlinkHandler {
	return &ShortlinkHandler{translator: translator}
}

// AddShortlink creates or overwrites an alias.
func (h *ShortlinkHandler) AddShortlink(ctx context.Context, req *AddShortlinkRequest) (*OutcomeResponse, error) {
	destination := req.Body.Destination

	content := h.translator.Add(ctx, command.Invocation{
		Alias:       req.Body.Alias,
		Destination: &destination,
		Force:       req.Body.Force,
		TTL:         req.Body.TTL,
		Actor: shortener.Actor{
			Tag:  req.Body.Actor.Tag,
			Nick: req.Body.Actor.Nick,
		},
	})

	return outcome(content), nil
}

// RemoveShortlink removes an alias. Removing an alias that does not exist succeeds.
func (h *ShortlinkHandler) RemoveShortlink(ctx context.Context, req *RemoveShortlinkRequest) (*OutcomeResponse, error) {
	content := h.translator.Remove(ctx, command.Invocation{
		Alias: req.Alias,
		Actor: shortener.Actor{
			Tag:  req.ActorTag,
			Nick: req.ActorNick,
		},
	})

	return outcome(content), nil
}

func outcome(content string) *OutcomeResponse {
	resp := &OutcomeResponse{}
	resp.Body.Content = content

	return resp
}
