package expiration

import (
	"context"
	"time"

	"github.com/serroba/shorter/internal/shortener"
)

// TopicExpired carries expiration messages that have become due.
const TopicExpired = "shortlink.expired"

// Message asks for an alias to be removed once its time-to-live has elapsed.
type Message struct {
	ID        string          `json:"id"`
	Alias     string          `json:"alias"`
	Actor     shortener.Actor `json:"actor"`
	NotBefore time.Time       `json:"notBefore"`
}

// Handle identifies a scheduled message.
type Handle struct {
	ID        string
	DeliverAt time.Time
}

// DueStore persists scheduled messages until they are due. Implementations must be
// durable for the queue to survive restarts.
type DueStore interface {
	// Add stores msg until msg.NotBefore.
	Add(ctx context.Context, msg *Message) error

	// Due returns up to limit messages whose NotBefore is not after now, oldest first.
	// Messages stay in the store until removed.
	Due(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	// Remove deletes a message. Removing an unknown id is not an error.
	Remove(ctx context.Context, id string) error
}
