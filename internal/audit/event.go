package audit

import "time"

// TopicCommitted carries an event for every commit that changed the shortlink document.
const TopicCommitted = "shortlink.committed"

// CommitEvent represents an event emitted when a mutation lands on the branch.
type CommitEvent struct {
	CommitRef   string    `json:"commitRef"`
	Ref         string    `json:"ref"`
	Path        string    `json:"path"`
	Alias       string    `json:"alias"`
	Destination string    `json:"destination,omitempty"`
	Removal     bool      `json:"removal"`
	Message     string    `json:"message"`
	ActorTag    string    `json:"actorTag"`
	ActorNick   string    `json:"actorNick,omitempty"`
	CommittedAt time.Time `json:"committedAt"`
}
