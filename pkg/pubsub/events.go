package pubsub

import "github.com/google/uuid"

// SeedEventType labels seed event payloads on the wire.
const SeedEventType = "profile.created"

// SeedEvent asks the seed worker to create sample data for a new profile.
type SeedEvent struct {
	Type   string    `json:"type"`
	UserID uuid.UUID `json:"user_id"`
}
