package model

import "time"

// Edit is one append-only audit record: a mutation, its target and its actor.
// Edits are never updated or deleted by the system.
type Edit struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Op         string         `json:"op"`
	Collection string         `json:"col"`
	TargetID   string         `json:"targetId"`
	Update     map[string]any `json:"update"`
	Actor      *ActorSnapshot `json:"actor,omitempty"`
}
