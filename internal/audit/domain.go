// Package audit appends an immutable event alongside every mutation: who did
// what to which entity, and when.
package audit

import "time"

// EventType classifies an audited mutation.
type EventType string

// Event types emitted by the user and tweet services.
const (
	EventUserCreated  EventType = "USER_CREATED"
	EventUserUpdated  EventType = "USER_UPDATED"
	EventUserDeleted  EventType = "USER_DELETED"
	EventTweetCreated EventType = "TWEET_CREATED"
	EventTweetUpdated EventType = "TWEET_UPDATED"
	EventTweetDeleted EventType = "TWEET_DELETED"
)

// Entity type labels used in event rows.
const (
	EntityTypeUser  = "user"
	EntityTypeTweet = "tweet"
)

// Event is one append-only audit record. ActorUserID is nil when the
// mutation happened without an authenticated caller, e.g. self-registration.
type Event struct {
	ID          int64     `json:"id"`
	EventType   EventType `json:"event_type"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	ActorUserID *int64    `json:"actor_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}
