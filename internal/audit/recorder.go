package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chirper/chirper/internal/auth"
)

// Querier is the slice of pgx that the recorder needs. Both pgx.Tx and
// *pgxpool.Pool satisfy it; services pass their open transaction so the
// event commits atomically with the mutation it documents.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Recorder appends audit events. Each call inserts a new row; recording the
// same logical action twice produces two rows, deduplication is the caller's
// concern.
type Recorder struct{}

// NewRecorder constructs a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one event attributed to the current request identity (nil
// actor when unauthenticated). The insert runs on the caller's querier,
// normally its transaction, and any failure must abort that transaction:
// a mutation without an audit record is not allowed to commit.
func (rec *Recorder) Record(ctx context.Context, q Querier, eventType EventType, entityType string, entityID int64) (Event, error) {
	event := Event{
		EventType:   eventType,
		EntityType:  entityType,
		EntityID:    entityID,
		ActorUserID: auth.ActorUserID(ctx),
	}
	const query = `
		INSERT INTO events (event_type, entity_type, entity_id, actor_user_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`
	err := q.QueryRow(ctx, query, string(eventType), entityType, entityID, event.ActorUserID).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return Event{}, fmt.Errorf("audit: record event: %w", err)
	}
	return event, nil
}
