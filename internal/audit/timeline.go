package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TimelineFilters narrows the event listing.
type TimelineFilters struct {
	EntityType  string
	EventType   string
	ActorUserID *int64
	Page        int
	PageSize    int
}

// PagingInfo describes the window returned by Timeline.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
}

// Result bundles timeline rows with paging information.
type Result struct {
	Events []Event    `json:"events"`
	Paging PagingInfo `json:"paging"`
}

// TimelineRepository reads event windows.
type TimelineRepository interface {
	ListEvents(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Event, error)
}

// Service coordinates audit event reads.
type Service struct {
	repo TimelineRepository
}

// NewService constructs an audit timeline service.
func NewService(repo TimelineRepository) *Service {
	return &Service{repo: repo}
}

// Timeline fetches a page of events, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	// Fetch one extra row to learn whether another page exists.
	events, err := s.repo.ListEvents(ctx, filters, pageSize+1, offset)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(events) > pageSize
	if hasNext {
		events = events[:pageSize]
	}
	return Result{
		Events: events,
		Paging: PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext},
	}, nil
}

// PGTimelineRepository implements TimelineRepository over PostgreSQL.
type PGTimelineRepository struct {
	pool *pgxpool.Pool
}

// NewTimelineRepository constructs a PostgreSQL timeline repository.
func NewTimelineRepository(pool *pgxpool.Pool) *PGTimelineRepository {
	return &PGTimelineRepository{pool: pool}
}

// ListEvents returns a window of events ordered newest first.
func (r *PGTimelineRepository) ListEvents(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Event, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT id, event_type, entity_type, entity_id, actor_user_id, created_at FROM events`)
	args := []any{}
	conditions := []string{}
	if filters.EntityType != "" {
		args = append(args, filters.EntityType)
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if filters.EventType != "" {
		args = append(args, filters.EventType)
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", len(args)))
	}
	if filters.ActorUserID != nil {
		args = append(args, *filters.ActorUserID)
		conditions = append(conditions, fmt.Sprintf("actor_user_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	args = append(args, limit)
	query.WriteString(fmt.Sprintf(" ORDER BY id DESC LIMIT $%d", len(args)))
	args = append(args, offset)
	query.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("audit: list events: %w", err)
	}
	defer rows.Close()
	events := []Event{}
	for rows.Next() {
		var event Event
		if err := rows.Scan(&event.ID, &event.EventType, &event.EntityType, &event.EntityID, &event.ActorUserID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

var _ TimelineRepository = (*PGTimelineRepository)(nil)
