package audit

import (
	"context"
	"testing"
	"time"
)

type stubTimelineRepo struct {
	events     []Event
	lastLimit  int
	lastOffset int
}

func (s *stubTimelineRepo) ListEvents(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Event, error) {
	s.lastLimit = limit
	s.lastOffset = offset
	if limit > len(s.events) {
		limit = len(s.events)
	}
	return s.events[:limit], nil
}

func makeEvents(n int) []Event {
	events := make([]Event, n)
	for i := range events {
		events[i] = Event{ID: int64(n - i), EventType: EventTweetCreated, EntityType: EntityTypeTweet, EntityID: int64(i), CreatedAt: time.Now()}
	}
	return events
}

func TestTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{events: makeEvents(3)}
	service := NewService(repo)

	result, err := service.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result.Events))
	}
	if !result.Paging.HasNext {
		t.Fatalf("expected hasNext true")
	}
	if repo.lastLimit != 3 || repo.lastOffset != 0 {
		t.Fatalf("expected limit 3 offset 0, got %d/%d", repo.lastLimit, repo.lastOffset)
	}
}

func TestTimelineDefaults(t *testing.T) {
	repo := &stubTimelineRepo{events: makeEvents(1)}
	service := NewService(repo)

	result, err := service.Timeline(context.Background(), TimelineFilters{})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if result.Paging.Page != 1 || result.Paging.PageSize != 20 {
		t.Fatalf("unexpected paging defaults %+v", result.Paging)
	}
	if result.Paging.HasNext {
		t.Fatalf("expected no next page")
	}
}
