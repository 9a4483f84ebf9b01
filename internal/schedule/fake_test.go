package schedule

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Spok95/academic-eval/internal/models"
)

// memRepo — репозиторий в памяти для тестов сервиса.
type memRepo struct {
	mu        sync.Mutex
	nextID    int64
	events    map[int64]*models.Event
	locations map[int64]models.Location
	failList  error
}

func newMemRepo() *memRepo {
	return &memRepo{
		events:    map[int64]*models.Event{},
		locations: map[int64]models.Location{},
	}
}

func (r *memRepo) addLocation(id int64, name string) {
	r.locations[id] = models.Location{ID: id, Name: name}
}

func (r *memRepo) put(e models.Event) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	if e.Version == 0 {
		e.Version = 1
	}
	if e.Status == "" {
		e.Status = models.StatusScheduled
	}
	r.events[e.ID] = &e
	return e.ID
}

func (r *memRepo) ActiveEventsAtLocation(_ context.Context, locationID int64) ([]models.Event, error) {
	if r.failList != nil {
		return nil, r.failList
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, e := range r.events {
		if e.LocationID != nil && *e.LocationID == locationID && e.Status != models.StatusCancelled {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (r *memRepo) LocationByID(_ context.Context, id int64) (*models.Location, error) {
	l, ok := r.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *memRepo) EventByID(_ context.Context, id int64) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memRepo) CreateEvent(_ context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	e.Version = 1
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *memRepo) UpdateEvent(_ context.Context, e *models.Event, expectedVersion int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.events[e.ID]
	if !ok || cur.Version != expectedVersion {
		return false, nil
	}
	e.Version = expectedVersion + 1
	cp := *e
	r.events[e.ID] = &cp
	return true, nil
}

func (r *memRepo) SetEventStatus(_ context.Context, id int64, from, to models.EventStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.events[id]
	if !ok || cur.Status != from {
		return false, nil
	}
	cur.Status = to
	cur.Version++
	return true, nil
}

func (r *memRepo) AdvanceEventStatuses(_ context.Context, now time.Time) (started, completed []int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.events {
		if e.Status == models.StatusScheduled && !e.StartAt.After(now) {
			e.Status = models.StatusInProgress
			started = append(started, id)
		}
		if e.Status == models.StatusInProgress && e.EndAt != nil && !e.EndAt.After(now) {
			e.Status = models.StatusCompleted
			completed = append(completed, id)
		}
	}
	return started, completed, nil
}

func (r *memRepo) InSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var errBoom = errors.New("boom")

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrInt64(v int64) *int64        { return &v }
