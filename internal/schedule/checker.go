// Package schedule отвечает за агенду: проверка пересечений событий в одной
// локации и жизненный цикл события.
package schedule

import (
	"context"
	"time"

	"github.com/Spok95/academic-eval/internal/apperr"
	"github.com/Spok95/academic-eval/internal/metrics"
	"github.com/Spok95/academic-eval/internal/models"
)

// EventSource отдаёт неотменённые события локации.
type EventSource interface {
	ActiveEventsAtLocation(ctx context.Context, locationID int64) ([]models.Event, error)
}

type Checker struct {
	src EventSource
}

func NewChecker(src EventSource) *Checker {
	return &Checker{src: src}
}

// Overlaps — пересечение полуинтервалов [aStart, aEnd) и [bStart, bEnd).
// Касание концами пересечением не считается.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// HasConflict сообщает, занято ли окно [start, end) в локации.
func (c *Checker) HasConflict(ctx context.Context, locationID *int64, start, end time.Time, excludeEventID *int64) (bool, error) {
	ev, err := c.FindConflict(ctx, locationID, start, end, excludeEventID)
	if err != nil {
		return false, err
	}
	return ev != nil, nil
}

// FindConflict возвращает первое событие, с которым пересекается окно, или nil.
// Без локации проверять нечего. Отменённые события и excludeEventID не учитываются;
// события без конца окна не имеют и ни с чем не пересекаются.
func (c *Checker) FindConflict(ctx context.Context, locationID *int64, start, end time.Time, excludeEventID *int64) (*models.Event, error) {
	if locationID == nil {
		return nil, nil
	}
	if !start.Before(end) {
		return nil, apperr.Validation("end_at", "must be after start_at")
	}

	events, err := c.src.ActiveEventsAtLocation(ctx, *locationID)
	if err != nil {
		return nil, apperr.Persistence("list events at location", err)
	}
	for i := range events {
		e := &events[i]
		if e.Status == models.StatusCancelled {
			continue
		}
		if excludeEventID != nil && e.ID == *excludeEventID {
			continue
		}
		if e.EndAt == nil {
			continue
		}
		if Overlaps(e.StartAt, *e.EndAt, start, end) {
			metrics.ObserveConflictCheck(true)
			return e, nil
		}
	}
	metrics.ObserveConflictCheck(false)
	return nil, nil
}
