package schedule

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/academic-eval/internal/apperr"
	"github.com/Spok95/academic-eval/internal/logging"
	"github.com/Spok95/academic-eval/internal/models"
)

type Repository interface {
	EventSource
	LocationByID(ctx context.Context, id int64) (*models.Location, error)
	EventByID(ctx context.Context, id int64) (*models.Event, error)
	CreateEvent(ctx context.Context, e *models.Event) error
	UpdateEvent(ctx context.Context, e *models.Event, expectedVersion int64) (bool, error)
	SetEventStatus(ctx context.Context, id int64, from, to models.EventStatus) (bool, error)
	AdvanceEventStatuses(ctx context.Context, now time.Time) (started, completed []int64, err error)
	// InSerializableTx — проверка пересечений и запись должны быть одной
	// сериализуемой транзакцией, иначе два параллельных запроса займут одно окно.
	InSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventInput struct {
	Title             string
	Description       string
	StartAt           time.Time
	EndAt             *time.Time
	LocationID        *int64
	DisciplineID      *int64
	ClassID           *int64
	ResponsibleUserID *int64
	Type              models.EventType
}

type Service struct {
	repo    Repository
	checker *Checker
	log     *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, checker: NewChecker(repo), log: log}
}

func (s *Service) Checker() *Checker { return s.checker }

// CheckConflict — проверка для агенды. Без конца окна или без локации
// проверка не выполняется (nil, nil).
func (s *Service) CheckConflict(ctx context.Context, locationID *int64, start time.Time, end *time.Time, excludeEventID *int64) (*models.Event, error) {
	if locationID == nil || end == nil {
		return nil, nil
	}
	return s.checker.FindConflict(ctx, locationID, start, *end, excludeEventID)
}

func (s *Service) Create(ctx context.Context, in EventInput) (*models.Event, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	ev := &models.Event{
		Title:             in.Title,
		Description:       in.Description,
		StartAt:           in.StartAt,
		EndAt:             in.EndAt,
		LocationID:        in.LocationID,
		DisciplineID:      in.DisciplineID,
		ClassID:           in.ClassID,
		ResponsibleUserID: in.ResponsibleUserID,
		Type:              in.Type,
		Status:            models.StatusScheduled,
	}

	err := s.repo.InSerializableTx(ctx, func(ctx context.Context) error {
		if err := s.ensureLocation(ctx, in.LocationID); err != nil {
			return err
		}
		if err := s.ensureFree(ctx, in, nil); err != nil {
			return err
		}
		if err := s.repo.CreateEvent(ctx, ev); err != nil {
			return apperr.Persistence("create event", err)
		}
		return nil
	})
	if err != nil {
		return nil, wrapTxErr("create event", err)
	}
	logging.FromContext(ctx, s.log).Info("event created", zap.Int64("event_id", ev.ID), zap.String("type", string(ev.Type)))
	return ev, nil
}

// Update редактирует событие в статусе scheduled/in_progress.
// expectedVersion == 0 — без проверки версии со стороны клиента.
func (s *Service) Update(ctx context.Context, id, expectedVersion int64, in EventInput) (*models.Event, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	var ev *models.Event
	err := s.repo.InSerializableTx(ctx, func(ctx context.Context) error {
		cur, err := s.repo.EventByID(ctx, id)
		if err != nil {
			return apperr.Persistence("load event", err)
		}
		if cur == nil {
			return apperr.NotFound("event", id)
		}
		if cur.Status.Terminal() {
			return apperr.Validationf("status", "event is %s and can no longer be edited", cur.Status)
		}
		version := cur.Version
		if expectedVersion != 0 {
			if expectedVersion != cur.Version {
				return apperr.ConcurrentModification("event", id, expectedVersion)
			}
			version = expectedVersion
		}
		if err := s.ensureLocation(ctx, in.LocationID); err != nil {
			return err
		}
		if err := s.ensureFree(ctx, in, &id); err != nil {
			return err
		}

		cur.Title = in.Title
		cur.Description = in.Description
		cur.StartAt = in.StartAt
		cur.EndAt = in.EndAt
		cur.LocationID = in.LocationID
		cur.DisciplineID = in.DisciplineID
		cur.ClassID = in.ClassID
		cur.ResponsibleUserID = in.ResponsibleUserID
		cur.Type = in.Type

		ok, err := s.repo.UpdateEvent(ctx, cur, version)
		if err != nil {
			return apperr.Persistence("update event", err)
		}
		if !ok {
			return apperr.ConcurrentModification("event", id, version)
		}
		ev = cur
		return nil
	})
	if err != nil {
		return nil, wrapTxErr("update event", err)
	}
	logging.FromContext(ctx, s.log).Info("event updated", zap.Int64("event_id", ev.ID), zap.Int64("version", ev.Version))
	return ev, nil
}

// Transition переводит событие в новый статус. Терминальные статусы неизменяемы.
func (s *Service) Transition(ctx context.Context, id int64, to models.EventStatus) (*models.Event, error) {
	if !to.Valid() {
		return nil, apperr.Validationf("status", "unknown status %q", to)
	}
	var ev *models.Event
	err := s.repo.InSerializableTx(ctx, func(ctx context.Context) error {
		cur, err := s.repo.EventByID(ctx, id)
		if err != nil {
			return apperr.Persistence("load event", err)
		}
		if cur == nil {
			return apperr.NotFound("event", id)
		}
		if !cur.Status.CanTransition(to) {
			return apperr.Validationf("status", "transition %s -> %s is not allowed", cur.Status, to)
		}
		ok, err := s.repo.SetEventStatus(ctx, id, cur.Status, to)
		if err != nil {
			return apperr.Persistence("set event status", err)
		}
		if !ok {
			return apperr.ConcurrentModification("event", id, cur.Version)
		}
		ev, err = s.repo.EventByID(ctx, id)
		if err != nil {
			return apperr.Persistence("reload event", err)
		}
		return nil
	})
	if err != nil {
		return nil, wrapTxErr("event transition", err)
	}
	logging.FromContext(ctx, s.log).Info("event status changed", zap.Int64("event_id", id), zap.String("status", string(to)))
	return ev, nil
}

// AdvanceStatuses — фоновый переход по времени: начатые и завершившиеся события.
func (s *Service) AdvanceStatuses(ctx context.Context, now time.Time) (started, completed []int64, err error) {
	started, completed, err = s.repo.AdvanceEventStatuses(ctx, now)
	if err != nil {
		return nil, nil, apperr.Persistence("advance event statuses", err)
	}
	if len(started)+len(completed) > 0 {
		s.log.Info("event statuses advanced", zap.Int("started", len(started)), zap.Int("completed", len(completed)))
	}
	return started, completed, nil
}

func (s *Service) ensureLocation(ctx context.Context, locationID *int64) error {
	if locationID == nil {
		return nil
	}
	loc, err := s.repo.LocationByID(ctx, *locationID)
	if err != nil {
		return apperr.Persistence("load location", err)
	}
	if loc == nil {
		return apperr.NotFound("location", *locationID)
	}
	return nil
}

func (s *Service) ensureFree(ctx context.Context, in EventInput, exclude *int64) error {
	clash, err := s.CheckConflict(ctx, in.LocationID, in.StartAt, in.EndAt, exclude)
	if err != nil {
		return err
	}
	if clash != nil {
		return apperr.Conflict(clash.ID)
	}
	return nil
}

func validateInput(in *EventInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperr.Validation("title", "required")
	}
	if in.StartAt.IsZero() {
		return apperr.Validation("start_at", "required")
	}
	if in.EndAt != nil && !in.EndAt.After(in.StartAt) {
		return apperr.Validation("end_at", "must be after start_at")
	}
	if in.Type == "" {
		in.Type = models.EventGeneral
	}
	if !in.Type.Valid() {
		return apperr.Validationf("type", "unknown event type %q", in.Type)
	}
	return nil
}

// wrapTxErr — доменные ошибки отдаём как есть, остальное (begin/commit) — как сбой хранилища.
func wrapTxErr(op string, err error) error {
	if apperr.IsValidation(err) || apperr.IsNotFound(err) || apperr.IsConflict(err) ||
		apperr.IsConcurrentModification(err) || apperr.IsPersistence(err) {
		return err
	}
	return apperr.Persistence(op, err)
}
