package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StatusAdvancer — сервис расписания, переводящий события по времени.
type StatusAdvancer interface {
	AdvanceStatuses(ctx context.Context, now time.Time) (started, completed []int64, err error)
}

// EventStatusSweep: scheduled → in_progress после начала, in_progress → completed после конца.
func EventStatusSweep(svc StatusAdvancer, now func() time.Time, log *zap.Logger) Job {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context) error {
		started, completed, err := svc.AdvanceStatuses(ctx, now())
		if err != nil {
			return err
		}
		if len(started)+len(completed) > 0 {
			log.Info("event statuses advanced",
				zap.Int64s("started", started),
				zap.Int64s("completed", completed),
			)
		}
		return nil
	}
}
