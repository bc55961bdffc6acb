package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sisacad/sisacad-api/internal/models"
	"github.com/sisacad/sisacad-api/pkg/jobs"
)

// NotificationDispatcher hands enrollment events to the background queue so
// the external mailer is decoupled from the transaction that created the
// record.
type NotificationDispatcher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationDispatcher constructs NotificationDispatcher.
func NewNotificationDispatcher(queue *jobs.Queue, logger *zap.Logger) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationDispatcher{queue: queue, logger: logger}
}

// Notify enqueues the event. Delivery failures are retried by the queue and
// never affect the enrollment that produced the event.
func (d *NotificationDispatcher) Notify(notification models.Notification) {
	if d.queue == nil {
		return
	}
	d.queue.Enqueue(jobs.JobFunc{
		JobName: "notify-" + string(notification.Kind),
		Fn: func(ctx context.Context) error {
			// Delivery target is the external mailer; until it is wired
			// the event is recorded in the log stream it consumes.
			d.logger.Info("notification dispatched",
				zap.String("kind", string(notification.Kind)),
				zap.String("student_id", notification.StudentID),
				zap.String("course_code", notification.CourseCode),
				zap.Time("occurred_at", notification.OccurredAt),
			)
			return nil
		},
	})
}
