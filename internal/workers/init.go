package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"helping-hands/shiftdesk/internal/common"
	"helping-hands/shiftdesk/internal/config"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/metrics"
)

const trimTimeout = 30 * time.Second

type WorkersContainer struct {
	Monitor   *NotificationQueueMonitor
	scheduler *cron.Cron
	cancel    context.CancelFunc
}

// InitWorkers starts the notification stream monitor and the cron-driven
// trim. Nothing runs when queue is nil (Redis disabled).
func InitWorkers(
	ctx context.Context,
	queue *common.RedisQueueService,
	cfg config.NotificationsConfig,
	metricsReg *metrics.MetricsRegistry,
) (*WorkersContainer, error) {
	if queue == nil {
		logging.Info("Redis disabled, notification workers not started")
		return &WorkersContainer{}, nil
	}

	if err := queue.CreateConsumerGroup(ctx, constants.NotificationStream, constants.NotificationStreamGroup); err != nil {
		logging.Warn("Could not create notification consumer group", "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	monitor := NewNotificationQueueMonitor(queue, metricsReg)
	go monitor.Start(ctx, cfg.MonitorInterval)

	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.TrimSchedule, func() {
		trimCtx, done := context.WithTimeout(ctx, trimTimeout)
		defer done()
		if err := monitor.TrimOldMessages(trimCtx, cfg.StreamMaxLen); err != nil {
			logging.Error("Scheduled stream trim failed", "error", err)
		}
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("invalid trim schedule %q: %w", cfg.TrimSchedule, err)
	}
	scheduler.Start()
	logging.Info("Scheduled notification stream trim", "cron", cfg.TrimSchedule, "max_len", cfg.StreamMaxLen)

	return &WorkersContainer{Monitor: monitor, scheduler: scheduler, cancel: cancel}, nil
}

// Stop halts the monitor and waits for a running trim to finish.
func (w *WorkersContainer) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.scheduler != nil {
		<-w.scheduler.Stop().Done()
	}
}
