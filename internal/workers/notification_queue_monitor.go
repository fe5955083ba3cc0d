package workers

import (
	"context"
	"fmt"
	"time"

	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/metrics"
)

// Alert thresholds for the notification stream.
const (
	highPendingThreshold = 1000
	highQueueThreshold   = 5000
)

// StreamQueue is the slice of the Redis queue service the monitor needs.
type StreamQueue interface {
	GetQueueLength(ctx context.Context, streamName string) (int64, error)
	GetPendingCount(ctx context.Context, streamName, groupName string) (int64, error)
	TrimStream(ctx context.Context, streamName string, maxLen int64) error
}

// QueueStats is one observation of the notification stream.
type QueueStats struct {
	StreamName   string
	QueueLength  int64
	PendingCount int64
	Status       string
	LastChecked  time.Time
}

// NotificationQueueMonitor watches the stream the external mailer consumes.
type NotificationQueueMonitor struct {
	queue   StreamQueue
	metrics *metrics.MetricsRegistry
	stream  string
	group   string
}

func NewNotificationQueueMonitor(queue StreamQueue, m *metrics.MetricsRegistry) *NotificationQueueMonitor {
	return &NotificationQueueMonitor{
		queue:   queue,
		metrics: m,
		stream:  constants.NotificationStream,
		group:   constants.NotificationStreamGroup,
	}
}

// Start checks the stream every interval until ctx is done.
func (m *NotificationQueueMonitor) Start(ctx context.Context, interval time.Duration) {
	logging.Info("Starting notification queue monitor", "stream", m.stream, "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	m.checkQueue(ctx)

	for {
		select {
		case <-ctx.Done():
			logging.Info("Notification queue monitor shutting down")
			return
		case <-ticker.C:
			m.checkQueue(ctx)
		}
	}
}

func (m *NotificationQueueMonitor) checkQueue(ctx context.Context) {
	stats, err := m.Stats(ctx)
	if err != nil {
		logging.Error("Failed to read notification queue stats", "stream", m.stream, "error", err)
		return
	}

	m.metrics.SetNotificationQueue(stats.QueueLength, stats.PendingCount)

	if stats.Status != "ok" {
		logging.Warn("Notification queue needs attention",
			"stream", stats.StreamName,
			"queue_length", stats.QueueLength,
			"pending", stats.PendingCount,
			"status", stats.Status,
		)
		return
	}
	logging.Debug("Notification queue healthy",
		"stream", stats.StreamName,
		"queue_length", stats.QueueLength,
		"pending", stats.PendingCount,
	)
}

// Stats reads the current length and pending count of the stream.
func (m *NotificationQueueMonitor) Stats(ctx context.Context) (*QueueStats, error) {
	queueLength, err := m.queue.GetQueueLength(ctx, m.stream)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue length: %w", err)
	}

	pendingCount, err := m.queue.GetPendingCount(ctx, m.stream, m.group)
	if err != nil {
		// the mailer has not created its group yet
		pendingCount = 0
	}

	status := "ok"
	switch {
	case pendingCount > highPendingThreshold:
		status = "high_pending"
	case queueLength > highQueueThreshold:
		status = "high_queue"
	}

	return &QueueStats{
		StreamName:   m.stream,
		QueueLength:  queueLength,
		PendingCount: pendingCount,
		Status:       status,
		LastChecked:  time.Now(),
	}, nil
}

// TrimOldMessages caps the stream at maxLen entries.
func (m *NotificationQueueMonitor) TrimOldMessages(ctx context.Context, maxLen int64) error {
	if err := m.queue.TrimStream(ctx, m.stream, maxLen); err != nil {
		return fmt.Errorf("failed to trim stream %s: %w", m.stream, err)
	}
	logging.Info("Trimmed notification stream", "stream", m.stream, "max_len", maxLen)
	return nil
}
