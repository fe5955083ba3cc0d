package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"helping-hands/shiftdesk/internal/common"
	"helping-hands/shiftdesk/internal/constants"
	"helping-hands/shiftdesk/internal/logging"
	"helping-hands/shiftdesk/internal/metrics"
	gormModels "helping-hands/shiftdesk/internal/models/gorm"
)

// ShiftNotice is the new-shift announcement handed to a Notifier.
type ShiftNotice struct {
	ShiftID    int64    `json:"shift_id"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	StartTime  string   `json:"start_time"`
	EndTime    string   `json:"end_time"`
	Location   string   `json:"location"`
	Spots      int      `json:"spots"`
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	Link       string   `json:"link"`
}

// Notifier delivers a ShiftNotice. Delivery is best effort.
type Notifier interface {
	NotifyNewShift(ctx context.Context, notice ShiftNotice) error
}

// BuildShiftNotice renders the subject, body and deep link for shift.
func BuildShiftNotice(shift *gormModels.Shift, recipients []string, frontendURL string) ShiftNotice {
	link := fmt.Sprintf("%s/?openShift=%d", strings.TrimRight(frontendURL, "/"), shift.ID)

	var body strings.Builder
	body.WriteString("A new shift has been posted:\n\n")
	fmt.Fprintf(&body, "Title: %s\n", shift.Title)
	fmt.Fprintf(&body, "Date: %s\n", shift.Date)
	fmt.Fprintf(&body, "Time: %s - %s\n", shift.StartTime, shift.EndTime)
	fmt.Fprintf(&body, "Location: %s\n", shift.Location)
	fmt.Fprintf(&body, "Spots: %d\n\n", shift.Spots)
	fmt.Fprintf(&body, "Volunteer here: %s\n", link)

	return ShiftNotice{
		ShiftID:    shift.ID,
		Title:      shift.Title,
		Date:       shift.Date,
		StartTime:  shift.StartTime,
		EndTime:    shift.EndTime,
		Location:   shift.Location,
		Spots:      shift.Spots,
		Recipients: recipients,
		Subject:    fmt.Sprintf("New shift posted: %s on %s", shift.Title, shift.Date),
		Body:       body.String(),
		Link:       link,
	}
}

// LogNotifier writes notices to the log. Used when no mailer queue is configured.
type LogNotifier struct{}

func (LogNotifier) NotifyNewShift(_ context.Context, notice ShiftNotice) error {
	logging.Info("New shift notification (log only)",
		"shift_id", notice.ShiftID,
		"subject", notice.Subject,
		"recipients", notice.Recipients,
		"link", notice.Link,
	)
	return nil
}

// RedisStreamNotifier appends notices to the stream an external mailer consumes.
type RedisStreamNotifier struct {
	queue  *common.RedisQueueService
	stream string
}

func NewRedisStreamNotifier(queue *common.RedisQueueService) *RedisStreamNotifier {
	return &RedisStreamNotifier{queue: queue, stream: constants.NotificationStream}
}

func (n *RedisStreamNotifier) NotifyNewShift(ctx context.Context, notice ShiftNotice) error {
	id, err := n.queue.Enqueue(ctx, n.stream, notice)
	if err != nil {
		return fmt.Errorf("failed to enqueue shift notice: %w", err)
	}
	logging.Debug("Queued shift notice", "shift_id", notice.ShiftID, "stream", n.stream, "entry_id", id)
	return nil
}

// StaffLister supplies notification recipients.
type StaffLister interface {
	StaffUsernames(ctx context.Context) ([]string, error)
}

// NotificationDispatcher sends new-shift notices in the background. Errors
// and panics inside a dispatch are logged and counted, never returned.
type NotificationDispatcher struct {
	notifier    Notifier
	staff       StaffLister
	frontendURL string
	timeout     time.Duration
	metrics     *metrics.MetricsRegistry
	wg          sync.WaitGroup
}

func NewNotificationDispatcher(notifier Notifier, staff StaffLister, frontendURL string, timeout time.Duration, m *metrics.MetricsRegistry) *NotificationDispatcher {
	return &NotificationDispatcher{
		notifier:    notifier,
		staff:       staff,
		frontendURL: frontendURL,
		timeout:     timeout,
		metrics:     m,
	}
}

// DispatchNewShift returns immediately; the notice is built and sent on a
// separate goroutine bounded by the dispatch timeout.
func (d *NotificationDispatcher) DispatchNewShift(shift gormModels.Shift) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.Error("Shift notification panicked", "shift_id", shift.ID, "panic", r)
				d.metrics.Notification("failed")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		d.send(ctx, &shift)
	}()
}

func (d *NotificationDispatcher) send(ctx context.Context, shift *gormModels.Shift) {
	recipients, err := d.staff.StaffUsernames(ctx)
	if err != nil {
		logging.Error("Failed to load notification recipients", "shift_id", shift.ID, "error", err)
		d.metrics.Notification("failed")
		return
	}
	if len(recipients) == 0 {
		logging.Warn("No staff recipients found for shift notification", "shift_id", shift.ID)
		d.metrics.Notification("skipped")
		return
	}

	notice := BuildShiftNotice(shift, recipients, d.frontendURL)
	if err := d.notifier.NotifyNewShift(ctx, notice); err != nil {
		logging.Error("Failed to send shift notification", "shift_id", shift.ID, "error", err)
		d.metrics.Notification("failed")
		return
	}

	if _, ok := d.notifier.(LogNotifier); ok {
		d.metrics.Notification("logged")
	} else {
		d.metrics.Notification("queued")
	}
}

// Wait blocks until in-flight dispatches finish. Used at shutdown and in tests.
func (d *NotificationDispatcher) Wait() {
	d.wg.Wait()
}
