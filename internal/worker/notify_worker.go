package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"reserveease/internal/database"
	"reserveease/internal/domain"
	"reserveease/internal/metrics"
	"reserveease/internal/models"
	"reserveease/internal/notify"

	"github.com/redis/go-redis/v9"
)

// OutboxNotifier persists every owed notification to the queue table before
// delivery, so a crash between the status update and the transport call
// never loses a message. It satisfies the same Notifier contract as the
// inline dispatcher; callers see the enqueue result, not the delivery result.
type OutboxNotifier struct {
	db            *database.DB
	sender        domain.MessageSender
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.NotificationTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *log.Logger
}

// NewOutboxNotifier builds a worker with sane defaults.
func NewOutboxNotifier(db *database.DB, sender domain.MessageSender, redisClient *redis.Client, retry RetryPolicy, logger *log.Logger) *OutboxNotifier {
	retry.normalize()
	if logger == nil {
		logger = log.Default()
	}

	return &OutboxNotifier{
		db:            db,
		sender:        sender,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.NotificationTask, models.WorkerQueueSize),
		redisQueueKey: "notifications:queue",
		deadLetterKey: "notifications:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// NotifyOnCreate enqueues the initial "pending review" message if one is owed.
func (w *OutboxNotifier) NotifyOnCreate(ctx context.Context, booking *models.Booking) error {
	plan, ok := notify.PlanOnCreate(booking)
	if !ok {
		return nil
	}
	return w.enqueue(ctx, booking.ID, plan)
}

// NotifyOnStatusChange enqueues the message owed for the booking's current status.
func (w *OutboxNotifier) NotifyOnStatusChange(ctx context.Context, booking *models.Booking) error {
	plan, ok := notify.PlanOnStatusChange(booking)
	if !ok {
		return nil
	}
	return w.enqueue(ctx, booking.ID, plan)
}

// enqueue persists the task to DB and schedules it via redis or in-memory queue.
func (w *OutboxNotifier) enqueue(ctx context.Context, bookingID string, plan notify.Plan) error {
	if plan.To == "" {
		return errors.New("recipient is required")
	}

	task := models.NotificationTask{
		BookingID: bookingID,
		Channel:   plan.Channel,
		To:        plan.To,
		Message:   plan.Message,
		Status:    "pending",
		CreatedAt: time.Now(),
	}

	if err := w.db.CreateNotificationTask(ctx, &task); err != nil {
		return fmt.Errorf("persist notification task: %w", err)
	}

	// Try redis first for durability. The row stays pending until processed,
	// so a task can reach the worker twice (redis pop and DB poll): delivery
	// is at-least-once, duplicates resolve at the transport.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Printf("notify_worker: redis push failed, fallback to memory queue: %v", err)
		} else {
			return nil
		}
	}

	// Fallback to in-memory queue if redis missing or failed.
	select {
	case w.queue <- task:
	default:
		w.logger.Printf("notify_worker: in-memory queue full, task %d dropped to polling", task.ID)
	}

	return nil
}

// Start launches main loop; stops when ctx is done.
func (w *OutboxNotifier) Start(ctx context.Context) {
	w.logger.Printf("notify_worker: started")
	defer w.logger.Printf("notify_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingNotificationTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Printf("notify_worker: fetch pending: %v", err)
			time.Sleep(w.pollInterval)
			continue
		}
		if len(tasks) == 0 {
			time.Sleep(w.pollInterval)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *OutboxNotifier) tryLocalQueue() (models.NotificationTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.NotificationTask{}, false
	}
}

func (w *OutboxNotifier) tryRedis(ctx context.Context) (models.NotificationTask, bool) {
	if w.redis == nil {
		return models.NotificationTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.NotificationTask{}, false
		}
		w.logger.Printf("notify_worker: redis BRPOP error: %v", err)
		return models.NotificationTask{}, false
	}
	if len(res) != 2 {
		return models.NotificationTask{}, false
	}
	var task models.NotificationTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Printf("notify_worker: decode redis task: %v", err)
		return models.NotificationTask{}, false
	}
	return task, true
}

func (w *OutboxNotifier) processTask(ctx context.Context, task *models.NotificationTask) {
	if err := w.deliver(ctx, task); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	metrics.IncNotificationSent(task.Channel)
	if err := w.db.UpdateNotificationTaskStatus(ctx, task.ID, "completed", "", nil); err != nil {
		w.logger.Printf("notify_worker: mark completed %d: %v", task.ID, err)
	}
}

func (w *OutboxNotifier) deliver(ctx context.Context, task *models.NotificationTask) error {
	switch task.Channel {
	case notify.ChannelSMS:
		return w.sender.SendSMS(ctx, task.To, task.Message)
	case notify.ChannelWhatsApp:
		return w.sender.SendWhatsApp(ctx, task.To, task.Message)
	default:
		return fmt.Errorf("unknown channel: %s", task.Channel)
	}
}

func (w *OutboxNotifier) retryOrFail(ctx context.Context, task *models.NotificationTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		metrics.IncNotificationFailed(task.Channel)
		if err := w.db.UpdateNotificationTaskStatus(ctx, task.ID, "failed", cause.Error(), nil); err != nil {
			w.logger.Printf("notify_worker: mark failed %d: %v", task.ID, err)
		}
		w.pushDeadLetter(ctx, task)
		return
	}

	nextDelay := w.retryPolicy.NextDelay(attempt)
	nextTime := time.Now().Add(nextDelay)
	if err := w.db.UpdateNotificationTaskStatus(ctx, task.ID, "retry", cause.Error(), &nextTime); err != nil {
		w.logger.Printf("notify_worker: mark retry %d: %v", task.ID, err)
	}
}

func (w *OutboxNotifier) pushRedis(ctx context.Context, task models.NotificationTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *OutboxNotifier) pushDeadLetter(ctx context.Context, task *models.NotificationTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Printf("notify_worker: encode deadletter %d: %v", task.ID, err)
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Printf("notify_worker: deadletter push %d: %v", task.ID, err)
	}
}
