package domain

import (
	"context"
	"time"

	"reserveease/internal/models"
)

type Repository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.Status) error
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
}

type OutboxRepository interface {
	CreateNotificationTask(ctx context.Context, task *models.NotificationTask) error
	GetPendingNotificationTasks(ctx context.Context, limit int) ([]models.NotificationTask, error)
	UpdateNotificationTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// MessageSender is the outbound messaging transport (Twilio proxy).
type MessageSender interface {
	SendSMS(ctx context.Context, to, message string) error
	SendWhatsApp(ctx context.Context, to, message string) error
}

// Notifier fires customer notifications. Implementations are best-effort
// from the lifecycle's point of view: callers log and discard errors.
type Notifier interface {
	NotifyOnCreate(ctx context.Context, booking *models.Booking) error
	NotifyOnStatusChange(ctx context.Context, booking *models.Booking) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SessionRepository stores staff session tokens and tracks login attempts.
type SessionRepository interface {
	SetSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type BookingService interface {
	Create(ctx context.Context, draft *models.Booking) (*models.Booking, error)
	Transition(ctx context.Context, id string, newStatus models.Status) error
	List(ctx context.Context) ([]*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	Subscribe(fn func(bookings []*models.Booking)) func()
}

type AuthService interface {
	SignIn(ctx context.Context, email, password string) (string, error)
	SignOut(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.Session, error)
	OnSessionChange(fn func(session *models.Session))
}
