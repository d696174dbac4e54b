package notify

import (
	"context"

	"reserveease/internal/domain"
	"reserveease/internal/metrics"
	"reserveease/internal/models"

	"github.com/rs/zerolog"
)

const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)

// Plan is a rendered message bound to a delivery channel and destination.
type Plan struct {
	Channel string
	To      string
	Message string
}

// PlanOnCreate decides whether the initial "pending review" message is owed
// and renders it. ok is false when the dispatcher must stay silent.
func PlanOnCreate(b *models.Booking) (Plan, bool) {
	channel, ok := channelFor(b)
	if !ok {
		return Plan{}, false
	}
	return Plan{Channel: channel, To: b.Phone, Message: PendingMessage(b)}, true
}

// PlanOnStatusChange renders the message owed for the booking's current
// (post-update) status. Pending and Completed carry no message.
func PlanOnStatusChange(b *models.Booking) (Plan, bool) {
	channel, ok := channelFor(b)
	if !ok {
		return Plan{}, false
	}

	var message string
	switch b.Status {
	case models.StatusAccepted:
		message = ConfirmationMessage(b)
	case models.StatusRejected:
		message = RejectionMessage(b)
	case models.StatusWaiting:
		message = WaitingMessage(b)
	default:
		return Plan{}, false
	}

	return Plan{Channel: channel, To: b.Phone, Message: message}, true
}

// channelFor is a no-op signal for Email confirmations (not implemented
// for status notifications), a missing method, or an empty phone.
func channelFor(b *models.Booking) (string, bool) {
	if b.Phone == "" {
		return "", false
	}
	switch b.ConfirmationMethod {
	case models.ConfirmSMS:
		return ChannelSMS, true
	case models.ConfirmWhatsApp:
		return ChannelWhatsApp, true
	}
	return "", false
}

// Dispatcher hands rendered messages to the messaging transport inline.
// Exactly one transport call per notification.
type Dispatcher struct {
	sender domain.MessageSender
	logger *zerolog.Logger
}

func NewDispatcher(sender domain.MessageSender, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, logger: logger}
}

func (d *Dispatcher) NotifyOnCreate(ctx context.Context, booking *models.Booking) error {
	plan, ok := PlanOnCreate(booking)
	if !ok {
		return nil
	}
	return d.send(ctx, booking, plan)
}

func (d *Dispatcher) NotifyOnStatusChange(ctx context.Context, booking *models.Booking) error {
	plan, ok := PlanOnStatusChange(booking)
	if !ok {
		return nil
	}
	return d.send(ctx, booking, plan)
}

func (d *Dispatcher) send(ctx context.Context, booking *models.Booking, plan Plan) error {
	var err error
	switch plan.Channel {
	case ChannelWhatsApp:
		err = d.sender.SendWhatsApp(ctx, plan.To, plan.Message)
	default:
		err = d.sender.SendSMS(ctx, plan.To, plan.Message)
	}
	if err != nil {
		metrics.IncNotificationFailed(plan.Channel)
		return err
	}

	metrics.IncNotificationSent(plan.Channel)
	d.logger.Info().
		Str("booking_id", booking.ID).
		Str("channel", plan.Channel).
		Str("status", string(booking.Status)).
		Msg("notification sent")
	return nil
}
