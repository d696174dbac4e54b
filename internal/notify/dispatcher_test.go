package notify

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"reserveease/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

func (m *mockSender) SendWhatsApp(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

func makeBooking(status models.Status, method models.ConfirmationMethod) *models.Booking {
	return &models.Booking{
		ID:                 "b-1",
		Name:               "Jo",
		Phone:              "555",
		Guests:             2,
		Date:               time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Time:               "18:00",
		Status:             status,
		ConfirmationMethod: method,
	}
}

func newTestDispatcher(sender *mockSender) *Dispatcher {
	logger := zerolog.New(io.Discard)
	return NewDispatcher(sender, &logger)
}

func TestTemplatesDeterministic(t *testing.T) {
	b := makeBooking(models.StatusAccepted, models.ConfirmSMS)
	b.Note = "window seat"

	for name, render := range map[string]func(*models.Booking) string{
		"pending":      PendingMessage,
		"confirmation": ConfirmationMessage,
		"rejection":    RejectionMessage,
		"waiting":      WaitingMessage,
	} {
		t.Run(name, func(t *testing.T) {
			first := render(b)
			second := render(b)
			assert.Equal(t, first, second)

			// Date, time and guest count appear verbatim.
			assert.Contains(t, first, "2025-01-01")
			assert.Contains(t, first, "18:00")
			assert.Contains(t, first, "2")
		})
	}
}

func TestTemplateFieldOrder(t *testing.T) {
	b := makeBooking(models.StatusAccepted, models.ConfirmSMS)
	b.Note = "quiet corner"

	msg := ConfirmationMessage(b)
	dateIdx := strings.Index(msg, "Date: 2025-01-01")
	timeIdx := strings.Index(msg, "Time: 18:00")
	guestsIdx := strings.Index(msg, "Guests: 2")
	noteIdx := strings.Index(msg, "Note: quiet corner")

	require.NotEqual(t, -1, dateIdx)
	assert.Less(t, dateIdx, timeIdx)
	assert.Less(t, timeIdx, guestsIdx)
	assert.Less(t, guestsIdx, noteIdx)
}

func TestConfirmationMessageOmitsEmptyNote(t *testing.T) {
	b := makeBooking(models.StatusAccepted, models.ConfirmSMS)
	msg := ConfirmationMessage(b)
	assert.NotContains(t, msg, "Note:")
	assert.Contains(t, msg, "CONFIRMED")
}

func TestPendingMessageText(t *testing.T) {
	b := makeBooking(models.StatusPending, models.ConfirmSMS)
	msg := PendingMessage(b)
	assert.Contains(t, msg, "PENDING REVIEW")
	assert.Contains(t, msg, "Hi Jo!")
}

func TestNotifyOnCreate(t *testing.T) {
	t.Run("SMS", func(t *testing.T) {
		sender := &mockSender{}
		d := newTestDispatcher(sender)
		b := makeBooking(models.StatusPending, models.ConfirmSMS)

		sender.On("SendSMS", mock.Anything, "555", mock.MatchedBy(func(msg string) bool {
			return strings.Contains(msg, "PENDING REVIEW")
		})).Return(nil).Once()

		require.NoError(t, d.NotifyOnCreate(context.Background(), b))
		sender.AssertExpectations(t)
		sender.AssertNotCalled(t, "SendWhatsApp", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("WhatsApp", func(t *testing.T) {
		sender := &mockSender{}
		d := newTestDispatcher(sender)
		b := makeBooking(models.StatusPending, models.ConfirmWhatsApp)

		sender.On("SendWhatsApp", mock.Anything, "555", mock.Anything).Return(nil).Once()

		require.NoError(t, d.NotifyOnCreate(context.Background(), b))
		sender.AssertExpectations(t)
	})

	t.Run("EmailIsNoop", func(t *testing.T) {
		sender := &mockSender{}
		d := newTestDispatcher(sender)
		b := makeBooking(models.StatusPending, models.ConfirmEmail)

		require.NoError(t, d.NotifyOnCreate(context.Background(), b))
		sender.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
		sender.AssertNotCalled(t, "SendWhatsApp", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNotifyOnStatusChangeDispatchTable(t *testing.T) {
	sendsMessage := map[models.Status]string{
		models.StatusAccepted: "CONFIRMED",
		models.StatusRejected: "cannot accommodate",
		models.StatusWaiting:  "WAITING LIST",
	}

	for status, marker := range sendsMessage {
		t.Run(string(status), func(t *testing.T) {
			sender := &mockSender{}
			d := newTestDispatcher(sender)
			b := makeBooking(status, models.ConfirmSMS)

			sender.On("SendSMS", mock.Anything, "555", mock.MatchedBy(func(msg string) bool {
				return strings.Contains(msg, marker)
			})).Return(nil).Once()

			require.NoError(t, d.NotifyOnStatusChange(context.Background(), b))
			sender.AssertExpectations(t)
		})
	}

	for _, status := range []models.Status{models.StatusPending, models.StatusCompleted} {
		t.Run("silent_"+string(status), func(t *testing.T) {
			sender := &mockSender{}
			d := newTestDispatcher(sender)
			b := makeBooking(status, models.ConfirmSMS)

			require.NoError(t, d.NotifyOnStatusChange(context.Background(), b))
			sender.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestNotifyNoopConditions(t *testing.T) {
	t.Run("EmptyPhone", func(t *testing.T) {
		sender := &mockSender{}
		d := newTestDispatcher(sender)
		b := makeBooking(models.StatusAccepted, models.ConfirmSMS)
		b.Phone = ""

		require.NoError(t, d.NotifyOnStatusChange(context.Background(), b))
		sender.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingMethod", func(t *testing.T) {
		sender := &mockSender{}
		d := newTestDispatcher(sender)
		b := makeBooking(models.StatusAccepted, "")

		require.NoError(t, d.NotifyOnStatusChange(context.Background(), b))
		sender.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNotifySurfacesTransportError(t *testing.T) {
	sender := &mockSender{}
	d := newTestDispatcher(sender)
	b := makeBooking(models.StatusAccepted, models.ConfirmSMS)

	sender.On("SendSMS", mock.Anything, "555", mock.Anything).Return(errors.New("proxy down")).Once()

	err := d.NotifyOnStatusChange(context.Background(), b)
	assert.EqualError(t, err, "proxy down")
}
