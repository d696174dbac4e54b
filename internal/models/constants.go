package models

import "fmt"

// ConfirmationMethod is chosen once at creation and never altered.
type ConfirmationMethod string

const (
	ConfirmSMS      ConfirmationMethod = "SMS"
	ConfirmWhatsApp ConfirmationMethod = "WhatsApp"
	ConfirmEmail    ConfirmationMethod = "Email"
)

func ParseConfirmationMethod(s string) (ConfirmationMethod, error) {
	switch ConfirmationMethod(s) {
	case ConfirmSMS, ConfirmWhatsApp, ConfirmEmail:
		return ConfirmationMethod(s), nil
	}
	return "", fmt.Errorf("unknown confirmation method: %q", s)
}

// TimeSlots is the fixed set of reservation slots offered to customers.
var TimeSlots = []string{
	"17:00", "17:30",
	"18:00", "18:30",
	"19:00", "19:30",
	"20:00", "20:30",
}

func IsValidTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

const (
	// DefaultSessionTTL время жизни админской сессии
	DefaultSessionTTL = 12 * 60 * 60 // 12 часов в секундах

	// WorkerQueueSize размер очереди воркера уведомлений
	WorkerQueueSize = 128

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 20

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 минута в секундах

	// DefaultCountryCode подставляется для WhatsApp-номеров без префикса "+"
	DefaultCountryCode = "+1"
)
