package notify

import (
	"fmt"

	"reserveease/internal/models"
)

// Message templates are pure functions of the booking: same input, same
// bytes out. Field order is fixed: date, time, guest count, optional note.

func PendingMessage(b *models.Booking) string {
	return fmt.Sprintf(`🍽️ ReserveEase

Hi %s!

We've received your reservation request:
📅 Date: %s
🕐 Time: %s
👥 Guests: %d

Status: PENDING REVIEW

We'll confirm your reservation shortly!`, b.Name, b.DateString(), b.Time, b.Guests)
}

func ConfirmationMessage(b *models.Booking) string {
	note := ""
	if b.Note != "" {
		note = fmt.Sprintf("📝 Note: %s", b.Note)
	}
	return fmt.Sprintf(`🍽️ ReserveEase Confirmation

Hi %s!

Your reservation has been CONFIRMED:
📅 Date: %s
🕐 Time: %s
👥 Guests: %d
%s

We look forward to serving you!

Need to change? Call us at our restaurant number.`, b.Name, b.DateString(), b.Time, b.Guests, note)
}

func RejectionMessage(b *models.Booking) string {
	return fmt.Sprintf(`🍽️ ReserveEase Update

Hi %s,

Unfortunately, we cannot accommodate your reservation for:
📅 Date: %s
🕐 Time: %s
👥 Guests: %d

Please call us to discuss alternative times or dates.

Thank you for understanding!`, b.Name, b.DateString(), b.Time, b.Guests)
}

func WaitingMessage(b *models.Booking) string {
	return fmt.Sprintf(`🍽️ ReserveEase Update

Hi %s!

Your reservation is on our WAITING LIST:
📅 Date: %s
🕐 Time: %s
👥 Guests: %d

We'll notify you immediately if a spot opens up!

Thank you for your patience.`, b.Name, b.DateString(), b.Time, b.Guests)
}
