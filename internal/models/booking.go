package models

import "time"

type Booking struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Phone              string             `json:"phone"`
	Email              string             `json:"email,omitempty"`
	Guests             int                `json:"guests"`
	Date               time.Time          `json:"date"`
	Time               string             `json:"time"`
	Note               string             `json:"note,omitempty"`
	Status             Status             `json:"status"`
	ConfirmationMethod ConfirmationMethod `json:"confirmation_method,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// DateString renders the reservation date the way it is stored and shown
// to the customer.
func (b *Booking) DateString() string {
	return b.Date.Format("2006-01-02")
}
