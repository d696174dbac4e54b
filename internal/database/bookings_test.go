package database

import (
	"context"
	"testing"
	"time"

	"reserveease/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testBooking() *models.Booking {
	return &models.Booking{
		Name:               "Jo",
		Phone:              "555",
		Guests:             2,
		Date:               time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Time:               "18:00",
		Status:             models.StatusPending,
		ConfirmationMethod: models.ConfirmSMS,
	}
}

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	booking := testBooking()
	booking.Email = "jo@example.com"
	booking.Note = "window table please"

	err := db.CreateBooking(ctx, booking)
	require.NoError(t, err)
	require.NotEmpty(t, booking.ID)
	assert.False(t, booking.CreatedAt.IsZero())

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)
	assert.Equal(t, "Jo", got.Name)
	assert.Equal(t, "555", got.Phone)
	assert.Equal(t, "jo@example.com", got.Email)
	assert.Equal(t, 2, got.Guests)
	assert.Equal(t, "2025-01-01", got.DateString())
	assert.Equal(t, "18:00", got.Time)
	assert.Equal(t, "window table please", got.Note)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, models.ConfirmSMS, got.ConfirmationMethod)
}

func TestGetBookingNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetBooking(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestUpdateBookingStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	booking := testBooking()
	require.NoError(t, db.CreateBooking(ctx, booking))

	err := db.UpdateBookingStatus(ctx, booking.ID, models.StatusAccepted)
	require.NoError(t, err)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)

	// Only the status field changed.
	assert.Equal(t, booking.Name, got.Name)
	assert.Equal(t, booking.Phone, got.Phone)
	assert.Equal(t, booking.Guests, got.Guests)
	assert.Equal(t, booking.DateString(), got.DateString())
	assert.Equal(t, booking.Time, got.Time)
	assert.Equal(t, booking.ConfirmationMethod, got.ConfirmationMethod)
}

func TestUpdateBookingStatusNotFound(t *testing.T) {
	db := setupTestDB(t)

	err := db.UpdateBookingStatus(context.Background(), "missing", models.StatusAccepted)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListBookingsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := testBooking()
	require.NoError(t, db.CreateBooking(ctx, first))

	time.Sleep(5 * time.Millisecond)

	second := testBooking()
	second.Name = "Sam"
	require.NoError(t, db.CreateBooking(ctx, second))

	bookings, err := db.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "Sam", bookings[0].Name)
	assert.Equal(t, "Jo", bookings[1].Name)
}

func TestGetBookingsByDateRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	inRange := testBooking()
	require.NoError(t, db.CreateBooking(ctx, inRange))

	outOfRange := testBooking()
	outOfRange.Date = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.CreateBooking(ctx, outOfRange))

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	bookings, err := db.GetBookingsByDateRange(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, inRange.ID, bookings[0].ID)
}
