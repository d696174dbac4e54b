package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"reserveease/internal/database"
	"reserveease/internal/models"
	"reserveease/internal/service"
)

const (
	TabRequests = "requests"
	TabOngoing  = "ongoing"
	TabHistory  = "history"
)

type bookingRequest struct {
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	Guests             int    `json:"guests"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	Note               string `json:"note"`
	ConfirmationMethod string `json:"confirmation_method"`

	// Status принимается, но игнорируется: новое бронирование всегда Pending.
	Status string `json:"status"`
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodGet:
		s.listBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// createBooking is the public submission endpoint behind the customer form.
func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	var body bookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(body.Date))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	var method models.ConfirmationMethod
	if body.ConfirmationMethod != "" {
		parsed, err := models.ParseConfirmationMethod(body.ConfirmationMethod)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown confirmation method")
			return
		}
		method = parsed
	}

	draft := &models.Booking{
		Name:               strings.TrimSpace(body.Name),
		Phone:              strings.TrimSpace(body.Phone),
		Email:              strings.TrimSpace(body.Email),
		Guests:             body.Guests,
		Date:               date,
		Time:               strings.TrimSpace(body.Time),
		Note:               strings.TrimSpace(body.Note),
		ConfirmationMethod: method,
	}

	booking, err := s.bookings.Create(r.Context(), draft)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDraft) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create booking")
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

// listBookings serves the staff panel; requires a session and supports the
// requests/ongoing/history tabs.
func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	if err := s.authenticate(r); err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	bookings, err := s.bookings.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	tab := strings.TrimSpace(r.URL.Query().Get("tab"))
	if tab != "" {
		filtered, ok := filterByTab(bookings, tab)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown tab")
			return
		}
		bookings = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func filterByTab(bookings []*models.Booking, tab string) ([]*models.Booking, bool) {
	var keep func(models.Status) bool
	switch tab {
	case TabRequests:
		keep = func(st models.Status) bool { return st == models.StatusPending }
	case TabOngoing:
		keep = func(st models.Status) bool { return st == models.StatusAccepted || st == models.StatusWaiting }
	case TabHistory:
		keep = func(st models.Status) bool { return st == models.StatusCompleted || st == models.StatusRejected }
	default:
		return nil, false
	}

	out := make([]*models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if keep(b.Status) {
			out = append(out, b)
		}
	}
	return out, true
}

// handleBookingStatus serves POST /api/v1/bookings/{id}/status.
func (s *HTTPServer) handleBookingStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/bookings/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	id, ok := strings.CutSuffix(rest, "/status")
	id = strings.TrimSpace(id)
	if !ok || id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.authenticate(r); err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	status, err := models.ParseStatus(body.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	if err := s.bookings.Transition(r.Context(), id, status); err != nil {
		switch {
		case errors.Is(err, database.ErrBookingNotFound):
			writeError(w, http.StatusNotFound, "booking not found")
		case errors.Is(err, models.ErrIllegalTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update status")
		}
		return
	}

	booking, err := s.bookings.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load booking")
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// handleSlots lists the reservable half-hour slots for the booking form.
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": models.TimeSlots})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, err := s.auth.SignIn(r.Context(), strings.TrimSpace(body.Email), body.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyAttempts):
			writeError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "sign-in failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := s.auth.SignOut(r.Context(), token); err != nil {
		writeError(w, http.StatusInternalServerError, "sign-out failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
