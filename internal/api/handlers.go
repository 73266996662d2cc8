package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"karigar/internal/database"
	"karigar/internal/metrics"
	"karigar/internal/models"
	"karigar/internal/service"
)

const actorHeader = "X-Actor-Id"

func (s *HTTPServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("catalog")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": s.profiles.Catalog()})
}

func (s *HTTPServer) handleProfiles(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("profiles")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		UserID  string `json:"user_id"`
		Name    string `json:"name"`
		Role    string `json:"role"`
		Contact string `json:"contact"`
		City    string `json:"city"`
		Area    string `json:"area"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	profile := &models.Profile{
		UserID:  body.UserID,
		Name:    body.Name,
		Role:    body.Role,
		Contact: body.Contact,
		City:    body.City,
		Area:    body.Area,
	}
	if err := s.profiles.RegisterProfile(r.Context(), profile); err != nil {
		writeServiceError(w, err)
		return
	}

	stored, err := s.profiles.GetProfile(r.Context(), body.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *HTTPServer) handleProfileByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("profiles")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/api/v1/profiles/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	profile, err := s.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *HTTPServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("verify")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		UserID   string `json:"user_id"`
		IDNumber string `json:"id_number"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.UserID == "" || body.IDNumber == "" {
		writeError(w, http.StatusBadRequest, "user_id and id_number are required")
		return
	}

	verified, reason, err := s.profiles.VerifyProfile(r.Context(), body.UserID, body.IDNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := map[string]any{"verified": verified}
	if reason != "" {
		resp["reason"] = reason
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleProviders(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("providers")
	switch r.Method {
	case http.MethodGet:
		serviceType := strings.TrimSpace(r.URL.Query().Get("service_type"))
		providers, err := s.profiles.ListProviders(r.Context(), serviceType)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if providers == nil {
			providers = []*models.ServiceProfile{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"providers": providers})

	case http.MethodPost:
		actor := strings.TrimSpace(r.Header.Get(actorHeader))
		if actor == "" {
			writeError(w, http.StatusBadRequest, "X-Actor-Id header is required")
			return
		}

		var body struct {
			ServiceType string `json:"service_type"`
			Bio         string `json:"bio"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		sp, err := s.profiles.CreateServiceProfile(r.Context(), actor, body.ServiceType, body.Bio)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sp)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleProviderSub routes /api/v1/providers/{id} and its slots,
// availability and reviews subresources.
func (s *HTTPServer) handleProviderSub(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("providers")
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/providers/")
	parts := strings.SplitN(rest, "/", 2)
	id := strings.TrimSpace(parts[0])
	if id == "" {
		writeError(w, http.StatusBadRequest, "provider id is required")
		return
	}

	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		sp, err := s.profiles.GetServiceProfile(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sp)

	case sub == "slots" && r.Method == http.MethodGet:
		s.handleProviderSlots(w, r, id)

	case sub == "availability" && r.Method == http.MethodPut:
		s.handleProviderAvailability(w, r, id)

	case sub == "reviews" && r.Method == http.MethodGet:
		reviews, err := s.reviews.GetProfileReviews(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if reviews == nil {
			reviews = []*models.Review{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleProviderSlots(w http.ResponseWriter, r *http.Request, id string) {
	date, err := parseDateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.profiles.GetServiceProfile(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	offered, err := s.avail.DaySlots(r.Context(), id, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	taken, err := s.avail.OccupiedSlots(r.Context(), id, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	free, err := s.avail.AvailableSlots(r.Context(), id, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":      date.Format("2006-01-02"),
		"offered":   emptyIfNil(offered),
		"occupied":  emptyIfNil(taken),
		"available": emptyIfNil(free),
	})
}

func (s *HTTPServer) handleProviderAvailability(w http.ResponseWriter, r *http.Request, id string) {
	actor := strings.TrimSpace(r.Header.Get(actorHeader))
	if actor == "" {
		writeError(w, http.StatusBadRequest, "X-Actor-Id header is required")
		return
	}

	sp, err := s.profiles.GetServiceProfile(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sp.UserID != actor {
		writeError(w, http.StatusForbidden, "not the owner of this service profile")
		return
	}

	var body struct {
		DayOfWeek           int  `json:"day_of_week"`
		IsAvailable         bool `json:"is_available"`
		StartHour           int  `json:"start_hour"`
		EndHour             int  `json:"end_hour"`
		SlotDurationMinutes int  `json:"slot_duration_minutes"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tpl := &models.AvailabilityTemplate{
		ServiceProfileID:    id,
		DayOfWeek:           body.DayOfWeek,
		IsAvailable:         body.IsAvailable,
		StartHour:           body.StartHour,
		EndHour:             body.EndHour,
		SlotDurationMinutes: body.SlotDurationMinutes,
	}
	if err := s.profiles.SetAvailability(r.Context(), tpl); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")
	switch r.Method {
	case http.MethodPost:
		s.handleCreateBooking(w, r)

	case http.MethodGet:
		if code := strings.TrimSpace(r.URL.Query().Get("code")); code != "" {
			booking, err := s.bookings.GetBookingByCode(r.Context(), code)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, booking)
			return
		}

		actor := strings.TrimSpace(r.Header.Get(actorHeader))
		if actor == "" {
			writeError(w, http.StatusBadRequest, "X-Actor-Id header is required")
			return
		}

		var (
			list []*models.Booking
			err  error
		)
		if r.Header.Get("X-Actor-Role") == models.RoleProvider {
			list, err = s.bookings.GetProviderBookings(r.Context(), actor)
		} else {
			list, err = s.bookings.GetCustomerBookings(r.Context(), actor)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if list == nil {
			list = []*models.Booking{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": list})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	actor := strings.TrimSpace(r.Header.Get(actorHeader))
	if actor == "" {
		writeError(w, http.StatusBadRequest, "X-Actor-Id header is required")
		return
	}
	if !s.allowBookingWrite(r.Context(), actor) {
		writeError(w, http.StatusTooManyRequests, "too many booking requests")
		return
	}

	var body struct {
		ServiceProfileID string `json:"service_profile_id"`
		Date             string `json:"date"`
		TimeSlot         string `json:"time_slot"`
		ServiceNote      string `json:"service_note"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), service.CreateBookingRequest{
		CustomerID:       actor,
		ServiceProfileID: body.ServiceProfileID,
		Date:             date,
		TimeSlot:         body.TimeSlot,
		ServiceNote:      body.ServiceNote,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"booking":      booking,
		"booking_code": booking.DisplayCode(),
		"display_date": booking.Date.Format("January 2, 2006"),
	})
}

// handleBookingSub routes /api/v1/bookings/{id} and its lifecycle actions.
func (s *HTTPServer) handleBookingSub(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	parts := strings.SplitN(rest, "/", 2)
	id := strings.TrimSpace(parts[0])
	if id == "" {
		writeError(w, http.StatusBadRequest, "booking id is required")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	if action == "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		booking, err := s.bookings.GetBooking(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor := strings.TrimSpace(r.Header.Get(actorHeader))
	if actor == "" {
		writeError(w, http.StatusBadRequest, "X-Actor-Id header is required")
		return
	}
	if !s.allowBookingWrite(r.Context(), actor) {
		writeError(w, http.StatusTooManyRequests, "too many booking requests")
		return
	}

	var err error
	switch action {
	case "cancel":
		var body struct {
			Reason string `json:"reason"`
		}
		if decodeErr := decodeJSON(r, &body); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.bookings.CancelBooking(r.Context(), id, actor, body.Reason)

	case "reschedule":
		var body struct {
			Date     string `json:"date"`
			TimeSlot string `json:"time_slot"`
		}
		if decodeErr := decodeJSON(r, &body); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		date, parseErr := time.Parse("2006-01-02", body.Date)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		err = s.bookings.RescheduleBooking(r.Context(), id, actor, date, body.TimeSlot)

	case "accept":
		err = s.bookings.AcceptBooking(r.Context(), id, actor)

	case "decline":
		err = s.bookings.DeclineBooking(r.Context(), id, actor)

	case "complete":
		err = s.bookings.CompleteBooking(r.Context(), id, actor)

	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err != nil {
		writeServiceError(w, err)
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleReviews(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reviews")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor := strings.TrimSpace(r.Header.Get(actorHeader))
	if actor == "" {
		writeError(w, http.StatusBadRequest, "X-Actor-Id header is required")
		return
	}

	var body struct {
		ServiceProfileID string `json:"service_profile_id"`
		Rating           int    `json:"rating"`
		Comment          string `json:"comment"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	review := &models.Review{
		ServiceProfileID: body.ServiceProfileID,
		CustomerID:       actor,
		Rating:           body.Rating,
		Comment:          body.Comment,
	}
	if err := s.reviews.AddReview(r.Context(), review); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func parseDateParam(r *http.Request) (time.Time, error) {
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		return time.Time{}, errors.New("date is required")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, errors.New("invalid date format; expected YYYY-MM-DD")
	}
	return date, nil
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func emptyIfNil(slots []string) []string {
	if slots == nil {
		return []string{}
	}
	return slots
}

// writeServiceError maps domain sentinels onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrSlotTaken),
		errors.Is(err, database.ErrInvalidTransition),
		errors.Is(err, database.ErrCodeCollision):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrUnverified):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrPastDate),
		errors.Is(err, service.ErrDateTooFar),
		errors.Is(err, service.ErrDayUnavailable),
		errors.Is(err, service.ErrSlotNotOffered),
		errors.Is(err, service.ErrProviderUnavailable),
		errors.Is(err, service.ErrEmptyCancellationReason),
		errors.Is(err, service.ErrNoteTooLong),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidServiceType),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrEmptyName),
		errors.Is(err, service.ErrInvalidSchedule),
		errors.Is(err, service.ErrReviewWithoutBooking):
		writeError(w, http.StatusBadRequest, err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
