package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"citasdental/internal/db"
	"citasdental/internal/entities"
	"citasdental/internal/repository"
	"citasdental/internal/scheduling"
	"citasdental/internal/service"
)

// StaffHandler serves the protected clinic-staff endpoints: the approval
// queue, schedule administration and walk-in conversions.
type StaffHandler struct {
	Service  *service.BookingService
	Schedule *repository.ScheduleRepository
}

func NewStaffHandler(svc *service.BookingService, schedule *repository.ScheduleRepository) *StaffHandler {
	return &StaffHandler{Service: svc, Schedule: schedule}
}

func (h *StaffHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	status := r.URL.Query().Get("status")
	dentistID, _ := strconv.Atoi(r.URL.Query().Get("dentist_id"))

	bookings, err := h.Service.ListBookings(date, status, dentistID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entities.BookingsList{Total: len(bookings), Bookings: bookings})
}

// CreateBooking converts a walk-in: same pipeline as the public endpoint
// but with the staff window, which allows same-day dates.
func (h *StaffHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	resp, err := h.Service.CreateBooking(&req, scheduling.StaffWindow, time.Now())
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *StaffHandler) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if err := h.Service.ApproveBooking(code); err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking approved"})
}

func (h *StaffHandler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req entities.RejectRequest
	json.NewDecoder(r.Body).Decode(&req)
	if err := h.Service.RejectBooking(code, req.Reason); err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking rejected"})
}

func (h *StaffHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req entities.CancelRequest
	json.NewDecoder(r.Body).Decode(&req)
	if err := h.Service.CancelBooking(code, req.Reason); err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled"})
}

// SendReminder triggers a manual reminder for an approved booking. The
// compare-and-set guard makes it idempotent against the cron sweep and
// against double clicks.
func (h *StaffHandler) SendReminder(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if err := h.Service.SendReminder(code); err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reminder sent"})
}

func (h *StaffHandler) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req entities.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Service.RescheduleBooking(code, &req, scheduling.StaffWindow, time.Now()); err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking rescheduled, pending approval"})
}

func (h *StaffHandler) UpdateClinicHours(w http.ResponseWriter, r *http.Request) {
	weekday, err := strconv.Atoi(mux.Vars(r)["weekday"])
	if err != nil || weekday < 0 || weekday > 6 {
		http.Error(w, "Invalid weekday", http.StatusBadRequest)
		return
	}
	var req entities.ClinicHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	open, err := scheduling.ParseTimeOfDay(req.OpenTime)
	if err != nil {
		http.Error(w, "Invalid open_time", http.StatusBadRequest)
		return
	}
	close, err := scheduling.ParseTimeOfDay(req.CloseTime)
	if err != nil {
		http.Error(w, "Invalid close_time", http.StatusBadRequest)
		return
	}
	err = h.Schedule.UpsertClinicHours(db.ClinicHours{
		Weekday:  weekday,
		IsOpen:   req.IsOpen,
		OpenMin:  open.Minutes(),
		CloseMin: close.Minutes(),
		Capacity: req.Capacity,
	})
	if err != nil {
		http.Error(w, "Could not update clinic hours", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Clinic hours updated"})
}

func (h *StaffHandler) UpdateOverride(w http.ResponseWriter, r *http.Request) {
	var req entities.ClinicOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	override := db.ClinicOverride{Date: date, Closed: req.Closed}
	if req.OpenTime != "" {
		open, err := scheduling.ParseTimeOfDay(req.OpenTime)
		if err != nil {
			http.Error(w, "Invalid open_time", http.StatusBadRequest)
			return
		}
		override.OpenMin = sql.NullInt64{Int64: int64(open.Minutes()), Valid: true}
	}
	if req.CloseTime != "" {
		close, err := scheduling.ParseTimeOfDay(req.CloseTime)
		if err != nil {
			http.Error(w, "Invalid close_time", http.StatusBadRequest)
			return
		}
		override.CloseMin = sql.NullInt64{Int64: int64(close.Minutes()), Valid: true}
	}
	if req.Capacity != nil {
		override.Capacity = sql.NullInt64{Int64: int64(*req.Capacity), Valid: true}
	}

	if err := h.Schedule.UpsertOverride(override); err != nil {
		http.Error(w, "Could not update override", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Override saved"})
}

func (h *StaffHandler) ListDentists(w http.ResponseWriter, r *http.Request) {
	dentists, err := h.Schedule.ListDentists()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dentists)
}

func (h *StaffHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.Schedule.ListServices()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, services)
}
