package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"citasdental/internal/entities"
	"citasdental/internal/scheduling"
	"citasdental/internal/service"
)

// BookingHandler serves the patient-facing endpoints. All capacity
// decisions happen in the service; handlers only translate HTTP.
type BookingHandler struct {
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) ListStartTimes(w http.ResponseWriter, r *http.Request) {
	var req entities.StartTimesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	resp, err := h.Service.ListValidStartTimes(&req)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) CheckAdmission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		entities.StartTimesRequest
		StartTime string `json:"start_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	admission, err := h.Service.CheckAdmission(&req.StartTimesRequest, req.StartTime)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.AdmissionCheckResponse{
		Admissible:      true,
		DentistID:       admission.DentistID,
		HonorPreference: admission.HonorPreference,
		StartTime:       admission.Start.String(),
		EndTime:         admission.End.String(),
	})
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	resp, err := h.Service.CreateBooking(&req, scheduling.PatientWindow, time.Now())
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	res, err := h.Service.GetBooking(code)
	if err != nil {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BookingHandler) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req entities.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Service.RescheduleBooking(code, &req, scheduling.PatientWindow, time.Now()); err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking rescheduled, pending approval"})
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req entities.CancelRequest
	json.NewDecoder(r.Body).Decode(&req)
	if err := h.Service.CancelBooking(code, req.Reason); err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled"})
}
