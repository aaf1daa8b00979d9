package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"citasdental/internal/scheduling"
)

// ErrorResponse is the JSON shape of every rejection. Reason is the stable
// taxonomy name, Detail the offending block or dentist when one exists.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeBookingError maps the rejection taxonomy onto HTTP statuses. All of
// these are expected outcomes; anything unrecognized is a 500.
func writeBookingError(w http.ResponseWriter, err error) {
	var (
		invalidStart *scheduling.InvalidStartTimeError
		slotFull     *scheduling.SlotFullError
		prefConflict *scheduling.PreferredDentistConflictError
		unitsReq     *scheduling.UnitsRequiredError
		window       *scheduling.OutsideBookingWindowError
		overlap      *scheduling.PatientOverlapError
		processed    *scheduling.AlreadyProcessedError
	)

	switch {
	case errors.Is(err, scheduling.ErrClinicClosed):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Reason: "clinic_closed"})
	case errors.As(err, &invalidStart):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(), Reason: "invalid_start_time", Detail: invalidStart.Start.String()})
	case errors.As(err, &window):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(), Reason: "outside_booking_window"})
	case errors.As(err, &unitsReq):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(), Reason: "units_required"})
	case errors.As(err, &slotFull):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: err.Error(), Reason: "slot_full", Detail: slotFull.Block.String()})
	case errors.As(err, &prefConflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: err.Error(), Reason: "preferred_dentist_conflict"})
	case errors.Is(err, scheduling.ErrNoDentistAvailable):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Reason: "no_dentist_available"})
	case errors.As(err, &overlap):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: err.Error(), Reason: "patient_overlap"})
	case errors.As(err, &processed):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: err.Error(), Reason: "already_processed", Detail: processed.Status})
	case errors.Is(err, scheduling.ErrReminderAlreadySent):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Reason: "reminder_already_sent"})
	default:
		log.Printf("Unexpected booking error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
