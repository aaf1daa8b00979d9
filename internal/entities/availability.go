package entities

// StartTimesRequest asks which block-start labels can still be booked for a
// service on a date. Units is required for per-unit services.
type StartTimesRequest struct {
	ServiceID       int    `json:"service_id"`
	Date            string `json:"date"` // YYYY-MM-DD
	Units           *int   `json:"units,omitempty"`
	PatientID       int    `json:"patient_id"`
	HonorPreference bool   `json:"honor_preference"`
}

type StartTimesResponse struct {
	Date       string   `json:"date"`
	ServiceID  int      `json:"service_id"`
	Blocks     int      `json:"blocks"`
	StartTimes []string `json:"start_times"`
}

// AdmissionCheckResponse mirrors one successful direct admission check;
// rejections are reported through the error response instead.
type AdmissionCheckResponse struct {
	Admissible      bool   `json:"admissible"`
	DentistID       int    `json:"dentist_id,omitempty"`
	HonorPreference bool   `json:"honor_preference"`
	StartTime       string `json:"start_time,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
}
