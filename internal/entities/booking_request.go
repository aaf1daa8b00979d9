package entities

// CreateBookingRequest is the patient-facing creation payload. StartTime is
// a grid label like "08:30". PaymentMethod is "onsite" or "online".
type CreateBookingRequest struct {
	PatientID       int    `json:"patient_id"`
	ServiceID       int    `json:"service_id"`
	Units           *int   `json:"units,omitempty"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	HonorPreference bool   `json:"honor_preference"`
	PaymentMethod   string `json:"payment_method"`
	Language        string `json:"language"`
}

// RescheduleRequest moves an existing booking to a new date and start.
// HonorPreference, when present, replaces the flag captured at creation.
type RescheduleRequest struct {
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	HonorPreference *bool  `json:"honor_preference,omitempty"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}
