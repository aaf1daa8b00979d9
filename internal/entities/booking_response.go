package entities

import "time"

type BookingResponse struct {
	Code            string    `json:"code"`
	PatientID       int       `json:"patient_id"`
	PatientName     string    `json:"patient_name,omitempty"`
	PatientEmail    string    `json:"patient_email,omitempty"`
	PatientPhone    string    `json:"patient_phone,omitempty"`
	ServiceID       int       `json:"service_id"`
	ServiceName     string    `json:"service_name,omitempty"`
	Units           *int      `json:"units,omitempty"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	Status          string    `json:"status"`
	DentistID       int       `json:"dentist_id,omitempty"`
	DentistName     string    `json:"dentist_name,omitempty"`
	HonorPreference bool      `json:"honor_preference"`
	PaymentMethod   string    `json:"payment_method"`
	PaymentStatus   string    `json:"payment_status"`
	Language        string    `json:"language,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateBookingResponse carries the new booking code and, for online
// payment, the Stripe checkout session the patient is redirected to.
type CreateBookingResponse struct {
	Code            string `json:"code"`
	Status          string `json:"status"`
	DentistID       int    `json:"dentist_id,omitempty"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	CheckoutURL     string `json:"checkout_url,omitempty"`
	StripeSessionID string `json:"stripe_session_id,omitempty"`
}

type BookingsList struct {
	Total    int               `json:"total"`
	Bookings []BookingResponse `json:"bookings"`
}
