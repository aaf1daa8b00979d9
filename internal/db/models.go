package db

import (
	"database/sql"
	"time"
)

type Dentist struct {
	ID       int
	FullName string
	Active   bool
}

type DentistHours struct {
	ID        int
	DentistID int
	Weekday   int // 0=Sunday .. 6=Saturday
	OpenMin   int
	CloseMin  int
}

type ClinicHours struct {
	ID       int
	Weekday  int
	IsOpen   bool
	OpenMin  int
	CloseMin int
	Capacity int
}

type ClinicOverride struct {
	ID       int
	Date     time.Time
	Closed   bool
	OpenMin  sql.NullInt64
	CloseMin sql.NullInt64
	Capacity sql.NullInt64
}

type ServiceDef struct {
	ID             int
	Name           string
	BaseMinutes    int
	PerUnitMinutes sql.NullInt64
	UnitCap        sql.NullInt64
}

type Patient struct {
	ID                 int
	FullName           string
	Email              string
	Phone              string
	Language           string
	PreferredDentistID sql.NullInt64
}

// Booking is the persisted aggregate the capacity engine protects. The
// engine owns the block range, status and dentist binding; payment fields
// are carried for the payment collaborators.
type Booking struct {
	ID              int
	Code            string
	PatientID       int
	ServiceID       int
	Units           sql.NullInt64
	Date            time.Time
	StartMin        int
	EndMin          int
	Status          string
	DentistID       sql.NullInt64
	HonorPreference bool
	PaymentMethod   string
	PaymentStatus   string
	StripeSessionID sql.NullString
	ReminderSent    bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
