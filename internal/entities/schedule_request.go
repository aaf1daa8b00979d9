package entities

// ClinicHoursRequest updates the weekly template for one weekday.
type ClinicHoursRequest struct {
	IsOpen    bool   `json:"is_open"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Capacity  int    `json:"capacity"`
}

// ClinicOverrideRequest replaces the template for a single calendar date.
// Empty time fields keep the weekday values; Capacity nil keeps the weekday
// capacity.
type ClinicOverrideRequest struct {
	Date      string `json:"date"`
	Closed    bool   `json:"closed"`
	OpenTime  string `json:"open_time,omitempty"`
	CloseTime string `json:"close_time,omitempty"`
	Capacity  *int   `json:"capacity,omitempty"`
}
