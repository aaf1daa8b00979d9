package entities

type BookingEmailData struct {
	PatientName    string
	BookingCode    string
	ServiceName    string
	DentistName    string
	DateFormatted  string
	StartFormatted string
	EndFormatted   string
	CurrentYear    int
	Language       string
	Status         string
}
