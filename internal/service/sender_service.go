package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"citasdental/internal/entities"
	"citasdental/internal/utils"
)

type SenderService struct {
}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func (s *SenderService) SendBookingEmail(booking entities.BookingResponse, status string) {
	italyLoc, errLoc := time.LoadLocation("Europe/Rome")
	if errLoc != nil {
		italyLoc = time.FixedZone("CET", 1*60*60) // fallback CET
	}

	lang := utils.NormalizeLanguage(booking.Language)
	emailData := entities.BookingEmailData{
		PatientName:    booking.PatientName,
		BookingCode:    booking.Code,
		ServiceName:    booking.ServiceName,
		DentistName:    booking.DentistName,
		DateFormatted:  booking.Date,
		StartFormatted: booking.StartTime,
		EndFormatted:   booking.EndTime,
		CurrentYear:    time.Now().In(italyLoc).Year(),
		Language:       lang,
		Status:         status,
	}

	var emailSubject, plainTextBody string
	switch lang {
	case "es":
		emailSubject = fmt.Sprintf("Tu cita en SorrisoDental está %s - Código: %s", status, emailData.BookingCode)
		plainTextBody = fmt.Sprintf(
			"Hola %s,\n\nTu cita en SorrisoDental está %s.\n\n"+
				"Detalles de la cita:\n"+
				"Código: %s\n"+
				"Tratamiento: %s\n"+
				"Dentista: %s\n"+
				"Fecha: %s\n"+
				"Horario: %s - %s\n\n"+
				"Gracias por elegir SorrisoDental.\n\n"+
				"SorrisoDental. Todos los derechos reservados.",
			emailData.PatientName, status, emailData.BookingCode, emailData.ServiceName,
			emailData.DentistName, emailData.DateFormatted, emailData.StartFormatted, emailData.EndFormatted,
		)
	case "it":
		emailSubject = fmt.Sprintf("Il tuo appuntamento SorrisoDental è %s - Codice: %s", status, emailData.BookingCode)
		plainTextBody = fmt.Sprintf(
			"Ciao %s,\n\nIl tuo appuntamento presso SorrisoDental è %s.\n\n"+
				"Dettagli dell'appuntamento:\n"+
				"Codice: %s\n"+
				"Trattamento: %s\n"+
				"Dentista: %s\n"+
				"Data: %s\n"+
				"Orario: %s - %s\n\n"+
				"Grazie per aver scelto SorrisoDental.\n\n"+
				"SorrisoDental. Tutti i diritti riservati.",
			emailData.PatientName, status, emailData.BookingCode, emailData.ServiceName,
			emailData.DentistName, emailData.DateFormatted, emailData.StartFormatted, emailData.EndFormatted,
		)
	default:
		emailSubject = fmt.Sprintf("Your SorrisoDental appointment is %s - Code: %s", status, emailData.BookingCode)
		plainTextBody = fmt.Sprintf(
			"Hello %s,\n\nYour appointment at SorrisoDental is %s.\n\n"+
				"Appointment details:\n"+
				"Code: %s\n"+
				"Treatment: %s\n"+
				"Dentist: %s\n"+
				"Date: %s\n"+
				"Time: %s - %s\n\n"+
				"Thank you for choosing SorrisoDental.\n\n"+
				"SorrisoDental. All rights reserved.",
			emailData.PatientName, status, emailData.BookingCode, emailData.ServiceName,
			emailData.DentistName, emailData.DateFormatted, emailData.StartFormatted, emailData.EndFormatted,
		)
	}

	tmplPath := filepath.Join("internal", "templates", "booking_email.html")
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		log.Printf("ALERT: could not parse booking email template (%s): %v", tmplPath, err)
	}

	var htmlBody string
	if tmpl != nil {
		var htmlBodyBuffer bytes.Buffer
		if err := tmpl.Execute(&htmlBodyBuffer, emailData); err != nil {
			log.Printf("ALERT: could not render booking email template for %s: %v", emailData.BookingCode, err)
		}
		htmlBody = htmlBodyBuffer.String()
	}

	go func(toEmail, patientName, subject, plainBody, htmlBodyContent string) {
		errEmail := SendEmailWithSendGrid(toEmail, patientName, subject, plainBody, htmlBodyContent)
		if errEmail != nil {
			log.Printf("ALERT (async): email delivery failed for booking %s: %v", emailData.BookingCode, errEmail)
		}
	}(booking.PatientEmail, emailData.PatientName, emailSubject, plainTextBody, htmlBody)
}

func (s *SenderService) SendBookingSMS(booking entities.BookingResponse, status string) {
	var smsMessage string
	switch utils.NormalizeLanguage(booking.Language) {
	case "es":
		smsMessage = fmt.Sprintf("SorrisoDental: ¡Tu cita %s está %s!\nFecha: %s %s.\nMás detalles en tu correo.",
			booking.Code, status, booking.Date, booking.StartTime)
	case "it":
		smsMessage = fmt.Sprintf("SorrisoDental: Il tuo appuntamento %s è %s!\nData: %s %s.\nAltri dettagli nella tua email.",
			booking.Code, status, booking.Date, booking.StartTime)
	default:
		smsMessage = fmt.Sprintf("SorrisoDental: Appointment %s is %s!\nDate: %s %s.\nMore details in your email.",
			booking.Code, status, booking.Date, booking.StartTime)
	}

	errSMS := SendSMS(booking.PatientPhone, smsMessage)
	if errSMS != nil {
		log.Printf("ALERT: booking %s processed, but the SMS to %s failed: %v", booking.Code, booking.PatientPhone, errSMS)
	}
}

// StatusTranslation translates a booking status for patient-facing messages.
func StatusTranslation(status, lang string) string {
	switch utils.NormalizeLanguage(lang) {
	case "es":
		switch status {
		case "pending":
			return "pendiente"
		case "approved":
			return "confirmada"
		case "rejected":
			return "rechazada"
		case "completed":
			return "completada"
		case "cancelled", "canceled":
			return "cancelada"
		}
	case "it":
		switch status {
		case "pending":
			return "in attesa"
		case "approved":
			return "confermato"
		case "rejected":
			return "rifiutato"
		case "completed":
			return "completato"
		case "cancelled", "canceled":
			return "annullato"
		}
	}
	// Default: English
	return status
}
