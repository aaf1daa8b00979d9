package service

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"citasdental/internal/db"
	"citasdental/internal/entities"
	"citasdental/internal/repository"
	"citasdental/internal/scheduling"
)

const dateLayout = "2006-01-02"

// BookingService owns the booking lifecycle: every capacity-sensitive
// operation (create, approve, reschedule) runs its check-then-write as one
// transaction, re-reading the date's active bookings under a per-day
// advisory lock immediately before deciding. "Now" is always an explicit
// parameter so booking-window and reminder checks are deterministic in tests.
// DepositService is the payment collaborator for deposit checkout sessions.
// *StripeService is the production implementation.
type DepositService interface {
	CreateDepositSession(bookingCode, customerEmail, language string) (string, string, error)
	ExpireSession(sessionID string) error
	RefundBySessionID(sessionID string) error
}

type BookingService struct {
	Repo          *repository.BookingRepository
	Schedule      *repository.ScheduleRepository
	stripeService DepositService
	sender        *SenderService
}

func NewBookingService(repo *repository.BookingRepository, schedule *repository.ScheduleRepository,
	stripeService DepositService, sender *SenderService) *BookingService {
	return &BookingService{
		Repo:          repo,
		Schedule:      schedule,
		stripeService: stripeService,
		sender:        sender,
	}
}

// checkOptions assembles the per-admission options: the patient's resolved
// preference (when honored and not overridden by a forced dentist) and that
// dentist's custom hours for the weekday.
func (s *BookingService) checkOptions(patientID int, date time.Time, honorPreference bool,
	units *int, excludeBookingID, forceDentistID int) (scheduling.CheckOptions, error) {

	opts := scheduling.CheckOptions{
		Units:            units,
		ExcludeBookingID: excludeBookingID,
		ForceDentistID:   forceDentistID,
		HonorPreference:  honorPreference,
	}
	if honorPreference && forceDentistID == 0 {
		preferred, err := s.Schedule.PreferredDentist(patientID)
		if err != nil {
			return opts, err
		}
		opts.PreferredDentistID = preferred
		if preferred != 0 {
			hours, err := s.Schedule.DentistHoursFor(preferred, date.Weekday())
			if err != nil {
				return opts, err
			}
			opts.PreferredHours = hours
		}
	}
	return opts, nil
}

// admit runs the shared admission pipeline plus the patient overlap guard
// against claims read inside the caller's transaction.
func (s *BookingService) admit(tx *sql.Tx, svc scheduling.Service, patientID int, date time.Time,
	start scheduling.TimeOfDay, opts scheduling.CheckOptions) (*scheduling.Admission, error) {

	snap, err := s.Schedule.DaySnapshot(date)
	if err != nil {
		return nil, err
	}
	claims, err := s.Repo.ActiveClaims(tx, date)
	if err != nil {
		return nil, err
	}
	admission, err := scheduling.Check(snap, svc, start, claims, opts)
	if err != nil {
		return nil, err
	}
	if scheduling.HasPatientOverlap(claims, patientID, admission.Start, admission.End, opts.ExcludeBookingID) {
		return nil, &scheduling.PatientOverlapError{Start: admission.Start, End: admission.End}
	}
	return admission, nil
}

// CreateBooking admits and persists a new pending booking. The honor flag
// and dentist assignment are captured from this request, not recomputed at
// approval. For online payment a Stripe checkout session for the deposit is
// attached before the insert, as with any other carried payment field.
func (s *BookingService) CreateBooking(req *entities.CreateBookingRequest,
	window scheduling.BookingWindow, now time.Time) (*entities.CreateBookingResponse, error) {

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}
	start, err := scheduling.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, err
	}
	if err := window.Validate(now, date); err != nil {
		return nil, err
	}

	svc, err := s.Schedule.ServiceByID(req.ServiceID)
	if err != nil {
		return nil, err
	}
	patient, err := s.Schedule.PatientByID(req.PatientID)
	if err != nil {
		return nil, err
	}

	code := uuid.NewString()
	booking := &db.Booking{
		Code:          code,
		PatientID:     req.PatientID,
		ServiceID:     req.ServiceID,
		Date:          date,
		Status:        scheduling.StatusPending,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: "pending",
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if req.Units != nil {
		booking.Units = sql.NullInt64{Int64: int64(*req.Units), Valid: true}
	}

	var checkoutURL string
	if req.PaymentMethod == "online" && s.stripeService != nil {
		url, sessionID, err := s.stripeService.CreateDepositSession(code, patient.Email, req.Language)
		if err != nil {
			return nil, err
		}
		checkoutURL = url
		booking.StripeSessionID = sql.NullString{String: sessionID, Valid: true}
	}

	var admission *scheduling.Admission
	decide := func() error {
		tx, err := s.Repo.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := s.Repo.LockDay(tx, date); err != nil {
			return err
		}
		opts, err := s.checkOptions(req.PatientID, date, req.HonorPreference, req.Units, 0, 0)
		if err != nil {
			return err
		}
		admission, err = s.admit(tx, svc, req.PatientID, date, start, opts)
		if err != nil {
			return err
		}

		booking.StartMin = admission.Start.Minutes()
		booking.EndMin = admission.End.Minutes()
		booking.DentistID = sql.NullInt64{Int64: int64(admission.DentistID), Valid: admission.DentistID != 0}
		booking.HonorPreference = admission.HonorPreference
		if err := s.Repo.InsertBooking(tx, booking); err != nil {
			return err
		}
		return tx.Commit()
	}
	if err := s.retryOnBackstop(decide, start); err != nil {
		if booking.StripeSessionID.Valid {
			// The deposit session was opened before the decision; close it so
			// the patient cannot pay for a booking that was never admitted.
			if expireErr := s.stripeService.ExpireSession(booking.StripeSessionID.String); expireErr != nil {
				log.Printf("Could not expire checkout session %s for rejected booking %s: %v",
					booking.StripeSessionID.String, code, expireErr)
			}
		}
		return nil, err
	}

	s.notifyAsync(code, scheduling.StatusPending)

	return &entities.CreateBookingResponse{
		Code:            code,
		Status:          scheduling.StatusPending,
		DentistID:       admission.DentistID,
		StartTime:       admission.Start.String(),
		EndTime:         admission.End.String(),
		CheckoutURL:     checkoutURL,
		StripeSessionID: booking.StripeSessionID.String,
	}, nil
}

// ApproveBooking re-validates a pending booking against current capacity.
// The already-bound dentist is forced so approval can never silently move
// the patient; if capacity evaporated since creation the booking stays
// pending for staff to resolve manually.
func (s *BookingService) ApproveBooking(code string) error {
	pre, err := s.Repo.GetByCode(code)
	if err != nil {
		return err
	}

	decide := func() error {
		tx, err := s.Repo.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		// Day lock before the row lock, in the same order as create and
		// reschedule, so concurrent writers cannot deadlock.
		if err := s.Repo.LockDay(tx, pre.Date); err != nil {
			return err
		}
		booking, err := s.Repo.GetByCodeForUpdate(tx, code)
		if err != nil {
			return err
		}
		if booking.Status != scheduling.StatusPending || !booking.Date.Equal(pre.Date) {
			return &scheduling.AlreadyProcessedError{Code: code, Status: booking.Status}
		}

		svc, err := s.Schedule.ServiceByID(booking.ServiceID)
		if err != nil {
			return err
		}
		opts, err := s.checkOptions(booking.PatientID, booking.Date, booking.HonorPreference,
			nullableInt(booking.Units), booking.ID, int(booking.DentistID.Int64))
		if err != nil {
			return err
		}
		admission, err := s.admit(tx, svc, booking.PatientID, booking.Date,
			scheduling.TimeOfDay(booking.StartMin), opts)
		if err != nil {
			return err
		}
		if err := s.Repo.ApproveWithDentist(tx, booking.ID, admission.DentistID); err != nil {
			return err
		}
		return tx.Commit()
	}
	if err := s.retryOnBackstop(decide, scheduling.TimeOfDay(pre.StartMin)); err != nil {
		return err
	}

	s.notifyAsync(code, scheduling.StatusApproved)
	return nil
}

// RejectBooking is a pure status transition; releasing capacity needs no
// re-check since the index is derived live from active bookings.
func (s *BookingService) RejectBooking(code, reason string) error {
	return s.transitionStatus(code, scheduling.StatusRejected, reason,
		scheduling.StatusPending)
}

// CancelBooking cancels a pending or approved booking and refunds an online
// deposit when one was captured.
func (s *BookingService) CancelBooking(code, reason string) error {
	booking, err := s.Repo.GetByCode(code)
	if err != nil {
		return err
	}
	if err := s.transitionStatus(code, scheduling.StatusCancelled, reason,
		scheduling.StatusPending, scheduling.StatusApproved); err != nil {
		return err
	}
	if booking.StripeSessionID.Valid && booking.PaymentStatus == "succeeded" && s.stripeService != nil {
		if err := s.stripeService.RefundBySessionID(booking.StripeSessionID.String); err != nil {
			log.Printf("Booking %s cancelled but deposit refund failed: %v", code, err)
		} else if err := s.Repo.UpdatePaymentBySessionID(booking.StripeSessionID.String, "refunded"); err != nil {
			log.Printf("Booking %s refunded but payment status not recorded: %v", code, err)
		}
	}
	return nil
}

func (s *BookingService) transitionStatus(code, newStatus, reason string, allowedFrom ...string) error {
	tx, err := s.Repo.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	booking, err := s.Repo.GetByCodeForUpdate(tx, code)
	if err != nil {
		return err
	}
	allowed := false
	for _, status := range allowedFrom {
		if booking.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return &scheduling.AlreadyProcessedError{Code: code, Status: booking.Status}
	}
	if err := s.Repo.UpdateStatus(tx, booking.ID, newStatus); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	if reason != "" {
		log.Printf("Booking %s -> %s (%s)", code, newStatus, reason)
	}
	s.notifyAsync(code, newStatus)
	return nil
}

// RescheduleBooking moves a pending or approved booking to a new date and
// start. The new claim is admitted exactly like a creation, excluding the
// booking's own old claim; on success the status resets to pending for
// fresh approval and the old range is replaced atomically.
func (s *BookingService) RescheduleBooking(code string, req *entities.RescheduleRequest,
	window scheduling.BookingWindow, now time.Time) error {

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", req.Date, err)
	}
	start, err := scheduling.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return err
	}
	if err := window.Validate(now, date); err != nil {
		return err
	}

	decide := func() error {
		tx, err := s.Repo.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := s.Repo.LockDay(tx, date); err != nil {
			return err
		}
		booking, err := s.Repo.GetByCodeForUpdate(tx, code)
		if err != nil {
			return err
		}
		if booking.Status != scheduling.StatusPending && booking.Status != scheduling.StatusApproved {
			return &scheduling.AlreadyProcessedError{Code: code, Status: booking.Status}
		}

		honor := booking.HonorPreference
		if req.HonorPreference != nil {
			honor = *req.HonorPreference
		}
		svc, err := s.Schedule.ServiceByID(booking.ServiceID)
		if err != nil {
			return err
		}
		opts, err := s.checkOptions(booking.PatientID, date, honor,
			nullableInt(booking.Units), booking.ID, 0)
		if err != nil {
			return err
		}
		admission, err := s.admit(tx, svc, booking.PatientID, date, start, opts)
		if err != nil {
			return err
		}
		if err := s.Repo.Reschedule(tx, booking.ID, date,
			admission.Start.Minutes(), admission.End.Minutes(),
			admission.DentistID, admission.HonorPreference); err != nil {
			return err
		}
		return tx.Commit()
	}
	if err := s.retryOnBackstop(decide, start); err != nil {
		return err
	}

	s.notifyAsync(code, scheduling.StatusPending)
	return nil
}

// MarkReminderSent is the idempotent reminder guard: exactly one of N
// concurrent callers gets true, the rest false.
func (s *BookingService) MarkReminderSent(bookingID int) (bool, error) {
	return s.Repo.MarkReminderSent(bookingID)
}

// SendReminder dispatches a manual reminder for an approved booking. It
// shares the compare-and-set guard with the cron sweep, so staff clicking
// twice, or racing the sweep, yields exactly one message: every loser gets
// ErrReminderAlreadySent.
func (s *BookingService) SendReminder(code string) error {
	booking, err := s.Repo.GetByCode(code)
	if err != nil {
		return err
	}
	if booking.Status != scheduling.StatusApproved {
		return &scheduling.AlreadyProcessedError{Code: code, Status: booking.Status}
	}
	won, err := s.Repo.MarkReminderSent(booking.ID)
	if err != nil {
		return err
	}
	if !won {
		return scheduling.ErrReminderAlreadySent
	}
	if s.sender != nil {
		if resp, err := s.Repo.GetResponseByCode(code); err == nil {
			translated := StatusTranslation(resp.Status, resp.Language)
			s.sender.SendBookingSMS(*resp, translated)
			s.sender.SendBookingEmail(*resp, translated)
		} else {
			log.Printf("Reminder for %s marked but booking could not be loaded for sending: %v", code, err)
		}
	}
	return nil
}

// CheckAdmission answers "can this run be admitted, and for whom" without
// writing. The same pipeline runs again inside the transaction of whichever
// write follows, so a positive answer here is advisory only.
func (s *BookingService) CheckAdmission(req *entities.StartTimesRequest, startLabel string) (*scheduling.Admission, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}
	start, err := scheduling.ParseTimeOfDay(startLabel)
	if err != nil {
		return nil, err
	}
	svc, err := s.Schedule.ServiceByID(req.ServiceID)
	if err != nil {
		return nil, err
	}

	tx, err := s.Repo.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	opts, err := s.checkOptions(req.PatientID, date, req.HonorPreference, req.Units, 0, 0)
	if err != nil {
		return nil, err
	}
	return s.admit(tx, svc, req.PatientID, date, start, opts)
}

// ListValidStartTimes drives slot-picker UIs: every grid label that would
// currently be admitted, in order.
func (s *BookingService) ListValidStartTimes(req *entities.StartTimesRequest) (*entities.StartTimesResponse, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}
	svc, err := s.Schedule.ServiceByID(req.ServiceID)
	if err != nil {
		return nil, err
	}
	snap, err := s.Schedule.DaySnapshot(date)
	if err != nil {
		return nil, err
	}

	tx, err := s.Repo.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	claims, err := s.Repo.ActiveClaims(tx, date)
	if err != nil {
		return nil, err
	}
	opts, err := s.checkOptions(req.PatientID, date, req.HonorPreference, req.Units, 0, 0)
	if err != nil {
		return nil, err
	}
	starts, err := scheduling.ValidStartTimes(snap, svc, claims, opts)
	if err != nil {
		return nil, err
	}

	blocks := 0
	if b, err := scheduling.BlocksNeeded(svc, req.Units); err == nil {
		blocks = b
	}
	resp := &entities.StartTimesResponse{
		Date:      req.Date,
		ServiceID: req.ServiceID,
		Blocks:    blocks,
	}
	for _, t := range starts {
		resp.StartTimes = append(resp.StartTimes, t.String())
	}
	return resp, nil
}

func (s *BookingService) GetBooking(code string) (*entities.BookingResponse, error) {
	return s.Repo.GetResponseByCode(code)
}

func (s *BookingService) ListBookings(date, status string, dentistID int) ([]entities.BookingResponse, error) {
	return s.Repo.ListBookings(date, status, dentistID)
}

func (s *BookingService) UpdatePaymentBySessionID(sessionID, paymentStatus string) error {
	return s.Repo.UpdatePaymentBySessionID(sessionID, paymentStatus)
}

func (s *BookingService) GetBookingBySessionID(sessionID string) (*entities.BookingResponse, error) {
	booking, err := s.Repo.GetByStripeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Repo.GetResponseByCode(booking.Code)
}

// retryOnBackstop re-runs a decision once when the storage constraint fires
// under a race the advisory lock did not cover; a second collision surfaces
// as SlotFull at the requested start.
func (s *BookingService) retryOnBackstop(decide func() error, start scheduling.TimeOfDay) error {
	err := decide()
	if err == nil || !repository.IsCapacityConflict(err) {
		return err
	}
	log.Printf("Capacity backstop fired, recomputing decision once: %v", err)
	err = decide()
	if err != nil && repository.IsCapacityConflict(err) {
		return &scheduling.SlotFullError{Block: start}
	}
	return err
}

// notifyAsync sends status email/SMS best-effort; notification failures
// never affect booking state.
func (s *BookingService) notifyAsync(code, status string) {
	if s.sender == nil {
		return
	}
	booking, err := s.Repo.GetResponseByCode(code)
	if err != nil {
		log.Printf("Could not load booking %s for notification: %v", code, err)
		return
	}
	translated := StatusTranslation(status, booking.Language)
	s.sender.SendBookingSMS(*booking, translated)
	s.sender.SendBookingEmail(*booking, translated)
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
