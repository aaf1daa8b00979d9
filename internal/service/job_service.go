package service

import (
	"fmt"
	"log"
	"time"

	"citasdental/internal/repository"
)

// JobService runs the periodic sweeps: reminder dispatch, completion of
// past approved bookings and cleanup of stale unpaid pendings. Every sweep
// takes "now" explicitly so the cron wiring and tests share one code path.
type JobService struct {
	Repo     *repository.JobRepository
	Bookings *BookingService
	Sender   *SenderService
}

func NewJobService(repo *repository.JobRepository, bookings *BookingService, sender *SenderService) *JobService {
	return &JobService{Repo: repo, Bookings: bookings, Sender: sender}
}

// DispatchReminders sends at most one reminder per approved booking whose
// date is tomorrow or the day after. The compare-and-set on the reminder
// flag makes the sweep safe to run from multiple workers: a loser observes
// zero rows affected and skips sending.
func (s *JobService) DispatchReminders(now time.Time) error {
	log.Println("Cron Job: checking for booking reminders to send...")

	candidates, err := s.Repo.ReminderCandidates(now)
	if err != nil {
		return fmt.Errorf("cron job: failed to query reminder candidates: %w", err)
	}
	if len(candidates) == 0 {
		log.Println("Cron Job: no bookings due for a reminder.")
		return nil
	}

	sent := 0
	for _, c := range candidates {
		won, err := s.Bookings.MarkReminderSent(c.BookingID)
		if err != nil {
			log.Printf("Cron Job: could not mark reminder for booking %s: %v", c.Booking.Code, err)
			continue
		}
		if !won {
			// Another worker sent it between our read and the flag update.
			continue
		}
		translated := StatusTranslation(c.Booking.Status, c.Booking.Language)
		s.Sender.SendBookingSMS(c.Booking, translated)
		s.Sender.SendBookingEmail(c.Booking, translated)
		sent++
	}

	log.Printf("Cron Job: dispatched %d booking reminders.", sent)
	return nil
}

// CompleteFinishedBookings flips approved bookings whose date has passed to
// completed so they stop counting against future capacity.
func (s *JobService) CompleteFinishedBookings(now time.Time) error {
	ids, err := s.Repo.ApprovedBookingIDsPastDate(now)
	if err != nil {
		return fmt.Errorf("cron job: failed to query finished bookings: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.Repo.UpdateBookingStatuses(ids, "completed"); err != nil {
		return fmt.Errorf("cron job: failed to complete finished bookings: %w", err)
	}
	return nil
}

// CancelStalePending cancels unpaid pending bookings older than the cutoff.
func (s *JobService) CancelStalePending(before time.Time) (int64, error) {
	return s.Repo.CancelStalePending(before)
}
