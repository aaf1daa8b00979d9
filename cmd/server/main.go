package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"citasdental/internal/api"
	"citasdental/internal/auth"
	"citasdental/internal/repository"
	"citasdental/internal/service"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	jobRepo := repository.NewJobRepository(db)
	staffAuthRepo := repository.NewStaffAuthRepository(db)

	sender := service.NewSenderService()
	stripeService := service.NewStripeService()
	bookingService := service.NewBookingService(bookingRepo, scheduleRepo, stripeService, sender)
	jobService := service.NewJobService(jobRepo, bookingService, sender)
	staffAuthService := service.NewStaffAuthService(staffAuthRepo)

	bookingHandler := api.NewBookingHandler(bookingService)
	staffHandler := api.NewStaffHandler(bookingService, scheduleRepo)
	staffAuthHandler := api.NewStaffAuthHandler(staffAuthService)
	stripeHandler := api.NewStripeWebhookHandler(os.Getenv("STRIPE_WEBHOOK_SECRET"), bookingService, sender)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/start-times", bookingHandler.ListStartTimes).Methods("POST")
	r.HandleFunc("/api/admission-check", bookingHandler.CheckAdmission).Methods("POST")
	r.HandleFunc("/api/bookings", bookingHandler.CreateBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{code}", bookingHandler.GetBooking).Methods("GET")
	r.HandleFunc("/api/bookings/{code}", bookingHandler.RescheduleBooking).Methods("PUT")
	r.HandleFunc("/api/bookings/{code}", bookingHandler.CancelBooking).Methods("DELETE")
	r.HandleFunc("/api/stripe/webhook", stripeHandler.HandleWebhook).Methods("POST")
	r.HandleFunc("/api/stripe/booking", stripeHandler.GetBookingBySessionID).Methods("GET")
	r.HandleFunc("/api/staff/login", staffAuthHandler.Login).Methods("POST")

	// Staff endpoints (protected)
	staff := r.PathPrefix("/staff").Subrouter()
	staff.Use(auth.StaffAuthMiddleware)
	staff.HandleFunc("/bookings", staffHandler.ListBookings).Methods("GET")
	staff.HandleFunc("/bookings", staffHandler.CreateBooking).Methods("POST")
	staff.HandleFunc("/bookings/{code}/approve", staffHandler.ApproveBooking).Methods("POST")
	staff.HandleFunc("/bookings/{code}/reject", staffHandler.RejectBooking).Methods("POST")
	staff.HandleFunc("/bookings/{code}/reminder", staffHandler.SendReminder).Methods("POST")
	staff.HandleFunc("/bookings/{code}", staffHandler.RescheduleBooking).Methods("PUT")
	staff.HandleFunc("/bookings/{code}", staffHandler.CancelBooking).Methods("DELETE")
	staff.HandleFunc("/clinic-hours/{weekday}", staffHandler.UpdateClinicHours).Methods("PUT")
	staff.HandleFunc("/overrides", staffHandler.UpdateOverride).Methods("PUT")
	staff.HandleFunc("/dentists", staffHandler.ListDentists).Methods("GET")
	staff.HandleFunc("/services", staffHandler.ListServices).Methods("GET")
	staff.HandleFunc("/accounts", staffAuthHandler.CreateStaff).Methods("POST")

	startJobs(jobService)

	corsAllowed := handlers.CORS(
		handlers.AllowedOrigins([]string{os.Getenv("CORS_ORIGIN")}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, corsAllowed(r))))
}

// startJobs wires the clinic's recurring tasks: the morning reminder
// dispatch, the evening completion sweep, and the hourly cleanup of
// pending bookings nobody confirmed.
func startJobs(jobs *service.JobService) {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		log.Fatalf("Failed to load timezone: %v", err)
	}
	c := cron.New(cron.WithLocation(loc))

	c.AddFunc("0 9 * * *", func() {
		if err := jobs.DispatchReminders(time.Now().In(loc)); err != nil {
			log.Printf("Reminder dispatch failed: %v", err)
		}
	})
	c.AddFunc("30 20 * * *", func() {
		if err := jobs.CompleteFinishedBookings(time.Now().In(loc)); err != nil {
			log.Printf("Completion sweep failed: %v", err)
		}
	})
	c.AddFunc("15 * * * *", func() {
		cutoff := time.Now().In(loc).Add(-48 * time.Hour)
		if n, err := jobs.CancelStalePending(cutoff); err != nil {
			log.Printf("Stale pending cleanup failed: %v", err)
		} else if n > 0 {
			log.Printf("Cancelled %d stale pending bookings", n)
		}
	})

	c.Start()
}
