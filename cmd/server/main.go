package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-booking/internal/booking"
	"github.com/iliyamo/event-ticket-booking/internal/config"
	"github.com/iliyamo/event-ticket-booking/internal/database"
	"github.com/iliyamo/event-ticket-booking/internal/email"
	"github.com/iliyamo/event-ticket-booking/internal/handler"
	"github.com/iliyamo/event-ticket-booking/internal/lock"
	"github.com/iliyamo/event-ticket-booking/internal/queue"
	"github.com/iliyamo/event-ticket-booking/internal/repository"
	"github.com/iliyamo/event-ticket-booking/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()

	db, err := database.Open(database.Params{
		User:     cfg.DBUser,
		Pass:     cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		MaxConns: cfg.DBMaxConns,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	var locks lock.Manager
	if rdb != nil {
		locks = lock.NewRedisManager(rdb)
	} else {
		log.Println("redis unavailable, using in-memory seat locks")
		locks = lock.NewMemoryManager()
	}

	users := repository.NewUserRepo(db)
	events := repository.NewEventRepo(db)
	bookings := repository.NewBookingRepo(db)
	notifications := repository.NewNotificationRepo(db)

	var publisher booking.Publisher
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL)

		worker := &queue.ConfirmationWorker{
			URL: cfg.RabbitURL,
			Sender: &email.SMTPSender{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				Username: cfg.SMTPUser,
				Password: cfg.SMTPPass,
				From:     cfg.EmailFrom,
				FromName: cfg.EmailFromName,
			},
			AdminEmail:  cfg.AdminEmail,
			MaxAttempts: cfg.EmailMaxAttempts,
			RetryDelay:  cfg.EmailRetryDelay,
		}
		go worker.Run()
	} else {
		log.Println("RABBITMQ_URL not set, booking confirmations disabled")
	}

	svc := booking.NewService(events, bookings, locks, publisher, notifications, cfg.SeatLockTTL)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Handlers{
		Auth:          &handler.AuthHandler{Cfg: cfg, Users: users},
		Events:        &handler.EventHandler{Events: events, Bookings: bookings, Locks: locks},
		AdminEvents:   &handler.AdminEventHandler{Events: events},
		Bookings:      handler.NewBookingHandler(svc, bookings, users),
		Notifications: &handler.NotificationHandler{Notifications: notifications},
		Reports:       &handler.ReportHandler{Bookings: bookings},
	}, cfg.JWTSecret, rdb, cfg.BookingPerMinute)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
