// Package config loads application configuration from environment
// variables.  Each component receives the values it needs at
// construction; nothing reads ambient process state after startup.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Required variables
// are enforced by must() and missing values cause the program to exit
// with a fatal log message; the rest fall back to sensible defaults.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser     string // database username
	DBPass     string // database password (optional)
	DBHost     string // database host address
	DBPort     string // database port number
	DBName     string // database name
	DBMaxConns int    // open/idle connection cap for the pool

	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing

	SeatLockTTL      time.Duration // advisory seat lock TTL
	BookingPerMinute int           // booking submissions allowed per user per minute (0 disables)

	RabbitURL string // AMQP broker URL; empty disables confirmations

	SMTPHost      string // SMTP relay host
	SMTPPort      string // SMTP relay port
	SMTPUser      string // SMTP username (optional)
	SMTPPass      string // SMTP password (optional)
	EmailFrom     string // From address on confirmations
	EmailFromName string // display name on confirmations
	AdminEmail    string // optional admin copy of every confirmation

	EmailMaxAttempts int           // delivery attempts per confirmation
	EmailRetryDelay  time.Duration // delay before the first redelivery
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser:     must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     must("DB_HOST"),
		DBPort:     must("DB_PORT"),
		DBName:     must("DB_NAME"),
		DBMaxConns: intOr("DB_MAX_CONNS", 25),

		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),

		SeatLockTTL:      time.Duration(intOr("SEAT_LOCK_TTL_SEC", 300)) * time.Second,
		BookingPerMinute: intOr("BOOKING_RATE_PER_MIN", 10),

		RabbitURL: os.Getenv("RABBITMQ_URL"),

		SMTPHost:      stringOr("SMTP_HOST", "localhost"),
		SMTPPort:      stringOr("SMTP_PORT", "25"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		EmailFrom:     stringOr("EMAIL_FROM", "no-reply@localhost"),
		EmailFromName: stringOr("EMAIL_FROM_NAME", "Ticket Booking"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),

		EmailMaxAttempts: intOr("EMAIL_MAX_ATTEMPTS", 3),
		EmailRetryDelay:  time.Duration(intOr("EMAIL_RETRY_DELAY_SEC", 5)) * time.Second,
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func stringOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
