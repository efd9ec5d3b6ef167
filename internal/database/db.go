// Package database opens the MySQL connection pool shared by every
// repository.
package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Params carries everything the pool needs at startup.  MaxConns
// bounds both open and idle connections; zero falls back to a default
// sized for a single service instance.
type Params struct {
	User     string
	Pass     string
	Host     string
	Port     string
	Name     string
	MaxConns int
}

const (
	defaultMaxConns = 25
	pingTimeout     = 5 * time.Second
)

func dsn(p Params) string {
	c := mysql.NewConfig()
	c.User = p.User
	c.Passwd = p.Pass
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(p.Host, p.Port)
	c.DBName = p.Name
	// DATETIME columns scan straight into time.Time, always in UTC.
	c.ParseTime = true
	c.Loc = time.UTC
	return c.FormatDSN()
}

// Open builds the pool and pings the server, so a bad address or
// credential fails at startup instead of on the first booking.
func Open(p Params) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn(p))
	if err != nil {
		return nil, err
	}

	maxConns := p.MaxConns
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
