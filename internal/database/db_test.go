package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	got := dsn(Params{User: "app", Pass: "s3cret", Host: "db.local", Port: "3306", Name: "tickets"})
	assert.Contains(t, got, "app:s3cret@tcp(db.local:3306)/tickets")
	assert.Contains(t, got, "parseTime=true")
}

func TestDSNWithoutPassword(t *testing.T) {
	got := dsn(Params{User: "app", Host: "127.0.0.1", Port: "3307", Name: "tickets"})
	assert.Contains(t, got, "app@tcp(127.0.0.1:3307)/tickets")
}
