package model

import "time"

// User mirrors the 'users' table.  Role is either RoleAdmin or
// RoleUser; admins manage the event catalog, users book seats.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)
