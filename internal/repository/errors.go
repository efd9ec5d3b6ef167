// Package repository implements MySQL persistence for events, users,
// bookings and notifications.  Sentinel errors defined here let
// handlers distinguish failure scenarios without inspecting driver
// errors; domain-level booking errors live in internal/model because
// the orchestrator consumes them without importing this package.
package repository

import "errors"

// ErrEmailExists is returned when registering a user with an email
// that is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")
