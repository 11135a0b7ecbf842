package repository

import "errors"

// Conditional writes report lost races through these errors instead of a generic failure.
var (
	ErrNotFound             = errors.New("record not found")
	ErrSeatUnavailable      = errors.New("seat unavailable")
	ErrEventFull            = errors.New("event is full")
	ErrDuplicateTicket      = errors.New("active ticket already exists")
	ErrTicketNotActive      = errors.New("ticket is not active")
	ErrStatusChanged        = errors.New("status changed concurrently")
	ErrBelowRegistered      = errors.New("total seats below registered count")
	ErrTooManyRegistrations = errors.New("too many registrations to cancel")
	ErrDuplicateEmail       = errors.New("email already in use")
)
