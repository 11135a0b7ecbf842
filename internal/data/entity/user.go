package entity

import "github.com/google/uuid"

// UserRole is the role carried by the caller's token. Users themselves live in the auth service.
type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleStaff     UserRole = "staff"
	RoleOrganizer UserRole = "organizer"
	RoleAdmin     UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// CanOrganize reports organizer capability: full control over halls and events.
func (r UserRole) CanOrganize() bool {
	return r == RoleOrganizer || r == RoleAdmin
}

// CanCheckIn reports whether the role may validate tickets at the door.
func (r UserRole) CanCheckIn() bool {
	return r == RoleStaff || r.CanOrganize()
}

// Caller is the authenticated identity of a request. A zero Caller is anonymous.
type Caller struct {
	ID   uuid.UUID
	Role UserRole
}

func (c Caller) Anonymous() bool {
	return c.ID == uuid.Nil
}
