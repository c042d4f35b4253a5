package model

import "time"

const (
	RoleStudent        = "STUDENT"
	RoleEventOrganizer = "EVENT_ORGANIZER"
	RoleSystemAdmin    = "SYSTEM_ADMIN"
)

type Student struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	StudentID    string
	Department   string
	Year         int
	CreatedAt    time.Time
}

type StaffUser struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Identity is the normalized view of an authenticated principal, student or
// staff. It is derived at login or registration time and embedded in tokens;
// it is never persisted.
type Identity struct {
	ID        string
	Name      string
	Email     string
	Role      string
	StudentID string
}

type Event struct {
	ID          string
	Title       string
	Description string
	Category    string
	Location    string
	Date        time.Time
	CreatedAt   time.Time
}
