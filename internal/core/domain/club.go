package domain

import "time"

// EventStatus enumerates the lifecycle of a club event.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusUpcoming, EventStatusOngoing, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

// AnnouncementPriority ranks announcements for display.
type AnnouncementPriority string

const (
	AnnouncementPriorityLow    AnnouncementPriority = "low"
	AnnouncementPriorityNormal AnnouncementPriority = "normal"
	AnnouncementPriorityHigh   AnnouncementPriority = "high"
)

// Valid reports whether the priority is one of the known values.
func (p AnnouncementPriority) Valid() bool {
	switch p {
	case AnnouncementPriorityLow, AnnouncementPriorityNormal, AnnouncementPriorityHigh:
		return true
	}
	return false
}

// AnnouncementStatusActive is the default announcement status. Other values are free-form.
const AnnouncementStatusActive = "active"

// StudentRole is the role a student holds inside the club.
type StudentRole string

const (
	StudentRoleMember    StudentRole = "member"
	StudentRoleOrganizer StudentRole = "organizer"
	StudentRoleLeader    StudentRole = "leader"
)

// Valid reports whether the role is one of the known values.
func (r StudentRole) Valid() bool {
	switch r {
	case StudentRoleMember, StudentRoleOrganizer, StudentRoleLeader:
		return true
	}
	return false
}

// MembershipStatusActive marks a student whose club membership is current.
const MembershipStatusActive = "active"

// Event is a club activity organised by an admin.
type Event struct {
	ID              int64
	Title           string
	Description     string
	EventDate       time.Time
	Location        string
	MaxParticipants *int
	Status          EventStatus
	OrganizerID     *int64
	CreatedAt       time.Time
}

// Announcement is a message published by an admin.
type Announcement struct {
	ID          int64
	Title       string
	Content     string
	PublishDate time.Time
	ExpiryDate  *time.Time
	Priority    AnnouncementPriority
	AdminID     *int64
	Status      string
}

// IsActive reports whether the announcement is active and unexpired at the given instant.
func (a Announcement) IsActive(now time.Time) bool {
	if a.Status != AnnouncementStatusActive {
		return false
	}
	return a.ExpiryDate == nil || a.ExpiryDate.After(now)
}

// Student is a club member record managed by admins.
type Student struct {
	ID               int64
	FullName         string
	Email            string
	StudentID        *string
	Department       string
	YearOfStudy      *int
	JoinDate         time.Time
	MembershipStatus string
	Role             StudentRole
}

const (
	// RegistrationStatusRegistered marks a seat taken at an event. Only these
	// rows count toward max_participants.
	RegistrationStatusRegistered = "registered"
	// AttendanceStatusPending is the attendance of a fresh registration.
	AttendanceStatusPending = "pending"
)

// EventRegistration books a student onto an event.
type EventRegistration struct {
	ID               int64
	EventID          int64
	StudentID        int64
	RegistrationDate time.Time
	Status           string
	AttendanceStatus string
}
