package domain

import "time"

// UserRegisteredEvent is published as devclub.user.registered.
type UserRegisteredEvent struct {
	EventID      string
	UserID       int64
	Email        string
	FullName     string
	FacultyID    int64
	DepartmentID int64
	RegisteredAt time.Time
}

// UserActivatedEvent is published as devclub.user.activated once the OTP is consumed.
type UserActivatedEvent struct {
	EventID     string
	UserID      int64
	Email       string
	ActivatedAt time.Time
}

// AdminLoggedInEvent is published as devclub.admin.logged_in.
type AdminLoggedInEvent struct {
	EventID   string
	AdminID   int64
	Email     string
	LoginTime time.Time
	IPAddress string
	UserAgent string
}

// Notification is a rendered message handed to the notification collaborator.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
	Kind      string
}

// NotificationKindOTP tags OTP verification emails.
const NotificationKindOTP = "otp_verification"
