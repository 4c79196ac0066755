package domain

import "time"

// User is a registered club member. Accounts stay inactive until the
// emailed OTP has been verified.
type User struct {
	ID                 int64
	RegistrationNumber string
	RegistrationYear   string
	FullName           string
	Email              string
	PasswordHash       string
	WilayaCode         string
	CommuneName        string
	FacultyID          int64
	DepartmentID       int64
	Level              string
	IsActive           bool
	OTPCode            *string
	OTPValidUntil      *time.Time
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// HasPendingOTP reports whether a verification code is waiting to be consumed.
func (u User) HasPendingOTP() bool {
	return u.OTPCode != nil && u.OTPValidUntil != nil
}

// Sanitized returns a copy without credential material.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.OTPCode = nil
	return u
}

// Admin is a club administrator. Admins log in with a password only.
type Admin struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	IsSuperAdmin bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy without the password hash.
func (a Admin) Sanitized() Admin {
	a.PasswordHash = ""
	return a
}

// AdminLoginHistory is an append-only audit row written on each successful admin login.
type AdminLoginHistory struct {
	ID        int64
	AdminID   int64
	LoginTime time.Time
	IPAddress *string
	UserAgent *string
}

// ClientMetadata describes the caller of an authentication request.
type ClientMetadata struct {
	IP        string
	UserAgent string
}
