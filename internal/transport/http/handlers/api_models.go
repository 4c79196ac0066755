package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/transport/http/middleware"
)

// ErrorResponse is the body of every error answer.
type ErrorResponse = middleware.ErrorResponse

// NewErrorResponse attaches the request trace id to msg.
func NewErrorResponse(c *gin.Context, msg string) ErrorResponse {
	return ErrorResponse{Error: msg, TraceID: middleware.GetTraceID(c)}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest is the member registration payload.
type RegisterRequest struct {
	RegistrationNumber string `json:"registration_number" binding:"required,max=32"`
	RegistrationYear   string `json:"registration_year" binding:"required,max=4"`
	FullName           string `json:"full_name" binding:"required,max=100"`
	Email              string `json:"email" binding:"required,email,max=100"`
	Password           string `json:"password" binding:"required,max=72"`
	WilayaCode         string `json:"wilaya_code" binding:"required,max=4"`
	CommuneName        string `json:"commune_name" binding:"required,max=255"`
	FacultyID          int64  `json:"faculty_id" binding:"required,gt=0"`
	DepartmentID       int64  `json:"department_id" binding:"required,gt=0"`
	Level              string `json:"level" binding:"required,max=32"`
}

// VerifyOTPRequest submits the emailed code.
type VerifyOTPRequest struct {
	Email   string `json:"email" binding:"required,email"`
	OTPCode string `json:"otp_code" binding:"required"`
}

// ResendOTPRequest asks for a new code.
type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UserResponse is the public view of a member.
type UserResponse struct {
	ID                 int64      `json:"id"`
	RegistrationNumber string     `json:"registration_number"`
	RegistrationYear   string     `json:"registration_year"`
	FullName           string     `json:"full_name"`
	Email              string     `json:"email"`
	WilayaCode         string     `json:"wilaya_code"`
	CommuneName        string     `json:"commune_name"`
	FacultyID          int64      `json:"faculty_id"`
	DepartmentID       int64      `json:"department_id"`
	Level              string     `json:"level"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
}

func newUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		RegistrationNumber: u.RegistrationNumber,
		RegistrationYear:   u.RegistrationYear,
		FullName:           u.FullName,
		Email:              u.Email,
		WilayaCode:         u.WilayaCode,
		CommuneName:        u.CommuneName,
		FacultyID:          u.FacultyID,
		DepartmentID:       u.DepartmentID,
		Level:              u.Level,
		IsActive:           u.IsActive,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func newTokenResponse(token domain.IssuedToken, now time.Time) TokenResponse {
	expiresIn := int(token.ExpiresAt.Sub(now).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return TokenResponse{
		AccessToken: token.Value,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
		ExpiresAt:   token.ExpiresAt.UTC(),
	}
}

// AdminLoginRequest accepts JSON {email,password} or the OAuth2 password form {username,password}.
type AdminLoginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password" binding:"required"`
}

// AdminResponse is the public view of an administrator.
type AdminResponse struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	IsSuperAdmin bool      `json:"is_super_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newAdminResponse(a domain.Admin) AdminResponse {
	return AdminResponse{
		ID:           a.ID,
		Email:        a.Email,
		FullName:     a.FullName,
		IsSuperAdmin: a.IsSuperAdmin,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// AdminLoginResponse pairs the admin token with the admin profile.
type AdminLoginResponse struct {
	TokenResponse
	Admin AdminResponse `json:"admin"`
}

// LoginHistoryResponse is one admin login audit row.
type LoginHistoryResponse struct {
	ID        int64     `json:"id"`
	AdminID   int64     `json:"admin_id"`
	LoginTime time.Time `json:"login_time"`
	IPAddress *string   `json:"ip_address"`
	UserAgent *string   `json:"user_agent"`
}

// AnalyticsResponse is the dashboard payload.
type AnalyticsResponse struct {
	GeneratedAt time.Time `json:"generated_at"`
	Events      struct {
		Total           int     `json:"total"`
		Upcoming        int     `json:"upcoming"`
		Completed       int     `json:"completed"`
		AvgParticipants float64 `json:"avgParticipants"`
	} `json:"events"`
	Announcements struct {
		Total        int `json:"total"`
		Active       int `json:"active"`
		HighPriority int `json:"highPriority"`
	} `json:"announcements"`
	Students struct {
		Total      int `json:"total"`
		Active     int `json:"active"`
		Organizers int `json:"organizers"`
		NewMembers int `json:"newMembers"`
	} `json:"students"`
	Users struct {
		Total    int `json:"total"`
		Active   int `json:"active"`
		NewUsers int `json:"newUsers"`
	} `json:"users"`
}

func newAnalyticsResponse(r domain.AnalyticsReport) AnalyticsResponse {
	var out AnalyticsResponse
	out.GeneratedAt = r.GeneratedAt
	out.Events.Total = r.Events.Total
	out.Events.Upcoming = r.Events.Upcoming
	out.Events.Completed = r.Events.Completed
	out.Events.AvgParticipants = r.Events.AvgParticipants
	out.Announcements.Total = r.Announcements.Total
	out.Announcements.Active = r.Announcements.Active
	out.Announcements.HighPriority = r.Announcements.HighPriority
	out.Students.Total = r.Students.Total
	out.Students.Active = r.Students.Active
	out.Students.Organizers = r.Students.Organizers
	out.Students.NewMembers = r.Students.NewMembers
	out.Users.Total = r.Users.Total
	out.Users.Active = r.Users.Active
	out.Users.NewUsers = r.Users.NewUsers
	return out
}

// EventRequest creates or replaces an event.
type EventRequest struct {
	Title           string             `json:"title" binding:"required,max=255"`
	Description     string             `json:"description"`
	EventDate       time.Time          `json:"event_date" binding:"required"`
	Location        string             `json:"location" binding:"max=255"`
	MaxParticipants *int               `json:"max_participants" binding:"omitempty,gte=0"`
	Status          domain.EventStatus `json:"status"`
}

// EventResponse is the public view of an event.
type EventResponse struct {
	ID              int64              `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	EventDate       time.Time          `json:"event_date"`
	Location        string             `json:"location"`
	MaxParticipants *int               `json:"max_participants"`
	Status          domain.EventStatus `json:"status"`
	OrganizerID     *int64             `json:"organizer_id"`
	CreatedAt       time.Time          `json:"created_at"`
}

func newEventResponse(e domain.Event) EventResponse {
	return EventResponse{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		EventDate:       e.EventDate,
		Location:        e.Location,
		MaxParticipants: e.MaxParticipants,
		Status:          e.Status,
		OrganizerID:     e.OrganizerID,
		CreatedAt:       e.CreatedAt,
	}
}

// EventRegistrationRequest books a student on an event.
type EventRegistrationRequest struct {
	StudentID int64 `json:"student_id" binding:"required,gt=0"`
}

// EventRegistrationResponse is one booked seat.
type EventRegistrationResponse struct {
	ID               int64     `json:"id"`
	EventID          int64     `json:"event_id"`
	StudentID        int64     `json:"student_id"`
	RegistrationDate time.Time `json:"registration_date"`
	Status           string    `json:"status"`
	AttendanceStatus string    `json:"attendance_status"`
}

func newEventRegistrationResponse(r domain.EventRegistration) EventRegistrationResponse {
	return EventRegistrationResponse{
		ID:               r.ID,
		EventID:          r.EventID,
		StudentID:        r.StudentID,
		RegistrationDate: r.RegistrationDate,
		Status:           r.Status,
		AttendanceStatus: r.AttendanceStatus,
	}
}

// AnnouncementRequest creates or replaces an announcement.
type AnnouncementRequest struct {
	Title       string                      `json:"title" binding:"required,max=255"`
	Content     string                      `json:"content" binding:"required"`
	PublishDate *time.Time                  `json:"publish_date"`
	ExpiryDate  *time.Time                  `json:"expiry_date"`
	Priority    domain.AnnouncementPriority `json:"priority"`
	Status      string                      `json:"status" binding:"max=32"`
}

// AnnouncementResponse is the public view of an announcement.
type AnnouncementResponse struct {
	ID          int64                       `json:"id"`
	Title       string                      `json:"title"`
	Content     string                      `json:"content"`
	PublishDate time.Time                   `json:"publish_date"`
	ExpiryDate  *time.Time                  `json:"expiry_date"`
	Priority    domain.AnnouncementPriority `json:"priority"`
	AdminID     *int64                      `json:"admin_id"`
	Status      string                      `json:"status"`
}

func newAnnouncementResponse(a domain.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		PublishDate: a.PublishDate,
		ExpiryDate:  a.ExpiryDate,
		Priority:    a.Priority,
		AdminID:     a.AdminID,
		Status:      a.Status,
	}
}

// StudentRequest creates or replaces a roster entry.
type StudentRequest struct {
	FullName         string             `json:"full_name" binding:"required,max=255"`
	Email            string             `json:"email" binding:"required,email,max=255"`
	StudentID        *string            `json:"student_id" binding:"omitempty,max=50"`
	Department       string             `json:"department" binding:"max=100"`
	YearOfStudy      *int               `json:"year_of_study"`
	JoinDate         *time.Time         `json:"join_date"`
	MembershipStatus string             `json:"membership_status" binding:"max=32"`
	Role             domain.StudentRole `json:"role"`
}

// StudentResponse is the public view of a student.
type StudentResponse struct {
	ID               int64              `json:"id"`
	FullName         string             `json:"full_name"`
	Email            string             `json:"email"`
	StudentID        *string            `json:"student_id"`
	Department       string             `json:"department"`
	YearOfStudy      *int               `json:"year_of_study"`
	JoinDate         time.Time          `json:"join_date"`
	MembershipStatus string             `json:"membership_status"`
	Role             domain.StudentRole `json:"role"`
}

func newStudentResponse(s domain.Student) StudentResponse {
	return StudentResponse{
		ID:               s.ID,
		FullName:         s.FullName,
		Email:            s.Email,
		StudentID:        s.StudentID,
		Department:       s.Department,
		YearOfStudy:      s.YearOfStudy,
		JoinDate:         s.JoinDate,
		MembershipStatus: s.MembershipStatus,
		Role:             s.Role,
	}
}

// FacultyRequest creates a faculty.
type FacultyRequest struct {
	FacultyName string `json:"faculty_name" binding:"required,max=100"`
}

// DepartmentRequest creates a department.
type DepartmentRequest struct {
	DepartmentName string `json:"department_name" binding:"required,max=100"`
	FacultyID      int64  `json:"faculty_id" binding:"required,gt=0"`
}

// HealthResponse describes the liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
