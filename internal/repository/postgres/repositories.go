package postgres

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users         *UserRepository
	Admins        *AdminRepository
	Events        *EventRepository
	Registrations *RegistrationRepository
	Announcements *AnnouncementRepository
	Students      *StudentRepository
	Reference     *ReferenceRepository
}

// NewRepositories wires all repositories backed by the provided executor,
// normally the shared *pgxpool.Pool.
func NewRepositories(exec pgExecutor) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(exec),
		Admins:        NewAdminRepository(exec),
		Events:        NewEventRepository(exec),
		Registrations: NewRegistrationRepository(exec),
		Announcements: NewAnnouncementRepository(exec),
		Students:      NewStudentRepository(exec),
		Reference:     NewReferenceRepository(exec),
	}
}
