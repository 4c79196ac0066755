package domain

import "time"

// AnalyticsReport aggregates point-in-time counts for the admin dashboard.
// Sub-counts are computed independently and are not taken from one snapshot.
type AnalyticsReport struct {
	GeneratedAt   time.Time
	Events        EventStats
	Announcements AnnouncementStats
	Students      StudentStats
	Users         UserStats
}

type EventStats struct {
	Total           int
	Upcoming        int
	Completed       int
	AvgParticipants float64
}

// AnnouncementStats.Active requires status=active and no past expiry, while
// HighPriority only looks at priority.
type AnnouncementStats struct {
	Total        int
	Active       int
	HighPriority int
}

type StudentStats struct {
	Total      int
	Active     int
	Organizers int
	NewMembers int
}

type UserStats struct {
	Total    int
	Active   int
	NewUsers int
}
