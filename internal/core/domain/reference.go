package domain

import "time"

// City is an Algerian commune with its daira and wilaya.
type City struct {
	ID               int64  `json:"id" yaml:"id"`
	CommuneName      string `json:"commune_name" yaml:"commune_name"`
	CommuneNameASCII string `json:"commune_name_ascii" yaml:"commune_name_ascii"`
	DairaName        string `json:"daira_name" yaml:"daira_name"`
	DairaNameASCII   string `json:"daira_name_ascii" yaml:"daira_name_ascii"`
	WilayaCode       string `json:"wilaya_code" yaml:"wilaya_code"`
	WilayaName       string `json:"wilaya_name" yaml:"wilaya_name"`
	WilayaNameASCII  string `json:"wilaya_name_ascii" yaml:"wilaya_name_ascii"`
}

// Faculty groups departments of the university.
type Faculty struct {
	ID          int64      `json:"id" yaml:"id"`
	FacultyName string     `json:"faculty_name" yaml:"faculty_name"`
	CreatedAt   time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// Department belongs to a faculty.
type Department struct {
	ID             int64      `json:"id" yaml:"id"`
	DepartmentName string     `json:"department_name" yaml:"department_name"`
	FacultyID      int64      `json:"faculty_id" yaml:"faculty_id"`
	CreatedAt      time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty" yaml:"-"`
}
