package port

import (
	"context"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

// ReferenceRepository stores cities, faculties and departments.
type ReferenceRepository interface {
	ListCities(ctx context.Context) ([]domain.City, error)
	ListCitiesByWilaya(ctx context.Context, wilayaCode string) ([]domain.City, error)
	ListFaculties(ctx context.Context) ([]domain.Faculty, error)
	ListDepartmentsByFaculty(ctx context.Context, facultyID int64) ([]domain.Department, error)
	CreateFaculty(ctx context.Context, faculty domain.Faculty) (domain.Faculty, error)
	CreateDepartment(ctx context.Context, department domain.Department) (domain.Department, error)
	UpsertCities(ctx context.Context, cities []domain.City) (int, error)
}
