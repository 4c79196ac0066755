package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

var cityColumns = []string{
	"id",
	"COALESCE(commune_name, '')",
	"COALESCE(commune_name_ascii, '')",
	"COALESCE(daira_name, '')",
	"COALESCE(daira_name_ascii, '')",
	"COALESCE(wilaya_code, '')",
	"COALESCE(wilaya_name, '')",
	"COALESCE(wilaya_name_ascii, '')",
}

// ReferenceRepository implements port.ReferenceRepository using PostgreSQL.
type ReferenceRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewReferenceRepository wires a PostgreSQL-backed reference data repository.
func NewReferenceRepository(exec pgExecutor) *ReferenceRepository {
	return &ReferenceRepository{exec: exec, builder: newBuilder()}
}

// ListCities returns every commune ordered by wilaya then commune.
func (r *ReferenceRepository) ListCities(ctx context.Context) ([]domain.City, error) {
	return r.listCities(ctx, nil)
}

// ListCitiesByWilaya returns the communes of one wilaya.
func (r *ReferenceRepository) ListCitiesByWilaya(ctx context.Context, wilayaCode string) ([]domain.City, error) {
	return r.listCities(ctx, squirrel.Eq{"wilaya_code": wilayaCode})
}

func (r *ReferenceRepository) listCities(ctx context.Context, where squirrel.Sqlizer) ([]domain.City, error) {
	query := r.builder.Select(cityColumns...).From("algeria_cities")
	if where != nil {
		query = query.Where(where)
	}

	stmt, args, err := query.OrderBy("wilaya_code ASC", "commune_name_ascii ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list cities sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, translateError("list cities", err)
	}
	defer rows.Close()

	cities := []domain.City{}
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(
			&c.ID,
			&c.CommuneName,
			&c.CommuneNameASCII,
			&c.DairaName,
			&c.DairaNameASCII,
			&c.WilayaCode,
			&c.WilayaName,
			&c.WilayaNameASCII,
		); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cities: %w", err)
	}
	return cities, nil
}

// ListFaculties returns faculties ordered by name.
func (r *ReferenceRepository) ListFaculties(ctx context.Context) ([]domain.Faculty, error) {
	stmt, args, err := r.builder.Select("id", "faculty_name", "created_at", "updated_at").
		From("faculties").
		OrderBy("faculty_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list faculties sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, translateError("list faculties", err)
	}
	defer rows.Close()

	faculties := []domain.Faculty{}
	for rows.Next() {
		var f domain.Faculty
		if err := rows.Scan(&f.ID, &f.FacultyName, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan faculty: %w", err)
		}
		faculties = append(faculties, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faculties: %w", err)
	}
	return faculties, nil
}

// ListDepartmentsByFaculty returns the departments of one faculty.
func (r *ReferenceRepository) ListDepartmentsByFaculty(ctx context.Context, facultyID int64) ([]domain.Department, error) {
	stmt, args, err := r.builder.Select("id", "department_name", "faculty_id", "created_at", "updated_at").
		From("departments").
		Where(squirrel.Eq{"faculty_id": facultyID}).
		OrderBy("department_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list departments sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, translateError("list departments", err)
	}
	defer rows.Close()

	departments := []domain.Department{}
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.DepartmentName, &d.FacultyID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate departments: %w", err)
	}
	return departments, nil
}

// CreateFaculty inserts a faculty.
func (r *ReferenceRepository) CreateFaculty(ctx context.Context, faculty domain.Faculty) (domain.Faculty, error) {
	stmt, args, err := r.builder.Insert("faculties").
		Columns("faculty_name").
		Values(faculty.FacultyName).
		Suffix("RETURNING id, faculty_name, created_at, updated_at").
		ToSql()
	if err != nil {
		return domain.Faculty{}, fmt.Errorf("build insert faculty sql: %w", err)
	}

	var f domain.Faculty
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&f.ID, &f.FacultyName, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return domain.Faculty{}, translateError("insert faculty", err)
	}
	return f, nil
}

// CreateDepartment inserts a department under an existing faculty.
func (r *ReferenceRepository) CreateDepartment(ctx context.Context, department domain.Department) (domain.Department, error) {
	stmt, args, err := r.builder.Insert("departments").
		Columns("department_name", "faculty_id").
		Values(department.DepartmentName, department.FacultyID).
		Suffix("RETURNING id, department_name, faculty_id, created_at, updated_at").
		ToSql()
	if err != nil {
		return domain.Department{}, fmt.Errorf("build insert department sql: %w", err)
	}

	var d domain.Department
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&d.ID, &d.DepartmentName, &d.FacultyID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return domain.Department{}, translateError("insert department", err)
	}
	return d, nil
}

// UpsertCities inserts or refreshes cities by id and returns how many rows were written.
func (r *ReferenceRepository) UpsertCities(ctx context.Context, cities []domain.City) (int, error) {
	if len(cities) == 0 {
		return 0, nil
	}

	query := r.builder.Insert("algeria_cities").
		Columns("id", "commune_name", "commune_name_ascii", "daira_name", "daira_name_ascii", "wilaya_code", "wilaya_name", "wilaya_name_ascii")
	for _, c := range cities {
		query = query.Values(c.ID, c.CommuneName, c.CommuneNameASCII, c.DairaName, c.DairaNameASCII, c.WilayaCode, c.WilayaName, c.WilayaNameASCII)
	}
	query = query.Suffix(`ON CONFLICT (id) DO UPDATE SET
		commune_name = EXCLUDED.commune_name,
		commune_name_ascii = EXCLUDED.commune_name_ascii,
		daira_name = EXCLUDED.daira_name,
		daira_name_ascii = EXCLUDED.daira_name_ascii,
		wilaya_code = EXCLUDED.wilaya_code,
		wilaya_name = EXCLUDED.wilaya_name,
		wilaya_name_ascii = EXCLUDED.wilaya_name_ascii`)

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build upsert cities sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, translateError("upsert cities", err)
	}
	return int(tag.RowsAffected()), nil
}
