package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	rediscache "github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository/redis"
)

type countingReferenceRepository struct {
	cities       []domain.City
	faculties    []domain.Faculty
	departments  map[int64][]domain.Department
	facultyCalls int
	deptCalls    int
	cityCalls    int
}

func (r *countingReferenceRepository) ListCities(context.Context) ([]domain.City, error) {
	r.cityCalls++
	return r.cities, nil
}

func (r *countingReferenceRepository) ListCitiesByWilaya(_ context.Context, code string) ([]domain.City, error) {
	r.cityCalls++
	var out []domain.City
	for _, c := range r.cities {
		if c.WilayaCode == code {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *countingReferenceRepository) ListFaculties(context.Context) ([]domain.Faculty, error) {
	r.facultyCalls++
	return r.faculties, nil
}

func (r *countingReferenceRepository) ListDepartmentsByFaculty(_ context.Context, id int64) ([]domain.Department, error) {
	r.deptCalls++
	return r.departments[id], nil
}

func (r *countingReferenceRepository) CreateFaculty(_ context.Context, f domain.Faculty) (domain.Faculty, error) {
	f.ID = int64(len(r.faculties) + 1)
	r.faculties = append(r.faculties, f)
	return f, nil
}

func (r *countingReferenceRepository) CreateDepartment(_ context.Context, d domain.Department) (domain.Department, error) {
	d.ID = int64(len(r.departments[d.FacultyID]) + 1)
	r.departments[d.FacultyID] = append(r.departments[d.FacultyID], d)
	return d, nil
}

func (r *countingReferenceRepository) UpsertCities(_ context.Context, cities []domain.City) (int, error) {
	r.cities = append(r.cities, cities...)
	return len(cities), nil
}

func newReferenceFixture(t *testing.T) (*ReferenceService, *countingReferenceRepository, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := red.NewClient(&red.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &countingReferenceRepository{
		faculties:   []domain.Faculty{{ID: 1, FacultyName: "Informatique"}},
		departments: map[int64][]domain.Department{1: {{ID: 1, DepartmentName: "SI", FacultyID: 1}}},
		cities: []domain.City{
			{ID: 1, CommuneName: "Bab Ezzouar", WilayaCode: "16"},
			{ID: 2, CommuneName: "Oran", WilayaCode: "31"},
		},
	}
	svc := NewReferenceService(repo, rediscache.NewCache(client, ""), time.Hour, zaptest.NewLogger(t))
	return svc, repo, srv
}

func TestReferenceServiceCachesReads(t *testing.T) {
	svc, repo, srv := newReferenceFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		faculties, err := svc.Faculties(ctx)
		if err != nil {
			t.Fatalf("Faculties returned error: %v", err)
		}
		if len(faculties) != 1 || faculties[0].FacultyName != "Informatique" {
			t.Fatalf("unexpected faculties: %+v", faculties)
		}
	}
	if repo.facultyCalls != 1 {
		t.Fatalf("expected one database read, got %d", repo.facultyCalls)
	}
	if !srv.Exists("devclub:ref:faculties") {
		t.Fatal("expected faculties to be cached under the reference prefix")
	}

	srv.FastForward(2 * time.Hour)
	if _, err := svc.Faculties(ctx); err != nil {
		t.Fatalf("Faculties returned error: %v", err)
	}
	if repo.facultyCalls != 2 {
		t.Fatalf("expected reload after ttl, got %d reads", repo.facultyCalls)
	}
}

func TestReferenceServiceInvalidatesOnCreate(t *testing.T) {
	svc, repo, _ := newReferenceFixture(t)
	ctx := context.Background()

	if _, err := svc.DepartmentsByFaculty(ctx, 1); err != nil {
		t.Fatalf("DepartmentsByFaculty returned error: %v", err)
	}
	if _, err := svc.CreateDepartment(ctx, "Réseaux", 1); err != nil {
		t.Fatalf("CreateDepartment returned error: %v", err)
	}

	departments, err := svc.DepartmentsByFaculty(ctx, 1)
	if err != nil {
		t.Fatalf("DepartmentsByFaculty returned error: %v", err)
	}
	if len(departments) != 2 || repo.deptCalls != 2 {
		t.Fatalf("expected fresh read after create, got %d departments and %d reads", len(departments), repo.deptCalls)
	}

	if _, err := svc.Faculties(ctx); err != nil {
		t.Fatalf("Faculties returned error: %v", err)
	}
	if _, err := svc.CreateFaculty(ctx, "Mathématiques"); err != nil {
		t.Fatalf("CreateFaculty returned error: %v", err)
	}
	faculties, _ := svc.Faculties(ctx)
	if len(faculties) != 2 {
		t.Fatalf("expected new faculty to be visible, got %+v", faculties)
	}
}

func TestReferenceServiceImportInvalidatesCityLists(t *testing.T) {
	svc, repo, _ := newReferenceFixture(t)
	ctx := context.Background()

	if cities, _ := svc.CitiesByWilaya(ctx, "16"); len(cities) != 1 {
		t.Fatalf("expected one city in wilaya 16, got %d", len(cities))
	}
	if _, err := svc.ImportCities(ctx, []domain.City{{ID: 3, CommuneName: "Hydra", WilayaCode: "16"}}); err != nil {
		t.Fatalf("ImportCities returned error: %v", err)
	}
	if cities, _ := svc.CitiesByWilaya(ctx, "16"); len(cities) != 2 {
		t.Fatalf("expected refreshed wilaya list, got %d", len(cities))
	}
	if repo.cityCalls != 2 {
		t.Fatalf("expected two database reads, got %d", repo.cityCalls)
	}
}

func TestReferenceServiceDegradesWhenCacheIsDown(t *testing.T) {
	svc, repo, srv := newReferenceFixture(t)
	srv.Close()

	cities, err := svc.Cities(context.Background())
	if err != nil {
		t.Fatalf("Cities must fall back to the database: %v", err)
	}
	if len(cities) != 2 || repo.cityCalls != 1 {
		t.Fatalf("unexpected fallback result: %d cities, %d reads", len(cities), repo.cityCalls)
	}
}

func TestReferenceServiceWithoutCache(t *testing.T) {
	repo := &countingReferenceRepository{departments: map[int64][]domain.Department{}}
	svc := NewReferenceService(repo, nil, 0, nil)

	departments, err := svc.DepartmentsByFaculty(context.Background(), 5)
	if err != nil {
		t.Fatalf("DepartmentsByFaculty returned error: %v", err)
	}
	if departments == nil || len(departments) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", departments)
	}
	if _, err := svc.DepartmentsByFaculty(context.Background(), 0); err == nil {
		t.Fatal("expected validation error for faculty 0")
	}
}
