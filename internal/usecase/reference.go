package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
)

const (
	defaultReferenceTTL = 6 * time.Hour

	cacheKeyCities    = "cities"
	cacheKeyFaculties = "faculties"
)

func citiesByWilayaKey(code string) string { return "cities:wilaya:" + code }

func departmentsKey(facultyID int64) string {
	return "departments:faculty:" + strconv.FormatInt(facultyID, 10)
}

// ReferenceService serves cities, faculties and departments from the cache,
// falling back to the repository. A broken cache only costs a database read.
type ReferenceService struct {
	repo   port.ReferenceRepository
	cache  port.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewReferenceService constructs a ReferenceService. cache may be nil.
func NewReferenceService(repo port.ReferenceRepository, cache port.Cache, ttl time.Duration, log *zap.Logger) *ReferenceService {
	if ttl <= 0 {
		ttl = defaultReferenceTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReferenceService{repo: repo, cache: cache, ttl: ttl, logger: log}
}

// Cities returns every city, cached under a single key.
func (s *ReferenceService) Cities(ctx context.Context) ([]domain.City, error) {
	return cached(ctx, s, cacheKeyCities, s.repo.ListCities)
}

// CitiesByWilaya returns the cities of one wilaya.
func (s *ReferenceService) CitiesByWilaya(ctx context.Context, wilayaCode string) ([]domain.City, error) {
	wilayaCode = strings.TrimSpace(wilayaCode)
	if wilayaCode == "" {
		return nil, fmt.Errorf("wilaya_code is required: %w", domain.ErrValidation)
	}
	return cached(ctx, s, citiesByWilayaKey(wilayaCode), func(ctx context.Context) ([]domain.City, error) {
		return s.repo.ListCitiesByWilaya(ctx, wilayaCode)
	})
}

// Faculties returns every faculty.
func (s *ReferenceService) Faculties(ctx context.Context) ([]domain.Faculty, error) {
	return cached(ctx, s, cacheKeyFaculties, s.repo.ListFaculties)
}

// DepartmentsByFaculty returns the departments of one faculty.
func (s *ReferenceService) DepartmentsByFaculty(ctx context.Context, facultyID int64) ([]domain.Department, error) {
	if facultyID <= 0 {
		return nil, fmt.Errorf("faculty_id must be positive: %w", domain.ErrValidation)
	}
	return cached(ctx, s, departmentsKey(facultyID), func(ctx context.Context) ([]domain.Department, error) {
		return s.repo.ListDepartmentsByFaculty(ctx, facultyID)
	})
}

// CreateFaculty stores a faculty and drops the cached faculty list.
func (s *ReferenceService) CreateFaculty(ctx context.Context, name string) (domain.Faculty, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Faculty{}, fmt.Errorf("faculty_name is required: %w", domain.ErrValidation)
	}
	faculty, err := s.repo.CreateFaculty(ctx, domain.Faculty{FacultyName: name})
	if err != nil {
		return domain.Faculty{}, fmt.Errorf("create faculty: %w", err)
	}
	s.invalidate(ctx, cacheKeyFaculties)
	return faculty, nil
}

// CreateDepartment stores a department under an existing faculty and drops
// that faculty's cached department list.
func (s *ReferenceService) CreateDepartment(ctx context.Context, name string, facultyID int64) (domain.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" || facultyID <= 0 {
		return domain.Department{}, fmt.Errorf("department_name and faculty_id are required: %w", domain.ErrValidation)
	}
	department, err := s.repo.CreateDepartment(ctx, domain.Department{DepartmentName: name, FacultyID: facultyID})
	if err != nil {
		return domain.Department{}, fmt.Errorf("create department: %w", err)
	}
	s.invalidate(ctx, departmentsKey(facultyID))
	return department, nil
}

// ImportCities upserts cities and drops every cached city list they touch.
func (s *ReferenceService) ImportCities(ctx context.Context, cities []domain.City) (int, error) {
	n, err := s.repo.UpsertCities(ctx, cities)
	if err != nil {
		return 0, fmt.Errorf("upsert cities: %w", err)
	}

	keys := []string{cacheKeyCities}
	seen := map[string]bool{}
	for _, c := range cities {
		if !seen[c.WilayaCode] {
			seen[c.WilayaCode] = true
			keys = append(keys, citiesByWilayaKey(c.WilayaCode))
		}
	}
	s.invalidate(ctx, keys...)
	return n, nil
}

func cached[T any](ctx context.Context, s *ReferenceService, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var out []T
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, nil
			}
			s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
		case !errors.Is(err, port.ErrCacheMiss):
			s.logger.Warn("reference cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	items, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}

	if s.cache != nil {
		raw, err := json.Marshal(items)
		if err == nil {
			err = s.cache.Set(ctx, key, raw, s.ttl)
		}
		if err != nil {
			s.logger.Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}

func (s *ReferenceService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("reference cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
