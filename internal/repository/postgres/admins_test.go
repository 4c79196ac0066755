package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

func TestAdminRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewAdminRepository(mock)
	created := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, password, full_name, is_super_admin, created_at, updated_at FROM admins WHERE id = $1 LIMIT 1`)).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(adminColumns).AddRow(int64(3), "root@devclub.dz", "$2b$12$hash", "Root", true, created, created))

	admin, err := repo.GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if admin.Email != "root@devclub.dz" || !admin.IsSuperAdmin {
		t.Fatalf("unexpected admin: %+v", admin)
	}
}

func TestAdminRepository_RecordLogin(t *testing.T) {
	mock := newMock(t)
	repo := NewAdminRepository(mock)

	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	ip := "10.0.0.1"
	ua := "curl/8.0"
	entry := domain.AdminLoginHistory{AdminID: 3, LoginTime: at, IPAddress: &ip, UserAgent: &ua}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO admin_login_history (admin_id,login_time,ip_address,user_agent) VALUES ($1,$2,$3,$4) RETURNING id`)).
		WithArgs(int64(3), at, &ip, &ua).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	recorded, err := repo.RecordLogin(context.Background(), entry)
	if err != nil {
		t.Fatalf("RecordLogin returned error: %v", err)
	}
	if recorded.ID != 11 || recorded.AdminID != 3 {
		t.Fatalf("unexpected history row: %+v", recorded)
	}
}

func TestAdminRepository_ListLoginHistory(t *testing.T) {
	mock := newMock(t)
	repo := NewAdminRepository(mock)
	newest := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	older := newest.Add(-24 * time.Hour)
	ip := "10.0.0.1"

	mock.ExpectQuery(regexp.QuoteMeta(`FROM admin_login_history WHERE admin_id = $1 ORDER BY login_time DESC, id DESC LIMIT 10`)).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "admin_id", "login_time", "ip_address", "user_agent"}).
			AddRow(int64(2), int64(3), newest, &ip, (*string)(nil)).
			AddRow(int64(1), int64(3), older, (*string)(nil), (*string)(nil)))

	history, err := repo.ListLoginHistory(context.Background(), 3, 10)
	if err != nil {
		t.Fatalf("ListLoginHistory returned error: %v", err)
	}
	if len(history) != 2 || history[0].ID != 2 || !history[0].LoginTime.Equal(newest) {
		t.Fatalf("unexpected history: %+v", history)
	}
	if history[0].IPAddress == nil || *history[0].IPAddress != ip || history[1].IPAddress != nil {
		t.Fatalf("unexpected ip columns: %+v", history)
	}
}
