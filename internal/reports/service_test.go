package reports

import (
	"context"
	"strings"
	"testing"

	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	pkgerrors "github.com/mfigueroa/openshelf-backend/pkg/errors"
)

type stubRepo struct {
	users    int64
	content  int64
	borrows  int64
	active   int64
	overdue  int64
	pending  int64
	waiting  int64
	byRole   map[string]int64
	byStatus map[string]int64
	byGenre  map[string]int64
	byMonth  []MonthlyCount
	avgDays  float64
}

func (s *stubRepo) CountProfiles(_ context.Context) (int64, error) { return s.users, nil }
func (s *stubRepo) CountContent(_ context.Context) (int64, error)  { return s.content, nil }
func (s *stubRepo) CountBorrows(_ context.Context) (int64, error)  { return s.borrows, nil }

func (s *stubRepo) CountBorrowsByStatus(_ context.Context, statuses ...enums.BorrowStatus) (int64, error) {
	if len(statuses) == 1 && statuses[0] == enums.BorrowStatusOverdue {
		return s.overdue, nil
	}
	return s.active, nil
}

func (s *stubRepo) CountReservationsByStatus(_ context.Context, _ enums.ReservationStatus) (int64, error) {
	return s.pending, nil
}

func (s *stubRepo) CountWaitlistByStatus(_ context.Context, _ enums.WaitlistStatus) (int64, error) {
	return s.waiting, nil
}

func (s *stubRepo) UsersByRole(_ context.Context) (map[string]int64, error)    { return s.byRole, nil }
func (s *stubRepo) ContentByStatus(_ context.Context) (map[string]int64, error) { return s.byStatus, nil }
func (s *stubRepo) ContentByGenre(_ context.Context) (map[string]int64, error)  { return s.byGenre, nil }

func (s *stubRepo) BorrowsByMonth(_ context.Context, _ int) ([]MonthlyCount, error) {
	return s.byMonth, nil
}

func (s *stubRepo) AvgBorrowDays(_ context.Context) (float64, error) { return s.avgDays, nil }

func seededRepo() *stubRepo {
	return &stubRepo{
		users:    42,
		content:  120,
		borrows:  300,
		active:   18,
		overdue:  3,
		pending:  5,
		waiting:  7,
		byRole:   map[string]int64{"student": 38, "librarian": 3, "admin": 1},
		byStatus: map[string]int64{"available": 100, "borrowed": 18, "archived": 2},
		byGenre:  map[string]int64{"fiction": 60, "uncategorized": 60},
		byMonth:  []MonthlyCount{{Month: "January", Count: 10}, {Month: "February", Count: 20}},
		avgDays:  9.5,
	}
}

func TestOverviewAssemblesAllSections(t *testing.T) {
	svc, err := NewService(seededRepo())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	overview, err := svc.Overview(context.Background(), enums.UserRoleLibrarian)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.TotalUsers != 42 || overview.ActiveBorrows != 18 || overview.OverdueBorrows != 3 {
		t.Fatalf("unexpected counts %+v", overview)
	}
	if overview.UsersByRole["student"] != 38 {
		t.Fatalf("expected 38 students, got %d", overview.UsersByRole["student"])
	}
	if overview.AvgBorrowDays != 9.5 {
		t.Fatalf("expected avg 9.5, got %f", overview.AvgBorrowDays)
	}
}

func TestOverviewForbiddenForStudents(t *testing.T) {
	svc, _ := NewService(seededRepo())
	_, err := svc.Overview(context.Background(), enums.UserRoleStudent)
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden code, got %v", err)
	}
}

func TestExportCSVContainsMetrics(t *testing.T) {
	svc, _ := NewService(seededRepo())

	data, err := svc.ExportCSV(context.Background(), enums.UserRoleAdmin)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	sheet := string(data)
	if !strings.HasPrefix(sheet, "metric,value\n") {
		t.Fatalf("expected header row, got %q", sheet[:40])
	}
	for _, want := range []string{
		"total_users,42",
		"overdue_borrows,3",
		"avg_borrow_days,9.50",
		"users_by_role_student,38",
		"content_by_genre_fiction,60",
		"borrows_january,10",
	} {
		if !strings.Contains(sheet, want+"\n") {
			t.Fatalf("expected row %q in csv:\n%s", want, sheet)
		}
	}
}
