package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	pkgerrors "github.com/mfigueroa/openshelf-backend/pkg/errors"
)

// Service exposes the staff reporting views.
type Service interface {
	Overview(ctx context.Context, actorRole enums.UserRole) (*Overview, error)
	ExportCSV(ctx context.Context, actorRole enums.UserRole) ([]byte, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs the reports service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Overview(ctx context.Context, actorRole enums.UserRole) (*Overview, error) {
	if !actorRole.CanViewReports() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot view reports")
	}

	overview := &Overview{}
	var err error

	if overview.TotalUsers, err = s.repo.CountProfiles(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	if overview.TotalContent, err = s.repo.CountContent(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count content")
	}
	if overview.TotalBorrows, err = s.repo.CountBorrows(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count borrows")
	}
	if overview.ActiveBorrows, err = s.repo.CountBorrowsByStatus(ctx, enums.BorrowStatusBorrowed, enums.BorrowStatusOverdue); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active borrows")
	}
	if overview.OverdueBorrows, err = s.repo.CountBorrowsByStatus(ctx, enums.BorrowStatusOverdue); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count overdue borrows")
	}
	if overview.PendingReservations, err = s.repo.CountReservationsByStatus(ctx, enums.ReservationStatusPending); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending reservations")
	}
	if overview.WaitingEntries, err = s.repo.CountWaitlistByStatus(ctx, enums.WaitlistStatusWaiting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count waitlist entries")
	}
	if overview.UsersByRole, err = s.repo.UsersByRole(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "group users by role")
	}
	if overview.ContentByStatus, err = s.repo.ContentByStatus(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "group content by status")
	}
	if overview.ContentByGenre, err = s.repo.ContentByGenre(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "group content by genre")
	}
	if overview.BorrowsByMonth, err = s.repo.BorrowsByMonth(ctx, s.now().UTC().Year()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build borrow histogram")
	}
	if overview.AvgBorrowDays, err = s.repo.AvgBorrowDays(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "average borrow duration")
	}
	return overview, nil
}

// ExportCSV flattens the overview into a two-column metric/value sheet.
func (s *service) ExportCSV(ctx context.Context, actorRole enums.UserRole) ([]byte, error) {
	overview, err := s.Overview(ctx, actorRole)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	records := [][]string{
		{"metric", "value"},
		{"total_users", strconv.FormatInt(overview.TotalUsers, 10)},
		{"total_content", strconv.FormatInt(overview.TotalContent, 10)},
		{"total_borrows", strconv.FormatInt(overview.TotalBorrows, 10)},
		{"active_borrows", strconv.FormatInt(overview.ActiveBorrows, 10)},
		{"overdue_borrows", strconv.FormatInt(overview.OverdueBorrows, 10)},
		{"pending_reservations", strconv.FormatInt(overview.PendingReservations, 10)},
		{"waiting_entries", strconv.FormatInt(overview.WaitingEntries, 10)},
		{"avg_borrow_days", strconv.FormatFloat(overview.AvgBorrowDays, 'f', 2, 64)},
	}
	records = append(records, mapRecords("users_by_role", overview.UsersByRole)...)
	records = append(records, mapRecords("content_by_status", overview.ContentByStatus)...)
	records = append(records, mapRecords("content_by_genre", overview.ContentByGenre)...)
	for _, bucket := range overview.BorrowsByMonth {
		records = append(records, []string{
			"borrows_" + strings.ToLower(bucket.Month),
			strconv.FormatInt(bucket.Count, 10),
		})
	}

	if err := writer.WriteAll(records); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv")
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return []byte(buf.String()), nil
}

func mapRecords(prefix string, values map[string]int64) [][]string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([][]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, []string{prefix + "_" + key, strconv.FormatInt(values[key], 10)})
	}
	return out
}
