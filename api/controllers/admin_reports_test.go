package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/internal/reports"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/mfigueroa/openshelf-backend/pkg/errors"
)

type stubReportsService struct {
	overviewFn func(ctx context.Context, actorRole enums.UserRole) (*reports.Overview, error)
	exportFn   func(ctx context.Context, actorRole enums.UserRole) ([]byte, error)
}

func (s *stubReportsService) Overview(ctx context.Context, actorRole enums.UserRole) (*reports.Overview, error) {
	return s.overviewFn(ctx, actorRole)
}

func (s *stubReportsService) ExportCSV(ctx context.Context, actorRole enums.UserRole) ([]byte, error) {
	return s.exportFn(ctx, actorRole)
}

func TestAdminReportsOverview(t *testing.T) {
	svc := &stubReportsService{
		overviewFn: func(ctx context.Context, actorRole enums.UserRole) (*reports.Overview, error) {
			if actorRole != enums.UserRoleLibrarian {
				t.Fatalf("expected librarian role got %s", actorRole)
			}
			return &reports.Overview{TotalUsers: 42}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/reports/overview", nil, uuid.New(), enums.UserRoleLibrarian)
	rec := httptest.NewRecorder()
	AdminReportsOverview(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAdminReportsExportCSV(t *testing.T) {
	svc := &stubReportsService{
		exportFn: func(ctx context.Context, actorRole enums.UserRole) ([]byte, error) {
			return []byte("metric,value\ntotal_users,42\n"), nil
		},
	}

	req := authedRequest(http.MethodGet, "/reports/export", nil, uuid.New(), enums.UserRoleAdmin)
	rec := httptest.NewRecorder()
	AdminReportsExport(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv got %q", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
		t.Fatalf("expected attachment disposition")
	}
	if !strings.Contains(rec.Body.String(), "total_users,42") {
		t.Fatalf("expected csv body got %q", rec.Body.String())
	}
}

func TestAdminReportsForbiddenPassthrough(t *testing.T) {
	svc := &stubReportsService{
		overviewFn: func(ctx context.Context, actorRole enums.UserRole) (*reports.Overview, error) {
			return nil, errors.New(errors.CodeForbidden, "role cannot view reports")
		},
	}

	req := authedRequest(http.MethodGet, "/reports/overview", nil, uuid.New(), enums.UserRoleStudent)
	rec := httptest.NewRecorder()
	AdminReportsOverview(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}
