package enums

import "testing"

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("librarian")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != UserRoleLibrarian {
		t.Fatalf("expected librarian, got %s", role)
	}

	if _, err := ParseUserRole("superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestUserRoleCapabilities(t *testing.T) {
	cases := []struct {
		role            UserRole
		manageCatalog   bool
		bypassOwnership bool
		manageUsers     bool
		borrow          bool
	}{
		{UserRoleAdmin, true, true, true, true},
		{UserRoleLibrarian, true, true, false, true},
		{UserRoleStudent, false, false, false, true},
		{UserRoleGuest, false, false, false, false},
	}

	for _, tc := range cases {
		if got := tc.role.CanManageCatalog(); got != tc.manageCatalog {
			t.Errorf("%s CanManageCatalog = %v, want %v", tc.role, got, tc.manageCatalog)
		}
		if got := tc.role.CanBypassOwnership(); got != tc.bypassOwnership {
			t.Errorf("%s CanBypassOwnership = %v, want %v", tc.role, got, tc.bypassOwnership)
		}
		if got := tc.role.CanManageUsers(); got != tc.manageUsers {
			t.Errorf("%s CanManageUsers = %v, want %v", tc.role, got, tc.manageUsers)
		}
		if got := tc.role.CanBorrow(); got != tc.borrow {
			t.Errorf("%s CanBorrow = %v, want %v", tc.role, got, tc.borrow)
		}
	}
}

func TestContentStatusParse(t *testing.T) {
	for _, value := range []string{"available", "borrowed", "reserved", "archived"} {
		status, err := ParseContentStatus(value)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if !status.IsValid() {
			t.Fatalf("%q should be valid", value)
		}
	}
	if _, err := ParseContentStatus("checked_out"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestReservationStatusTerminal(t *testing.T) {
	if ReservationStatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
	for _, s := range []ReservationStatus{ReservationStatusFulfilled, ReservationStatusExpired, ReservationStatusCancelled} {
		if !s.IsTerminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
}
