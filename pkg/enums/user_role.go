package enums

import "fmt"

// UserRole represents a library member's permission level.
type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleLibrarian UserRole = "librarian"
	UserRoleStudent   UserRole = "student"
	UserRoleGuest     UserRole = "guest"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleLibrarian,
	UserRoleStudent,
	UserRoleGuest,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// CanManageCatalog reports whether the role may upload, edit, or archive content.
func (r UserRole) CanManageCatalog() bool {
	return r == UserRoleAdmin || r == UserRoleLibrarian
}

// CanBypassOwnership reports whether the role may act on ledger records owned by
// other users, such as returning another member's borrow.
func (r UserRole) CanBypassOwnership() bool {
	return r == UserRoleAdmin || r == UserRoleLibrarian
}

// CanManageUsers reports whether the role may create, edit, or remove accounts.
func (r UserRole) CanManageUsers() bool {
	return r == UserRoleAdmin
}

// CanViewReports reports whether the role may read system-wide reports.
func (r UserRole) CanViewReports() bool {
	return r == UserRoleAdmin
}

// CanBorrow reports whether the role may take out content at all.
func (r UserRole) CanBorrow() bool {
	return r != UserRoleGuest
}
