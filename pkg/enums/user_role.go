package enums

import "fmt"

// UserRole scopes what a dealership user may do.
type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleBranchManager  UserRole = "branch_manager"
	RoleSalesExecutive UserRole = "sales_executive"
	RoleSubdealerUser  UserRole = "subdealer_user"
)

var validUserRoles = []UserRole{
	RoleAdmin,
	RoleBranchManager,
	RoleSalesExecutive,
	RoleSubdealerUser,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
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
