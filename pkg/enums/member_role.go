package enums

import "fmt"

// MemberRole is the actor role carried in access tokens.
type MemberRole string

const (
	MemberRoleOwner MemberRole = "owner"
	MemberRoleStaff MemberRole = "staff"
)

var validMemberRoles = []MemberRole{
	MemberRoleOwner,
	MemberRoleStaff,
}

// String implements fmt.Stringer.
func (r MemberRole) String() string {
	return string(r)
}

// IsValid reports whether the value is known.
func (r MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
