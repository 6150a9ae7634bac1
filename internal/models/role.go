package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// ErrInvalidRole is returned when a role name is not one of the assignable roles.
var ErrInvalidRole = errors.New("invalid role")

// --- Role Enum ---
type Role string

const (
	// RoleUnset marks an identity created through a provider login whose
	// owner has not picked an account type yet.
	RoleUnset     Role = ""
	RoleApplicant Role = "applicant"
	RoleRecruiter Role = "recruiter"
)

// ParseRole accepts only the assignable roles.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Assignable() {
		return RoleUnset, fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Assignable reports whether r can be chosen at signup or as a migration target.
func (r Role) Assignable() bool {
	return r == RoleApplicant || r == RoleRecruiter
}

func (r Role) String() string {
	if r == RoleUnset {
		return "unset"
	}
	return string(r)
}

// Scan implements the sql.Scanner interface for Role
func (r *Role) Scan(value interface{}) error {
	if value == nil {
		*r = RoleUnset
		return nil
	}
	strVal, ok := value.(string)
	if !ok {
		byteVal, ok := value.([]byte)
		if ok {
			strVal = string(byteVal)
		} else {
			return fmt.Errorf("failed to scan Role: value is not string or []byte")
		}
	}
	v := Role(strVal)
	switch v {
	case RoleUnset, RoleApplicant, RoleRecruiter:
		*r = v
		return nil
	default:
		return fmt.Errorf("invalid Role value: %s", strVal)
	}
}

// Value implements the driver.Valuer interface for Role
func (r Role) Value() (driver.Value, error) {
	return string(r), nil
}
