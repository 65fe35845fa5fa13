// Package access decides which users may use the AI tools.
package access

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAIRestricted is returned when a free-tier user calls an AI operation.
var ErrAIRestricted = errors.New("AI tools are only available for premium and admin users")

// Role is a subscription tier.
type Role string

const (
	RoleFree    Role = "free"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

// ParseRole parses a stored role name, ignoring case and surrounding space.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleFree:
		return RoleFree, nil
	case RolePremium:
		return RolePremium, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// CanUseAI reports whether the role includes the AI tools.
func (r Role) CanUseAI() bool {
	return r == RolePremium || r == RoleAdmin
}

// RequireAI returns ErrAIRestricted unless the role includes the AI tools.
func RequireAI(r Role) error {
	if !r.CanUseAI() {
		return ErrAIRestricted
	}
	return nil
}
