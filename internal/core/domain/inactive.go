package domain

import "strings"

// IsInactiveMessage reports whether a backend error message means the account
// is deactivated. The backend has no structured code for this, so the check is
// a case-insensitive substring match.
func IsInactiveMessage(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "inactive") || strings.Contains(m, "activate your account")
}
