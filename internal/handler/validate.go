package handler

import (
	"regexp"
	"strings"
)

var orgNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// validOrgName checks the organization name format: 3-50 characters,
// alphanumeric plus underscore.
func validOrgName(name string) bool {
	if len(name) < 3 || len(name) > 50 {
		return false
	}
	return orgNamePattern.MatchString(name)
}

// validEmail is a light format check; full validation is the mail system's
// problem.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && len(email) <= 255
}

// validPassword enforces the minimum password length.
func validPassword(password string) bool {
	return len(password) >= 8
}
