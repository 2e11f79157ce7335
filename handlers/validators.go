package handlers

import (
	"regexp"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9_]+$`)
	digitRegex    = regexp.MustCompile(`\d`)
)

// Name shouldn't exceed 20 characters
func validateName(name string) bool {
	return name != "" && len(name) <= 20
}

// Username should be lowercase, can contain numbers and underscores, no spaces
func validateUsername(username string) bool {
	return len(username) <= 20 && usernameRegex.MatchString(username)
}

// Bio should not exceed 50 characters
func validateBio(bio string) bool {
	return len(bio) <= 50
}

// Password should be at least 8 characters long and contain at least one digit
func validatePassword(password string) bool {
	return len(password) >= 8 && digitRegex.MatchString(password)
}
