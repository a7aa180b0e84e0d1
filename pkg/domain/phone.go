package domain

import "regexp"

var phonePattern = regexp.MustCompile(`^(\+234|0)[789]\d{9}$`)

// IsValidPhone accepts Nigerian mobile numbers in +234 or local 0 form.
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}
