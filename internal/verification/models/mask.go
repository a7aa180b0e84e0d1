package models

import "strings"

const maskChar = "*"

// visibleSuffix is the number of trailing phone digits left readable.
const visibleSuffix = 4

// MaskPhone keeps the country-code or trunk prefix and the last four digits;
// everything between becomes '*'. Length is preserved.
func MaskPhone(phone string) string {
	prefix := ""
	switch {
	case strings.HasPrefix(phone, "+234"):
		prefix = "+234"
	case strings.HasPrefix(phone, "0"):
		prefix = "0"
	}
	rest := phone[len(prefix):]
	if len(rest) <= visibleSuffix {
		return phone
	}
	middle := len(rest) - visibleSuffix
	return prefix + strings.Repeat(maskChar, middle) + rest[middle:]
}

// MaskEmail keeps the first character of the local part and the domain.
// Local parts of two characters or fewer are returned unchanged.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	local, domainPart := email[:at], email[at:]
	if len(local) <= 2 {
		return email
	}
	return local[:1] + strings.Repeat(maskChar, len(local)-1) + domainPart
}
