package domain

import (
	"fmt"
	"regexp"
)

// JacketPrefix is the state prefix printed on every jacket number.
const JacketPrefix = "OG"

// MaxJacketSequence is the largest sequence a five-digit jacket number holds.
const MaxJacketSequence = 99999

var jacketNumberPattern = regexp.MustCompile(`^OG-[A-Z]{3}-\d{5}$`)

// IsWellFormedJacketNumber checks syntax only: prefix, 3-letter code, 5 digits.
func IsWellFormedJacketNumber(s string) bool {
	return jacketNumberPattern.MatchString(s)
}

// FormatJacketNumber renders OG-<CODE>-<NNNNN>.
func FormatJacketNumber(code string, sequence int) string {
	return fmt.Sprintf("%s-%s-%05d", JacketPrefix, code, sequence)
}
