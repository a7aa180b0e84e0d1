// Package strings holds small string helpers shared by the platform packages.
package strings

import (
	"strings"
)

// SplitList flattens comma-separated entries, trimming whitespace and
// dropping empties and repeats. Order of first appearance is kept.
//
//	SplitList([]string{"a, b", "b", " ", "c"}) // []string{"a", "b", "c"}
func SplitList(values []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
