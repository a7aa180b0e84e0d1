package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil", input: nil, expected: nil},
		{name: "only blanks", input: []string{"", " , "}, expected: nil},
		{name: "single env value", input: []string{"broker-1:9092, broker-2:9092"}, expected: []string{"broker-1:9092", "broker-2:9092"}},
		{name: "repeats dropped", input: []string{"a", "b,a", " b "}, expected: []string{"a", "b"}},
		{name: "case preserved", input: []string{"https://A.example", "https://a.example"}, expected: []string{"https://A.example", "https://a.example"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input))
		})
	}
}
