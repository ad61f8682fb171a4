package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	may20 := time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		dateText string
		want     time.Time
	}{
		{"ISO date", "2025-05-20", may20},
		{"month day year", "May 20, 2025", may20},
		{"weekday month day year", "Tuesday, May 20, 2025", may20},
		{"ordinal suffix", "May 20th, 2025", may20},
		{"missing comma", "May 20 2025", may20},
		{"weekday without comma", "Tuesday May 20, 2025", may20},
		{"abbreviated month", "Jun 1, 2025", time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{"extra whitespace", "  May   20,  2025 ", may20},
		{"empty", "", time.Time{}},
		{"garbage", "next Tuesday", time.Time{}},
		{"invalid day", "2025-02-30", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.dateText)
			assert.True(t, tt.want.Equal(got), "ParseDate(%q) = %v, want %v", tt.dateText, got, tt.want)
		})
	}
}

func TestNormalizeDateText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"May 19, 2025", "May 19, 2025"},
		{"Monday May 19th 2025", "Monday, May 19, 2025"},
		{"May 1st, 2025", "May 1, 2025"},
		{"2025-05-19", "2025-05-19"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDateText(tt.in))
		})
	}
}

func TestParseISODate(t *testing.T) {
	d, err := ParseISODate(" 2025-05-19 ")
	assert.NoError(t, err)
	assert.Equal(t, time.Monday, d.Weekday())

	_, err = ParseISODate("May 19")
	assert.Error(t, err)
}
