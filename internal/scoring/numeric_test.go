package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractNumericToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		found bool
	}{
		{"plain integer", "The answer is 7 apples", 7, true},
		{"leading number", "5 cookies are left.", 5, true},
		{"decimal", "about 3.5 degrees", 3.5, true},
		{"negative decimal", "about -3.5 degrees", -3.5, true},
		{"positive sign", "+12 points", 12, true},
		{"bare decimal point", "roughly .5 of a cup", 0.5, true},
		{"negative bare decimal", "it dropped -.5 overnight", -0.5, true},
		{"first of several", "3 apples and 2 more make 5", 3, true},
		{"trailing period is not decimal", "I counted 10. Then I stopped.", 10, true},
		{"single decimal point only", "version 1.2.3 released", 1.2, true},
		{"no digits", "no numeric content", 0, false},
		{"empty string", "", 0, false},
		{"punctuation only", "?!...", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := extractNumericToken(tt.input)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
