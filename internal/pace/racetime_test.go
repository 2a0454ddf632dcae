package pace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRaceTime(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"5:14.153", 314.153},
		{"05:14", 314},
		{"14.5", 14.5},
		{"59", 59},
		{"314.153", 314.153},
		{"120", 120},
		{".5", 0.5},
		{" 1:00.000 ", 60},
		{"2:03.", 123},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRaceTime(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseRaceTimeRejects(t *testing.T) {
	for _, in := range []string{"", ".", "1:75", "60:00", "1234", "3.14159", "abc", "1:2:3"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseRaceTime(in)
			assert.Error(t, err)
		})
	}
}

func TestFormatRaceTime(t *testing.T) {
	assert.Equal(t, "05:14.153", FormatRaceTime(314.1528))
	assert.Equal(t, "00:00.000", FormatRaceTime(0))
	assert.Equal(t, "00:59.500", FormatRaceTime(59.5))
	assert.Equal(t, "01:02:05.500", FormatRaceTime(3725.5))
}

func TestRaceTimeRoundTrip(t *testing.T) {
	secs, err := ParseRaceTime(FormatRaceTime(314.1528))
	require.NoError(t, err)
	assert.InDelta(t, 314.153, secs, 1e-9)
}
