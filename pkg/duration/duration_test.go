package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "empty string defaults to 1 hour", input: "", expected: time.Hour},
		{name: "blank string defaults to 1 hour", input: "  ", expected: time.Hour},
		{name: "seconds as string", input: "3600", expected: 3600 * time.Second},
		{name: "minutes format", input: "30m", expected: 30 * time.Minute},
		{name: "hours format", input: "2h", expected: 2 * time.Hour},
		{name: "seconds format", input: "1800s", expected: 1800 * time.Second},
		{name: "complex duration", input: "1h30m", expected: time.Hour + 30*time.Minute},
		{name: "surrounding spaces", input: " 45m ", expected: 45 * time.Minute},
		{name: "negative duration parses", input: "-30m", expected: -30 * time.Minute},
		{name: "invalid format", input: "invalid", wantErr: true},
		{name: "unit only", input: "h", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid duration format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		wantErr  string
	}{
		{name: "valid 15 minutes", duration: 15 * time.Minute},
		{name: "valid 1 hour", duration: time.Hour},
		{name: "valid 12 hours", duration: 12 * time.Hour},
		{name: "too short - 14 minutes", duration: 14 * time.Minute, wantErr: "cannot be less than 15m"},
		{name: "too long - 13 hours", duration: 13 * time.Hour, wantErr: "cannot exceed 12h"},
		{name: "zero duration", duration: 0, wantErr: "cannot be less than"},
		{name: "negative duration", duration: -time.Hour, wantErr: "cannot be less than"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.duration)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{duration: time.Hour, expected: "1h"},
		{duration: 30 * time.Minute, expected: "30m"},
		{duration: 90 * time.Minute, expected: "1h 30m"},
		{duration: 3600 * time.Second, expected: "1h"},
		{duration: 1890 * time.Second, expected: "31m 30s"},
		{duration: 2*time.Hour + 30*time.Minute + 45*time.Second, expected: "2h 30m"},
		{duration: 45 * time.Second, expected: "45s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.duration))
		})
	}
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, int32(3600), Seconds(time.Hour))
	assert.Equal(t, int32(900), Seconds(Min))
	assert.Equal(t, int32(43200), Seconds(Max))
	assert.Equal(t, int32(90), Seconds(90*time.Second+500*time.Millisecond))
}
