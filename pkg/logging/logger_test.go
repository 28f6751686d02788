package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    int
		wantErr bool
	}{
		{name: "empty is default", level: "", want: DEFAULT},
		{name: "info", level: "info", want: DEFAULT},
		{name: "verbose", level: "Verbose", want: VERBOSE},
		{name: "debug", level: "debug", want: DEBUG},
		{name: "trace", level: " trace ", want: TRACE},
		{name: "number", level: "7", want: 7},
		{name: "negative number", level: "-3", wantErr: true},
		{name: "garbage", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", true)
	require.NoError(t, err)

	assert.True(t, logger.V(DEBUG).Enabled())
	assert.False(t, logger.V(TRACE).Enabled())

	logger, err = NewLogger("info", false)
	require.NoError(t, err)
	assert.True(t, logger.Enabled())
	assert.False(t, logger.V(VERBOSE).Enabled())

	_, err = NewLogger("loud", false)
	assert.Error(t, err)
}

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger()

	assert.True(t, logger.V(TRACE).Enabled())
}
