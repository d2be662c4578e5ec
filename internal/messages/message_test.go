package messages

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4.3, "4.3"},
		{4.05, "4"},
		{4.0, "4"},
		{10.0, "10"},
		{10.5, "11"},
		{42.3, "42"},
		{9.95, "10.0"},
		{0.25, "0.3"},
		{2.45, "2.5"},
		{2.1, "2.1"},
		{4.1, "4.1"},
		{5.1, "5.1"},
		{9.1, "9.1"},
		{100.0, "100"},
		{5.05, "5"},
		{5.5, "5.5"},
		{0.05, "0"},
		{-3.7, "-3.7"},
		{-0.95, "-1"},
		{math.Copysign(0, -1), "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateFloat(tt.in), "TruncateFloat(%v)", tt.in)
	}
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "500m", FormatDistance(500))
	assert.Equal(t, "850m", FormatDistance(850))
	assert.Equal(t, "5.1m", FormatDistance(5.1))
	assert.Equal(t, "1000m", FormatDistance(1000))
	assert.Equal(t, "1.5km", FormatDistance(1500))
	assert.Equal(t, "23km", FormatDistance(23400))
}

func TestPriorityString(t *testing.T) {
	assert.Equal(t, "info", Info.String())
	assert.Equal(t, "alert", Alert.String())
	assert.Equal(t, "shutdown", Shutdown.String())
	assert.Equal(t, "priority(7)", Priority(7).String())
}
