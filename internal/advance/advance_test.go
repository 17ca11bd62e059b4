package advance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planify/internal/status"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		total      string
		percentage string
		want       string
	}{
		{"whole amount", "1000", "20", "200"},
		{"rounds to two places", "999.99", "20", "200"},
		{"rounds half up", "333.25", "15", "49.99"},
		{"zero total", "0", "20", "0"},
		{"full advance", "150.50", "100", "150.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(d(tt.total), d(tt.percentage), d("20"))
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestCompute_DefaultsPercentage(t *testing.T) {
	// Unset (zero) percentage falls back to the configured default.
	got, err := Compute(d("500"), decimal.Zero, d("20"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("100")), "got %s", got)

	// Negative percentage is treated as unset too.
	got, err = Compute(d("500"), d("-5"), d("10"))
	require.NoError(t, err)
	assert.True(t, got.Equal(d("50")), "got %s", got)
}

func TestCompute_InvalidInput(t *testing.T) {
	_, err := Compute(d("-1"), d("20"), d("20"))
	assert.ErrorIs(t, err, status.ErrInvalidInput)

	_, err = Compute(d("100"), d("101"), d("20"))
	assert.ErrorIs(t, err, status.ErrInvalidInput)

	// A broken configured default must not slip through either.
	_, err = Compute(d("100"), decimal.Zero, d("120"))
	assert.ErrorIs(t, err, status.ErrInvalidInput)
}
