package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScaleAmount(t *testing.T) {
	tests := []struct {
		amount   string
		decimals uint8
		want     string
	}{
		{"1", 18, "1000000000000000000"},
		{"1.5", 18, "1500000000000000000"},
		{"0.25", 6, "250000"},
		{"100", 0, "100"},
		{".5", 9, "500000000"},
		{"0", 18, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := ScaleAmount(tt.amount, tt.decimals)
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestScaleAmountRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
	}{
		{"empty", "", 18},
		{"negative", "-1", 18},
		{"over-precise", "0.1234567", 6},
		{"not a number", "abc", 18},
		{"two dots", "1.2.3", 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScaleAmount(tt.amount, tt.decimals)
			require.Error(t, err)
		})
	}
}
