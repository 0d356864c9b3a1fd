package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitBookingTotal(t *testing.T) {
	tests := []struct {
		name       string
		totalPrice string
		want       Split
	}{
		{"round hundred", "100.00", Split{TotalAmount: 10000, PlatformFee: 1000, ArtistPayout: 9000}},
		{"fee rounds half up", "0.05", Split{TotalAmount: 5, PlatformFee: 1, ArtistPayout: 4}},
		{"fee rounds down", "12.34", Split{TotalAmount: 1234, PlatformFee: 123, ArtistPayout: 1111}},
		{"sub-cent input rounds", "19.995", Split{TotalAmount: 2000, PlatformFee: 200, ArtistPayout: 1800}},
		{"large booking", "2500.50", Split{TotalAmount: 250050, PlatformFee: 25005, ArtistPayout: 225045}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitBookingTotal(decimal.RequireFromString(tt.totalPrice), DefaultPlatformFeePercent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.TotalAmount, got.PlatformFee+got.ArtistPayout)
		})
	}
}

func TestSplitBookingTotal_SumsExactly(t *testing.T) {
	for cents := int64(1); cents <= 5000; cents += 7 {
		got, err := SplitBookingTotal(decimal.New(cents, -2), DefaultPlatformFeePercent)
		require.NoError(t, err)
		assert.Equal(t, cents, got.TotalAmount)
		assert.Equal(t, got.TotalAmount, got.PlatformFee+got.ArtistPayout)
	}
}

func TestSplitBookingTotal_RejectsNonPositive(t *testing.T) {
	_, err := SplitBookingTotal(decimal.Zero, DefaultPlatformFeePercent)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = SplitBookingTotal(decimal.NewFromInt(-5), DefaultPlatformFeePercent)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSplitBookingTotal_ZeroFee(t *testing.T) {
	got, err := SplitBookingTotal(decimal.RequireFromString("100.00"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, Split{TotalAmount: 10000, PlatformFee: 0, ArtistPayout: 10000}, got)
}
