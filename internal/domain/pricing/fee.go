package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DefaultPlatformFeePercent is the commission kept by the platform.
var DefaultPlatformFeePercent = decimal.NewFromInt(10)

var hundred = decimal.NewFromInt(100)

// ErrInvalidAmount is returned for non-positive totals.
var ErrInvalidAmount = errors.New("total price must be positive")

// Split is a booking total broken down into cents.
type Split struct {
	TotalAmount  int64
	PlatformFee  int64
	ArtistPayout int64
}

// SplitBookingTotal converts a euro total into cents and splits it into the
// platform fee and the artist payout. Both roundings are half away from zero
// and TotalAmount == PlatformFee + ArtistPayout always holds.
func SplitBookingTotal(totalPrice, feePercent decimal.Decimal) (Split, error) {
	total := totalPrice.Mul(hundred).Round(0)
	if !total.IsPositive() {
		return Split{}, ErrInvalidAmount
	}
	fee := total.Mul(feePercent).Div(hundred).Round(0)
	if fee.IsNegative() || fee.GreaterThan(total) {
		fee = decimal.Zero
	}

	totalCents := total.IntPart()
	feeCents := fee.IntPart()
	return Split{
		TotalAmount:  totalCents,
		PlatformFee:  feeCents,
		ArtistPayout: totalCents - feeCents,
	}, nil
}
