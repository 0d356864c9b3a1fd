package usecase

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Links builds the browser redirect targets handed to the processor.
type Links struct {
	ClientURL string
}

func (l Links) base() string {
	return strings.TrimRight(l.ClientURL, "/")
}

// BookingReturn is where 3-D Secure redirects land.
func (l Links) BookingReturn(bookingID uuid.UUID) string {
	return fmt.Sprintf("%s/bookings/%s?payment=complete", l.base(), bookingID)
}

// CoinSuccess keeps the literal {CHECKOUT_SESSION_ID} placeholder, which the
// processor substitutes.
func (l Links) CoinSuccess() string {
	return l.base() + "/coins?status=success&session_id={CHECKOUT_SESSION_ID}"
}

func (l Links) CoinCancel() string {
	return l.base() + "/coins?status=cancelled"
}

func (l Links) OnboardingRefresh() string {
	return l.base() + "/artist/payouts?onboarding=refresh"
}

func (l Links) OnboardingReturn() string {
	return l.base() + "/artist/payouts?onboarding=complete"
}
