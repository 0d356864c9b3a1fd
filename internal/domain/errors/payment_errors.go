package errors

import (
	"errors"
	"fmt"

	apperrors "github.com/bloghead/payments/pkg/errors"
)

// Kind classifies every failure the payment flows can surface to a caller.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindValidation
	KindBookingNotFound
	KindBookingForbidden
	KindBookingAlreadyPaid
	KindArtistNotPayable
	KindArtistProfileNotFound
	KindInvalidPackage
	KindUpstream
	KindInvalidSignature
)

// String returns the stable code sent to clients.
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindValidation:
		return "VALIDATION_FAILED"
	case KindBookingNotFound:
		return "BOOKING_NOT_FOUND"
	case KindBookingForbidden:
		return "BOOKING_FORBIDDEN"
	case KindBookingAlreadyPaid:
		return "BOOKING_ALREADY_PAID"
	case KindArtistNotPayable:
		return "ARTIST_NOT_PAYABLE"
	case KindArtistProfileNotFound:
		return "ARTIST_PROFILE_NOT_FOUND"
	case KindInvalidPackage:
		return "INVALID_PACKAGE"
	case KindUpstream:
		return "PAYMENT_PROVIDER_ERROR"
	case KindInvalidSignature:
		return "INVALID_SIGNATURE"
	default:
		return "INTERNAL_ERROR"
	}
}

// Class maps the kind onto the transport level error code.
func (k Kind) Class() string {
	switch k {
	case KindUnauthenticated:
		return apperrors.ErrUnauthenticated
	case KindValidation, KindInvalidSignature:
		return apperrors.ErrInvalidArgument
	case KindBookingNotFound, KindArtistProfileNotFound:
		return apperrors.ErrNotFound
	case KindBookingForbidden:
		return apperrors.ErrUnauthorized
	case KindBookingAlreadyPaid:
		return apperrors.ErrConflict
	case KindArtistNotPayable, KindInvalidPackage:
		return apperrors.ErrUnprocessable
	case KindUpstream:
		return apperrors.ErrUpstream
	default:
		return apperrors.ErrInternal
	}
}

// Error is a classified domain error. Detail is for logs only; clients get a
// localized message chosen by Kind.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Code implements pkg/errors.Error.
func (e *Error) Code() string { return e.Kind.String() }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New creates an error of the given kind.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap classifies err.
func Wrap(kind Kind, err error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf returns the kind of the first domain error in the chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var (
	ErrUnauthenticated       = &Error{Kind: KindUnauthenticated}
	ErrBookingNotFound       = &Error{Kind: KindBookingNotFound}
	ErrBookingForbidden      = &Error{Kind: KindBookingForbidden}
	ErrBookingAlreadyPaid    = &Error{Kind: KindBookingAlreadyPaid}
	ErrArtistNotPayable      = &Error{Kind: KindArtistNotPayable}
	ErrArtistProfileNotFound = &Error{Kind: KindArtistProfileNotFound}
	ErrInvalidPackage        = &Error{Kind: KindInvalidPackage}
	ErrInvalidSignature      = &Error{Kind: KindInvalidSignature}
	ErrUpstream              = &Error{Kind: KindUpstream}
)
