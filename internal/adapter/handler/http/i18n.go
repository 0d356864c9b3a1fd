package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	domainErrors "github.com/bloghead/payments/internal/domain/errors"
	apperrors "github.com/bloghead/payments/pkg/errors"
)

// German is the default locale; English is picked from Accept-Language.
var (
	supportedLanguages = []language.Tag{language.German, language.English}
	languageMatcher    = language.NewMatcher(supportedLanguages)
)

// Message keys, one per client facing error kind.
const (
	msgUnauthenticated       = "error.unauthenticated"
	msgValidation            = "error.validation"
	msgBookingNotFound       = "error.booking_not_found"
	msgBookingForbidden      = "error.booking_forbidden"
	msgBookingAlreadyPaid    = "error.booking_already_paid"
	msgArtistNotPayable      = "error.artist_not_payable"
	msgArtistProfileNotFound = "error.artist_profile_not_found"
	msgInvalidPackage        = "error.invalid_package"
	msgUpstream              = "error.upstream"
	msgInvalidSignature      = "error.invalid_signature"
	msgInternal              = "error.internal"
	msgNotFound              = "error.not_found"
)

var translations = map[language.Tag]map[string]string{
	language.German: {
		msgUnauthenticated:       "Anmeldung erforderlich.",
		msgValidation:            "Die Anfrage ist ungültig.",
		msgBookingNotFound:       "Buchung nicht gefunden.",
		msgBookingForbidden:      "Diese Buchung gehört nicht zu deinem Konto.",
		msgBookingAlreadyPaid:    "Diese Buchung wurde bereits bezahlt.",
		msgArtistNotPayable:      "Der Künstler kann derzeit keine Zahlungen empfangen.",
		msgArtistProfileNotFound: "Kein Künstlerprofil gefunden.",
		msgInvalidPackage:        "Unbekanntes Münzpaket.",
		msgUpstream:              "Der Zahlungsanbieter ist nicht erreichbar. Bitte versuche es später erneut.",
		msgInvalidSignature:      "Ungültige Webhook-Signatur.",
		msgInternal:              "Interner Fehler. Bitte versuche es später erneut.",
		msgNotFound:              "Nicht gefunden.",
	},
	language.English: {
		msgUnauthenticated:       "Authentication required.",
		msgValidation:            "The request is invalid.",
		msgBookingNotFound:       "Booking not found.",
		msgBookingForbidden:      "This booking does not belong to your account.",
		msgBookingAlreadyPaid:    "This booking has already been paid.",
		msgArtistNotPayable:      "The artist cannot receive payments right now.",
		msgArtistProfileNotFound: "No artist profile found.",
		msgInvalidPackage:        "Unknown coin package.",
		msgUpstream:              "The payment provider is unavailable. Please try again later.",
		msgInvalidSignature:      "Invalid webhook signature.",
		msgInternal:              "Internal error. Please try again later.",
		msgNotFound:              "Not found.",
	},
}

func init() {
	for tag, messages := range translations {
		for key, msg := range messages {
			if err := message.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

func messageKey(kind domainErrors.Kind) string {
	switch kind {
	case domainErrors.KindUnauthenticated:
		return msgUnauthenticated
	case domainErrors.KindValidation:
		return msgValidation
	case domainErrors.KindBookingNotFound:
		return msgBookingNotFound
	case domainErrors.KindBookingForbidden:
		return msgBookingForbidden
	case domainErrors.KindBookingAlreadyPaid:
		return msgBookingAlreadyPaid
	case domainErrors.KindArtistNotPayable:
		return msgArtistNotPayable
	case domainErrors.KindArtistProfileNotFound:
		return msgArtistProfileNotFound
	case domainErrors.KindInvalidPackage:
		return msgInvalidPackage
	case domainErrors.KindUpstream:
		return msgUpstream
	case domainErrors.KindInvalidSignature:
		return msgInvalidSignature
	default:
		return msgInternal
	}
}

// Printer returns the message printer for the request's Accept-Language.
func Printer(c echo.Context) *message.Printer {
	tags, _, _ := language.ParseAcceptLanguage(c.Request().Header.Get("Accept-Language"))
	tag, _, _ := languageMatcher.Match(tags...)
	base, _ := tag.Base()
	return message.NewPrinter(language.Make(base.String()))
}

// RenderError maps err onto {"error": localized, "code": KIND} and the HTTP
// status of the kind's class. It is installed as the server's error renderer.
func RenderError(err error, c echo.Context) (int, interface{}) {
	p := Printer(c)

	var de *domainErrors.Error
	if errors.As(err, &de) {
		return apperrors.ToHTTPStatus(de.Kind.Class()), echo.Map{
			"error": p.Sprintf(messageKey(de.Kind)),
			"code":  de.Kind.String(),
		}
	}

	// Router level errors (unknown route, wrong method) keep echo's status.
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		key, code := msgValidation, domainErrors.KindValidation.String()
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			key, code = msgNotFound, apperrors.ErrNotFound
		case http.StatusUnauthorized:
			key, code = msgUnauthenticated, domainErrors.KindUnauthenticated.String()
		}
		return he.Code, echo.Map{"error": p.Sprintf(key), "code": code}
	}

	return http.StatusInternalServerError, echo.Map{
		"error": p.Sprintf(msgInternal),
		"code":  domainErrors.KindInternal.String(),
	}
}
