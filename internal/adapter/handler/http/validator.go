package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	domainErrors "github.com/bloghead/payments/internal/domain/errors"
)

// RequestValidator plugs go-playground/validator into echo.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates the validator installed as echo's Validator.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator.
func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return domainErrors.Wrap(domainErrors.KindValidation, err, "request validation failed")
	}
	return nil
}

// bindRequest decodes the body into req and validates it.
func bindRequest(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return domainErrors.Wrap(domainErrors.KindValidation, err, "malformed request body")
	}
	return c.Validate(req)
}

// pathUUID parses a uuid path parameter.
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domainErrors.Wrap(domainErrors.KindValidation, err, "invalid "+name)
	}
	return id, nil
}
