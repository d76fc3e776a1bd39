package errors

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth       = errors.New("missing authorization")
	ErrEmptySubject    = errors.New("missing subject")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrCartNotFound     = errors.New("cart not found")
	ErrZoneNotFound     = errors.New("delivery zone not found")
	ErrSettingsNotFound = errors.New("delivery settings not found")
	ErrNoItemsCheckout  = errors.New("cannot checkout an empty cart")
)

// CapExceededError is returned by cart mutations that would push the total
// quantity past the configured max-products-per-order limit. The cart is
// left untouched when it is returned.
type CapExceededError struct {
	Limit int32 `json:"limit"`
}

func (e CapExceededError) Error() string {
	return fmt.Sprintf("cart cannot hold more than %d products", e.Limit)
}

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
