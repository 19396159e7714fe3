package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	"github.com/Apurer/secondhand-market/internal/domains/orders/ports"
	productdomain "github.com/Apurer/secondhand-market/internal/domains/products/domain"
)

// Error kinds surfaced by the order service. Every business failure wraps
// exactly one of them.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

// Kind is the serializable name of an error kind.
type Kind string

const (
	KindNotFound     Kind = "NotFound"
	KindForbidden    Kind = "Forbidden"
	KindInvalidState Kind = "InvalidState"
	KindConflict     Kind = "Conflict"
	KindValidation   Kind = "Validation"
	KindInternal     Kind = ""
)

var kindSentinels = []struct {
	kind Kind
	err  error
}{
	{KindNotFound, ErrNotFound},
	{KindForbidden, ErrForbidden},
	{KindInvalidState, ErrInvalidState},
	{KindConflict, ErrConflict},
	{KindValidation, ErrValidation},
}

var errProductHasActiveOrder = errors.New("product already has an active order")

// KindOf classifies err; unclassified errors report KindInternal.
func KindOf(err error) Kind {
	for _, ks := range kindSentinels {
		if errors.Is(err, ks.err) {
			return ks.kind
		}
	}
	return KindInternal
}

// Kinds lists every business error kind.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindSentinels))
	for _, ks := range kindSentinels {
		kinds = append(kinds, ks.kind)
	}
	return kinds
}

// ErrorForKind rebuilds a classified error from its kind and message, used
// when errors cross a serialization boundary.
func ErrorForKind(kind Kind, message string) error {
	for _, ks := range kindSentinels {
		if ks.kind == kind {
			return fmt.Errorf("%w: %w", ks.err, errors.New(message))
		}
	}
	return errors.New(message)
}

// Message returns the human-readable cause of a classified error without its kind prefix.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, ks := range kindSentinels {
		if errors.Is(err, ks.err) {
			return strings.TrimPrefix(msg, ks.err.Error()+": ")
		}
	}
	return msg
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindInternal {
		return err
	}
	switch {
	case errors.Is(err, ports.ErrNotFound),
		errors.Is(err, ports.ErrProductNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrActionNotAllowed),
		errors.Is(err, domain.ErrSelfPurchase):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, productdomain.ErrNotOnSale),
		errors.Is(err, errProductHasActiveOrder):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	case errors.Is(err, ports.ErrActiveOrderExists),
		errors.Is(err, ports.ErrDuplicateOrderNumber),
		errors.Is(err, ports.ErrIdempotencyConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrInvalidBuyer),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrRemarkTooLong),
		errors.Is(err, domain.ErrUnknownAction),
		errors.Is(err, domain.ErrEmptyOrderNumber):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return err
}
