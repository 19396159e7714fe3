package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/secondhand-market/internal/domains/products/domain"
	"github.com/Apurer/secondhand-market/internal/domains/products/ports"
)

var (
	// ErrInvalidInput signals the request violated a listing invariant.
	ErrInvalidInput = errors.New("invalid product input")
	ErrNotFound     = errors.New("product not found")
	ErrForbidden    = errors.New("product belongs to another seller")
	ErrInvalidState = errors.New("product cannot be changed in its current state")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidSeller),
		errors.Is(err, domain.ErrTooManyImages):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrNotRevisable):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	case errors.Is(err, ports.ErrNotFound):
		return ErrNotFound
	}
	return err
}
