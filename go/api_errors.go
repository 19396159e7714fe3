package marketserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	ordersapp "github.com/Apurer/secondhand-market/internal/domains/orders/application"
	productsapp "github.com/Apurer/secondhand-market/internal/domains/products/application"
	apierrors "github.com/Apurer/secondhand-market/internal/shared/errors"
)

var responder = apierrors.NewChainedResponder(orderErrorMapper, productErrorMapper)

// orderErrorMapper renders the order error kinds. The message is the cause
// without the kind prefix.
func orderErrorMapper(err error) (apierrors.APIError, bool) {
	var template apierrors.APIError
	switch ordersapp.KindOf(err) {
	case ordersapp.KindNotFound:
		template = apierrors.ErrNotFound
	case ordersapp.KindForbidden:
		template = apierrors.ErrForbidden
	case ordersapp.KindInvalidState:
		template = apierrors.ErrInvalidState
	case ordersapp.KindConflict:
		template = apierrors.ErrConflict
	case ordersapp.KindValidation:
		template = apierrors.ErrValidation
	default:
		return apierrors.APIError{}, false
	}
	return template.WithMessage(ordersapp.Message(err)), true
}

func productErrorMapper(err error) (apierrors.APIError, bool) {
	switch {
	case errors.Is(err, productsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithMessage(unwrapMessage(err)), true
	case errors.Is(err, productsapp.ErrNotFound):
		return apierrors.ErrNotFound.WithMessage(productsapp.ErrNotFound.Error()), true
	case errors.Is(err, productsapp.ErrForbidden):
		return apierrors.ErrForbidden.WithMessage(productsapp.ErrForbidden.Error()), true
	case errors.Is(err, productsapp.ErrInvalidState):
		return apierrors.ErrInvalidState.WithMessage(unwrapMessage(err)), true
	}
	return apierrors.APIError{}, false
}

// unwrapMessage prefers the innermost domain message of a "%w: %w" chain.
func unwrapMessage(err error) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if causes := joined.Unwrap(); len(causes) > 1 {
			return causes[len(causes)-1].Error()
		}
	}
	return err.Error()
}

func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func respondBadRequest(c *gin.Context, err error) {
	message := "bad request"
	if err != nil {
		message = err.Error()
	}
	responder.BadRequest(c, message)
}
