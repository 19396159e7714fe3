package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Responder writes envelopes to gin contexts.
type Responder struct{}

// NewResponder creates a new envelope responder.
func NewResponder() *Responder {
	return &Responder{}
}

// DefaultResponder is used by the package-level helpers.
var DefaultResponder = NewResponder()

// OK sends a 200 envelope carrying data.
func (r *Responder) OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Success(message, data))
}

// Respond sends an error envelope and stops the handler chain.
func (r *Responder) Respond(c *gin.Context, apiErr APIError) {
	c.AbortWithStatusJSON(apiErr.Status, apiErr.Envelope())
}

// RespondError renders err if it is an APIError. Anything else becomes a
// generic 500 so internals never reach the client.
func (r *Responder) RespondError(c *gin.Context, err error) {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		r.Respond(c, apiErr)
		return
	}
	if err != nil {
		_ = c.Error(err)
	}
	r.Respond(c, ErrInternal)
}

// BadRequest sends a 400 envelope.
func (r *Responder) BadRequest(c *gin.Context, message string) {
	r.Respond(c, ErrBadRequest.WithMessage(message))
}

// Unauthorized sends a 401 envelope.
func (r *Responder) Unauthorized(c *gin.Context, message string) {
	r.Respond(c, ErrUnauthorized.WithMessage(message))
}

// OK is a convenience function using the default responder.
func OK(c *gin.Context, message string, data any) {
	DefaultResponder.OK(c, message, data)
}

// Respond is a convenience function using the default responder.
func Respond(c *gin.Context, apiErr APIError) {
	DefaultResponder.Respond(c, apiErr)
}

// RespondError is a convenience function using the default responder.
func RespondError(c *gin.Context, err error) {
	DefaultResponder.RespondError(c, err)
}

// ErrorMapper maps domain/application errors to APIError.
type ErrorMapper func(err error) (APIError, bool)

// ChainedResponder supports custom error mapping.
type ChainedResponder struct {
	*Responder
	mappers []ErrorMapper
}

// NewChainedResponder creates a responder with custom error mappers.
func NewChainedResponder(mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{
		Responder: NewResponder(),
		mappers:   mappers,
	}
}

// AddMapper adds an error mapper to the chain.
func (r *ChainedResponder) AddMapper(mapper ErrorMapper) {
	r.mappers = append(r.mappers, mapper)
}

// RespondError tries each mapper before falling back to default handling.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if apiErr, ok := mapper(err); ok {
			r.Respond(c, apiErr)
			return
		}
	}
	r.Responder.RespondError(c, err)
}

// HTTPStatusFromError extracts HTTP status from an error if possible.
func HTTPStatusFromError(err error) int {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
