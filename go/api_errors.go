package orderserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-orders-cqrs/internal/shared/errors"
	"github.com/Apurer/go-gin-orders-cqrs/internal/shared/projection"
)

var errNotImplemented = apierrors.ProblemDetail{
	Type:   apierrors.TypeInternal,
	Title:  "Not Implemented",
	Status: http.StatusNotImplemented,
}

// NewProblemResponder returns the responder translating order errors into
// RFC 7807 problems. Errors it cannot classify are logged with logger.
func NewProblemResponder(logger *slog.Logger) *apierrors.ChainedResponder {
	return apierrors.NewChainedResponder("", mapOrderError).WithLogger(logger)
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	var transition *domain.TransitionError
	switch {
	case errors.As(err, &transition):
		allowed := make([]string, 0)
		for _, s := range transition.From.AllowedTransitions() {
			allowed = append(allowed, string(s))
		}
		return apierrors.NewInvalidTransitionProblem(string(transition.From), string(transition.To), allowed), true
	case errors.Is(err, application.ErrInvalidInput), errors.Is(err, domain.ErrInvalidArgument):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.NewNotFoundProblem("order"), true
	case errors.Is(err, domain.ErrInvalidState):
		return apierrors.ErrInvalidState.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrConflict):
		return apierrors.NewConcurrencyConflictProblem("order was modified concurrently; retry from a fresh read"), true
	case errors.Is(err, projection.ErrUnsupported):
		return errNotImplemented.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

func respondBindError(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

func parseOrderIDParam(c *gin.Context) (uuid.UUID, bool) {
	value := c.Param("orderId")
	id, err := uuid.Parse(value)
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail("orderId must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func responderOrDefault(r *apierrors.ChainedResponder) *apierrors.ChainedResponder {
	if r != nil {
		return r
	}
	return NewProblemResponder(nil)
}
