package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain precondition.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrRefreshFailed tags read model refresh failures. They are logged, never returned to command callers.
	ErrRefreshFailed = errors.New("order summary refresh failed")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidArgument) && !errors.Is(err, ErrInvalidInput) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
