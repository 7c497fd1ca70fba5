package services

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"pet3d-backend/internal/database"
	"pet3d-backend/internal/metrics"
)

// Error classes returned by every service. Handlers map them to HTTP statuses
// with errors.Is; the wrapped message carries the detail.
var (
	// ErrNotFound covers both missing rows and rows owned by someone else.
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
	ErrProvider     = errors.New("provider error")
	ErrInternal     = errors.New("internal error")
)

func notFound(what string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, what)
}

func invalidState(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func providerError(provider, op string, err error) error {
	metrics.ProviderErrors.WithLabelValues(provider, op).Inc()
	log.Warn().Err(err).Str("provider", provider).Str("operation", op).Msg("provider call failed")
	return fmt.Errorf("%w: %s %s: %w", ErrProvider, provider, op, err)
}

func internalError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}

// dbError converts a persistence error, turning a missing row into ErrNotFound.
func dbError(what string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return notFound(what)
	}
	return internalError("load "+what, err)
}
