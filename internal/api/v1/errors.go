package v1

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/domain"
)

// problem maps a service error to the matching HTTP problem. what names the
// failed operation in 500 responses, e.g. "failed to list clients".
func problem(err error, what string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, domain.ErrReferentialConflict):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	default:
		log.Error().Err(err).Msg("api: " + what)
		return huma.Error500InternalServerError(what, err)
	}
}
