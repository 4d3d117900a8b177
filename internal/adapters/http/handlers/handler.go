package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"sogecredit/internal/core/domain"
	"sogecredit/internal/pkg/response"
)

// actorFromContext returns the domain actor set by the auth middleware
func actorFromContext(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals("actor").(domain.Actor)
	return actor, ok
}

// requestMeta extracts the client info recorded in the audit trail
func requestMeta(c *fiber.Ctx) domain.RequestMeta {
	return domain.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

// mapDomainError translates a service error to the matching HTTP response
func mapDomainError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return response.Conflict(c, err.Error())
	default:
		return response.InternalServerError(c, fallback)
	}
}

// parseDate parses a "2006-01-02" date, accepting RFC3339 as a fallback
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// parseDatePtr parses an optional date field; empty means absent
func parseDatePtr(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
