package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"recordlookup/internal/lookup"
)

// PageFunc builds the template context of a page.
// The route table decides which template the context is rendered into.
type PageFunc func(c fiber.Ctx) (fiber.Map, error)

// requestContext returns the request's context carrying its request id.
func requestContext(c fiber.Ctx) context.Context {
	return lookup.ContextWithRequestID(c.Context(), requestid.FromContext(c))
}
