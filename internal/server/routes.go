package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"recordlookup/internal/catalog"
	"recordlookup/internal/handlers"
	"recordlookup/internal/lookup"
	"recordlookup/internal/metrics"
)

// Route is one entry of the route table. Page routes render their context into
// Template; plain routes use Handler directly.
type Route struct {
	Path     string
	Template string
	Page     handlers.PageFunc
	Handler  fiber.Handler
}

// Routes builds the route table.
func (s *Server) Routes(svc *lookup.Service, cat *catalog.Catalog) []Route {
	lookupHandler := handlers.NewLookupHandler(svc, cat, s.Cfg)
	probeHandler := handlers.NewProbeHandler(cat, s.Checks)

	return []Route{
		{Path: "/", Handler: lookupHandler.Home},
		{Path: "/license", Template: "index", Page: lookupHandler.License},
		{Path: "/name", Template: "index", Page: lookupHandler.Name},
		{Path: "/historical-officers/:badge", Template: "historical", Page: lookupHandler.Historical},

		// Old compatibility endpoints
		{Path: "/license-lookup/:license", Template: "index", Page: lookupHandler.LegacyLicense},
		{Path: "/badge-lookup/:badge", Template: "index", Page: lookupHandler.LegacyBadge},
		{Path: "/name-lookup/:name", Template: "index", Page: lookupHandler.LegacyName},

		// Probes and metrics
		{Path: "/healthz", Handler: probeHandler.Liveness},
		{Path: "/readyz", Handler: probeHandler.Readiness},
		{Path: "/metrics", Handler: adaptor.HTTPHandler(metrics.Handler())},
	}
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(svc *lookup.Service, cat *catalog.Catalog) {
	for _, r := range s.Routes(svc, cat) {
		s.App.Get(r.Path, s.handler(r))
	}
}

func (s *Server) handler(r Route) fiber.Handler {
	if r.Page == nil {
		return r.Handler
	}
	return func(c fiber.Ctx) error {
		data, err := r.Page(c)
		if err != nil {
			return err
		}
		return c.Render(r.Template, handlers.WithLayout(data, s.Cfg))
	}
}
