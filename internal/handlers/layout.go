package handlers

import (
	"github.com/gofiber/fiber/v3"

	"recordlookup/internal/config"
)

// NavLink is an entry of the layout navigation bar.
type NavLink struct {
	Label  string
	URL    string
	Active bool
}

// navigation lists the lookup forms, in display order.
var navigation = []NavLink{
	{Label: "Vehicles", URL: "license"},
	{Label: "Officers", URL: "name"},
}

// WithLayout adds the site branding and navigation used by layouts/main.
// The entry matching the page's LookupURL is marked active.
func WithLayout(data fiber.Map, cfg *config.Config) fiber.Map {
	current, _ := data["LookupURL"].(string)

	nav := make([]NavLink, len(navigation))
	for i, link := range navigation {
		link.Active = link.URL == current
		nav[i] = link
	}

	data["SiteTitle"] = cfg.SiteTitle
	data["SiteFooter"] = cfg.SiteFooter
	data["Nav"] = nav
	return data
}
