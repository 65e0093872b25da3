package handlers

import (
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v3"

	"recordlookup/internal/catalog"
	"recordlookup/internal/config"
	"recordlookup/internal/lookup"
	"recordlookup/internal/models"
)

// Page titles.
const (
	licenseTitle    = "Seattle Public Vehicle Lookup"
	nameTitle       = "Officer Name Lookup"
	historicalTitle = "Historical Officer Lookup"
)

// historicalDatasetID is the dataset searched by /historical-officers.
const historicalDatasetID = "spd"

// LookupHandler handles the lookup pages.
type LookupHandler struct {
	svc     *lookup.Service
	catalog *catalog.Catalog
	cfg     *config.Config
}

// NewLookupHandler creates a new lookup handler.
func NewLookupHandler(svc *lookup.Service, cat *catalog.Catalog, cfg *config.Config) *LookupHandler {
	return &LookupHandler{svc: svc, catalog: cat, cfg: cfg}
}

// Home redirects to the license lookup form.
func (h *LookupHandler) Home(c fiber.Ctx) error {
	return c.Redirect().Status(fiber.StatusFound).To("/license")
}

// License renders the license lookup form and results.
func (h *LookupHandler) License(c fiber.Ctx) (fiber.Map, error) {
	license := c.Query("license")
	html := h.svc.LicenseLookup(requestContext(c), license)
	return h.licensePage(license, html), nil
}

// Name renders the officer name lookup form and results.
func (h *LookupHandler) Name(c fiber.Ctx) (fiber.Map, error) {
	params := parseNameParams(c, h.catalog.DefaultID())

	// An unknown dataset is rendered as a "no data" message, never an error.
	dataset, _ := h.catalog.Dataset(params.DatasetSelect)
	fields, _ := h.catalog.QueryFields(params.DatasetSelect)

	html, strict := h.svc.NameLookup(requestContext(c), dataset, params.lookupRequest(fields))

	data := h.namePage(dataset, html)
	data["Datasets"] = h.catalog.Datasets()
	data["DatasetSelect"] = params.DatasetSelect
	data["Values"] = params.Values
	data["Strict"] = params.Strict
	data["StrictSearch"] = strict
	return data, nil
}

// Historical renders every record of a single badge. Query parameters are ignored.
func (h *LookupHandler) Historical(c fiber.Ctx) (fiber.Map, error) {
	badge := c.Params("badge")
	html := h.svc.HistoricalLookup(requestContext(c), historicalDatasetID, badge)

	dataSource := h.catalog.Default().DataSource
	if dataset, err := h.catalog.Dataset(historicalDatasetID); err == nil {
		dataSource = dataset.DataSource
	}
	return fiber.Map{
		"Title":      historicalTitle,
		"DataSource": dataSource,
		"EntityHTML": html,
		"Badge":      badge,
	}, nil
}

// LegacyLicense serves /license-lookup/:license.
// LEGACY: frozen behavior, keep in step with License.
func (h *LookupHandler) LegacyLicense(c fiber.Ctx) (fiber.Map, error) {
	license := c.Params("license")
	html := h.svc.LegacyLicenseLookup(requestContext(c), license)
	return h.licensePage(license, html), nil
}

// LegacyBadge serves /badge-lookup/:badge.
// LEGACY: frozen behavior.
func (h *LookupHandler) LegacyBadge(c fiber.Ctx) (fiber.Map, error) {
	html := h.svc.LegacyBadgeLookup(requestContext(c), c.Params("badge"))
	return h.namePage(nil, html), nil
}

// LegacyName serves /name-lookup/:name.
// LEGACY: frozen behavior.
func (h *LookupHandler) LegacyName(c fiber.Ctx) (fiber.Map, error) {
	html := h.svc.LegacyNameLookup(requestContext(c), c.Params("name"))
	return h.namePage(nil, html), nil
}

func (h *LookupHandler) licensePage(value string, html template.HTML) fiber.Map {
	fleet := h.catalog.Fleet()
	return fiber.Map{
		"Title":      licenseTitle,
		"DataSource": fleet.DataSource,
		"LookupURL":  "license",
		"Entities":   fleet.Fields,
		"Values":     map[string]string{catalog.LicenseField: value},
		"EntityHTML": html,
	}
}

// namePage builds the officer page context. Without a dataset the form has no fields.
func (h *LookupHandler) namePage(dataset *models.Dataset, html template.HTML) fiber.Map {
	data := fiber.Map{
		"Title":      nameTitle,
		"DataSource": h.catalog.Default().DataSource,
		"LookupURL":  "name",
		"Values":     map[string]string{},
		"EntityHTML": html,
	}
	if dataset != nil {
		data["DataSource"] = dataset.DataSource
		data["Entities"] = dataset.Fields
		data["StrictEntities"] = dataset.StrictFields()
	}
	return data
}

// nameParams are the query parameters of the name form.
type nameParams struct {
	DatasetSelect string
	Strict        bool
	Values        map[string]string // Every other parameter, not yet checked against the dataset
}

func parseNameParams(c fiber.Ctx, defaultDataset string) nameParams {
	p := nameParams{
		DatasetSelect: defaultDataset,
		Values:        make(map[string]string),
	}
	for key, value := range c.Queries() {
		switch key {
		case "dataset_select":
			if value != "" {
				p.DatasetSelect = value
			}
		case "strict":
			p.Strict = isTruthy(value)
		default:
			p.Values[key] = value
		}
	}
	return p
}

// lookupRequest keeps only the values of the given query fields.
func (p nameParams) lookupRequest(fields []models.QueryField) models.LookupRequest {
	req := models.LookupRequest{
		DatasetID: p.DatasetSelect,
		Values:    make(map[string]string),
		Strict:    p.Strict,
	}
	for _, f := range fields {
		if v, ok := p.Values[f.Name]; ok {
			req.Values[f.Name] = v
		}
	}
	return req
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "on", "true", "yes":
		return true
	default:
		return false
	}
}
