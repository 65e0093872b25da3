// Package catalog provides the static table of datasets and their query fields.
package catalog

import (
	"errors"
	"fmt"
	"regexp"

	"recordlookup/internal/config"
	"recordlookup/internal/models"
	"recordlookup/internal/validation"
)

// LicenseField is the fleet dataset field the license lookup filters on.
const LicenseField = "license"

// ErrUnknownDataset is returned when a dataset id is not registered.
var ErrUnknownDataset = errors.New("unknown dataset")

// reservedFields are query parameters the name form uses for itself.
var reservedFields = map[string]bool{
	"dataset_select": true,
	"strict":         true,
}

// endpointPattern matches a SODA resource id, e.g. "enxu-fgzb".
var endpointPattern = regexp.MustCompile(`^[a-z0-9]{4}-[a-z0-9]{4}$`)

// Catalog is an immutable set of datasets, built once at startup.
type Catalog struct {
	datasets  map[string]*models.Dataset
	order     []string
	defaultID string
	fleet     *models.Dataset
}

// Load reads the catalog file at path (empty for the built-in catalog) and builds a Catalog.
func Load(path string) (*Catalog, error) {
	file, err := config.LoadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	return New(file)
}

// New validates a catalog file and builds a Catalog from it.
func New(file *config.CatalogFile) (*Catalog, error) {
	if file == nil {
		return nil, errors.New("catalog: no catalog file")
	}

	fleet, err := buildDataset(file.Fleet)
	if err != nil {
		return nil, fmt.Errorf("catalog: fleet: %w", err)
	}
	if _, ok := fleet.Field(LicenseField); !ok {
		return nil, fmt.Errorf("catalog: fleet dataset must declare a %q field", LicenseField)
	}

	c := &Catalog{
		datasets:  make(map[string]*models.Dataset, len(file.Datasets)),
		defaultID: file.DefaultDataset,
		fleet:     fleet,
	}

	for _, dc := range file.Datasets {
		if _, exists := c.datasets[dc.ID]; exists {
			return nil, fmt.Errorf("catalog: duplicate dataset id %q", dc.ID)
		}
		d, err := buildDataset(dc)
		if err != nil {
			return nil, fmt.Errorf("catalog: dataset %q: %w", dc.ID, err)
		}
		c.datasets[d.ID] = d
		c.order = append(c.order, d.ID)
	}

	if _, ok := c.datasets[c.defaultID]; !ok {
		return nil, fmt.Errorf("catalog: default dataset %q is not registered", c.defaultID)
	}

	return c, nil
}

func buildDataset(dc config.DatasetConfig) (*models.Dataset, error) {
	if dc.ID == "" {
		return nil, errors.New("missing id")
	}
	if !endpointPattern.MatchString(dc.Endpoint) {
		return nil, fmt.Errorf("invalid endpoint %q", dc.Endpoint)
	}
	if dc.HistoricalEndpoint != "" && !endpointPattern.MatchString(dc.HistoricalEndpoint) {
		return nil, fmt.Errorf("invalid historical endpoint %q", dc.HistoricalEndpoint)
	}
	if len(dc.Fields) == 0 {
		return nil, errors.New("no query fields")
	}
	if dc.DataSource != "" {
		if valid, msg := validation.ValidateURL(dc.DataSource); !valid {
			return nil, fmt.Errorf("data source: %s", msg)
		}
	}

	d := &models.Dataset{
		ID:                 dc.ID,
		Name:               dc.Name,
		Endpoint:           dc.Endpoint,
		HistoricalEndpoint: dc.HistoricalEndpoint,
		DataSource:         dc.DataSource,
		Order:              dc.Order,
		BadgeField:         dc.BadgeField,
		LegacyNameField:    dc.LegacyNameField,
		LegacyBadgeField:   dc.LegacyBadgeField,
	}

	seen := make(map[string]bool, len(dc.Fields))
	for _, fc := range dc.Fields {
		if fc.Name == "" || fc.Column == "" {
			return nil, errors.New("field requires a name and a column")
		}
		if reservedFields[fc.Name] {
			return nil, fmt.Errorf("field name %q is reserved", fc.Name)
		}
		if seen[fc.Name] {
			return nil, fmt.Errorf("duplicate field %q", fc.Name)
		}
		seen[fc.Name] = true
		d.Fields = append(d.Fields, models.QueryField{
			Name:   fc.Name,
			Label:  fc.Label,
			Column: fc.Column,
			Fuzzy:  fc.Fuzzy,
		})
	}

	for _, bf := range dc.BaseFilters {
		if bf.Column == "" {
			return nil, errors.New("base filter requires a column")
		}
		d.BaseFilters = append(d.BaseFilters, models.BaseFilter{Column: bf.Column, Value: bf.Value})
	}

	for _, col := range dc.Columns {
		d.Columns = append(d.Columns, models.Column{Key: col.Key, Label: col.Label})
	}

	return d, nil
}

// Dataset returns the dataset registered under id.
func (c *Catalog) Dataset(id string) (*models.Dataset, error) {
	d, ok := c.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, id)
	}
	return d, nil
}

// Datasets returns the selectable datasets in catalog order.
func (c *Catalog) Datasets() []*models.Dataset {
	out := make([]*models.Dataset, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.datasets[id])
	}
	return out
}

// QueryFields returns the ordered query fields of a dataset.
func (c *Catalog) QueryFields(id string) ([]models.QueryField, error) {
	d, err := c.Dataset(id)
	if err != nil {
		return nil, err
	}
	return d.Fields, nil
}

// Default returns the dataset used when none is selected.
func (c *Catalog) Default() *models.Dataset {
	return c.datasets[c.defaultID]
}

// DefaultID returns the id of the default dataset.
func (c *Catalog) DefaultID() string {
	return c.defaultID
}

// Fleet returns the vehicle fleet dataset used by license lookups.
func (c *Catalog) Fleet() *models.Dataset {
	return c.fleet
}

// Len returns the number of selectable datasets.
func (c *Catalog) Len() int {
	return len(c.order)
}
