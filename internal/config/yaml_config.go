package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed datasets.yaml
var defaultCatalog []byte

// CatalogFile represents the structure of the datasets.yaml file.
// The dataset table is hierarchical and easier to manage in YAML than env vars.
type CatalogFile struct {
	DefaultDataset string          `yaml:"default_dataset"`
	Fleet          DatasetConfig   `yaml:"fleet"`
	Datasets       []DatasetConfig `yaml:"datasets"`
}

// DatasetConfig defines a single open-data dataset.
type DatasetConfig struct {
	ID                 string             `yaml:"id"`
	Name               string             `yaml:"name"`
	Endpoint           string             `yaml:"endpoint"`                      // SODA resource id, e.g. "enxu-fgzb"
	HistoricalEndpoint string             `yaml:"historical_endpoint,omitempty"` // Defaults to Endpoint
	DataSource         string             `yaml:"data_source"`                   // Citation URL shown on the page
	Order              string             `yaml:"order,omitempty"`               // SoQL $order clause
	BadgeField         string             `yaml:"badge_field,omitempty"`         // Column used for historical lookups
	LegacyNameField    string             `yaml:"legacy_name_field,omitempty"`
	LegacyBadgeField   string             `yaml:"legacy_badge_field,omitempty"`
	BaseFilters        []BaseFilterConfig `yaml:"base_filters,omitempty"` // Always applied, exact match
	Fields             []FieldConfig      `yaml:"fields"`
	Columns            []ColumnConfig     `yaml:"columns"`
}

// BaseFilterConfig pins a column to a fixed value for every query on a dataset.
type BaseFilterConfig struct {
	Column string `yaml:"column"`
	Value  string `yaml:"value"`
}

// FieldConfig defines a queryable form field.
type FieldConfig struct {
	Name   string `yaml:"name"`
	Label  string `yaml:"label"`
	Column string `yaml:"column,omitempty"` // Defaults to Name
	Fuzzy  bool   `yaml:"fuzzy"`
}

// ColumnConfig defines a result column shown in the results table.
type ColumnConfig struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// LoadCatalogFile loads the dataset catalog.
// An empty path loads the built-in catalog.
func LoadCatalogFile(path string) (*CatalogFile, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog document and applies defaults.
func ParseCatalog(data []byte) (*CatalogFile, error) {
	var cfg CatalogFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	// Set defaults
	applyDatasetDefaults(&cfg.Fleet)
	for i := range cfg.Datasets {
		applyDatasetDefaults(&cfg.Datasets[i])
	}
	if cfg.DefaultDataset == "" && len(cfg.Datasets) > 0 {
		cfg.DefaultDataset = cfg.Datasets[0].ID
	}

	return &cfg, nil
}

func applyDatasetDefaults(d *DatasetConfig) {
	if d.HistoricalEndpoint == "" {
		d.HistoricalEndpoint = d.Endpoint
	}
	if d.Name == "" {
		d.Name = d.ID
	}
	for i := range d.Fields {
		if d.Fields[i].Column == "" {
			d.Fields[i].Column = d.Fields[i].Name
		}
		if d.Fields[i].Label == "" {
			d.Fields[i].Label = d.Fields[i].Name
		}
	}
	if len(d.Columns) == 0 {
		for _, f := range d.Fields {
			d.Columns = append(d.Columns, ColumnConfig{Key: f.Column, Label: f.Label})
		}
	}
}
