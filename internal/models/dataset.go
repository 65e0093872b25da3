package models

// QueryField is a form field a dataset can be filtered on.
type QueryField struct {
	Name   string `json:"name"`   // Query parameter name
	Label  string `json:"label"`  // Human-readable label for the form
	Column string `json:"column"` // API column the value is matched against
	Fuzzy  bool   `json:"is_fuzzy"`
}

// Column is a result column shown in the results table.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// BaseFilter pins a column to a fixed value for every query on a dataset.
type BaseFilter struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Dataset describes a named external data source and its queryable schema.
type Dataset struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Endpoint           string       `json:"endpoint"`
	HistoricalEndpoint string       `json:"historical_endpoint"`
	DataSource         string       `json:"data_source"`
	Order              string       `json:"order,omitempty"`
	BadgeField         string       `json:"badge_field,omitempty"`
	LegacyNameField    string       `json:"legacy_name_field,omitempty"`
	LegacyBadgeField   string       `json:"legacy_badge_field,omitempty"`
	BaseFilters        []BaseFilter `json:"base_filters,omitempty"`
	Fields             []QueryField `json:"fields"`
	Columns            []Column     `json:"columns"`
}

// Field returns the query field with the given name.
func (d *Dataset) Field(name string) (QueryField, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return QueryField{}, false
}

// StrictFields returns the fields that only support exact matching.
func (d *Dataset) StrictFields() []QueryField {
	var fields []QueryField
	for _, f := range d.Fields {
		if !f.Fuzzy {
			fields = append(fields, f)
		}
	}
	return fields
}

// SupportsHistorical reports whether the dataset can be searched by badge history.
func (d *Dataset) SupportsHistorical() bool {
	return d.BadgeField != "" && d.HistoricalEndpoint != ""
}
