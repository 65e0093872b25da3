package models

import "strings"

// Record is a single row returned by the open-data API, keyed by column name.
type Record map[string]any

// LookupRequest is a parsed officer lookup submitted through the name form.
type LookupRequest struct {
	DatasetID  string
	Values     map[string]string // Declared field name -> submitted value
	Strict     bool              // Force exact matching on every field
	Historical bool
	Badge      string
}

// IsEmpty reports whether no field carries a non-blank value.
func (r LookupRequest) IsEmpty() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// LookupResult is the outcome of a remote query.
type LookupResult struct {
	Records      []Record
	StrictSearch bool // Matching was narrowed to exact mode
}

// Found reports whether any records were returned.
func (r LookupResult) Found() bool {
	return len(r.Records) > 0
}
