// Package filters holds template helpers for formatting fetched records.
package filters

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

// Display classes for comparison views.
const (
	ClassChanged   = "changed"
	ClassUnchanged = "unchanged"
)

// DiffClassname classifies a value against the same column of the previous record.
// A missing previous value is never "changed".
func DiffClassname(current, previous any) string {
	if previous == nil {
		return ClassUnchanged
	}
	if FormatValue(current) != FormatValue(previous) {
		return ClassChanged
	}
	return ClassUnchanged
}

// FormatValue renders a record cell as display text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// FuncMap returns the helpers registered on the template engine.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"diffClassname": DiffClassname,
		"formatValue":   FormatValue,
	}
}
