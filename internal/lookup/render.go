package lookup

import (
	"bytes"
	"html"
	"html/template"
	"io"

	"recordlookup/internal/models"
)

// Renderer renders a named template; satisfied by the fiber html engine.
type Renderer interface {
	Render(out io.Writer, name string, binding any, layout ...string) error
}

// Fragment messages.
const (
	msgLicenseNotFound = "License not found"
	msgNoRecords       = "No matching records found"
	msgUnavailable     = "No data available right now. Please try again later."
	msgRenderFailed    = "Unable to display results"
	msgInvalidLicense  = "Licenses may only contain letters, numbers, spaces and hyphens"
	msgInvalidBadge    = "Badge numbers may only contain letters, numbers and hyphens"
)

func noDataMessage(datasetID string) string {
	return "No data for dataset " + datasetID
}

// message renders a bold notice paragraph.
func message(text string) template.HTML {
	return template.HTML("<p><b>" + html.EscapeString(text) + "</b></p>")
}

type recordsView struct {
	Columns     []models.Column
	Records     []models.Record
	ShowHistory bool
	BadgeField  string
}

type historyRow struct {
	Current  models.Record
	Previous models.Record
}

type historyView struct {
	Columns []models.Column
	Rows    []historyRow
}

func newHistoryView(columns []models.Column, records []models.Record) historyView {
	view := historyView{Columns: columns, Rows: make([]historyRow, 0, len(records))}
	var previous models.Record
	for _, r := range records {
		view.Rows = append(view.Rows, historyRow{Current: r, Previous: previous})
		previous = r
	}
	return view
}

func (s *Service) render(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := s.views.Render(&buf, name, data); err != nil {
		s.logger.Error("failed to render fragment", "template", name, "error", err)
		return message(msgRenderFailed)
	}
	return template.HTML(buf.String())
}
