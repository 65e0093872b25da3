// Package lookup turns user lookups into open-data queries and HTML fragments.
package lookup

import (
	"context"
	"html/template"
	"log/slog"
	"strings"

	"recordlookup/internal/catalog"
	"recordlookup/internal/metrics"
	"recordlookup/internal/models"
	"recordlookup/internal/opendata"
	"recordlookup/internal/validation"
)

// Lookup kinds, used as metric labels.
const (
	KindLicense       = "license"
	KindName          = "name"
	KindHistorical    = "historical"
	KindLegacyLicense = "legacy_license"
	KindLegacyName    = "legacy_name"
	KindLegacyBadge   = "legacy_badge"
)

// Querier runs filtered queries against the open-data API.
type Querier interface {
	Query(ctx context.Context, q opendata.Query) ([]models.Record, error)
}

// Service builds queries from lookups and renders their results.
// Every operation returns a displayable fragment; remote and metadata
// failures are absorbed here and never reach the caller as errors.
type Service struct {
	catalog *catalog.Catalog
	client  Querier
	views   Renderer
	strict  StrictPolicy
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithStrictPolicy replaces the rule deciding when fuzzy lookups are narrowed.
func WithStrictPolicy(p StrictPolicy) Option {
	return func(s *Service) {
		s.strict = p
	}
}

// WithLogger sets the logger used for lookup failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a lookup service.
func NewService(cat *catalog.Catalog, client Querier, views Renderer, opts ...Option) *Service {
	s := &Service{
		catalog: cat,
		client:  client,
		views:   views,
		strict:  MinLengthPolicy(3),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LicenseLookup searches the fleet dataset for plates containing pattern.
func (s *Service) LicenseLookup(ctx context.Context, pattern string) template.HTML {
	return s.licenseLookup(ctx, KindLicense, pattern)
}

// LegacyLicenseLookup serves the positional /license-lookup endpoint.
// Its fragment is identical to LicenseLookup for the same input.
func (s *Service) LegacyLicenseLookup(ctx context.Context, license string) template.HTML {
	return s.licenseLookup(ctx, KindLegacyLicense, license)
}

func (s *Service) licenseLookup(ctx context.Context, kind, pattern string) template.HTML {
	pattern = validation.NormalizeValue(pattern)
	if pattern == "" {
		metrics.RecordLookup(kind, metrics.OutcomeEmpty)
		return message(msgLicenseNotFound)
	}
	if !validation.ValidateLicense(pattern) {
		metrics.RecordLookup(kind, metrics.OutcomeEmpty)
		return message(msgInvalidLicense)
	}

	fleet := s.catalog.Fleet()
	field, _ := fleet.Field(catalog.LicenseField)

	result, err := s.search(ctx, kind, fleet, opendata.Query{
		Endpoint: fleet.Endpoint,
		Filters:  append(baseFilters(fleet), opendata.Contains(field.Column, pattern)),
		Order:    fleet.Order,
	})
	if err != nil {
		return message(msgUnavailable)
	}
	if !result.Found() {
		return message(msgLicenseNotFound)
	}
	return s.render("partials/records", recordsView{Columns: fleet.Columns, Records: result.Records})
}

// NameLookup searches dataset with the submitted field values.
// It reports whether matching was narrowed to exact mode.
func (s *Service) NameLookup(ctx context.Context, dataset *models.Dataset, req models.LookupRequest) (template.HTML, bool) {
	if dataset == nil {
		metrics.RecordLookup(KindName, metrics.OutcomeUnknownDataset)
		return message(noDataMessage(req.DatasetID)), false
	}

	// Historical searches are always strict and ignore the ordinary fields.
	if req.Historical {
		return s.historicalLookup(ctx, dataset, req.Badge), false
	}

	declared := models.LookupRequest{
		DatasetID: dataset.ID,
		Values:    make(map[string]string),
		Strict:    req.Strict,
	}
	fuzzy := make(map[string]string)
	for _, f := range dataset.Fields {
		v := validation.NormalizeValue(req.Values[f.Name])
		if v == "" {
			continue
		}
		if valid, msg := validation.ValidateValue(v); !valid {
			metrics.RecordLookup(KindName, metrics.OutcomeEmpty)
			return message(f.Label + ": " + msg), false
		}
		declared.Values[f.Name] = v
		if f.Fuzzy {
			fuzzy[f.Name] = v
		}
	}

	// Don't list the whole dataset when nothing was entered.
	if declared.IsEmpty() {
		metrics.RecordLookup(KindName, metrics.OutcomeEmpty)
		return "", false
	}

	strict := declared.Strict || (len(fuzzy) > 0 && s.strict(fuzzy))
	if strict {
		metrics.RecordStrictSearch(dataset.ID)
	}

	filters := baseFilters(dataset)
	for _, f := range dataset.Fields {
		v, ok := declared.Values[f.Name]
		if !ok {
			continue
		}
		// Values carrying their own wildcard characters are only matched exactly.
		if f.Fuzzy && !strict && !hasWildcard(v) {
			filters = append(filters, opendata.Contains(f.Column, v))
		} else {
			filters = append(filters, opendata.Exact(f.Column, v))
		}
	}

	result, err := s.search(ctx, KindName, dataset, opendata.Query{
		Endpoint: dataset.Endpoint,
		Filters:  filters,
		Order:    dataset.Order,
	})
	result.StrictSearch = strict
	return s.renderRecords(dataset, result, err), result.StrictSearch
}

// HistoricalLookup lists every record of a badge on the historical endpoint
// of the dataset registered under datasetID.
func (s *Service) HistoricalLookup(ctx context.Context, datasetID, badge string) template.HTML {
	dataset, _ := s.catalog.Dataset(datasetID)
	html, _ := s.NameLookup(ctx, dataset, models.LookupRequest{
		DatasetID:  "historical " + strings.ToUpper(datasetID),
		Historical: true,
		Badge:      badge,
	})
	return html
}

func (s *Service) historicalLookup(ctx context.Context, dataset *models.Dataset, badge string) template.HTML {
	badge = strings.TrimSpace(badge)
	if !dataset.SupportsHistorical() {
		metrics.RecordLookup(KindHistorical, metrics.OutcomeUnknownDataset)
		return message(noDataMessage(dataset.ID))
	}
	if badge == "" {
		metrics.RecordLookup(KindHistorical, metrics.OutcomeEmpty)
		return ""
	}
	if !validation.ValidateBadge(badge) {
		metrics.RecordLookup(KindHistorical, metrics.OutcomeEmpty)
		return message(msgInvalidBadge)
	}

	result, err := s.search(ctx, KindHistorical, dataset, opendata.Query{
		Endpoint: dataset.HistoricalEndpoint,
		Filters:  append(baseFilters(dataset), opendata.Exact(dataset.BadgeField, badge)),
		Order:    dataset.Order,
	})
	if err != nil {
		return message(msgUnavailable)
	}
	if !result.Found() {
		return message(msgNoRecords)
	}
	return s.render("partials/historical_records", newHistoryView(dataset.Columns, result.Records))
}

// LegacyNameLookup serves the positional /name-lookup endpoint: a wildcard
// match on the default dataset's legacy name column. Frozen behavior.
func (s *Service) LegacyNameLookup(ctx context.Context, name string) template.HTML {
	d := s.catalog.Default()
	if d.LegacyNameField == "" {
		metrics.RecordLookup(KindLegacyName, metrics.OutcomeUnknownDataset)
		return message(noDataMessage(d.ID))
	}
	name = validation.NormalizeValue(name)
	if name == "" {
		metrics.RecordLookup(KindLegacyName, metrics.OutcomeEmpty)
		return ""
	}
	if valid, msg := validation.ValidateValue(name); !valid {
		metrics.RecordLookup(KindLegacyName, metrics.OutcomeEmpty)
		return message(msg)
	}

	filter := opendata.Contains(d.LegacyNameField, name)
	if hasWildcard(name) {
		filter = opendata.Exact(d.LegacyNameField, name)
	}
	return s.queryRecords(ctx, KindLegacyName, d, append(baseFilters(d), filter))
}

// LegacyBadgeLookup serves the positional /badge-lookup endpoint: an exact
// match on the default dataset's legacy badge column. Frozen behavior.
func (s *Service) LegacyBadgeLookup(ctx context.Context, badge string) template.HTML {
	d := s.catalog.Default()
	if d.LegacyBadgeField == "" {
		metrics.RecordLookup(KindLegacyBadge, metrics.OutcomeUnknownDataset)
		return message(noDataMessage(d.ID))
	}
	badge = strings.TrimSpace(badge)
	if badge == "" {
		metrics.RecordLookup(KindLegacyBadge, metrics.OutcomeEmpty)
		return ""
	}
	if !validation.ValidateBadge(badge) {
		metrics.RecordLookup(KindLegacyBadge, metrics.OutcomeEmpty)
		return message(msgInvalidBadge)
	}

	filters := append(baseFilters(d), opendata.Exact(d.LegacyBadgeField, badge))
	return s.queryRecords(ctx, KindLegacyBadge, d, filters)
}

// queryRecords runs filters against the dataset's endpoint and renders a results table.
func (s *Service) queryRecords(ctx context.Context, kind string, d *models.Dataset, filters []opendata.Filter) template.HTML {
	result, err := s.search(ctx, kind, d, opendata.Query{
		Endpoint: d.Endpoint,
		Filters:  filters,
		Order:    d.Order,
	})
	return s.renderRecords(d, result, err)
}

// search runs q and records the outcome of the lookup.
// Failures are logged here; callers only choose the fragment to show.
func (s *Service) search(ctx context.Context, kind string, d *models.Dataset, q opendata.Query) (models.LookupResult, error) {
	records, err := s.client.Query(ctx, q)
	if err != nil {
		s.logFailure(ctx, kind, d.ID, err)
		return models.LookupResult{}, err
	}

	result := models.LookupResult{Records: records}
	if result.Found() {
		metrics.RecordLookup(kind, metrics.OutcomeFound)
	} else {
		metrics.RecordLookup(kind, metrics.OutcomeNotFound)
	}
	return result, nil
}

func (s *Service) renderRecords(d *models.Dataset, result models.LookupResult, err error) template.HTML {
	if err != nil {
		return message(msgUnavailable)
	}
	if !result.Found() {
		return message(msgNoRecords)
	}
	return s.render("partials/records", recordsView{
		Columns:     d.Columns,
		Records:     result.Records,
		ShowHistory: d.SupportsHistorical(),
		BadgeField:  d.BadgeField,
	})
}

func (s *Service) logFailure(ctx context.Context, kind, datasetID string, err error) {
	metrics.RecordLookup(kind, metrics.OutcomeError)
	s.logger.ErrorContext(ctx, "lookup failed",
		"kind", kind,
		"dataset", datasetID,
		"request_id", requestIDFrom(ctx),
		"error", err,
	)
}

func baseFilters(d *models.Dataset) []opendata.Filter {
	filters := make([]opendata.Filter, 0, len(d.BaseFilters)+len(d.Fields))
	for _, bf := range d.BaseFilters {
		filters = append(filters, opendata.Exact(bf.Column, bf.Value))
	}
	return filters
}
