package server

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordlookup/internal/catalog"
	"recordlookup/internal/config"
	"recordlookup/internal/lookup"
	"recordlookup/internal/opendata"
	"recordlookup/internal/testutil"
)

func testConfig(api *testutil.FakeAPI) *config.Config {
	return &config.Config{
		Env:             "test",
		ServerAddr:      ":0",
		SodaBaseURL:     api.URL(),
		SodaTimeout:     5 * time.Second,
		FuzzyMinLength:  3,
		RateLimitWindow: time.Minute,
		SiteTitle:       "Test Lookup",
		SiteFooter:      "Test footer",
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	cat, err := catalog.Load("")
	require.NoError(t, err)

	srv := New(cfg)
	client := opendata.New(opendata.Options{BaseURL: cfg.SodaBaseURL, Timeout: cfg.SodaTimeout})
	svc := lookup.NewService(cat, client, srv.Views, lookup.WithStrictPolicy(lookup.MinLengthPolicy(cfg.FuzzyMinLength)))
	srv.RegisterRoutes(svc, cat)
	return srv
}

func get(t *testing.T, srv *Server, target string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)

	resp, err := srv.App.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// results extracts the lookup fragment from a rendered page.
func results(t *testing.T, page string) string {
	t.Helper()
	_, rest, ok := strings.Cut(page, `<section id="results">`)
	require.True(t, ok, "page has no results section")
	fragment, _, ok := strings.Cut(rest, "</section>")
	require.True(t, ok, "results section is not closed")
	return strings.TrimSpace(fragment)
}

func TestHome_RedirectsToLicense(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	srv := newTestServer(t, testConfig(api))

	resp, _ := get(t, srv, "/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/license", resp.Header.Get("Location"))
}

func TestLicensePage(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.SetRecords("enxu-fgzb", []map[string]any{{"license": "ABC123", "make": "FORD"}})
	srv := newTestServer(t, testConfig(api))

	resp, body := get(t, srv, "/license?license=ABC123")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Seattle Public Vehicle Lookup")
	assert.Contains(t, body, "Test Lookup")
	assert.Contains(t, body, "https://data.seattle.gov/City-Business/Active-Fleet-Complement/enxu-fgzb")
	assert.Contains(t, results(t, body), "ABC123")
	assert.Equal(t, "upper(license) like '%ABC123%'", api.LastRequest().Where)
}

func TestLicensePage_Empty(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	srv := newTestServer(t, testConfig(api))

	resp, body := get(t, srv, "/license")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, results(t, body), "License not found")
	assert.Empty(t, api.Requests())
}

func TestLegacyLicense_MatchesQueryEndpoint(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.SetRecords("enxu-fgzb", []map[string]any{
		{"license": "ABC123", "make": "FORD", "year": "2016"},
		{"license": "ABC1234", "make": "TOYOTA", "year": "2019"},
	})
	srv := newTestServer(t, testConfig(api))

	_, modern := get(t, srv, "/license?license=ABC123")
	resp, legacy := get(t, srv, "/license-lookup/ABC123")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, results(t, modern), results(t, legacy))

	reqs := api.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, reqs[0].Where, reqs[1].Where)
}

func TestNamePage(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.SetRecords("2khk-5ukd", []map[string]any{{"first_name": "JOHN", "last_name": "SMITH", "badge": "1234"}})
	srv := newTestServer(t, testConfig(api))

	resp, body := get(t, srv, "/name?last_name=smith&unknown_param=x")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Officer Name Lookup")
	assert.Contains(t, results(t, body), "SMITH")
	assert.NotContains(t, body, "narrowed to exact matches")
	assert.Equal(t, "department = 'Police Department' AND upper(last_name) like '%SMITH%'", api.LastRequest().Where)
}

func TestNamePage_StrictSearch(t *testing.T) {
	const (
		forcedNotice   = "Showing exact matches only."
		fallbackNotice = "Your search was narrowed to exact matches."
	)

	tests := []struct {
		name       string
		target     string
		wantWhere  string
		wantNotice string
		notNotice  string
	}{
		{
			name:       "forced strict",
			target:     "/name?last_name=smith&strict=on",
			wantWhere:  "department = 'Police Department' AND last_name = 'smith'",
			wantNotice: forcedNotice,
			notNotice:  fallbackNotice,
		},
		{
			name:       "short value fallback",
			target:     "/name?last_name=li",
			wantWhere:  "department = 'Police Department' AND last_name = 'li'",
			wantNotice: fallbackNotice,
			notNotice:  forcedNotice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := testutil.NewFakeAPI(t)
			srv := newTestServer(t, testConfig(api))

			resp, body := get(t, srv, tt.target)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, tt.wantNotice)
			assert.NotContains(t, body, tt.notNotice)
			assert.Equal(t, tt.wantWhere, api.LastRequest().Where)
		})
	}
}

func TestNamePage_WildcardValueMatchedExactly(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	srv := newTestServer(t, testConfig(api))

	resp, _ := get(t, srv, "/name?first_name=a_b&last_name=smith")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "department = 'Police Department' AND first_name = 'a_b' AND upper(last_name) like '%SMITH%'", api.LastRequest().Where)
}

func TestLegacyLicense_EscapedPath(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.SetRecords("enxu-fgzb", []map[string]any{{"license": "ABC 123", "make": "FORD"}})
	srv := newTestServer(t, testConfig(api))

	_, modern := get(t, srv, "/license?license=ABC%20123")
	resp, legacy := get(t, srv, "/license-lookup/ABC%20123")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, results(t, legacy), "ABC 123")
	assert.Equal(t, results(t, modern), results(t, legacy))

	reqs := api.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "upper(license) like '%ABC 123%'", reqs[1].Where)
	assert.Equal(t, reqs[0].Where, reqs[1].Where)
}

func TestLegacyName_EscapedPath(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	srv := newTestServer(t, testConfig(api))

	resp, _ := get(t, srv, "/name-lookup/o%27brien")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "department = 'Police Department' AND upper(last_name) like '%O''BRIEN%'", api.LastRequest().Where)
}

func TestNamePage_EmptyValuesSkipRemote(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	srv := newTestServer(t, testConfig(api))

	for _, target := range []string{"/name", "/name?dataset_select=wage", "/name?first_name=&last_name="} {
		resp, body := get(t, srv, target)
		assert.Equal(t, http.StatusOK, resp.StatusCode, target)
		assert.Equal(t, "", results(t, body), target)
	}
	assert.Empty(t, api.Requests())
}

func TestNamePage_UnknownDataset(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	srv := newTestServer(t, testConfig(api))

	resp, body := get(t, srv, "/name?dataset_select=tpd&last_name=smith")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, results(t, body), "No data for dataset tpd")
	assert.Empty(t, api.Requests())
}

func TestNamePage_RemoteFailure(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.SetResponse("2khk-5ukd", http.StatusInternalServerError, `{"message":"internal error"}`)
	srv := newTestServer(t, testConfig(api))

	resp, body := get(t, srv, "/name?last_name=smith")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, results(t, body), "No data available right now")
}

func TestHistoricalPage_AlwaysExactBadge(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.SetRecords("2khk-5ukd", []map[string]any{
		{"badge": "1234", "last_name": "SMITH", "job_title": "Officer"},
		{"badge": "1234", "last_name": "SMITH", "job_title": "Detective"},
	})
	srv := newTestServer(t, testConfig(api))

	resp, body := get(t, srv, "/historical-officers/1234?last_name=jones&strict=off")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Historical Officer Lookup")
	assert.Contains(t, results(t, body), `class="changed">Detective`)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "department = 'Police Department' AND badge = '1234'", reqs[0].Where)
}

func TestLegacyOfficerEndpoints(t *testing.T) {
	tests := []struct {
		target    string
		wantWhere string
	}{
		{"/badge-lookup/1234", "department = 'Police Department' AND badge = '1234'"},
		{"/name-lookup/smith", "department = 'Police Department' AND upper(last_name) like '%SMITH%'"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			api := testutil.NewFakeAPI(t)
			api.SetRecords("2khk-5ukd", []map[string]any{{"badge": "1234", "last_name": "SMITH"}})
			srv := newTestServer(t, testConfig(api))

			resp, body := get(t, srv, tt.target)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, "Officer Name Lookup")
			assert.Contains(t, results(t, body), "SMITH")
			assert.Equal(t, tt.wantWhere, api.LastRequest().Where)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	srv := newTestServer(t, testConfig(api))

	resp, body := get(t, srv, "/does/not/exist")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "does not exist")
}

func TestInfraRoutes(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	srv := newTestServer(t, testConfig(api))

	for _, target := range []string{"/healthz", "/readyz", "/metrics", "/static/style.css"} {
		resp, _ := get(t, srv, target)
		assert.Equal(t, http.StatusOK, resp.StatusCode, target)
	}

	_, body := get(t, srv, "/readyz")
	assert.Contains(t, body, `"datasets":2`)
}

func TestRateLimiter_RedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	api := testutil.NewFakeAPI(t)

	cfg := testConfig(api)
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.RateLimitMax = 2
	srv := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		resp, _ := get(t, srv, "/license")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body := get(t, srv, "/license")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body, "Rate limit exceeded")

	// Probes are never limited.
	resp, _ = get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.NotEmpty(t, mr.Keys(), "limiter state should live in redis")
}

func TestRoutes_Table(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	cfg := testConfig(api)
	cat, err := catalog.Load("")
	require.NoError(t, err)

	srv := New(cfg)
	svc := lookup.NewService(cat, opendata.New(opendata.Options{BaseURL: api.URL()}), srv.Views)

	templates := map[string]string{}
	for _, r := range srv.Routes(svc, cat) {
		assert.True(t, (r.Page == nil) != (r.Handler == nil), "route %s needs exactly one of Page or Handler", r.Path)
		templates[r.Path] = r.Template
	}
	assert.Equal(t, "index", templates["/license"])
	assert.Equal(t, "index", templates["/name"])
	assert.Equal(t, "historical", templates["/historical-officers/:badge"])
	assert.Equal(t, "index", templates["/license-lookup/:license"])
	assert.Equal(t, "index", templates["/badge-lookup/:badge"])
	assert.Equal(t, "index", templates["/name-lookup/:name"])
}
