// Package opendata queries Socrata (SODA) open-data datasets.
package opendata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3/client"

	"recordlookup/internal/metrics"
	"recordlookup/internal/models"
)

// Options configures a Client.
type Options struct {
	BaseURL  string        // e.g. "https://data.seattle.gov"
	AppToken string        // Optional SODA application token
	Timeout  time.Duration // Per-request timeout
	Limit    int           // $limit sent with every query, 0 for the API default
}

// Query is a read-only filtered query against a single dataset.
type Query struct {
	Endpoint string // SODA resource id
	Filters  []Filter
	Order    string // Optional $order clause
	Limit    int    // Overrides the client's $limit when positive
}

// Client performs read-only queries against the SODA resource API.
// No retries are performed; failures surface as ErrRemoteUnavailable or ErrMalformedResponse.
type Client struct {
	http     *client.Client
	baseURL  string
	appToken string
	limit    int
}

// New creates a new open-data client.
func New(opts Options) *Client {
	cc := client.New()
	if opts.Timeout > 0 {
		cc.SetTimeout(opts.Timeout)
	}
	cc.SetUserAgent("recordlookup/1.0")

	return &Client{
		http:     cc,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		appToken: opts.AppToken,
		limit:    opts.Limit,
	}
}

// ResourceURL returns the JSON resource URL of a dataset endpoint.
func (c *Client) ResourceURL(endpoint string) string {
	return c.baseURL + "/resource/" + endpoint + ".json"
}

// Query runs q and returns the decoded records in API order.
func (c *Client) Query(ctx context.Context, q Query) ([]models.Record, error) {
	params := map[string]string{}
	if where := Where(q.Filters); where != "" {
		params["$where"] = where
	}
	if q.Order != "" {
		params["$order"] = q.Order
	}
	limit := c.limit
	if q.Limit > 0 {
		limit = q.Limit
	}
	if limit > 0 {
		params["$limit"] = strconv.Itoa(limit)
	}

	headers := map[string]string{"Accept": "application/json"}
	if c.appToken != "" {
		headers["X-App-Token"] = c.appToken
	}

	start := time.Now()
	resp, err := c.http.Get(c.ResourceURL(q.Endpoint), client.Config{
		Ctx:    ctx,
		Param:  params,
		Header: headers,
	})
	if err != nil {
		metrics.ObserveRemote(q.Endpoint, "error", time.Since(start))
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteUnavailable, q.Endpoint, err)
	}
	defer resp.Close()

	status := resp.StatusCode()
	metrics.ObserveRemote(q.Endpoint, strconv.Itoa(status), time.Since(start))
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrRemoteUnavailable, q.Endpoint, status)
	}

	return decodeRecords(resp.Body())
}

// decodeRecords parses a SODA JSON array of row objects.
func decodeRecords(body []byte) ([]models.Record, error) {
	var records []models.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("%w: row %d is not an object", ErrMalformedResponse, i)
		}
	}
	return records, nil
}
