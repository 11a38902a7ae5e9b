package wfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"

	"github.com/ligustah/wfsharvest/pkg/tiling"
)

// Common errors.
var (
	ErrNotFound     = errors.New("wfs: resource not found")
	ErrForbidden    = errors.New("wfs: access forbidden")
	ErrUnauthorized = errors.New("wfs: unauthorized")
	ErrServerError  = errors.New("wfs: server error")
	ErrBadResponse  = errors.New("wfs: malformed response")
)

// Options configures the WFS client.
type Options struct {
	// Endpoint is the base URL of the WFS service.
	Endpoint string

	// Layer is the qualified feature type name to query.
	Layer string

	// SRS is the coordinate reference system identifier used for both the
	// bbox filter and the returned geometries (e.g. "EPSG:4326").
	SRS string

	// MaxFeatures is the per-request feature cap imposed by the server.
	// It is sent as the count parameter, and a response holding exactly
	// this many features must be treated as possibly truncated.
	MaxFeatures int

	// Timeout for individual requests.
	// Default: 60s
	Timeout time.Duration

	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 2 (fetches are strictly sequential)
	MaxIdleConnsPerHost int
}

// DefaultOptions returns options with sensible defaults. Endpoint and
// Layer have no defaults and must be set by the caller.
func DefaultOptions() Options {
	return Options{
		SRS:                 "EPSG:4326",
		MaxFeatures:         5000,
		Timeout:             60 * time.Second,
		MaxIdleConnsPerHost: 2,
	}
}

// RecordSet is the decoded result of a single bounded-region query.
type RecordSet struct {
	// Region is the bounding box the records were fetched for.
	Region tiling.Region

	// Depth is the subdivision depth of the tile that produced this set.
	// Filled in by the harvester, not the client.
	Depth int

	// Features holds the decoded records in response order.
	Features []*geojson.Feature

	// NumberMatched and NumberReturned mirror the service's own counters
	// when the payload carries them, -1 otherwise. Informational only;
	// capping decisions use Count.
	NumberMatched  int
	NumberReturned int
}

// Count returns the number of records in the set.
func (rs *RecordSet) Count() int {
	return len(rs.Features)
}

// Client issues GetFeature requests against a single WFS layer.
type Client struct {
	client *http.Client
	opts   Options
}

// NewClient creates a new WFS client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = 2
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		opts: opts,
	}
}

// Fetch performs one GetFeature request for the given region and decodes
// the GeoJSON payload. A single attempt is made; callers decide what a
// failure means for the surrounding tile.
func (c *Client) Fetch(ctx context.Context, region tiling.Region) (*RecordSet, error) {
	body, err := c.get(ctx, c.queryURL(region, false))
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	rs := &RecordSet{
		Region:         region,
		Features:       fc.Features,
		NumberMatched:  -1,
		NumberReturned: -1,
	}

	// orb drops top-level members it does not model; pull the service's
	// counters off the raw payload.
	if v := gjson.GetBytes(body, "numberMatched"); v.Exists() && v.Type == gjson.Number {
		rs.NumberMatched = int(v.Int())
	}
	if v := gjson.GetBytes(body, "numberReturned"); v.Exists() {
		rs.NumberReturned = int(v.Int())
	}

	return rs, nil
}

// Hits performs a resultType=hits request for the given region and returns
// the service's numberMatched counter without transferring any geometry.
func (c *Client) Hits(ctx context.Context, region tiling.Region) (int, error) {
	body, err := c.get(ctx, c.queryURL(region, true))
	if err != nil {
		return 0, err
	}

	v := gjson.GetBytes(body, "numberMatched")
	if !v.Exists() || v.Type != gjson.Number {
		return 0, fmt.Errorf("%w: numberMatched missing", ErrBadResponse)
	}
	return int(v.Int()), nil
}

// queryURL builds the GetFeature request URL for a region.
func (c *Client) queryURL(region tiling.Region, hits bool) string {
	params := url.Values{}
	params.Set("service", "WFS")
	params.Set("version", "2.0.0")
	params.Set("request", "GetFeature")
	params.Set("typeName", c.opts.Layer)
	params.Set("srsName", c.opts.SRS)
	params.Set("outputFormat", "application/json")
	params.Set("bbox", region.String()+","+c.opts.SRS)
	params.Set("count", strconv.Itoa(c.opts.MaxFeatures))
	if hits {
		params.Set("resultType", "hits")
	}
	return c.opts.Endpoint + "?" + params.Encode()
}

// get performs one GET request and returns the full response body.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wfs request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatusCode(resp.StatusCode, resp.Status); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrBadResponse)
	}

	return body, nil
}

// checkStatusCode returns an appropriate error for non-success status codes.
func checkStatusCode(code int, status string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500:
		return fmt.Errorf("%w: %s", ErrServerError, status)
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("unexpected status code: %d", code)
	}
}
