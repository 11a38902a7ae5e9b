package wfs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ligustah/wfsharvest/pkg/tiling"
)

// featureCollection builds a minimal GeoJSON payload with n point features
// and the service counters set.
func featureCollection(n, matched int) string {
	body := fmt.Sprintf(`{"type":"FeatureCollection","numberMatched":%d,"numberReturned":%d,"features":[`, matched, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"type":"Feature","properties":{"gpu_doc_id":"doc-%d"},"geometry":{"type":"Point","coordinates":[%d.5,%d.5]}}`, i, i, i)
	}
	return body + "]}"
}

func TestFetch(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, featureCollection(3, 3))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Endpoint = server.URL
	opts.Layer = "wfs_du:zone_urba"
	opts.MaxFeatures = 5000

	client := NewClient(opts)
	region := tiling.Region{MinX: 0, MinY: 45, MaxX: 1, MaxY: 46}

	rs, err := client.Fetch(context.Background(), region)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if rs.Count() != 3 {
		t.Errorf("count = %d, want 3", rs.Count())
	}
	if rs.NumberMatched != 3 || rs.NumberReturned != 3 {
		t.Errorf("counters = (%d,%d), want (3,3)", rs.NumberMatched, rs.NumberReturned)
	}
	if rs.Region != region {
		t.Errorf("region = %v, want %v", rs.Region, region)
	}

	want := map[string]string{
		"service":      "WFS",
		"version":      "2.0.0",
		"request":      "GetFeature",
		"typeName":     "wfs_du:zone_urba",
		"srsName":      "EPSG:4326",
		"outputFormat": "application/json",
		"bbox":         "0,45,1,46,EPSG:4326",
		"count":        "5000",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
	if _, ok := gotQuery["resultType"]; ok {
		t.Error("Fetch must not send resultType")
	}
}

func TestFetchMissingCounters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"FeatureCollection","features":[]}`)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Endpoint = server.URL
	opts.Layer = "layer"

	rs, err := NewClient(opts).Fetch(context.Background(), tiling.Region{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if rs.Count() != 0 {
		t.Errorf("count = %d, want 0", rs.Count())
	}
	if rs.NumberMatched != -1 {
		t.Errorf("NumberMatched = %d, want -1", rs.NumberMatched)
	}
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Endpoint = server.URL
	opts.Layer = "layer"

	_, err := NewClient(opts).Fetch(context.Background(), tiling.Region{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1})
	if !errors.Is(err, ErrServerError) {
		t.Errorf("expected ErrServerError, got %v", err)
	}
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Endpoint = server.URL
	opts.Layer = "layer"

	_, err := NewClient(opts).Fetch(context.Background(), tiling.Region{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<ows:ExceptionReport/>`)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Endpoint = server.URL
	opts.Layer = "layer"

	_, err := NewClient(opts).Fetch(context.Background(), tiling.Region{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1})
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("expected ErrBadResponse, got %v", err)
	}
}

func TestFetchSingleAttempt(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Endpoint = server.URL
	opts.Layer = "layer"

	_, err := NewClient(opts).Fetch(context.Background(), tiling.Region{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("server saw %d calls, want exactly 1 (no retries)", calls)
	}
}

func TestHits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("resultType") != "hits" {
			t.Errorf("resultType = %q, want hits", r.URL.Query().Get("resultType"))
		}
		fmt.Fprint(w, `{"type":"FeatureCollection","numberMatched":271828,"numberReturned":0,"features":[]}`)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Endpoint = server.URL
	opts.Layer = "layer"

	n, err := NewClient(opts).Hits(context.Background(), tiling.Region{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1})
	if err != nil {
		t.Fatalf("Hits: %v", err)
	}
	if n != 271828 {
		t.Errorf("hits = %d, want 271828", n)
	}
}

func TestHitsMissingCounter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"FeatureCollection","features":[]}`)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Endpoint = server.URL
	opts.Layer = "layer"

	_, err := NewClient(opts).Hits(context.Background(), tiling.Region{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1})
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("expected ErrBadResponse, got %v", err)
	}
}
