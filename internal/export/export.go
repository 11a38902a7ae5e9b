package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"

	"github.com/paulmach/orb/geojson"
	"gocloud.dev/blob"
)

// ErrNoFeatures is returned when the merged collection is empty: an empty
// harvest writes no files.
var ErrNoFeatures = errors.New("export: no features to write")

// Options configures the dataset writer.
type Options struct {
	// Prefix is the object name prefix for both output files.
	// Default: "harvest"
	Prefix string
}

// Summary describes what was written.
type Summary struct {
	GeoJSONKey string
	CSVKey     string
	Features   int
}

// Write persists the merged collection in two forms: a GeoJSON file
// carrying geometry plus attributes, and a CSV file carrying the
// attributes alone. Both go through the same bucket, so the destination
// can be a local directory, S3, GCS, or an in-memory bucket in tests. A
// write error is returned as-is; no partial-file cleanup is attempted.
func Write(ctx context.Context, bucket *blob.Bucket, fc *geojson.FeatureCollection, opts Options) (*Summary, error) {
	if fc == nil || len(fc.Features) == 0 {
		return nil, ErrNoFeatures
	}
	if opts.Prefix == "" {
		opts.Prefix = "harvest"
	}

	summary := &Summary{
		GeoJSONKey: opts.Prefix + ".geojson",
		CSVKey:     opts.Prefix + ".csv",
		Features:   len(fc.Features),
	}

	if err := writeGeoJSON(ctx, bucket, summary.GeoJSONKey, fc); err != nil {
		return nil, fmt.Errorf("write %s: %w", summary.GeoJSONKey, err)
	}
	if err := writeCSV(ctx, bucket, summary.CSVKey, fc); err != nil {
		return nil, fmt.Errorf("write %s: %w", summary.CSVKey, err)
	}

	return summary, nil
}

func writeGeoJSON(ctx context.Context, bucket *blob.Bucket, key string, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: "application/geo+json",
	})
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// writeCSV emits one row per feature with the geometry dropped. The header
// is the union of attribute keys in first-seen order; attributes missing
// from a record are left empty.
func writeCSV(ctx context.Context, bucket *blob.Bucket, key string, fc *geojson.FeatureCollection) error {
	header := columnOrder(fc)

	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		w.Close()
		return err
	}

	row := make([]string, len(header))
	for _, f := range fc.Features {
		for i, col := range header {
			if v, ok := f.Properties[col]; ok {
				row[i] = fmt.Sprint(v)
			} else {
				row[i] = ""
			}
		}
		if err := cw.Write(row); err != nil {
			w.Close()
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// columnOrder returns every attribute key across the collection, ordered
// by the record that introduced it. Keys introduced by the same record are
// sorted so the header is deterministic.
func columnOrder(fc *geojson.FeatureCollection) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, f := range fc.Features {
		var fresh []string
		for key := range f.Properties {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				fresh = append(fresh, key)
			}
		}
		sort.Strings(fresh)
		cols = append(cols, fresh...)
	}
	return cols
}
