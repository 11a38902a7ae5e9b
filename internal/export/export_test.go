package export

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func testCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	a := geojson.NewFeature(orb.Point{2.35, 48.85})
	a.Properties["gpu_doc_id"] = "doc-1"
	a.Properties["partition"] = "DU_75056"
	fc.Append(a)

	b := geojson.NewFeature(orb.Point{5.37, 43.29})
	b.Properties["gpu_doc_id"] = "doc-2"
	b.Properties["nomfic"] = "zonage.gml"
	fc.Append(b)

	return fc
}

func TestWrite(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	summary, err := Write(ctx, bucket, testCollection(), Options{Prefix: "urbanisme"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if summary.GeoJSONKey != "urbanisme.geojson" || summary.CSVKey != "urbanisme.csv" {
		t.Errorf("keys = (%s, %s), want urbanisme.{geojson,csv}", summary.GeoJSONKey, summary.CSVKey)
	}
	if summary.Features != 2 {
		t.Errorf("features = %d, want 2", summary.Features)
	}

	// GeoJSON round-trips through orb and keeps the geometry.
	data, err := bucket.ReadAll(ctx, "urbanisme.geojson")
	if err != nil {
		t.Fatalf("read geojson: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("unmarshal written geojson: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("written features = %d, want 2", len(fc.Features))
	}
	if fc.Features[0].Geometry == nil {
		t.Error("geometry missing from written feature")
	}

	// CSV has the union header and empty cells for absent attributes.
	raw, err := bucket.ReadAll(ctx, "urbanisme.csv")
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	if err != nil {
		t.Fatalf("parse written csv: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("csv rows = %d, want 3 (header + 2 records)", len(rows))
	}

	header := rows[0]
	want := []string{"gpu_doc_id", "partition", "nomfic"}
	if len(header) != len(want) {
		t.Fatalf("header = %v, want %v", header, want)
	}
	for i := range want {
		if header[i] != want[i] {
			t.Errorf("header[%d] = %q, want %q", i, header[i], want[i])
		}
	}

	if rows[1][0] != "doc-1" || rows[1][2] != "" {
		t.Errorf("row 1 = %v, want doc-1 with empty nomfic", rows[1])
	}
	if rows[2][0] != "doc-2" || rows[2][1] != "" || rows[2][2] != "zonage.gml" {
		t.Errorf("row 2 = %v", rows[2])
	}

	for _, col := range header {
		if col == "geometry" {
			t.Error("geometry leaked into the csv header")
		}
	}
}

func TestWriteEmptyCollection(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	_, err = Write(ctx, bucket, geojson.NewFeatureCollection(), Options{})
	if !errors.Is(err, ErrNoFeatures) {
		t.Fatalf("expected ErrNoFeatures, got %v", err)
	}

	// Nothing may be written on an empty harvest.
	if _, err := bucket.ReadAll(ctx, "harvest.geojson"); err == nil {
		t.Error("geojson file written despite empty collection")
	}
}

func TestWriteDefaultPrefix(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	summary, err := Write(ctx, bucket, testCollection(), Options{})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if summary.GeoJSONKey != "harvest.geojson" {
		t.Errorf("default geojson key = %s, want harvest.geojson", summary.GeoJSONKey)
	}
}
