//go:build integration

package main

import (
	"context"
	"testing"
	"time"

	"github.com/paulmach/orb/geojson"
	_ "gocloud.dev/blob/s3blob"

	"github.com/ligustah/wfsharvest/internal/testutils"
)

func TestCLIIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// 60 points clustered in the south-west initial tile of a 2x2 area,
	// plus a handful spread over the north-east one. With a cap of 50 the
	// south-west tile must subdivide at least once.
	points := testutils.ClusterPoints(60, 0.1, 0.1, 0.9, 0.9)
	points = append(points, testutils.ClusterPoints(5, 1.1, 1.1, 1.9, 1.9)...)

	t.Log("Starting fake WFS server...")
	server := testutils.StartWFSServer(t, points)
	defer server.Close()

	t.Log("Starting Minio container...")
	minio := testutils.StartMinioContainer(t, ctx, "harvest-test-bucket")
	defer func() {
		if err := minio.Close(ctx); err != nil {
			t.Logf("failed to terminate minio container: %v", err)
		}
	}()

	t.Run("probe", func(t *testing.T) {
		exitCode := runProbe([]string{
			"-url", server.URL,
			"-layer", "test:points",
			"-bbox", "0,0,2,2",
		})
		if exitCode != ExitSuccess {
			t.Fatalf("probe failed with exit code %d", exitCode)
		}
	})

	t.Run("harvest", func(t *testing.T) {
		exitCode := runHarvest([]string{
			"-url", server.URL,
			"-layer", "test:points",
			"-bbox", "0,0,2,2",
			"-tile-size", "1",
			"-max-features", "50",
			"-pace", "1ms",
			"-bucket", minio.BucketURL,
			"-prefix", "points",
			"-no-progress",
		})
		if exitCode != ExitSuccess {
			t.Fatalf("harvest failed with exit code %d", exitCode)
		}

		bucket, err := minio.OpenBucket(ctx)
		if err != nil {
			t.Fatalf("open bucket: %v", err)
		}
		defer bucket.Close()

		data, err := bucket.ReadAll(ctx, "points.geojson")
		if err != nil {
			t.Fatalf("read points.geojson: %v", err)
		}
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			t.Fatalf("unmarshal exported geojson: %v", err)
		}

		// Every point lands strictly inside one tile, so the harvest must
		// recover all of them exactly once despite the cap.
		if len(fc.Features) != len(points) {
			t.Errorf("exported %d features, want %d", len(fc.Features), len(points))
		}

		seen := map[string]bool{}
		for _, f := range fc.Features {
			id, _ := f.Properties["gpu_doc_id"].(string)
			if seen[id] {
				t.Errorf("feature %s exported twice", id)
			}
			seen[id] = true
		}

		if _, err := bucket.ReadAll(ctx, "points.csv"); err != nil {
			t.Errorf("read points.csv: %v", err)
		}
	})

	t.Run("empty_harvest", func(t *testing.T) {
		exitCode := runHarvest([]string{
			"-url", server.URL,
			"-layer", "test:points",
			"-bbox", "40,40,42,42",
			"-tile-size", "1",
			"-pace", "1ms",
			"-bucket", minio.BucketURL,
			"-prefix", "empty",
			"-no-progress",
		})
		if exitCode != ExitEmptyHarvest {
			t.Fatalf("exit code = %d, want %d for an empty harvest", exitCode, ExitEmptyHarvest)
		}

		bucket, err := minio.OpenBucket(ctx)
		if err != nil {
			t.Fatalf("open bucket: %v", err)
		}
		defer bucket.Close()

		if _, err := bucket.ReadAll(ctx, "empty.geojson"); err == nil {
			t.Error("empty harvest wrote an output file")
		}
	})
}
