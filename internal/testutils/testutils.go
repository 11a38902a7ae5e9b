//go:build integration

// Package testutils provides shared test infrastructure for integration tests.
package testutils

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gocloud.dev/blob"
)

// Point is a synthetic feature location with a stable identifier.
type Point struct {
	ID  string
	Lon float64
	Lat float64
}

// ClusterPoints lays n points on a regular grid strictly inside the given
// extent. Points never sit on tile edges, so a point belongs to exactly
// one tile at any subdivision depth. The layout is deterministic.
func ClusterPoints(n int, minX, minY, maxX, maxY float64) []Point {
	cols := 1
	for cols*cols < n {
		cols++
	}

	stepX := (maxX - minX) / float64(cols+1)
	stepY := (maxY - minY) / float64(cols+1)

	points := make([]Point, 0, n)
	for i := 0; len(points) < n; i++ {
		col := i % cols
		row := i / cols
		points = append(points, Point{
			ID:  fmt.Sprintf("pt-%d", i),
			Lon: minX + float64(col+1)*stepX + stepX/7,
			Lat: minY + float64(row+1)*stepY + stepY/7,
		})
	}
	return points
}

// StartWFSServer starts an HTTP server that behaves like a capped WFS
// GetFeature endpoint over the given point set: it filters by the bbox
// parameter, reports the true count as numberMatched, and truncates the
// feature list at the count parameter, exactly the way a capped layer
// does.
func StartWFSServer(t *testing.T, points []Point) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		bboxParts := strings.Split(q.Get("bbox"), ",")
		if len(bboxParts) < 4 {
			http.Error(w, "missing bbox", http.StatusBadRequest)
			return
		}
		var bbox [4]float64
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(bboxParts[i], 64)
			if err != nil {
				http.Error(w, "bad bbox", http.StatusBadRequest)
				return
			}
			bbox[i] = v
		}

		limit := 5000
		if c := q.Get("count"); c != "" {
			if v, err := strconv.Atoi(c); err == nil {
				limit = v
			}
		}

		var inside []Point
		for _, p := range points {
			if p.Lon >= bbox[0] && p.Lon <= bbox[2] && p.Lat >= bbox[1] && p.Lat <= bbox[3] {
				inside = append(inside, p)
			}
		}

		matched := len(inside)
		if q.Get("resultType") == "hits" {
			inside = nil
		} else if len(inside) > limit {
			inside = inside[:limit]
		}

		fc := geojson.NewFeatureCollection()
		for _, p := range inside {
			f := geojson.NewFeature(orb.Point{p.Lon, p.Lat})
			f.Properties["gpu_doc_id"] = p.ID
			f.Properties["partition"] = "DU_TEST"
			f.Properties["nomfic"] = "zonage.gml"
			fc.Append(f)
		}

		data, err := fc.MarshalJSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// Splice the WFS counters in front of the features member.
		payload := strings.Replace(string(data), `"features"`,
			fmt.Sprintf(`"numberMatched":%d,"numberReturned":%d,"features"`, matched, len(inside)), 1)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	}))
}

// MinioEnv contains connection information for a Minio test environment.
type MinioEnv struct {
	Container testcontainers.Container
	BucketURL string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Close terminates the Minio container.
func (e *MinioEnv) Close(ctx context.Context) error {
	if e.Container != nil {
		return e.Container.Terminate(ctx)
	}
	return nil
}

// OpenBucket opens a gocloud bucket connection to the Minio environment.
func (e *MinioEnv) OpenBucket(ctx context.Context) (*blob.Bucket, error) {
	return blob.OpenBucket(ctx, e.BucketURL)
}

// StartMinioContainer starts a Minio container with a pre-created bucket.
func StartMinioContainer(t *testing.T, ctx context.Context, bucketName string) *MinioEnv {
	t.Helper()

	const (
		accessKey = "minioadmin"
		secretKey = "minioadmin"
	)

	networkName := fmt.Sprintf("wfsharvest-test-net-%d", time.Now().UnixNano())
	network, err := testcontainers.GenericNetwork(ctx, testcontainers.GenericNetworkRequest{
		NetworkRequest: testcontainers.NetworkRequest{Name: networkName},
	})
	if err != nil {
		t.Fatalf("create network: %v", err)
	}
	t.Cleanup(func() { network.Remove(ctx) })

	minioReq := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Networks:     []string{networkName},
		NetworkAliases: map[string][]string{
			networkName: {"minio"},
		},
		Env: map[string]string{
			"MINIO_ROOT_USER":     accessKey,
			"MINIO_ROOT_PASSWORD": secretKey,
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/ready").WithPort("9000"),
	}

	minioContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: minioReq,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start minio container: %v", err)
	}

	createBucketWithMC(t, ctx, networkName, accessKey, secretKey, bucketName)

	host, err := minioContainer.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}
	port, err := minioContainer.MappedPort(ctx, "9000")
	if err != nil {
		t.Fatalf("get container port: %v", err)
	}

	endpoint := fmt.Sprintf("%s:%s", host, port.Port())

	bucketURL := fmt.Sprintf("s3://%s?endpoint=http://%s&use_path_style=true&disable_https=true&region=us-east-1",
		bucketName,
		endpoint,
	)

	t.Setenv("AWS_ACCESS_KEY_ID", accessKey)
	t.Setenv("AWS_SECRET_ACCESS_KEY", secretKey)

	return &MinioEnv{
		Container: minioContainer,
		BucketURL: bucketURL,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}
}

// createBucketWithMC creates a bucket using a separate minio/mc container.
func createBucketWithMC(t *testing.T, ctx context.Context, networkName, accessKey, secretKey, bucketName string) {
	t.Helper()

	mcReq := testcontainers.ContainerRequest{
		Image:      "minio/mc:latest",
		Networks:   []string{networkName},
		Entrypoint: []string{"/bin/sh", "-c"},
		Cmd: []string{
			fmt.Sprintf(
				"/usr/bin/mc config host add myminio http://minio:9000 %s %s && "+
					"/usr/bin/mc mb myminio/%s; "+
					"exit 0",
				accessKey, secretKey, bucketName,
			),
		},
		WaitingFor: wait.ForExit(),
	}

	mcContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: mcReq,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start mc container: %v", err)
	}
	defer mcContainer.Terminate(ctx)
}
