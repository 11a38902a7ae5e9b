package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/ligustah/wfsharvest/internal/config"
	"github.com/ligustah/wfsharvest/internal/export"
	"github.com/ligustah/wfsharvest/internal/harvest"
	"github.com/ligustah/wfsharvest/internal/progress"
	"github.com/ligustah/wfsharvest/internal/wfs"
	"github.com/ligustah/wfsharvest/pkg/tiling"
)

// runHarvest drives a full harvest: initial grid, adaptive subdivision,
// accumulation, and export of the merged dataset.
func runHarvest(args []string) int {
	fs := flag.NewFlagSet("harvest", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to a YAML configuration file")
	url := fs.String("url", "", "WFS service endpoint URL")
	layer := fs.String("layer", "", "Qualified feature type name to harvest")
	srs := fs.String("srs", "", "Coordinate reference system identifier")
	maxFeatures := fs.Int("max-features", 0, "Per-request feature cap imposed by the server")
	bbox := fs.String("bbox", "", "Area of interest as minx,miny,maxx,maxy")
	tileSize := fs.Float64("tile-size", 0, "Initial tile size in layer units")
	maxDepth := fs.Int("max-depth", 0, "Maximum subdivision depth")
	divisionFactor := fs.Int("division-factor", 0, "Per-axis split factor for subdivision")
	pace := fs.Duration("pace", 0, "Delay between initial tiles")
	timeout := fs.Duration("timeout", 0, "Per-request timeout")
	bucket := fs.String("bucket", "", "Output bucket URL (file://, s3://, gs://)")
	prefix := fs.String("prefix", "", "Output object name prefix")
	columns := fs.String("columns", "", "Comma-separated attribute keep-list")
	noProgress := fs.Bool("no-progress", false, "Suppress progress output")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: wfsharvest harvest [options]

Harvest every feature of a capped WFS layer. The area of interest is cut
into an initial tile grid; any tile whose fetch hits the feature cap is
recursively quartered until the result is believed complete or the depth
limit is reached. The merged dataset is exported as GeoJSON and CSV.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, code := loadConfig(*configPath)
	if code != ExitSuccess {
		return code
	}

	override := config.Config{
		URL:            *url,
		Layer:          *layer,
		SRS:            *srs,
		MaxFeatures:    *maxFeatures,
		TileSize:       *tileSize,
		MaxDepth:       *maxDepth,
		DivisionFactor: *divisionFactor,
		Pace:           *pace,
		Timeout:        *timeout,
		Bucket:         *bucket,
		Prefix:         *prefix,
	}
	if *bbox != "" {
		parsed, err := config.ParseBBox(*bbox)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -bbox: %v\n", err)
			return ExitInvalidArgs
		}
		override.BBox = parsed
	}
	if *columns != "" {
		override.Columns = strings.Split(*columns, ",")
	}
	cfg = cfg.Merge(override)
	if *noProgress {
		cfg.Progress = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[wfsharvest] Received interrupt, shutting down...")
		cancel()
	}()

	return harvestAndExport(ctx, cfg)
}

func harvestAndExport(ctx context.Context, cfg config.Config) int {
	bounds, err := cfg.Bounds()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	bkt, err := blob.OpenBucket(ctx, cfg.Bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening bucket: %v\n", err)
		return ExitStorageError
	}
	defer bkt.Close()

	fetcher := wfs.NewClient(wfs.Options{
		Endpoint:    cfg.URL,
		Layer:       cfg.Layer,
		SRS:         cfg.SRS,
		MaxFeatures: cfg.MaxFeatures,
		Timeout:     cfg.Timeout,
	})

	var reporter *progress.Reporter
	if cfg.Progress {
		reporter = progress.NewReporter(progress.Options{
			TotalTiles: len(tiling.Grid(bounds, cfg.TileSize)),
			Layer:      cfg.Layer,
		})
		reporter.Start()
	}

	orch := harvest.NewOrchestrator(fetcher, bounds, cfg.TileSize, harvest.Options{
		MaxFeatures:    cfg.MaxFeatures,
		MaxDepth:       cfg.MaxDepth,
		DivisionFactor: cfg.DivisionFactor,
		Pace:           cfg.Pace,
		Columns:        cfg.Columns,
		Progress:       reporter,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	if reporter != nil {
		reporter.Finish()
	}

	if result.Total() == 0 {
		fmt.Fprintln(os.Stderr, "[wfsharvest] No features collected; nothing to export")
		return ExitEmptyHarvest
	}

	summary, err := export.Write(ctx, bkt, result.Merge(), export.Options{Prefix: cfg.Prefix})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting dataset: %v\n", err)
		return ExitExportError
	}

	fmt.Fprintf(os.Stderr, "[wfsharvest] Export complete: %d features\n", summary.Features)
	fmt.Fprintf(os.Stderr, "[wfsharvest] - %s\n", summary.GeoJSONKey)
	fmt.Fprintf(os.Stderr, "[wfsharvest] - %s\n", summary.CSVKey)
	return ExitSuccess
}

// loadConfig resolves the layered configuration: defaults, then the YAML
// file when given, then environment variables.
func loadConfig(path string) (config.Config, int) {
	cfg := config.Default()

	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return config.Config{}, ExitConfigError
		}
		cfg = loaded
	}

	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return config.Config{}, ExitConfigError
	}

	return cfg, ExitSuccess
}
