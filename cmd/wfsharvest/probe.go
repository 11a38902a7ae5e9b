package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ligustah/wfsharvest/internal/config"
	"github.com/ligustah/wfsharvest/internal/wfs"
	"github.com/ligustah/wfsharvest/pkg/tiling"
)

// runProbe asks the service how many features a bounding box holds,
// without transferring any geometry.
func runProbe(args []string) int {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to a YAML configuration file")
	url := fs.String("url", "", "WFS service endpoint URL")
	layer := fs.String("layer", "", "Qualified feature type name")
	bbox := fs.String("bbox", "", "Bounding box as minx,miny,maxx,maxy (required)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: wfsharvest probe [options]

Issue a resultType=hits request for a bounding box and report the
service's feature count against the configured cap.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *bbox == "" {
		fmt.Fprintln(os.Stderr, "Error: -bbox is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, code := loadConfig(*configPath)
	if code != ExitSuccess {
		return code
	}
	cfg = cfg.Merge(config.Config{URL: *url, Layer: *layer})

	parsed, err := config.ParseBBox(*bbox)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -bbox: %v\n", err)
		return ExitInvalidArgs
	}
	region, err := tiling.NewRegion(parsed[0], parsed[1], parsed[2], parsed[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -bbox: %v\n", err)
		return ExitInvalidArgs
	}

	client := wfs.NewClient(wfs.Options{
		Endpoint:    cfg.URL,
		Layer:       cfg.Layer,
		SRS:         cfg.SRS,
		MaxFeatures: cfg.MaxFeatures,
		Timeout:     cfg.Timeout,
	})

	matched, err := client.Hits(context.Background(), region)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	fmt.Printf("%d\n", matched)
	if matched >= cfg.MaxFeatures {
		fmt.Fprintf(os.Stderr, "[wfsharvest] bbox %s holds %d features, over the %d cap: a harvest would subdivide it\n",
			region, matched, cfg.MaxFeatures)
	} else {
		fmt.Fprintf(os.Stderr, "[wfsharvest] bbox %s holds %d features, under the %d cap\n",
			region, matched, cfg.MaxFeatures)
	}
	return ExitSuccess
}
