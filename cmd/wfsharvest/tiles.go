package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ligustah/wfsharvest/internal/config"
	"github.com/ligustah/wfsharvest/pkg/tiling"
)

// runTiles prints the tile cover a harvest would use, optionally expanded
// to a fixed subdivision depth. Useful for sizing a run before issuing a
// single request.
func runTiles(args []string) int {
	fs := flag.NewFlagSet("tiles", flag.ExitOnError)

	bbox := fs.String("bbox", "", "Bounding box as minx,miny,maxx,maxy (required)")
	tileSize := fs.Float64("tile-size", 1.0, "Initial tile size in layer units")
	depth := fs.Int("depth", 0, "Expand every tile to this subdivision depth")
	factor := fs.Int("division-factor", 2, "Per-axis split factor")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: wfsharvest tiles [options]

Print the initial tile grid covering a bounding box, one bbox per line.
With -depth, every initial tile is split down to that depth first, showing
the worst-case request footprint.

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

	parsed, err := config.ParseBBox(*bbox)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -bbox: %v\n", err)
		return ExitInvalidArgs
	}
	bounds, err := tiling.NewRegion(parsed[0], parsed[1], parsed[2], parsed[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -bbox: %v\n", err)
		return ExitInvalidArgs
	}
	if *tileSize <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -tile-size must be positive")
		return ExitInvalidArgs
	}

	tiles := tiling.Grid(bounds, *tileSize)
	for d := 0; d < *depth; d++ {
		var next []tiling.Tile
		for _, t := range tiles {
			next = append(next, t.Split(*factor)...)
		}
		tiles = next
	}

	for _, t := range tiles {
		fmt.Printf("%s\n", t.Region)
	}
	fmt.Fprintf(os.Stderr, "[wfsharvest] %d tiles at depth %d\n", len(tiles), *depth)
	return ExitSuccess
}
