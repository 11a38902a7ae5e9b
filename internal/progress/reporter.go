package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ligustah/wfsharvest/pkg/tiling"
)

// Options configures the progress reporter.
type Options struct {
	// TotalTiles is the number of initial tiles to process.
	TotalTiles int

	// Layer is the layer being harvested (for display).
	Layer string

	// Output is where to write progress output.
	// Default: os.Stdout
	Output io.Writer
}

// Reporter outputs human-readable harvest progress. The harvester runs
// strictly sequentially, so the reporter is event-driven rather than
// ticker-driven: every method prints immediately.
type Reporter struct {
	opts Options

	startTime  time.Time
	tilesDone  int
	collected  int
	failed     int
	subdivided int
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Reporter{opts: opts}
}

// Start prints the harvest header and records the start time.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	fmt.Fprintf(r.opts.Output, "[wfsharvest] Harvesting layer: %s\n", r.opts.Layer)
	fmt.Fprintf(r.opts.Output, "[wfsharvest] Initial tiles to process: %d\n", r.opts.TotalTiles)
}

// TileStarted marks the start of an initial tile. Index is zero-based.
func (r *Reporter) TileStarted(index int, region tiling.Region) {
	fmt.Fprintf(r.opts.Output, "[wfsharvest] Tile %d/%d | bbox %s\n", index+1, r.opts.TotalTiles, region)
}

// TileDone marks the completion of an initial tile's subtree.
func (r *Reporter) TileDone() {
	r.tilesDone++
}

// Subdividing reports that a tile hit the feature cap and is being split.
func (r *Reporter) Subdividing(region tiling.Region, depth int) {
	r.subdivided++
	fmt.Fprintf(r.opts.Output, "[wfsharvest] Subdividing %s (depth %d)\n", region, depth)
}

// FetchFailed reports a failed fetch for a region. The region's subtree is
// abandoned; the harvest continues.
func (r *Reporter) FetchFailed(region tiling.Region, err error) {
	r.failed++
	fmt.Fprintf(r.opts.Output, "[wfsharvest] Fetch failed for bbox %s: %v\n", region, err)
}

// Collected reports an accepted record set and updates the running total.
func (r *Reporter) Collected(count int) {
	r.collected += count
	fmt.Fprintf(r.opts.Output, "[wfsharvest] Collected %d features (total %d)\n", count, r.collected)
}

// Finish prints the final summary.
func (r *Reporter) Finish() {
	elapsed := time.Since(r.startTime)
	fmt.Fprintf(r.opts.Output, "[wfsharvest] Done: %d features from %d/%d tiles in %s\n",
		r.collected, r.tilesDone, r.opts.TotalTiles, formatDuration(elapsed))
	if r.failed > 0 {
		fmt.Fprintf(r.opts.Output, "[wfsharvest] Abandoned %d region(s) after fetch failures\n", r.failed)
	}
}

// Total returns the running feature total.
func (r *Reporter) Total() int {
	return r.collected
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
