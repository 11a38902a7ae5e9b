package harvest

import (
	"context"
	"time"

	"github.com/ligustah/wfsharvest/pkg/tiling"
)

// Orchestrator drives a full harvest: it lays an initial tile grid over the
// area of interest, hands each tile to the subdivider, accumulates accepted
// record sets, and paces between initial tiles to respect server load.
type Orchestrator struct {
	sub      *Subdivider
	bounds   tiling.Region
	tileSize float64
	opts     Options
}

// NewOrchestrator creates an orchestrator for the given area of interest
// and initial tile size.
func NewOrchestrator(fetcher Fetcher, bounds tiling.Region, tileSize float64, opts Options) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		sub:      NewSubdivider(fetcher, opts),
		bounds:   bounds,
		tileSize: tileSize,
		opts:     opts,
	}
}

// Tiles returns the initial tile grid the run will process.
func (o *Orchestrator) Tiles() []tiling.Tile {
	return tiling.Grid(o.bounds, o.tileSize)
}

// Run processes every initial tile strictly in grid order and returns the
// accumulated result. Per-tile fetch failures are non-fatal; the only
// error returned is context cancellation. A result with Total() == 0 means
// no tile anywhere produced an accepted record.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	tiles := o.Tiles()
	result := &Result{}

	for i, tile := range tiles {
		if o.opts.Progress != nil {
			o.opts.Progress.TileStarted(i, tile.Region)
		}

		sets, err := o.sub.Process(ctx, tile)
		if err != nil {
			return nil, err
		}

		for _, rs := range sets {
			if rs.Count() == 0 {
				continue
			}
			result.Append(rs)
			if o.opts.Progress != nil {
				o.opts.Progress.Collected(rs.Count())
			}
		}

		if o.opts.Progress != nil {
			o.opts.Progress.TileDone()
		}

		// Top-level pacing only; sub-fetches within a tile run back to
		// back.
		if o.opts.Pace > 0 && i < len(tiles)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.opts.Pace):
			}
		}
	}

	return result, nil
}
