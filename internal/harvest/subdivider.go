package harvest

import (
	"context"
	"time"

	"github.com/ligustah/wfsharvest/internal/progress"
	"github.com/ligustah/wfsharvest/internal/wfs"
	"github.com/ligustah/wfsharvest/pkg/tiling"
)

// Fetcher performs one bounded-region query against the remote service.
// The harvester makes exactly one call per tile; implementations must not
// retry internally.
type Fetcher interface {
	Fetch(ctx context.Context, region tiling.Region) (*wfs.RecordSet, error)
}

// Options configures tile subdivision and orchestration.
type Options struct {
	// MaxFeatures is the server's per-request feature cap. A tile whose
	// fetch returns MaxFeatures records or more cannot be distinguished
	// from a truncated result and is subdivided.
	MaxFeatures int

	// MaxDepth bounds subdivision. A tile at MaxDepth is accepted as-is
	// even when it hits the cap; the potential undercount in extremely
	// dense areas is an accepted approximation.
	// Default: 3
	MaxDepth int

	// DivisionFactor is the per-axis split factor, so each subdivision
	// produces DivisionFactor^2 children.
	// Default: 2
	DivisionFactor int

	// Pace is the delay applied after each initial tile's subtree
	// completes. It is intentionally not applied between recursive
	// sub-fetches, which are treated as a fast burst. Zero disables
	// pacing; config.Default sets 1s.
	Pace time.Duration

	// Columns is the attribute keep-list applied to accepted record sets.
	// Columns absent from a record are skipped; geometry is always kept.
	// Empty keeps all attributes.
	Columns []string

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

// Subdivider recursively partitions a tile until every leaf fetch is
// believed complete under the feature cap, or the depth limit is reached.
type Subdivider struct {
	fetcher Fetcher
	opts    Options
}

// NewSubdivider creates a subdivider over the given fetcher.
func NewSubdivider(fetcher Fetcher, opts Options) *Subdivider {
	return &Subdivider{fetcher: fetcher, opts: opts.withDefaults()}
}

// withDefaults fills in zero-valued tuning knobs. Pace is left alone:
// zero pacing is a valid choice.
func (o Options) withDefaults() Options {
	if o.MaxFeatures <= 0 {
		o.MaxFeatures = 5000
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = 3
	}
	if o.DivisionFactor < 2 {
		o.DivisionFactor = 2
	}
	return o
}

// Process fetches the tile and either accepts the result or splits the
// tile and recurses on the children depth-first, in the deterministic
// order produced by Split. A failed fetch abandons the tile's entire
// subtree and yields no records; the only returned error is context
// cancellation.
func (s *Subdivider) Process(ctx context.Context, tile tiling.Tile) ([]*wfs.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs, err := s.fetcher.Fetch(ctx, tile.Region)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if s.opts.Progress != nil {
			s.opts.Progress.FetchFailed(tile.Region, err)
		}
		return nil, nil
	}

	if rs.Count() < s.opts.MaxFeatures || tile.Depth >= s.opts.MaxDepth {
		rs.Depth = tile.Depth
		filterColumns(rs, s.opts.Columns)
		return []*wfs.RecordSet{rs}, nil
	}

	// At or above the cap with depth to spare: the result may be
	// truncated, so discard it and query the children instead.
	if s.opts.Progress != nil {
		s.opts.Progress.Subdividing(tile.Region, tile.Depth+1)
	}

	var results []*wfs.RecordSet
	for _, child := range tile.Split(s.opts.DivisionFactor) {
		sets, err := s.Process(ctx, child)
		if err != nil {
			return nil, err
		}
		results = append(results, sets...)
	}
	return results, nil
}

// filterColumns drops feature properties not in the keep-list. An empty
// keep-list keeps everything.
func filterColumns(rs *wfs.RecordSet, columns []string) {
	if len(columns) == 0 {
		return
	}

	keep := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		keep[c] = struct{}{}
	}

	for _, f := range rs.Features {
		for key := range f.Properties {
			if _, ok := keep[key]; !ok {
				delete(f.Properties, key)
			}
		}
	}
}
