package harvest

import (
	"github.com/paulmach/orb/geojson"

	"github.com/ligustah/wfsharvest/internal/wfs"
)

// Result accumulates accepted record sets in tile-processing order. It is
// owned by a single Run and grows monotonically; nothing is persisted until
// the merged dataset is exported.
type Result struct {
	sets  []*wfs.RecordSet
	total int
}

// Append adds a record set to the accumulation.
func (r *Result) Append(rs *wfs.RecordSet) {
	r.sets = append(r.sets, rs)
	r.total += rs.Count()
}

// Sets returns the accepted record sets in the order they were collected.
func (r *Result) Sets() []*wfs.RecordSet {
	return r.sets
}

// Total returns the number of accumulated records.
func (r *Result) Total() int {
	return r.total
}

// Merge concatenates every accepted record set into a single feature
// collection, preserving collection order. Features whose geometry
// straddles a tile boundary may appear once per touching tile; they are
// deliberately not deduplicated.
func (r *Result) Merge() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, rs := range r.sets {
		fc.Features = append(fc.Features, rs.Features...)
	}
	return fc
}
