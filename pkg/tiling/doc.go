// Package tiling provides the spatial partitioning primitives for the
// harvester: regions, tiles, the initial grid cover, and tile subdivision.
//
// All types are plain values with no I/O; the harvest package decides when
// to split, this package only knows how.
//
// # Usage
//
//	bounds, _ := tiling.NewRegion(-5.0, 41.0, 10.0, 52.0)
//	for _, t := range tiling.Grid(bounds, 1.0) {
//	    children := t.Split(2) // four quarter tiles at depth 1
//	    _ = children
//	}
package tiling
