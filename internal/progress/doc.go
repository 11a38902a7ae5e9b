// Package progress provides progress reporting for harvest runs.
//
// This package outputs human-readable progress information to stdout:
// per-tile status, subdivision events, fetch failures, and the running
// feature total.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    TotalTiles: len(tiles),
//	    Layer:      "wfs_du:zone_urba",
//	})
//
//	reporter.Start()
//	// ... reporter.TileStarted / Collected / TileDone per tile ...
//	reporter.Finish()
//
// # Output Format
//
//	[wfsharvest] Harvesting layer: wfs_du:zone_urba
//	[wfsharvest] Initial tiles to process: 165
//	[wfsharvest] Tile 1/165 | bbox -5,41,-4,42
//	[wfsharvest] Subdividing -5,41,-4,42 (depth 1)
//	[wfsharvest] Collected 3211 features (total 3211)
//	[wfsharvest] Done: 812044 features from 165/165 tiles in 1h 2m 11s
package progress
