// Package harvest implements the adaptive tile harvesting pipeline.
//
// A WFS server caps the number of features returned per request, and a
// response holding exactly the cap is indistinguishable from a truncated
// one. The harvester resolves this by recursive subdivision: any tile at
// the cap is split into DivisionFactor^2 children and re-queried, down to
// MaxDepth levels. Every accepted record set therefore either came back
// under the cap or was produced at the depth limit, where the residual
// undercount is an accepted trade against unbounded request counts (at
// the defaults, a single initial tile costs at most 1+4+16+64 = 85
// requests).
//
// Execution is strictly sequential and depth-first; the pacing delay
// applies only between initial tiles.
//
// # Usage
//
//	orch := harvest.NewOrchestrator(fetcher, bounds, 1.0, harvest.Options{
//	    MaxFeatures: 5000,
//	    MaxDepth:    3,
//	    Pace:        time.Second,
//	})
//
//	result, err := orch.Run(ctx)
//	// result.Merge() -> single feature collection
package harvest
