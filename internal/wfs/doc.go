// Package wfs provides a client for bounded-region GetFeature queries
// against a single Web Feature Service layer.
//
// This package owns all protocol and format concerns:
//   - GetFeature request parameter encoding (bbox, srsName, count)
//   - GeoJSON payload decoding into feature records
//   - resultType=hits probes for feature counts
//
// It deliberately does not retry: the harvester treats a failed tile fetch
// as an abandoned subtree, so every call is a single attempt bounded by the
// request timeout.
//
// # Usage
//
//	client := wfs.NewClient(wfs.Options{
//	    Endpoint:    "https://data.geopf.fr/wfs/ows",
//	    Layer:       "wfs_du:zone_urba",
//	    SRS:         "EPSG:4326",
//	    MaxFeatures: 5000,
//	})
//
//	rs, err := client.Fetch(ctx, region)
//	// rs.Count(), rs.Features
package wfs
