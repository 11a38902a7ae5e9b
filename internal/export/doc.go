// Package export persists a merged harvest as output files.
//
// Two files are written per run: a GeoJSON FeatureCollection preserving
// geometry, and a CSV holding the same records' attributes without the
// geometry. Output goes through gocloud.dev/blob, so "where" is a bucket
// URL: file:// for a local directory, s3:// or gs:// for object storage.
package export
