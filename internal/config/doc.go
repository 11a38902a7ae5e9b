// Package config defines configuration structures for the wfsharvest CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (WFSHARVEST_ prefix)
//   - YAML configuration file
//
// Precedence is flags over environment over file over defaults. The
// defaults target the zone_urba layer over metropolitan France with a
// 5000 feature cap, 1 degree initial tiles, subdivision depth 3, and a
// 1s pace between initial tiles.
package config
