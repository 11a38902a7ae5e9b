package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ligustah/wfsharvest/pkg/tiling"
)

// Config defines configuration for the wfsharvest CLI.
type Config struct {
	URL            string        `yaml:"url"`
	Layer          string        `yaml:"layer"`
	SRS            string        `yaml:"srs"`
	MaxFeatures    int           `yaml:"max_features"`
	BBox           []float64     `yaml:"bbox"`
	TileSize       float64       `yaml:"tile_size"`
	MaxDepth       int           `yaml:"max_depth"`
	DivisionFactor int           `yaml:"division_factor"`
	Pace           time.Duration `yaml:"pace"`
	Timeout        time.Duration `yaml:"timeout"`
	Bucket         string        `yaml:"bucket"`
	Prefix         string        `yaml:"prefix"`
	Columns        []string      `yaml:"columns"`
	Progress       bool          `yaml:"progress"`
}

// Default returns a Config with sensible defaults: the zone_urba layer of
// the French Géoportail de l'urbanisme over metropolitan France, exported
// to the current directory.
func Default() Config {
	return Config{
		URL:            "https://data.geopf.fr/wfs/ows",
		Layer:          "wfs_du:zone_urba",
		SRS:            "EPSG:4326",
		MaxFeatures:    5000,
		BBox:           []float64{-5.0, 41.0, 10.0, 52.0},
		TileSize:       1.0,
		MaxDepth:       3,
		DivisionFactor: 2,
		Pace:           time.Second,
		Timeout:        60 * time.Second,
		Bucket:         "file://.",
		Prefix:         "harvest",
		Columns:        []string{"gpu_doc_id", "partition", "nomfic"},
		Progress:       true,
	}
}

// yamlConfig is used for YAML unmarshaling with string durations and an
// explicit progress tri-state.
type yamlConfig struct {
	URL            string    `yaml:"url"`
	Layer          string    `yaml:"layer"`
	SRS            string    `yaml:"srs"`
	MaxFeatures    int       `yaml:"max_features"`
	BBox           []float64 `yaml:"bbox"`
	TileSize       float64   `yaml:"tile_size"`
	MaxDepth       int       `yaml:"max_depth"`
	DivisionFactor int       `yaml:"division_factor"`
	Pace           string    `yaml:"pace"`
	Timeout        string    `yaml:"timeout"`
	Bucket         string    `yaml:"bucket"`
	Prefix         string    `yaml:"prefix"`
	Columns        []string  `yaml:"columns"`
	Progress       *bool     `yaml:"progress"`
}

// LoadFromFile loads configuration from a YAML file, applied on top of the
// defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.URL != "" {
		cfg.URL = yc.URL
	}
	if yc.Layer != "" {
		cfg.Layer = yc.Layer
	}
	if yc.SRS != "" {
		cfg.SRS = yc.SRS
	}
	if yc.MaxFeatures != 0 {
		cfg.MaxFeatures = yc.MaxFeatures
	}
	if len(yc.BBox) != 0 {
		if len(yc.BBox) != 4 {
			return Config{}, fmt.Errorf("parse bbox: want 4 values, got %d", len(yc.BBox))
		}
		cfg.BBox = yc.BBox
	}
	if yc.TileSize != 0 {
		cfg.TileSize = yc.TileSize
	}
	if yc.MaxDepth != 0 {
		cfg.MaxDepth = yc.MaxDepth
	}
	if yc.DivisionFactor != 0 {
		cfg.DivisionFactor = yc.DivisionFactor
	}
	if yc.Pace != "" {
		d, err := time.ParseDuration(yc.Pace)
		if err != nil {
			return Config{}, fmt.Errorf("parse pace: %w", err)
		}
		cfg.Pace = d
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.Prefix != "" {
		cfg.Prefix = yc.Prefix
	}
	if len(yc.Columns) != 0 {
		cfg.Columns = yc.Columns
	}
	if yc.Progress != nil {
		cfg.Progress = *yc.Progress
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the WFSHARVEST_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("WFSHARVEST_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("WFSHARVEST_LAYER"); v != "" {
		c.Layer = v
	}
	if v := os.Getenv("WFSHARVEST_SRS"); v != "" {
		c.SRS = v
	}
	if v := os.Getenv("WFSHARVEST_MAX_FEATURES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse WFSHARVEST_MAX_FEATURES: %w", err)
		}
		c.MaxFeatures = n
	}
	if v := os.Getenv("WFSHARVEST_BBOX"); v != "" {
		bbox, err := ParseBBox(v)
		if err != nil {
			return fmt.Errorf("parse WFSHARVEST_BBOX: %w", err)
		}
		c.BBox = bbox
	}
	if v := os.Getenv("WFSHARVEST_TILE_SIZE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse WFSHARVEST_TILE_SIZE: %w", err)
		}
		c.TileSize = f
	}
	if v := os.Getenv("WFSHARVEST_MAX_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse WFSHARVEST_MAX_DEPTH: %w", err)
		}
		c.MaxDepth = n
	}
	if v := os.Getenv("WFSHARVEST_DIVISION_FACTOR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse WFSHARVEST_DIVISION_FACTOR: %w", err)
		}
		c.DivisionFactor = n
	}
	if v := os.Getenv("WFSHARVEST_PACE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse WFSHARVEST_PACE: %w", err)
		}
		c.Pace = d
	}
	if v := os.Getenv("WFSHARVEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse WFSHARVEST_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("WFSHARVEST_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("WFSHARVEST_PREFIX"); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv("WFSHARVEST_COLUMNS"); v != "" {
		c.Columns = splitColumns(v)
	}
	if v := os.Getenv("WFSHARVEST_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("config: url is required")
	}
	if c.Layer == "" {
		return errors.New("config: layer is required")
	}
	if c.SRS == "" {
		return errors.New("config: srs is required")
	}
	if c.MaxFeatures <= 0 {
		return errors.New("config: max_features must be positive")
	}
	if _, err := c.Bounds(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.TileSize <= 0 {
		return errors.New("config: tile_size must be positive")
	}
	if c.MaxDepth < 0 {
		return errors.New("config: max_depth must not be negative")
	}
	if c.DivisionFactor < 2 {
		return errors.New("config: division_factor must be at least 2")
	}
	if c.Pace < 0 {
		return errors.New("config: pace must not be negative")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if c.Bucket == "" {
		return errors.New("config: bucket is required")
	}
	return nil
}

// Bounds returns the area of interest as a validated region.
func (c *Config) Bounds() (tiling.Region, error) {
	if len(c.BBox) != 4 {
		return tiling.Region{}, fmt.Errorf("bbox: want 4 values, got %d", len(c.BBox))
	}
	return tiling.NewRegion(c.BBox[0], c.BBox[1], c.BBox[2], c.BBox[3])
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored, except Progress which is merged by
// the caller via flags.
func (c Config) Merge(override Config) Config {
	if override.URL != "" {
		c.URL = override.URL
	}
	if override.Layer != "" {
		c.Layer = override.Layer
	}
	if override.SRS != "" {
		c.SRS = override.SRS
	}
	if override.MaxFeatures != 0 {
		c.MaxFeatures = override.MaxFeatures
	}
	if len(override.BBox) != 0 {
		c.BBox = override.BBox
	}
	if override.TileSize != 0 {
		c.TileSize = override.TileSize
	}
	if override.MaxDepth != 0 {
		c.MaxDepth = override.MaxDepth
	}
	if override.DivisionFactor != 0 {
		c.DivisionFactor = override.DivisionFactor
	}
	if override.Pace != 0 {
		c.Pace = override.Pace
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Prefix != "" {
		c.Prefix = override.Prefix
	}
	if len(override.Columns) != 0 {
		c.Columns = override.Columns
	}
	return c
}

// ParseBBox parses "minx,miny,maxx,maxy" into four floats.
func ParseBBox(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid bbox %q: want 4 comma-separated values", s)
	}
	bbox := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bbox value %q: %w", p, err)
		}
		bbox[i] = f
	}
	return bbox, nil
}

func splitColumns(s string) []string {
	var cols []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}
