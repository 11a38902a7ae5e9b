package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ligustah/wfsharvest/pkg/tiling"
)

func TestReporterOutput(t *testing.T) {
	var buf bytes.Buffer

	r := NewReporter(Options{
		TotalTiles: 2,
		Layer:      "wfs_du:zone_urba",
		Output:     &buf,
	})

	region := tiling.Region{MinX: 0, MinY: 45, MaxX: 1, MaxY: 46}

	r.Start()
	r.TileStarted(0, region)
	r.Subdividing(region, 1)
	r.Collected(1200)
	r.Collected(800)
	r.TileDone()
	r.TileStarted(1, tiling.Region{MinX: 1, MinY: 45, MaxX: 2, MaxY: 46})
	r.FetchFailed(tiling.Region{MinX: 1, MinY: 45, MaxX: 2, MaxY: 46}, errors.New("boom"))
	r.TileDone()
	r.Finish()

	out := buf.String()

	for _, want := range []string{
		"Harvesting layer: wfs_du:zone_urba",
		"Initial tiles to process: 2",
		"Tile 1/2 | bbox 0,45,1,46",
		"Subdividing 0,45,1,46 (depth 1)",
		"Collected 1200 features (total 1200)",
		"Collected 800 features (total 2000)",
		"Fetch failed for bbox 1,45,2,46: boom",
		"Done: 2000 features from 2/2 tiles",
		"Abandoned 1 region(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\noutput:\n%s", want, out)
		}
	}

	if r.Total() != 2000 {
		t.Errorf("Total() = %d, want 2000", r.Total())
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{3*time.Minute + 5*time.Second, "3m 5s"},
		{2*time.Hour + 14*time.Minute + 9*time.Second, "2h 14m 9s"},
	}

	for _, c := range cases {
		if got := formatDuration(c.d); got != c.want {
			t.Errorf("formatDuration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}
