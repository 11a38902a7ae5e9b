package tiling

import (
	"fmt"
)

// Region is an axis-aligned rectangle in the layer's coordinate reference
// system. MinX < MaxX and MinY < MaxY for any region produced by this
// package.
type Region struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewRegion returns a Region after validating its extent.
func NewRegion(minX, minY, maxX, maxY float64) (Region, error) {
	if minX >= maxX || minY >= maxY {
		return Region{}, fmt.Errorf("tiling: invalid region (%g,%g,%g,%g)", minX, minY, maxX, maxY)
	}
	return Region{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}, nil
}

// Width returns the horizontal extent of the region.
func (r Region) Width() float64 {
	return r.MaxX - r.MinX
}

// Height returns the vertical extent of the region.
func (r Region) Height() float64 {
	return r.MaxY - r.MinY
}

// Contains reports whether other lies entirely within r. Shared edges count
// as contained.
func (r Region) Contains(other Region) bool {
	return other.MinX >= r.MinX && other.MinY >= r.MinY &&
		other.MaxX <= r.MaxX && other.MaxY <= r.MaxY
}

// String formats the region as "minx,miny,maxx,maxy".
func (r Region) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", r.MinX, r.MinY, r.MaxX, r.MaxY)
}

// Tile is a region annotated with its subdivision depth. Depth 0 marks a
// tile from the initial grid; each split increments the children's depth.
type Tile struct {
	Region Region
	Depth  int
}

// Split divides the tile into factor x factor equal sub-tiles at depth+1.
// Children are returned column by column, west to east, south to north
// within a column. The union of the children reconstructs the parent
// exactly; siblings share edges only.
func (t Tile) Split(factor int) []Tile {
	if factor < 2 {
		factor = 2
	}

	r := t.Region
	stepX := r.Width() / float64(factor)
	stepY := r.Height() / float64(factor)

	children := make([]Tile, 0, factor*factor)
	for i := 0; i < factor; i++ {
		for j := 0; j < factor; j++ {
			children = append(children, Tile{
				Region: Region{
					MinX: r.MinX + float64(i)*stepX,
					MinY: r.MinY + float64(j)*stepY,
					MaxX: r.MinX + float64(i+1)*stepX,
					MaxY: r.MinY + float64(j+1)*stepY,
				},
				Depth: t.Depth + 1,
			})
		}
	}
	return children
}

// Grid returns the initial tile cover of bounds with square tiles of the
// given size, in column-major generation order (west to east, south to
// north within a column). Tiles on the far edge of either axis are clipped
// to the bounds, so no tile ever extends past MaxX or MaxY. The result is
// deterministic for a given (bounds, size).
func Grid(bounds Region, size float64) []Tile {
	if size <= 0 {
		return nil
	}

	var tiles []Tile
	for x := bounds.MinX; x < bounds.MaxX; x += size {
		for y := bounds.MinY; y < bounds.MaxY; y += size {
			tiles = append(tiles, Tile{
				Region: Region{
					MinX: x,
					MinY: y,
					MaxX: min(x+size, bounds.MaxX),
					MaxY: min(y+size, bounds.MaxY),
				},
			})
		}
	}
	return tiles
}
