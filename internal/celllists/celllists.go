// Package celllists partitions a rectangle into a uniform grid and
// enumerates, for every particle, the neighbors found in its forward half
// stencil. Each unordered pair in the same or adjacent cells is listed once.
//
// Lists go stale as particles move; callers choose how often to rebuild.
// Interactions longer than one cell are missed.
package celllists

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/lagrangian/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Cell addresses a grid cell. Indices 0 and N-1 are the halo ring.
type Cell struct {
	I, J int
}

// forward is the half stencil: the same cell is handled by the id tie-break.
var forward = [4]Cell{{1, -1}, {1, 0}, {1, 1}, {0, 1}}

type Grid struct {
	min    r2.Vec
	size   r2.Vec
	nx, ny int

	cells [][]string
}

// New builds a grid over xlim × ylim. The interior has floor(extent/suggested)
// cells per axis, resized to tile the extent exactly, with one halo cell on
// each side.
func New(xlim, ylim [2]float64, dx, dy float64) (*Grid, error) {
	ix, err := interior("x", xlim, dx)
	if err != nil {
		return nil, err
	}
	iy, err := interior("y", ylim, dy)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		min: r2.Vec{X: xlim[0], Y: ylim[0]},
		size: r2.Vec{
			X: (xlim[1] - xlim[0]) / float64(ix),
			Y: (ylim[1] - ylim[0]) / float64(iy),
		},
		nx: ix + 2,
		ny: iy + 2,
	}
	g.cells = make([][]string, g.nx*g.ny)
	return g, nil
}

func interior(axis string, lim [2]float64, size float64) (int, error) {
	extent := lim[1] - lim[0]
	if !(extent > 0) || !(size > 0) {
		return 0, fmt.Errorf("%w: %s extent %g with cell size %g", dynamo.ErrInvalidConfig, axis, extent, size)
	}
	n := math.Floor(extent / size)
	if n < 1 || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %s cell size %g does not fit extent %g", dynamo.ErrInvalidConfig, axis, size, extent)
	}
	return int(n), nil
}

// Dims returns the grid size including the halo.
func (g *Grid) Dims() (nx, ny int) { return g.nx, g.ny }

// CellSize returns the actual cell width and height.
func (g *Grid) CellSize() r2.Vec { return g.size }

// CellOf maps q to its cell. Points outside the domain land in the nearest
// halo cell.
func (g *Grid) CellOf(q r2.Vec) Cell {
	return Cell{
		I: clamp(math.Floor((q.X-g.min.X)/g.size.X)+1, g.nx),
		J: clamp(math.Floor((q.Y-g.min.Y)/g.size.Y)+1, g.ny),
	}
}

func clamp(v float64, n int) int {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > float64(n-1):
		return n - 1
	}
	return int(v)
}

func (g *Grid) at(c Cell) []string {
	if c.I < 0 || c.I >= g.nx || c.J < 0 || c.J >= g.ny {
		return nil
	}
	return g.cells[c.I*g.ny+c.J]
}

// Members returns the ids placed in c by the last rebuild.
func (g *Grid) Members(c Cell) []string {
	return append([]string(nil), g.at(c)...)
}

// NeighborLists maps each particle id to its forward neighbors.
type NeighborLists map[string][]string

// Pairs returns the number of unordered pairs listed.
func (nl NeighborLists) Pairs() int {
	n := 0
	for _, ps := range nl {
		n += len(ps)
	}
	return n
}

// Rebuild repopulates the cells from qs and returns a fresh neighbor
// snapshot. Previously returned snapshots are left untouched.
func (g *Grid) Rebuild(qs dynamo.Coords) NeighborLists {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}

	ids := qs.Keys()
	home := make(map[string]Cell, len(ids))
	for _, id := range ids {
		c := g.CellOf(qs[id])
		home[id] = c
		k := c.I*g.ny + c.J
		g.cells[k] = append(g.cells[k], id)
	}

	out := make(NeighborLists, len(ids))
	for _, id := range ids {
		c := home[id]
		var ns []string
		for _, d := range forward {
			ns = append(ns, g.at(Cell{c.I + d.I, c.J + d.J})...)
		}
		same := g.at(c)
		// same is sorted, so everything after id compares greater.
		at := sort.SearchStrings(same, id)
		ns = append(ns, same[at+1:]...)
		out[id] = ns
	}
	return out
}
