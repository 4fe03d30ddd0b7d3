package celllists_test

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/lagrangian/internal/celllists"
	"github.com/san-kum/lagrangian/internal/dynamo"
)

type pair [2]string

func pairsOf(nl celllists.NeighborLists) []pair {
	var out []pair
	for q, ps := range nl {
		for _, p := range ps {
			if p < q {
				out = append(out, pair{p, q})
			} else {
				out = append(out, pair{q, p})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

var _ = Describe("Grid", func() {
	Describe("New", func() {
		It("sizes interior cells to tile the extent exactly", func() {
			g, err := celllists.New([2]float64{0, 10}, [2]float64{-1, 1}, 3, 0.5)
			Expect(err).NotTo(HaveOccurred())

			nx, ny := g.Dims()
			Expect(nx).To(Equal(5))
			Expect(ny).To(Equal(6))
			Expect(g.CellSize().X).To(BeNumerically("~", 10.0/3, 1e-12))
			Expect(g.CellSize().Y).To(BeNumerically("~", 0.5, 1e-12))
		})

		It("rejects cells larger than the domain", func() {
			_, err := celllists.New([2]float64{0, 1}, [2]float64{0, 1}, 2, 0.5)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("rejects empty domains and non-positive sizes", func() {
			_, err := celllists.New([2]float64{1, 1}, [2]float64{0, 1}, 0.1, 0.1)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))

			_, err = celllists.New([2]float64{0, 1}, [2]float64{0, 1}, 0, 0.1)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})
	})

	Describe("CellOf", func() {
		var g *celllists.Grid

		BeforeEach(func() {
			var err error
			g, err = celllists.New([2]float64{0, 10}, [2]float64{0, 10}, 1, 1)
			Expect(err).NotTo(HaveOccurred())
		})

		It("offsets interior points past the halo", func() {
			Expect(g.CellOf(r2.Vec{X: 0.5, Y: 0.5})).To(Equal(celllists.Cell{I: 1, J: 1}))
			Expect(g.CellOf(r2.Vec{X: 9.99, Y: 3.2})).To(Equal(celllists.Cell{I: 10, J: 4}))
		})

		It("clamps out-of-domain points into the halo", func() {
			Expect(g.CellOf(r2.Vec{X: -50, Y: 1e9})).To(Equal(celllists.Cell{I: 0, J: 11}))
			Expect(g.CellOf(r2.Vec{X: 10, Y: -0.1})).To(Equal(celllists.Cell{I: 11, J: 0}))
		})
	})

	Describe("Rebuild", func() {
		var g *celllists.Grid

		BeforeEach(func() {
			var err error
			g, err = celllists.New([2]float64{0, 10}, [2]float64{0, 10}, 1, 1)
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists a pair in adjacent cells exactly once", func() {
			nl := g.Rebuild(dynamo.Coords{
				"A": {X: 0.5, Y: 0.5},
				"B": {X: 1.5, Y: 0.5},
			})

			Expect(nl["A"]).To(ConsistOf("B"))
			Expect(nl["B"]).To(BeEmpty())
			Expect(nl.Pairs()).To(Equal(1))
		})

		It("breaks same-cell ties by id order", func() {
			nl := g.Rebuild(dynamo.Coords{
				"b": {X: 4.2, Y: 4.2},
				"a": {X: 4.5, Y: 4.5},
				"c": {X: 4.8, Y: 4.1},
			})

			Expect(nl["a"]).To(Equal([]string{"b", "c"}))
			Expect(nl["b"]).To(Equal([]string{"c"}))
			Expect(nl["c"]).To(BeEmpty())
		})

		It("ignores particles two cells apart", func() {
			nl := g.Rebuild(dynamo.Coords{
				"A": {X: 0.5, Y: 0.5},
				"B": {X: 2.5, Y: 0.5},
			})
			Expect(nl.Pairs()).To(BeZero())
		})

		It("enumerates every adjacent pair once with no self pairs", func() {
			rng := rand.New(rand.NewSource(7))
			qs := dynamo.Coords{}
			for i := 0; i < 200; i++ {
				qs[fmt.Sprintf("p%03d", i)] = r2.Vec{X: rng.Float64()*12 - 1, Y: rng.Float64()*12 - 1}
			}

			var want []pair
			ids := qs.Keys()
			for i, a := range ids {
				ca := g.CellOf(qs[a])
				for _, b := range ids[i+1:] {
					cb := g.CellOf(qs[b])
					if abs(ca.I-cb.I) <= 1 && abs(ca.J-cb.J) <= 1 {
						want = append(want, pair{a, b})
					}
				}
			}

			got := pairsOf(g.Rebuild(qs))
			Expect(cmp.Diff(want, got)).To(BeEmpty())
			for _, p := range got {
				Expect(p[0]).NotTo(Equal(p[1]))
			}
		})

		It("returns a fresh snapshot on every rebuild", func() {
			first := g.Rebuild(dynamo.Coords{
				"A": {X: 0.5, Y: 0.5},
				"B": {X: 1.5, Y: 0.5},
			})
			saved := celllists.NeighborLists{"A": {"B"}, "B": nil}

			_ = g.Rebuild(dynamo.Coords{
				"A": {X: 8.5, Y: 8.5},
				"B": {X: 0.5, Y: 0.5},
			})

			Expect(cmp.Diff(saved, first)).To(BeEmpty())
			Expect(g.Members(celllists.Cell{I: 1, J: 1})).To(Equal([]string{"B"}))
		})
	})
})
