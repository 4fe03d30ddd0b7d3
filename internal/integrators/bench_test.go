package integrators

import (
	"fmt"
	"testing"

	"github.com/san-kum/lagrangian/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func benchState(n int) dynamo.State {
	qs := make(dynamo.Coords, n)
	for i := 0; i < n; i++ {
		qs[fmt.Sprintf("p%d", i)] = r2.Vec{X: float64(i) * 0.1, Y: 1}
	}
	return dynamo.NewState(qs, nil)
}

func benchmarkStep(b *testing.B, integ dynamo.Integrator, n int) {
	h := dynamo.History{benchState(n)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next, err := integ.Step(oscillator{}, h, 0.01)
		if err != nil {
			b.Fatal(err)
		}
		h = dynamo.History{h.Current(), next}
	}
}

func BenchmarkEuler(b *testing.B) {
	benchmarkStep(b, NewEuler(), 1)
}

func BenchmarkMidpoint(b *testing.B) {
	benchmarkStep(b, NewMidpoint(), 1)
}

func BenchmarkSSPRK3(b *testing.B) {
	benchmarkStep(b, NewSSPRK3(), 1)
}

func BenchmarkRK4(b *testing.B) {
	benchmarkStep(b, NewRK4(), 1)
}

func BenchmarkVerlet(b *testing.B) {
	benchmarkStep(b, NewVerlet(), 1)
}

func BenchmarkRK4_Particles50(b *testing.B) {
	benchmarkStep(b, NewRK4(), 50)
}

func BenchmarkVerlet_Particles50(b *testing.B) {
	benchmarkStep(b, NewVerlet(), 50)
}
