package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/lagrangian/internal/dynamo"
)

func TestDominantFrequency(t *testing.T) {
	const (
		dt   = 0.01
		freq = 2.0
	)
	data := make([]float64, 500)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)*dt)
	}

	got, err := DominantFrequency(data, dt)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-freq) > 1/(float64(len(data))*dt) {
		t.Errorf("dominant frequency = %v, want %v", got, freq)
	}
}

func TestDominantFrequency_Errors(t *testing.T) {
	if _, err := DominantFrequency([]float64{1, 2}, 0.1); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("short series: expected ErrInvalidConfig, got %v", err)
	}
	if _, err := DominantFrequency(make([]float64, 8), 0); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("zero dt: expected ErrInvalidConfig, got %v", err)
	}
}

func TestPowerSpectrum_RemovesMean(t *testing.T) {
	ps := PowerSpectrum([]float64{5, 5, 5, 5, 5, 5, 5, 5})
	for i, v := range ps {
		if math.Abs(v) > 1e-12 {
			t.Errorf("bin %d = %v, want 0 for a constant series", i, v)
		}
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for empty data")
	}
}

func TestXsYs(t *testing.T) {
	path := []r2.Vec{{X: 1, Y: 2}, {X: 3, Y: 4}}
	if xs := Xs(path); xs[0] != 1 || xs[1] != 3 {
		t.Errorf("Xs = %v", xs)
	}
	if ys := Ys(path); ys[0] != 2 || ys[1] != 4 {
		t.Errorf("Ys = %v", ys)
	}
}

func TestPathToASCII(t *testing.T) {
	var circle []r2.Vec
	for i := 0; i < 64; i++ {
		a := 2 * math.Pi * float64(i) / 64
		circle = append(circle, r2.Vec{X: math.Cos(a), Y: math.Sin(a)})
	}

	out := PathToASCII(circle, 40, 20)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(lines))
	}
	for i, l := range lines {
		if n := len([]rune(l)); n != 40 {
			t.Errorf("row %d has %d columns", i, n)
		}
	}
	if !strings.Contains(out, "•") || !strings.Contains(out, "│") || !strings.Contains(out, "─") {
		t.Errorf("expected points and both axes:\n%s", out)
	}

	if PathToASCII(nil, 10, 10) != "" {
		t.Error("expected empty plot for no points")
	}
}
