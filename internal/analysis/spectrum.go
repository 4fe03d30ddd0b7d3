package analysis

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/lagrangian/internal/dynamo"
)

// Xs and Ys split a path into its coordinate series.
func Xs(path []r2.Vec) []float64 {
	out := make([]float64, len(path))
	for i, p := range path {
		out[i] = p.X
	}
	return out
}

func Ys(path []r2.Vec) []float64 {
	out := make([]float64, len(path))
	for i, p := range path {
		out[i] = p.Y
	}
	return out
}

// PowerSpectrum returns the magnitude of each non-negative frequency bin of
// data with its mean removed.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	coeff := fourier.NewFFT(len(data)).Coefficients(nil, centered)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency returns the frequency, in cycles per unit time, of the
// strongest non-constant bin of data sampled every dt.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: need at least 4 samples, got %d", dynamo.ErrInvalidConfig, len(data))
	}
	if !(dt > 0) {
		return 0, fmt.Errorf("%w: dt must be positive", dynamo.ErrInvalidConfig)
	}

	ps := PowerSpectrum(data)
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return float64(best) / (float64(len(data)) * dt), nil
}
