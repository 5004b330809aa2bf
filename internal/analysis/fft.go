package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var (
	ErrTooShort = errors.New("analysis: series too short")
	ErrNoPeriod = errors.New("analysis: no dominant frequency")
)

const minSamples = 4

// PowerSpectrum returns the magnitudes of the first n/2 frequency bins of the
// mean-removed, Hann-windowed series. Bin k corresponds to k/(n*dt).
func PowerSpectrum(series []float64) []float64 {
	n := len(series)
	if n == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range series {
		w := 1.0
		if n > 1 {
			w = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		}
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in a
// series sampled every dt. The peak bin is refined by parabolic
// interpolation over its neighbours.
func DominantPeriod(series []float64, dt float64) (float64, error) {
	n := len(series)
	if n < minSamples {
		return 0, ErrTooShort
	}

	ps := PowerSpectrum(series)

	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return 0, ErrNoPeriod
	}

	k := float64(peak)
	if peak < len(ps)-1 {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			k += 0.5 * (a - c) / denom
		}
	}
	if k <= 0 {
		return 0, ErrNoPeriod
	}

	return float64(n) * dt / k, nil
}
