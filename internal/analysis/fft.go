package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/san-kum/heft/internal/sim"
)

var (
	ErrTooShort    = errors.New("analysis: need at least 4 samples")
	ErrNotUniform  = errors.New("analysis: samples are not evenly spaced")
	ErrUnknownName = errors.New("analysis: unknown column")
)

// FFT is radix-2; it panics unless len(data) is a power of two. Use
// PowerSpectrum for arbitrary lengths.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n&(n-1) != 0 {
		panic("analysis: fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// PowerSpectrum zero-pads data to a power of two and returns the magnitude
// of the first half of its FFT.
func PowerSpectrum(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)

	fft := FFT(padded)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// Spectrum is a power spectrum with its frequency resolution.
type Spectrum struct {
	Column string
	Power  []float64
	// Resolution is the frequency step between bins in Hz.
	Resolution float64
}

// Dominant returns the frequency of the strongest non-DC bin, or 0 if the
// signal is flat.
func (s Spectrum) Dominant() float64 {
	best, idx := 0.0, 0
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > best {
			best, idx = s.Power[i], i
		}
	}
	return float64(idx) * s.Resolution
}

// ColumnSpectrum analyses one telemetry column. The mean is removed first
// so the DC bin does not swamp the rest.
func ColumnSpectrum(rows []sim.LogEntry, column string) (Spectrum, error) {
	if len(rows) < 4 {
		return Spectrum{}, ErrTooShort
	}
	step := rows[1].Time - rows[0].Time
	if step <= 0 {
		return Spectrum{}, ErrNotUniform
	}
	// The final row may be a short flush sample; ignore it.
	rows = trimTail(rows, step)

	data := make([]float64, len(rows))
	mean := 0.0
	for i, r := range rows {
		v, ok := r.Column(column)
		if !ok {
			return Spectrum{}, ErrUnknownName
		}
		data[i] = v
		mean += v
	}
	mean /= float64(len(data))
	for i := range data {
		data[i] -= mean
	}

	ps := PowerSpectrum(data)
	return Spectrum{
		Column:     column,
		Power:      ps,
		Resolution: 1 / (step * float64(2*len(ps))),
	}, nil
}

func trimTail(rows []sim.LogEntry, step float64) []sim.LogEntry {
	n := len(rows)
	if gap := rows[n-1].Time - rows[n-2].Time; math.Abs(gap-step) > step*0.01 {
		return rows[:n-1]
	}
	return rows
}
