// Package series provides a NaN-aware, date-indexed float series used by the
// risk estimator and the decision loop. Dates are ascending and unique; a NaN
// value marks a hole, not an error.
package series

import (
	"math"
	"sort"
	"time"
)

// Series pairs an ascending date index with float values of equal length.
type Series struct {
	Dates  []time.Time
	Values []float64
}

// New builds a series from parallel slices. The caller guarantees ascending,
// unique dates.
func New(dates []time.Time, values []float64) Series {
	if len(dates) != len(values) {
		panic("series: date/value length mismatch")
	}
	return Series{Dates: dates, Values: values}
}

// Constant returns a series with the same value on every date.
func Constant(dates []time.Time, v float64) Series {
	values := make([]float64, len(dates))
	for i := range values {
		values[i] = v
	}
	return Series{Dates: dates, Values: values}
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Dates) }

// search returns the index of date, or -1.
func (s Series) search(date time.Time) int {
	i := sort.Search(len(s.Dates), func(i int) bool { return !s.Dates[i].Before(date) })
	if i < len(s.Dates) && s.Dates[i].Equal(date) {
		return i
	}
	return -1
}

// At returns the value on date. Missing dates report NaN, false.
func (s Series) At(date time.Time) (float64, bool) {
	i := s.search(date)
	if i < 0 {
		return math.NaN(), false
	}
	return s.Values[i], true
}

// Last returns the most recent value, NaN when the series is empty.
func (s Series) Last() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// UpTo returns the prefix of the series at or before date.
func (s Series) UpTo(date time.Time) Series {
	i := sort.Search(len(s.Dates), func(i int) bool { return s.Dates[i].After(date) })
	return Series{Dates: s.Dates[:i], Values: s.Values[:i]}
}

// ValidCount returns the number of non-NaN observations.
func (s Series) ValidCount() int {
	n := 0
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// DivBy divides the series by another, matching by date. Dates absent from
// the divisor, or non-positive divisor values, yield NaN.
func (s Series) DivBy(other Series) Series {
	out := make([]float64, len(s.Values))
	for i, d := range s.Dates {
		v, ok := other.At(d)
		if !ok || v <= 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = s.Values[i] / v
	}
	return Series{Dates: s.Dates, Values: out}
}

// LogReturns returns ln(v_t / v_{t-1}) indexed on the second date onward.
// NaN and non-positive levels propagate as NaN returns.
func (s Series) LogReturns() Series {
	if len(s.Values) < 2 {
		return Series{}
	}
	dates := s.Dates[1:]
	out := make([]float64, len(dates))
	for i := 1; i < len(s.Values); i++ {
		prev, cur := s.Values[i-1], s.Values[i]
		if math.IsNaN(prev) || math.IsNaN(cur) || prev <= 0 || cur <= 0 {
			out[i-1] = math.NaN()
			continue
		}
		out[i-1] = math.Log(cur / prev)
	}
	return Series{Dates: dates, Values: out}
}

// RollingStd returns the rolling sample standard deviation. The first
// window-1 entries are NaN: insufficient history, not an error. A NaN inside
// a window makes that window's output NaN.
func (s Series) RollingStd(window int) Series {
	return s.rolling(window, sampleStd)
}

// RollingMean returns the rolling arithmetic mean with the same NaN contract
// as RollingStd.
func (s Series) RollingMean(window int) Series {
	return s.rolling(window, mean)
}

func (s Series) rolling(window int, f func([]float64) float64) Series {
	out := make([]float64, len(s.Values))
	for i := range out {
		if window < 1 || i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = f(s.Values[i-window+1 : i+1])
	}
	return Series{Dates: s.Dates, Values: out}
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Reindex aligns the series to the caller's date index. Dates without an
// observation come back as NaN.
func (s Series) Reindex(dates []time.Time) Series {
	out := make([]float64, len(dates))
	for i, d := range dates {
		v, ok := s.At(d)
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return Series{Dates: dates, Values: out}
}

// NaNs returns an all-NaN series on the given index.
func NaNs(dates []time.Time) Series {
	return Constant(dates, math.NaN())
}
