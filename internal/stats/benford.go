package stats

import "math"

// BenfordError returns the squared-error distance between the sample's
// leading-digit frequencies and Benford's law. Zeros are discarded; an empty
// usable sample scores 0.
func BenfordError(data []float64) float64 {
	var counts [10]int
	total := 0
	for _, x := range data {
		d := leadingDigit(x)
		if d == 0 {
			continue
		}
		counts[d]++
		total++
	}
	if total == 0 {
		return 0
	}

	errSq := 0.0
	for d := 1; d <= 9; d++ {
		p := float64(counts[d]) / float64(total)
		target := math.Log10(1 + 1/float64(d))
		diff := p - target
		errSq += diff * diff
	}
	return errSq
}

// leadingDigit returns the first significant digit of |x|, 0 for zero or
// non-finite input.
func leadingDigit(x float64) int {
	x = math.Abs(x)
	if x == 0 || math.IsInf(x, 0) || math.IsNaN(x) {
		return 0
	}
	exp := math.Floor(math.Log10(x))
	d := int(x / math.Pow(10, exp))
	if d < 1 || d > 9 {
		return 0
	}
	return d
}
