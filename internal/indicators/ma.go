package indicators

// MovingAverage returns the arithmetic mean of the most recent period closes,
// the series assumed chronological ascending. Returns 0 when the series is
// shorter than the period; callers must check the series length before
// trusting a non-zero result.
func MovingAverage(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return 0
	}
	var sum float64
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period)
}
