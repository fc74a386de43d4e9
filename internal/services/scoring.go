package services

import "math"

// unifiedScore combines completion ratio with log-dampened volume:
// (processed/total) * ln(total+1). A single processed item therefore cannot
// outscore a high-volume officer with a similar completion ratio.
func unifiedScore(processed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return (float64(processed) / float64(total)) * math.Log(float64(total)+1)
}

// ratio returns processed/total as a 0..1 fraction, 0 when total is 0.
func ratio(processed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(processed) / float64(total)
}

// safeDiv returns num/den, 0 when den is 0. Derived metrics default to zero
// rather than propagating NaN.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
