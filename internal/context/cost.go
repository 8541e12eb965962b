package context

import "math"

// Cost arithmetic saturates at math.MaxInt. Costs, multipliers and counts
// are never negative, so a result that would wrap is pinned to the cap
// instead.

// MulCap returns a*b, or math.MaxInt when the product does not fit.
// Negative operands are treated as 0.
func MulCap(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}

// AddCap returns a+b, or math.MaxInt when the sum does not fit.
// Negative operands are treated as 0.
func AddCap(a, b int) int {
	a, b = max(a, 0), max(b, 0)
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
