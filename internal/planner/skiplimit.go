package planner

// ApplySkipLimit adjusts a candidate result count n by a command's skip and
// limit, per §6. A negative limit is interpreted as an absolute cap (the
// "batch size, single reply" convention); the result is clamped at zero.
func ApplySkipLimit(n int, skip int, limit int) int {
	n -= skip
	if n < 0 {
		n = 0
	}
	if limit < 0 {
		limit = -limit
	}
	if limit != 0 && n > limit {
		n = limit
	}
	return n
}
