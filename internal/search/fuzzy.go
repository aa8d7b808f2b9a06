package search

// editDistanceWithin computes the Levenshtein distance between a and b,
// giving up as soon as it exceeds max. It returns the distance and whether
// it is within max. Only a banded diagonal of the DP matrix is evaluated,
// so the cost stays proportional to max rather than to both lengths.
func editDistanceWithin(a, b string, max int) (int, bool) {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(rb)-len(ra) > max {
		return 0, false
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		rowMin := curr[0]
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min3(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
			if curr[i] < rowMin {
				rowMin = curr[i]
			}
		}
		if rowMin > max {
			return 0, false
		}
		prev, curr = curr, prev
	}
	if prev[len(ra)] > max {
		return 0, false
	}
	return prev[len(ra)], true
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
