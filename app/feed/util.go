package feed

// Range returns the ordered ids in [start, end).
func Range(start, end int) []int {
	if end <= start {
		return []int{}
	}
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}
