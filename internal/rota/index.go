package rota

// Index returns the zero-based position in a participant order of count n
// that is on duty on target, given the rotation's anchor date. The rotation
// is infinite in both directions: dates before the anchor reduce into
// [0, n) via floored modulo. Callers must guarantee n > 0.
func Index(target, start Date, n int) int {
	i := target.DaysSince(start) % n
	if i < 0 {
		i += n
	}
	return i
}
