package core

import "time"

const msPerDay = 24 * 60 * 60 * 1000

// DaysBetween returns the number of whole days from 'from' to 'to', computed
// by flooring the millisecond difference. Flooring (not truncating) matters
// for negative differences: a due date half a day in the future is -1 days
// past due, not 0. Boundaries therefore shift at midnight of the evaluation
// clock, matching the historical behavior of this system.
func DaysBetween(to, from time.Time) int {
	return int(floorDiv(to.Sub(from).Milliseconds(), msPerDay))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
