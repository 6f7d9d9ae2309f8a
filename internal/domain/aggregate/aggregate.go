// Package aggregate derives point totals from server-delivered breakdowns.
//
// Totals are never stored or mutated independently; they are always the
// fold-sum over the current breakdown. The same fold serves per-player,
// per-team and dashboard totals.
package aggregate

import "github.com/okian/levelup/internal/domain/model"

// Total is a derived point total with its presentation flag.
type Total struct {
	Points int
	// Negative selects the negative-value styling in views.
	Negative bool
}

// Sum folds signed point values into a Total. A nil or empty input is a
// valid total of zero, not an error. Order does not matter.
func Sum(points []int) Total {
	total := 0
	for _, p := range points {
		total += p
	}
	return Total{Points: total, Negative: total < 0}
}

// SumBreakdown folds a player's breakdown rows into a Total.
func SumBreakdown(rows []model.BreakdownRow) Total {
	points := make([]int, len(rows))
	for i, r := range rows {
		points[i] = r.Points
	}
	return Sum(points)
}
