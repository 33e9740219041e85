// Package schedule splits a contract into the intervals within which no
// volume adjustment or profile mapping changes.
package schedule

import (
	"errors"
	"fmt"
	"sort"

	"tender-cost-engine/internal/model"
)

// ErrInvalidDuration is returned when the contract has no months.
var ErrInvalidDuration = errors.New("duration_months must be positive")

// Interval is the closed month range [Start, End].
type Interval struct {
	Start  int
	End    int
	Months int
	Years  float64
}

// Boundaries returns the sorted, de-duplicated month boundaries covering
// [1, durationMonths+1]. Every period start and every period end+1 of the
// volume adjustments and of the profile mappings is a boundary.
func Boundaries(durationMonths int, periods []model.VolumePeriod, mappings map[string]model.ProfileMapping) ([]int, error) {
	if durationMonths <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, durationMonths)
	}

	last := durationMonths + 1
	set := map[int]struct{}{1: {}, last: {}}
	add := func(b int) {
		if b >= 1 && b <= last {
			set[b] = struct{}{}
		}
	}

	for _, p := range periods {
		add(p.MonthStart)
		add(p.MonthEnd + 1)
	}
	for _, m := range mappings {
		if m.Kind == model.MappingFlat {
			continue
		}
		for _, span := range m.Timeline(durationMonths) {
			add(span.MonthStart)
			add(span.MonthEnd + 1)
		}
	}

	out := make([]int, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Ints(out)
	return out, nil
}

// Intervals turns consecutive boundaries into intervals.
func Intervals(boundaries []int) []Interval {
	if len(boundaries) < 2 {
		return nil
	}
	out := make([]Interval, 0, len(boundaries)-1)
	for i := 0; i < len(boundaries)-1; i++ {
		months := boundaries[i+1] - boundaries[i]
		out = append(out, Interval{
			Start:  boundaries[i],
			End:    boundaries[i+1] - 1,
			Months: months,
			Years:  float64(months) / 12.0,
		})
	}
	return out
}

// Build is Boundaries followed by Intervals.
func Build(durationMonths int, periods []model.VolumePeriod, mappings map[string]model.ProfileMapping) ([]Interval, error) {
	b, err := Boundaries(durationMonths, periods, mappings)
	if err != nil {
		return nil, err
	}
	return Intervals(b), nil
}
