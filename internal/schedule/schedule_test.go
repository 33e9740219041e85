package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-cost-engine/internal/model"
)

func TestBoundariesInvalidDuration(t *testing.T) {
	for _, d := range []int{0, -1, -36} {
		_, err := Boundaries(d, nil, nil)
		if !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("duration %d: expected ErrInvalidDuration, got %v", d, err)
		}
	}
}

func TestBoundariesNoChanges(t *testing.T) {
	b, err := Boundaries(36, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 37}, b)

	iv := Intervals(b)
	require.Len(t, iv, 1)
	assert.Equal(t, Interval{Start: 1, End: 36, Months: 36, Years: 3}, iv[0])
}

func TestBoundariesMergesAllSources(t *testing.T) {
	periods := []model.VolumePeriod{
		{MonthStart: 1, MonthEnd: 12},
		{MonthStart: 13, MonthEnd: 40}, // runs past the contract, clamped
	}
	mappings := map[string]model.ProfileMapping{
		"dev": {Kind: model.MappingPeriods, Periods: []model.MappingPeriod{
			{MonthStart: 1, MonthEnd: 6},
			{MonthStart: 7, MonthEnd: 36},
		}},
		"pm": {Kind: model.MappingYearLabels, Years: []model.YearLabel{
			{Year: 1}, {Year: 3, OpenEnded: true},
		}},
		"flat": {Kind: model.MappingFlat, Flat: model.Mix{{VendorProfile: "x", Pct: 100}}},
	}

	b, err := Boundaries(36, periods, mappings)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 7, 13, 25, 37}, b)

	iv := Intervals(b)
	require.Len(t, iv, 4)
	assert.Equal(t, 6, iv[0].Months)
	assert.Equal(t, 0.5, iv[0].Years)
	assert.Equal(t, 25, iv[3].Start)
	assert.Equal(t, 36, iv[3].End)
}

func TestIntervalsCoverContract(t *testing.T) {
	periods := []model.VolumePeriod{{MonthStart: 5, MonthEnd: 9}, {MonthStart: 8, MonthEnd: 20}}
	iv, err := Build(24, periods, nil)
	require.NoError(t, err)

	total := 0
	next := 1
	for _, i := range iv {
		assert.Equal(t, next, i.Start)
		total += i.Months
		next = i.End + 1
	}
	assert.Equal(t, 24, total)
}
