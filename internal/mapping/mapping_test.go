package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tender-cost-engine/internal/model"
)

func mix(vendor string, pct float64) model.Mix {
	return model.Mix{{VendorProfile: vendor, Pct: pct}}
}

func TestResolveAtFlat(t *testing.T) {
	m := model.ProfileMapping{Kind: model.MappingFlat, Flat: mix("dev:senior", 100)}
	for _, month := range []int{1, 13, 60} {
		assert.Equal(t, mix("dev:senior", 100), ResolveAt(m, month))
	}
	assert.Nil(t, ResolveAt(model.ProfileMapping{Kind: model.MappingFlat}, 1))
}

func TestResolveAtPeriods(t *testing.T) {
	m := model.ProfileMapping{Kind: model.MappingPeriods, Periods: []model.MappingPeriod{
		{MonthStart: 4, MonthEnd: 12, Mix: mix("a", 100)},
		{MonthStart: 19, MonthEnd: 24, Mix: mix("b", 100)},
		{MonthStart: 13, MonthEnd: 15, Mix: mix("c", 100)},
	}}

	tests := []struct {
		month int
		want  model.Mix
	}{
		{1, nil},            // nothing started yet
		{4, mix("a", 100)},  // covered
		{14, mix("c", 100)}, // covered, listed out of order
		{17, mix("c", 100)}, // gap, latest started period wins
		{30, mix("b", 100)}, // after all periods
	}
	for _, tt := range tests {
		if got := ResolveAt(m, tt.month); !assert.ObjectsAreEqual(tt.want, got) {
			t.Fatalf("month %d: got %v, want %v", tt.month, got, tt.want)
		}
	}
}

func TestResolveAtPeriodsOpenEnd(t *testing.T) {
	m := model.ProfileMapping{Kind: model.MappingPeriods, Periods: []model.MappingPeriod{
		{MonthStart: 1, MonthEnd: 12, Mix: mix("a", 100)},
		{MonthStart: 13, Mix: mix("b", 100)},
	}}
	assert.Equal(t, mix("b", 100), ResolveAt(m, 48))
}

func TestResolveAtYearLabels(t *testing.T) {
	m := model.ProfileMapping{Kind: model.MappingYearLabels, Years: []model.YearLabel{
		{Label: "Anno 1", Year: 1, Mix: mix("a", 100)},
		{Label: "Anno 2+", Year: 2, OpenEnded: true, Mix: mix("b", 100)},
		{Label: "Anno 4+", Year: 4, OpenEnded: true, Mix: mix("d", 100)},
		{Label: "Anno 3", Year: 3, Mix: mix("c", 100)},
	}}

	tests := []struct {
		month int
		want  model.Mix
	}{
		{1, mix("a", 100)},
		{12, mix("a", 100)},
		{13, mix("b", 100)},
		{25, mix("c", 100)}, // exact label beats open-ended
		{37, mix("d", 100)}, // highest open-ended not above the year
		{70, mix("d", 100)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveAt(m, tt.month), "month %d", tt.month)
	}

	onlyLater := model.ProfileMapping{Kind: model.MappingYearLabels, Years: []model.YearLabel{
		{Label: "Anno 2+", Year: 2, OpenEnded: true, Mix: mix("b", 100)},
	}}
	assert.Nil(t, ResolveAt(onlyLater, 5))
}

func TestInflationFactor(t *testing.T) {
	assert.Equal(t, 1.0, InflationFactor(12, 3))
	assert.InDelta(t, 1.03, InflationFactor(13, 3), 1e-12)
	assert.InDelta(t, 1.0609, InflationFactor(25, 3), 1e-12)
	assert.Equal(t, 1.0, InflationFactor(40, 0))
}

func TestRates(t *testing.T) {
	r := Rates{Table: map[string]float64{"a": 400, "b": 200, "zero": 0}, Default: 250}
	assert.Equal(t, 400.0, r.Of("a"))
	assert.Equal(t, 250.0, r.Of("missing"))
	assert.Equal(t, 250.0, r.Of("zero"))

	// not renormalized: a 50% mix prices at half
	assert.Equal(t, 200.0, r.Blend(mix("a", 50)))
	assert.Equal(t, 300.0, r.Blend(model.Mix{{VendorProfile: "a", Pct: 50}, {VendorProfile: "b", Pct: 50}}))
}

func TestRateAt(t *testing.T) {
	r := Rates{Table: map[string]float64{"dev": 300, "v1": 500}, Default: 250}
	m := model.ProfileMapping{Kind: model.MappingPeriods, Periods: []model.MappingPeriod{
		{MonthStart: 13, MonthEnd: 24, Mix: mix("v1", 100)},
	}}
	assert.Equal(t, 300.0, RateAt("dev", m, 1, r, 10))
	assert.InDelta(t, 550.0, RateAt("dev", m, 13, r, 10), 1e-9)
}

func TestTimelineRate(t *testing.T) {
	r := Rates{Table: map[string]float64{"a": 100, "b": 200}, Default: 250}
	m := model.ProfileMapping{Kind: model.MappingPeriods, Periods: []model.MappingPeriod{
		{MonthStart: 1, MonthEnd: 12, Mix: mix("a", 100)},
		{MonthStart: 13, MonthEnd: 36, Mix: mix("b", 100)},
	}}
	// (100*12 + 200*24) / 36
	assert.InDelta(t, 6000.0/36, TimelineRate(m, r, 36, 0), 1e-9)
	// second span inflated once, by its starting year only
	assert.InDelta(t, (100*12+220*24)/36.0, TimelineRate(m, r, 36, 10), 1e-9)

	assert.Equal(t, 250.0, TimelineRate(model.ProfileMapping{Kind: model.MappingFlat}, r, 36, 0))
}

func TestMixRate(t *testing.T) {
	r := Rates{Table: map[string]float64{"pm": 500, "dev": 300, "v": 400}, Default: 250}
	mappings := map[string]model.ProfileMapping{
		"dev": {Kind: model.MappingFlat, Flat: mix("v", 100)},
	}
	shares := []model.ProfileShare{{Profile: "pm", Pct: 20}, {Profile: "dev", Pct: 60}, {Profile: "ignored", Pct: 0}}
	// renormalized over 80%: (0.2*500 + 0.6*400) / 0.8
	assert.InDelta(t, 425.0, MixRate(shares, mappings, r, 12, 0), 1e-9)
	assert.Equal(t, 250.0, MixRate(nil, mappings, r, 12, 0))
}
