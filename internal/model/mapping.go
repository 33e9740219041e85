package model

// MixEntry is one vendor profile's share of a buyer profile's effort.
// Pct is in [0,100]; a mix is not required to sum to 100.
type MixEntry struct {
	VendorProfile string  `json:"vendor_profile"`
	Pct           float64 `json:"pct"`
}

type Mix []MixEntry

type MappingKind string

const (
	MappingFlat       MappingKind = "flat"
	MappingPeriods    MappingKind = "periods"
	MappingYearLabels MappingKind = "year_labels"
)

// ProfileMapping is the canonical form of the three accepted mapping shapes:
// a flat mix that is always active, month-ranged periods, or "Anno N" /
// "Anno N+" year labels.
type ProfileMapping struct {
	Kind    MappingKind     `json:"kind"`
	Flat    Mix             `json:"flat,omitempty"`
	Periods []MappingPeriod `json:"periods,omitempty"`
	Years   []YearLabel     `json:"years,omitempty"`
}

type MappingPeriod struct {
	MonthStart int `json:"month_start"`
	MonthEnd   int `json:"month_end"` // 0 means until the end of the contract
	Mix        Mix `json:"mix"`
}

type YearLabel struct {
	Label     string `json:"period"`
	Year      int    `json:"year"`
	OpenEnded bool   `json:"open_ended"`
	Mix       Mix    `json:"mix"`
}

// Empty reports whether the mapping carries no mix at all.
func (m ProfileMapping) Empty() bool {
	switch m.Kind {
	case MappingPeriods:
		return len(m.Periods) == 0
	case MappingYearLabels:
		return len(m.Years) == 0
	default:
		return len(m.Flat) == 0
	}
}

// Span is a month range of a mapping timeline with the mix active in it.
type Span struct {
	MonthStart int
	MonthEnd   int
	Mix        Mix
}

// Timeline lays the mapping out as month spans within a contract of
// durationMonths. Flat mixes cover the whole contract; year labels cover
// their year, or run to the end of the contract when open-ended.
func (m ProfileMapping) Timeline(durationMonths int) []Span {
	switch m.Kind {
	case MappingPeriods:
		spans := make([]Span, 0, len(m.Periods))
		for _, p := range m.Periods {
			end := p.MonthEnd
			if end == 0 {
				end = durationMonths
			}
			spans = append(spans, Span{MonthStart: p.MonthStart, MonthEnd: end, Mix: p.Mix})
		}
		return spans
	case MappingYearLabels:
		spans := make([]Span, 0, len(m.Years))
		for _, y := range m.Years {
			if y.Year < 1 {
				continue
			}
			start := (y.Year-1)*12 + 1
			end := y.Year * 12
			if y.OpenEnded || end > durationMonths {
				end = durationMonths
			}
			spans = append(spans, Span{MonthStart: start, MonthEnd: end, Mix: y.Mix})
		}
		return spans
	default:
		if len(m.Flat) == 0 {
			return nil
		}
		return []Span{{MonthStart: 1, MonthEnd: durationMonths, Mix: m.Flat}}
	}
}
