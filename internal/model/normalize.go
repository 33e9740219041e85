package model

import (
	"maps"
	"slices"
)

// Normalize fills unset plan settings from defaults and resolves the
// remaining input conventions, so the engine packages only ever see one
// shape. Slices and maps it rewrites are copied first, leaving whatever the
// plan was decoded from untouched. It does not validate.
func (p *BusinessPlan) Normalize(d Defaults) {
	p.TeamComposition = slices.Clone(p.TeamComposition)
	p.VolumeAdjustments.Periods = slices.Clone(p.VolumeAdjustments.Periods)
	p.ProfileMappings = maps.Clone(p.ProfileMappings)
	p.WorkPackages = slices.Clone(p.WorkPackages)

	if p.DaysPerFTE <= 0 {
		p.DaysPerFTE = d.DaysPerFTE
	}
	if p.DefaultDailyRate <= 0 {
		p.DefaultDailyRate = d.DefaultDailyRate
	}

	for i := range p.TeamComposition {
		m := &p.TeamComposition[i]
		if m.ProfileID == "" {
			m.ProfileID = m.Label
		}
		if m.ProfileID == "" {
			m.ProfileID = "unknown"
		}
		if m.Label == "" {
			m.Label = m.ProfileID
		}
	}

	v := &p.VolumeAdjustments
	if v.Global <= 0 {
		v.Global = 1.0
	}
	if len(v.Periods) == 0 && (len(v.ByProfile) > 0 || len(v.ByTow) > 0) {
		v.Periods = []VolumePeriod{{
			MonthStart: 1,
			MonthEnd:   p.DurationMonths,
			ByProfile:  v.ByProfile,
			ByTow:      v.ByTow,
		}}
	}
	for i := range v.Periods {
		if v.Periods[i].MonthStart < 1 {
			v.Periods[i].MonthStart = 1
		}
		if v.Periods[i].MonthEnd == 0 {
			v.Periods[i].MonthEnd = p.DurationMonths
		}
	}

	for id, m := range p.ProfileMappings {
		if m.Kind == "" {
			m.Kind = MappingFlat
		}
		m.Periods = slices.Clone(m.Periods)
		for i := range m.Periods {
			if m.Periods[i].MonthEnd == 0 {
				m.Periods[i].MonthEnd = p.DurationMonths
			}
		}
		p.ProfileMappings[id] = m
	}

	if p.Overhead.GovernancePct == nil {
		p.Overhead.GovernancePct = ptr(d.GovernancePct)
	}
	if p.Overhead.RiskContingencyPct == nil {
		p.Overhead.RiskContingencyPct = ptr(d.RiskContingencyPct)
	}
	if p.Overhead.Governance.Mode == "" {
		p.Overhead.Governance.Mode = GovernancePercentage
	}

	for i := range p.WorkPackages {
		w := &p.WorkPackages[i]
		if w.Label == "" {
			w.Label = w.ID
		}
		if w.TargetMarginPct == nil {
			w.TargetMarginPct = ptr(d.CatalogTargetMarginPct)
		}
		w.CatalogClusters = slices.Clone(w.CatalogClusters)
		for j := range w.CatalogClusters {
			if w.CatalogClusters[j].ConstraintType == "" {
				w.CatalogClusters[j].ConstraintType = ConstraintEquality
			}
		}
	}
}

func ptr(v float64) *float64 {
	return &v
}
