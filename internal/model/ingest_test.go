package model

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileMappingShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, m ProfileMapping)
	}{
		{
			name:  "flat mix with legacy vendor key",
			input: `[{"lutech_profile": "dev:senior", "pct": 60}, {"vendor_profile": "dev:junior", "pct": 40}]`,
			check: func(t *testing.T, m ProfileMapping) {
				assert.Equal(t, MappingFlat, m.Kind)
				assert.Equal(t, Mix{{"dev:senior", 60}, {"dev:junior", 40}}, m.Flat)
			},
		},
		{
			name:  "month periods",
			input: `[{"month_start": 1, "month_end": 12, "mix": [{"vendor_profile": "a", "pct": 100}]}, {"month_start": 13, "mix": [{"vendor_profile": "b", "pct": null}]}]`,
			check: func(t *testing.T, m ProfileMapping) {
				require.Equal(t, MappingPeriods, m.Kind)
				require.Len(t, m.Periods, 2)
				assert.Equal(t, 12, m.Periods[0].MonthEnd)
				assert.Equal(t, 0, m.Periods[1].MonthEnd)
				assert.Equal(t, 0.0, m.Periods[1].Mix[0].Pct)
			},
		},
		{
			name:  "year labels",
			input: `[{"period": "Anno 1", "mix": []}, {"period": "Anno 2+", "mix": [{"vendor_profile": "c", "pct": 50}]}]`,
			check: func(t *testing.T, m ProfileMapping) {
				require.Equal(t, MappingYearLabels, m.Kind)
				assert.Equal(t, 1, m.Years[0].Year)
				assert.False(t, m.Years[0].OpenEnded)
				assert.Equal(t, 2, m.Years[1].Year)
				assert.True(t, m.Years[1].OpenEnded)
			},
		},
		{
			name:  "empty list",
			input: `[]`,
			check: func(t *testing.T, m ProfileMapping) {
				assert.Equal(t, MappingFlat, m.Kind)
				assert.True(t, m.Empty())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m ProfileMapping
			require.NoError(t, json.Unmarshal([]byte(tt.input), &m))
			tt.check(t, m)
		})
	}
}

func TestProfileMappingCanonicalRoundTrip(t *testing.T) {
	in := ProfileMapping{Kind: MappingPeriods, Periods: []MappingPeriod{{MonthStart: 1, MonthEnd: 6, Mix: Mix{{"x", 100}}}}}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out ProfileMapping
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestTowAllocationShapes(t *testing.T) {
	var fromMap TowAllocation
	require.NoError(t, json.Unmarshal([]byte(`{"tow-b": 30, "tow-a": 70}`), &fromMap))
	assert.Equal(t, TowAllocation{{"tow-a", 70}, {"tow-b", 30}}, fromMap)

	var fromList TowAllocation
	require.NoError(t, json.Unmarshal([]byte(`[{"tow_id": "tow-b", "pct": 30}, {"tow_id": "tow-a"}]`), &fromList))
	assert.Equal(t, TowAllocation{{"tow-b", 30}, {"tow-a", 0}}, fromList)
	assert.Equal(t, 30.0, fromList.Total())

	var none TowAllocation
	require.NoError(t, json.Unmarshal([]byte(`null`), &none))
	assert.Nil(t, none)
}

func TestParseYearLabel(t *testing.T) {
	tests := []struct {
		label string
		year  int
		open  bool
	}{
		{"Anno 1", 1, false},
		{" Anno 3+ ", 3, true},
		{"Year 2", 2, false},
		{"Anno", 0, false},
		{"Anno x+", 0, false},
	}
	for _, tt := range tests {
		year, open := ParseYearLabel(tt.label)
		if year != tt.year || open != tt.open {
			t.Fatalf("ParseYearLabel(%q) = (%d, %v), want (%d, %v)", tt.label, year, open, tt.year, tt.open)
		}
	}
}

func TestWorkPackageAliases(t *testing.T) {
	var wp WorkPackage
	input := `{"tow_id": "T1", "type": "catalogo", "sconto_gara_pct": 10, "catalog_reuse_factor": 0.2,
		"catalog_clusters": [{"id": "c1", "poste_profiles": ["dev"], "required_pct": 50}]}`
	require.NoError(t, json.Unmarshal([]byte(input), &wp))

	assert.Equal(t, "T1", wp.ID)
	assert.Equal(t, WorkPackageCatalog, wp.Type)
	assert.Equal(t, 10.0, wp.TenderDiscountPct)
	assert.Equal(t, 0.2, wp.DefaultReuseFactor)
	assert.Nil(t, wp.TargetMarginPct)
	require.Len(t, wp.CatalogClusters, 1)
	assert.Equal(t, []string{"dev"}, wp.CatalogClusters[0].Profiles)
}

func TestNormalize(t *testing.T) {
	plan := BusinessPlan{
		DurationMonths: 24,
		TeamComposition: []TeamMember{
			{Label: "Developer", FTE: 1},
		},
		VolumeAdjustments: VolumeAdjustments{ByProfile: map[string]float64{"Developer": 0.9}},
		WorkPackages:      []WorkPackage{{ID: "T1", Type: WorkPackageCatalog}},
	}
	plan.Normalize(Defaults{DaysPerFTE: 220, DefaultDailyRate: 250, GovernancePct: 0.04, RiskContingencyPct: 0.03, CatalogTargetMarginPct: 20})

	assert.Equal(t, 220, plan.DaysPerFTE)
	assert.Equal(t, 250.0, plan.DefaultDailyRate)
	assert.Equal(t, "Developer", plan.TeamComposition[0].ProfileID)
	assert.Equal(t, 1.0, plan.VolumeAdjustments.Global)
	require.Len(t, plan.VolumeAdjustments.Periods, 1)
	assert.Equal(t, 24, plan.VolumeAdjustments.Periods[0].MonthEnd)
	assert.Equal(t, 0.9, plan.VolumeAdjustments.PeriodAt(13).ProfileFactor("Developer"))
	assert.Equal(t, 0.04, *plan.Overhead.GovernancePct)
	assert.Equal(t, GovernancePercentage, plan.Overhead.Governance.Mode)
	assert.Equal(t, 20.0, *plan.WorkPackages[0].TargetMarginPct)
	assert.Equal(t, 1.0, plan.Offer.QuotaOrOne())
}

func TestNormalizeLeavesSourceUntouched(t *testing.T) {
	members := []TeamMember{{Label: "Developer", FTE: 1}}
	mappings := map[string]ProfileMapping{
		"Developer": {Kind: MappingPeriods, Periods: []MappingPeriod{{MonthStart: 1, Mix: Mix{{"x", 100}}}}},
	}
	plan := BusinessPlan{DurationMonths: 12, TeamComposition: members, ProfileMappings: mappings}
	plan.Normalize(Defaults{DaysPerFTE: 220, DefaultDailyRate: 250})

	assert.Equal(t, "Developer", plan.TeamComposition[0].ProfileID)
	assert.Equal(t, 12, plan.ProfileMappings["Developer"].Periods[0].MonthEnd)

	assert.Empty(t, members[0].ProfileID)
	assert.Equal(t, 0, mappings["Developer"].Periods[0].MonthEnd)
}
