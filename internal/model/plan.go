package model

// BusinessPlan is the full input of a cost evaluation.
type BusinessPlan struct {
	DurationMonths    int                       `json:"duration_months"`
	DaysPerFTE        int                       `json:"days_per_fte"`
	DefaultDailyRate  float64                   `json:"default_daily_rate"`
	InflationPct      float64                   `json:"inflation_pct"`
	ReuseFactor       float64                   `json:"reuse_factor"`
	TeamComposition   []TeamMember              `json:"team_composition"`
	VolumeAdjustments VolumeAdjustments         `json:"volume_adjustments"`
	ProfileMappings   map[string]ProfileMapping `json:"profile_mappings"`
	ProfileRates      map[string]float64        `json:"profile_rates"`
	WorkPackages      []WorkPackage             `json:"work_packages"`
	Overhead          Overhead                  `json:"overhead"`
	Offer             Offer                     `json:"offer"`
}

// Parameters are the scalar settings every engine call receives explicitly.
type Parameters struct {
	DurationMonths   int
	DaysPerFTE       int
	DefaultDailyRate float64
	InflationPct     float64
}

// Defaults fill in plan settings the request leaves unset.
type Defaults struct {
	DaysPerFTE             int
	DefaultDailyRate       float64
	GovernancePct          float64
	RiskContingencyPct     float64
	CatalogTargetMarginPct float64
}

type TeamMember struct {
	ProfileID     string        `json:"profile_id"`
	Label         string        `json:"label"`
	FTE           float64       `json:"fte"`
	TowAllocation TowAllocation `json:"tow_allocation"`
}

type TowShare struct {
	TowID string  `json:"tow_id"`
	Pct   float64 `json:"pct"`
}

// TowAllocation is ordered; map-shaped input is sorted by work package id.
type TowAllocation []TowShare

// Total returns the sum of the positive shares.
func (a TowAllocation) Total() float64 {
	var total float64
	for _, s := range a {
		if s.Pct > 0 {
			total += s.Pct
		}
	}
	return total
}

type VolumeAdjustments struct {
	Global    float64            `json:"global"`
	Periods   []VolumePeriod     `json:"periods"`
	ByProfile map[string]float64 `json:"by_profile,omitempty"`
	ByTow     map[string]float64 `json:"by_tow,omitempty"`
}

type VolumePeriod struct {
	MonthStart int                `json:"month_start"`
	MonthEnd   int                `json:"month_end"`
	ByProfile  map[string]float64 `json:"by_profile"`
	ByTow      map[string]float64 `json:"by_tow"`
}

// PeriodAt returns the first period covering month, or an empty period.
func (v VolumeAdjustments) PeriodAt(month int) VolumePeriod {
	for _, p := range v.Periods {
		if p.MonthStart <= month && month <= p.MonthEnd {
			return p
		}
	}
	return VolumePeriod{}
}

// ProfileFactor returns the factor for profileID, 1.0 when absent.
func (p VolumePeriod) ProfileFactor(profileID string) float64 {
	if f, ok := p.ByProfile[profileID]; ok {
		return f
	}
	return 1.0
}

// TowFactor returns the factor for towID, 1.0 when absent.
func (p VolumePeriod) TowFactor(towID string) float64 {
	if f, ok := p.ByTow[towID]; ok {
		return f
	}
	return 1.0
}

const (
	WorkPackageTeam    = "team"
	WorkPackageCatalog = "catalog"
)

type WorkPackage struct {
	ID                 string           `json:"id"`
	Label              string           `json:"label"`
	Type               string           `json:"type"`
	TotalFTE           float64          `json:"total_fte"`
	TotalCatalogValue  float64          `json:"total_catalog_value"`
	TargetMarginPct    *float64         `json:"target_margin_pct"`
	TenderDiscountPct  float64          `json:"tender_discount_pct"`
	DefaultReuseFactor float64          `json:"default_reuse_factor"`
	CatalogItems       []CatalogItem    `json:"catalog_items"`
	CatalogGroups      []CatalogGroup   `json:"catalog_groups"`
	CatalogClusters    []CatalogCluster `json:"catalog_clusters"`
}

type CatalogItem struct {
	ID              string         `json:"id"`
	Label           string         `json:"label"`
	PriceBase       float64        `json:"price_base"`
	GroupPct        float64        `json:"group_pct"`
	TargetMarginPct *float64       `json:"target_margin_pct"`
	ProfileMix      []ProfileShare `json:"profile_mix"`
}

// ProfileShare is a buyer profile's share of a catalog item's effort.
type ProfileShare struct {
	Profile string  `json:"profile"`
	Pct     float64 `json:"pct"`
}

type CatalogGroup struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	ItemIDs     []string `json:"item_ids"`
	TargetValue float64  `json:"target_value"`
	ReuseFactor *float64 `json:"reuse_factor"`
}

const (
	ConstraintEquality = "equality"
	ConstraintMinimum  = "minimum"
	ConstraintMaximum  = "maximum"
)

type CatalogCluster struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	Profiles       []string `json:"profiles"`
	RequiredPct    float64  `json:"required_pct"`
	ConstraintType string   `json:"constraint_type"`
}

type Overhead struct {
	GovernancePct       *float64   `json:"governance_pct"`
	RiskContingencyPct  *float64   `json:"risk_contingency_pct"`
	SubcontractQuotaPct float64    `json:"subcontract_quota_pct"`
	Governance          Governance `json:"governance"`
}

const (
	GovernancePercentage = "percentage"
	GovernanceManual     = "manual"
	GovernanceFTE        = "fte"
	GovernanceTeamMix    = "team_mix"
)

type Governance struct {
	Mode       string             `json:"mode"`
	ManualCost *float64           `json:"manual_cost,omitempty"`
	FTEPeriods []GovernancePeriod `json:"fte_periods,omitempty"`
	ProfileMix Mix                `json:"profile_mix,omitempty"`
	ApplyReuse bool               `json:"apply_reuse"`
}

type GovernancePeriod struct {
	MonthStart int     `json:"month_start"`
	MonthEnd   int     `json:"month_end"`
	FTE        float64 `json:"fte"`
	Mix        Mix     `json:"team_mix"`
}

type Offer struct {
	BaseAmount      float64  `json:"base_amount"`
	DiscountPct     float64  `json:"discount_pct"`
	IsRTI           bool     `json:"is_rti"`
	Quota           *float64 `json:"quota"`
	TargetMarginPct *float64 `json:"target_margin_pct,omitempty"`
}

// QuotaOrOne returns the partnership quota, 1.0 when unset.
func (o Offer) QuotaOrOne() float64 {
	if o.Quota == nil {
		return 1.0
	}
	return *o.Quota
}

// Parameters extracts the scalar settings of a normalized plan.
func (p *BusinessPlan) Parameters() Parameters {
	return Parameters{
		DurationMonths:   p.DurationMonths,
		DaysPerFTE:       p.DaysPerFTE,
		DefaultDailyRate: p.DefaultDailyRate,
		InflationPct:     p.InflationPct,
	}
}

// TotalFTE sums the team composition headcount.
func (p *BusinessPlan) TotalFTE() float64 {
	var total float64
	for _, m := range p.TeamComposition {
		total += m.FTE
	}
	return total
}
