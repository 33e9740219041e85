package model

// CostResult is the team cost with its three aggregation views. The views
// round their own shares and are not reconciled with TotalCost.
type CostResult struct {
	TotalCost        float64                  `json:"total_cost"`
	TotalDays        float64                  `json:"total_days"`
	TotalDaysBase    float64                  `json:"total_days_base"`
	TotalFTEOriginal float64                  `json:"total_fte_original"`
	TotalFTEAdjusted float64                  `json:"total_fte_adjusted"`
	ByProfile        map[string]ProfileRollup `json:"by_profile"`
	ByTow            map[string]Rollup        `json:"by_tow"`
	ByVendorProfile  map[string]Rollup        `json:"by_vendor_profile"`
	Intervals        []IntervalRecord         `json:"intervals"`
}

type ProfileRollup struct {
	FTEOriginal float64 `json:"fte_original"`
	FTEAdjusted float64 `json:"fte_adjusted"`
	Days        float64 `json:"days"`
	Cost        float64 `json:"cost"`
}

type Rollup struct {
	Label         string         `json:"label"`
	Cost          float64        `json:"cost"`
	Days          float64        `json:"days"`
	DaysBase      float64        `json:"days_base"`
	DaysRaw       float64        `json:"days_raw"`
	Contributions []Contribution `json:"contributions"`
}

type Contribution struct {
	Member           string  `json:"member"`
	Start            int     `json:"start"`
	End              int     `json:"end"`
	Days             float64 `json:"days"`
	DaysBase         float64 `json:"days_base"`
	DaysRaw          float64 `json:"days_raw"`
	Cost             float64 `json:"cost"`
	Rate             float64 `json:"rate"`
	AllocationPct    float64 `json:"allocation_pct,omitempty"`
	ProfileFactor    float64 `json:"p_factor"`
	EfficiencyFactor float64 `json:"eff_factor"`
}

type IntervalRecord struct {
	Member        string  `json:"member"`
	Profile       string  `json:"profile"`
	VendorProfile string  `json:"vendor_profile"`
	Start         int     `json:"start"`
	End           int     `json:"end"`
	Months        int     `json:"months"`
	FTEBase       float64 `json:"fte_base"`
	Factor        float64 `json:"factor"`
	FTEEffective  float64 `json:"fte_eff"`
	Rate          float64 `json:"rate"`
	Cost          float64 `json:"cost"`
}

type CatalogCostResult struct {
	TotalCost     float64                             `json:"total_cost"`
	ByWorkPackage map[string]CatalogWorkPackageResult `json:"by_work_package"`
}

type CatalogWorkPackageResult struct {
	Label               string                  `json:"label"`
	RefTotalFTE         float64                 `json:"ref_total_fte"`
	TotalDerivedFTE     float64                 `json:"total_derived_fte"`
	TotalCatalogValue   float64                 `json:"total_catalog_value"`
	Cost                float64                 `json:"cost"`
	Revenue             float64                 `json:"revenue"`
	Margin              float64                 `json:"margin"`
	MarginPct           float64                 `json:"margin_pct"`
	Items               []CatalogItemResult     `json:"items"`
	Groups              []CatalogGroupResult    `json:"groups"`
	ClusterDistribution map[string]ClusterCheck `json:"cluster_distribution"`
}

type CatalogItemResult struct {
	ID                 string  `json:"id"`
	Label              string  `json:"label"`
	PriceBase          float64 `json:"price_base"`
	GroupPct           float64 `json:"group_pct"`
	BuyerTotal         float64 `json:"buyer_total"`
	EffectiveMarginPct float64 `json:"effective_margin_pct"`
	FTE                float64 `json:"item_fte"`
	AvgDailyRate       float64 `json:"avg_daily_rate"`
	Cost               float64 `json:"cost"`
	Revenue            float64 `json:"revenue"`
	Margin             float64 `json:"margin"`
	UnitPrice          float64 `json:"unit_price"`
	DiscountPct        float64 `json:"discount_pct"`
	DegenerateMargin   bool    `json:"degenerate_margin,omitempty"`
}

type CatalogGroupResult struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	TargetValue float64 `json:"target_value"`
	FTE         float64 `json:"fte"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`
	Margin      float64 `json:"margin"`
}

type ClusterCheck struct {
	Label          string   `json:"label"`
	Profiles       []string `json:"profiles"`
	RequiredPct    float64  `json:"required_pct"`
	ConstraintType string   `json:"constraint_type"`
	ActualPct      float64  `json:"actual_pct"`
	Delta          float64  `json:"delta"`
	OK             bool     `json:"ok"`
}

type TotalCostBreakdown struct {
	Team             float64 `json:"team"`
	Catalog          float64 `json:"catalog"`
	TeamAndCatalog   float64 `json:"team_and_catalog"`
	Governance       float64 `json:"governance"`
	GovernanceMethod string  `json:"governance_method"`
	Risk             float64 `json:"risk"`
	Subcontract      float64 `json:"subcontract"`
	Total            float64 `json:"total"`
}

type Margin struct {
	Revenue   float64 `json:"revenue"`
	Cost      float64 `json:"cost"`
	Margin    float64 `json:"margin"`
	MarginPct float64 `json:"margin_pct"`
}

type DiscountSolution struct {
	TargetMarginPct float64 `json:"target_margin_pct"`
	DiscountPct     float64 `json:"discount_pct"`
	Margin          Margin  `json:"margin"`
}

type Scenario struct {
	Name         string  `json:"name"`
	ReuseFactor  float64 `json:"reuse_factor"`
	VolumeFactor float64 `json:"volume_factor"`
	TotalCost    float64 `json:"total_cost"`
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	Margin       float64 `json:"margin"`
	MarginPct    float64 `json:"margin_pct"`
}
