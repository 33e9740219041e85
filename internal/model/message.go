package model

type CalculationMessage struct {
	ID      int    `json:"id"`
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

// Message codes.
const (
	CodeInvalidDuration         = "INVALID_DURATION"
	CodeInvalidFTE              = "INVALID_FTE"
	CodeUnknownStep             = "UNKNOWN_STEP"
	CodeInvalidStepProperties   = "INVALID_STEP_PROPERTIES"
	CodeTeamCostMissing         = "TEAM_COST_NOT_CALCULATED"
	CodeTotalCostMissing        = "TOTAL_COST_NOT_CALCULATED"
	CodeMissingProfileMapping   = "MISSING_PROFILE_MAPPING"
	CodeUnallocatedMember       = "UNALLOCATED_MEMBER"
	CodeCatalogValueNotSet      = "CATALOG_VALUE_NOT_SET"
	CodeItemWithoutGroup        = "ITEM_WITHOUT_GROUP"
	CodeDegenerateMargin        = "DEGENERATE_MARGIN"
	CodeZeroRevenue             = "ZERO_REVENUE"
	CodeInfeasibleTargetMargin  = "INFEASIBLE_TARGET_MARGIN"
	CodeClusterConstraintFailed = "CLUSTER_CONSTRAINT_VIOLATED"
	CodeCalculationFailed       = "CALCULATION_FAILED"
	CodeWorkPackageIDConflict   = "WORK_PACKAGE_ID_CONFLICT"
)
