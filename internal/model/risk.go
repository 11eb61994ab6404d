package model

// RiskLevel is a categorical risk band.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Weight maps a risk band to its numeric score.
func (r RiskLevel) Weight() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	default:
		return 1
	}
}

// RiskFactors holds the three categorical inputs to the overall risk.
type RiskFactors struct {
	TimePressure     RiskLevel `json:"time_pressure"`
	BudgetComplexity RiskLevel `json:"budget_complexity"`
	GroupSize        RiskLevel `json:"group_size"`
}

// RiskAssessment is a snapshot computed once at generation time.
type RiskAssessment struct {
	Level      RiskLevel   `json:"level"`
	Score      int         `json:"score"`
	Factors    RiskFactors `json:"factors"`
	Mitigation []string    `json:"mitigation"`
	Backup     BackupPlan  `json:"backup"`
}

// BackupPlan is the alternate-funding fallback attached to every risk assessment.
type BackupPlan struct {
	TargetAmount float64  `json:"target_amount"`
	Strategies   []string `json:"strategies"`
	Timeline     string   `json:"timeline"`
}

// RewardTier selects how many rewards a plan offers.
type RewardTier string

const (
	RewardBasic    RewardTier = "basic"
	RewardStandard RewardTier = "standard"
	RewardPremium  RewardTier = "premium"
)

// Rewards lists the incentives attached to a plan.
type Rewards struct {
	Tier       RewardTier `json:"tier"`
	Individual []string   `json:"individual"`
	Group      []string   `json:"group"`
	Special    []string   `json:"special,omitempty"`
}
