package planner

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/eventoo/internal/model"
)

// AssessRisk scores time pressure, budget size and group size into an overall risk level.
func AssessRisk(totalBudget float64, days, numPeople int) model.RiskAssessment {
	factors := model.RiskFactors{
		TimePressure:     band(days < 30, days < 60),
		BudgetComplexity: band(totalBudget > 15000, totalBudget > 8000),
		GroupSize:        band(numPeople > 40, numPeople > 25),
	}

	score := factors.TimePressure.Weight() + factors.BudgetComplexity.Weight() + factors.GroupSize.Weight()
	level := model.RiskLow
	switch {
	case score >= 7:
		level = model.RiskHigh
	case score >= 4:
		level = model.RiskMedium
	}

	return model.RiskAssessment{
		Level:      level,
		Score:      score,
		Factors:    factors,
		Mitigation: append([]string(nil), mitigationStrategies[level]...),
		Backup: model.BackupPlan{
			TargetAmount: decimal.NewFromFloat(totalBudget).Mul(decimal.NewFromFloat(backupShare)).Round(0).InexactFloat64(),
			Strategies:   append([]string(nil), backupStrategies...),
			Timeline:     "Last 2 weeks before departure",
		},
	}
}

func band(high, medium bool) model.RiskLevel {
	switch {
	case high:
		return model.RiskHigh
	case medium:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
