// Package planner turns fundraising parameters into an initial plan.
//
// Generation is pure: the same request and clock value always produce the
// same plan, including its ID.
package planner

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/eventoo/internal/model"
)

const (
	day  = 24 * time.Hour
	week = 7 * day

	maxChallenges      = 12
	defaultDestination = "Generic"
	backupShare        = 0.3
	estimateShare      = 0.8
)

var planNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://eventoo.app/plans"))

// Request holds the parameters of a plan.
type Request struct {
	TotalBudget   float64   `json:"total_budget" validate:"gt=0"`
	DepartureDate time.Time `json:"departure_date"`
	NumPeople     int       `json:"num_people" validate:"gt=0"`
	Destination   string    `json:"destination"`
}

// Generator builds plans from static template tables. It is safe for concurrent use.
type Generator struct {
	pools    map[model.Difficulty][]challengeTemplate
	themes   map[string]destinationTheme
	validate *validator.Validate
}

// NewGenerator returns a generator using the built-in template tables.
func NewGenerator() *Generator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Generator{
		pools:    defaultPools,
		themes:   defaultThemes,
		validate: v,
	}
}

var defaultGenerator = NewGenerator()

// Generate builds a plan with the default generator.
func Generate(req Request, now time.Time) (*model.Plan, error) {
	return defaultGenerator.Generate(req, now)
}

// Generate validates req and synthesizes a draft plan relative to now.
func (g *Generator) Generate(req Request, now time.Time) (*model.Plan, error) {
	if err := g.check(req, now); err != nil {
		return nil, err
	}

	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		destination = defaultDestination
	}

	days := TimeFrameDays(now, req.DepartureDate)
	difficulty, score := ClassifyDifficulty(req.TotalBudget, days)

	plan := &model.Plan{
		ID:              planID(req, destination, now),
		TotalBudget:     req.TotalBudget,
		TimeFrameDays:   days,
		NumPeople:       req.NumPeople,
		Destination:     destination,
		DepartureDate:   req.DepartureDate,
		CreatedAt:       now,
		Status:          model.PlanDraft,
		Difficulty:      difficulty,
		DifficultyScore: score,
		WeeklyGoals:     WeeklyGoals(req.TotalBudget, days),
		Milestones:      Milestones(req.TotalBudget),
		Rewards:         RewardsFor(req.TotalBudget),
		Risk:            AssessRisk(req.TotalBudget, days, req.NumPeople),
		Recommendations: append([]model.Recommendation(nil), defaultRecommendations...),
	}
	plan.Challenges = g.challenges(plan, now)

	return plan, nil
}

func (g *Generator) check(req Request, now time.Time) error {
	if err := g.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &InvalidInputError{Field: fe.Field(), Reason: fmt.Sprintf("failed %q check (got %v)", fe.Tag(), fe.Value())}
		}
		return &InvalidInputError{Field: "request", Reason: err.Error()}
	}
	if math.IsInf(req.TotalBudget, 0) {
		return &InvalidInputError{Field: "total_budget", Reason: "must be finite"}
	}
	if req.DepartureDate.IsZero() {
		return &InvalidInputError{Field: "departure_date", Reason: "is required"}
	}
	if !req.DepartureDate.After(now) {
		return &InvalidInputError{Field: "departure_date", Reason: "must be after the current date"}
	}
	return nil
}

func planID(req Request, destination string, now time.Time) string {
	key := fmt.Sprintf("%s|%s|%d|%s|%s",
		decimal.NewFromFloat(req.TotalBudget).String(),
		req.DepartureDate.UTC().Format(time.RFC3339Nano),
		req.NumPeople,
		destination,
		now.UTC().Format(time.RFC3339Nano),
	)
	return uuid.NewSHA1(planNamespace, []byte(key)).String()
}

// TimeFrameDays returns the whole days from now to departure, rounded up.
func TimeFrameDays(now, departure time.Time) int {
	return int(math.Ceil(float64(departure.Sub(now)) / float64(day)))
}

// WeekCount returns the number of 7-day buckets covering days.
func WeekCount(days int) int {
	return int(math.Ceil(float64(days) / 7))
}

// WeeklyGoals splits the budget evenly across the weeks of the timeframe.
func WeeklyGoals(totalBudget float64, days int) []model.WeeklyGoal {
	weeks := WeekCount(days)
	if weeks < 1 {
		return nil
	}
	target := decimal.NewFromFloat(totalBudget).Div(decimal.NewFromInt(int64(weeks))).Ceil()

	half := int(math.Ceil(float64(weeks) * 0.5))
	threeQuarters := int(math.Ceil(float64(weeks) * 0.75))

	goals := make([]model.WeeklyGoal, 0, weeks)
	for i := 1; i <= weeks; i++ {
		goals = append(goals, model.WeeklyGoal{
			Week:             i,
			Target:           target.InexactFloat64(),
			CumulativeTarget: target.Mul(decimal.NewFromInt(int64(i))).InexactFloat64(),
			Critical:         i == weeks || i == half || i == threeQuarters,
			Status:           model.GoalPending,
		})
	}
	return goals
}

// ClassifyDifficulty scores budget against time pressure and picks a template tier.
func ClassifyDifficulty(totalBudget float64, days int) (model.Difficulty, float64) {
	score := (totalBudget / 1000) * (30 / float64(days))
	switch {
	case score < 5:
		return model.DifficultyEasy, score
	case score < 15:
		return model.DifficultyMedium, score
	default:
		return model.DifficultyHard, score
	}
}

// challenges synthesizes the challenge schedule for plan.
func (g *Generator) challenges(plan *model.Plan, now time.Time) []model.Challenge {
	weeks := plan.Weeks()
	count := min(weeks, maxChallenges)
	if count == 0 {
		return nil
	}
	pool := g.pools[plan.Difficulty]
	perWeek := int(math.Ceil(float64(count) / float64(weeks)))

	factor := decimal.NewFromFloat(plan.TotalBudget).
		Div(decimal.NewFromInt(int64(count))).
		Div(decimal.NewFromFloat(referenceChallengeBudget))

	scaled := make([]decimal.Decimal, count)
	for i := range scaled {
		scaled[i] = decimal.NewFromFloat(pool[i%len(pool)].BaseRevenue).Mul(factor)
	}
	targets := Apportion(decimal.NewFromFloat(plan.TotalBudget).Round(0), scaled)

	theme, themed := g.themes[themeKey(plan.Destination)]

	out := make([]model.Challenge, 0, count)
	currentWeek := 1
	for i := 0; i < count; i++ {
		tpl := pool[i%len(pool)]
		title, desc := tpl.Title, tpl.Description
		if themed {
			title = strings.ReplaceAll(title, "Themed", theme.Adjective)
			desc += theme.Flavor
		}
		target := targets[i]

		deadline := now.Add(time.Duration(currentWeek) * week)
		if deadline.After(plan.DepartureDate) {
			deadline = plan.DepartureDate
		}

		out = append(out, model.Challenge{
			ID:               i + 1,
			Week:             currentWeek,
			Title:            title,
			Description:      desc,
			Difficulty:       plan.Difficulty,
			TimeRequiredDays: tpl.TimeRequired,
			Resources:        append([]string(nil), tpl.Resources...),
			BaseRevenue:      tpl.BaseRevenue,
			TargetAmount:     target.InexactFloat64(),
			EstimatedRevenue: target.Mul(decimal.NewFromFloat(estimateShare)).Round(0).InexactFloat64(),
			Deadline:         deadline,
			Status:           model.ChallengeScheduled,
		})

		if (i+1)%perWeek == 0 {
			currentWeek++
		}
	}
	return out
}

// Apportion splits total (a whole number) into len(weights) whole shares
// proportional to weights using the largest-remainder method. Shares always
// sum to total.
func Apportion(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	if len(weights) == 0 {
		return shares
	}

	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	if !sum.IsPositive() {
		// Degenerate weights: split evenly.
		sum = decimal.NewFromInt(int64(len(weights)))
		weights = make([]decimal.Decimal, len(weights))
		for i := range weights {
			weights[i] = decimal.NewFromInt(1)
		}
	}

	type remainder struct {
		idx  int
		frac decimal.Decimal
	}
	rems := make([]remainder, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		exact := total.Mul(w).Div(sum)
		shares[i] = exact.Floor()
		allocated = allocated.Add(shares[i])
		rems[i] = remainder{idx: i, frac: exact.Sub(shares[i])}
	}

	sort.SliceStable(rems, func(a, b int) bool {
		return rems[a].frac.GreaterThan(rems[b].frac)
	})
	left := int(total.Sub(allocated).IntPart())
	for i := 0; i < left && i < len(rems); i++ {
		shares[rems[i].idx] = shares[rems[i].idx].Add(decimal.NewFromInt(1))
	}
	return shares
}

// Milestones returns the fixed 25/50/75/100% milestone ladder for a budget.
func Milestones(totalBudget float64) []model.Milestone {
	out := make([]model.Milestone, len(milestoneTemplates))
	budget := decimal.NewFromFloat(totalBudget)
	for i, m := range milestoneTemplates {
		m.Amount = budget.Mul(decimal.NewFromInt(int64(m.Percentage))).Div(decimal.NewFromInt(100)).Round(0).InexactFloat64()
		if m.Percentage == 100 {
			m.Amount = totalBudget
		}
		out[i] = m
	}
	return out
}

// RewardsFor picks the reward tier and lists for a budget.
func RewardsFor(totalBudget float64) model.Rewards {
	tier, n := model.RewardBasic, 3
	switch {
	case totalBudget > 10000:
		tier, n = model.RewardPremium, 6
	case totalBudget > 5000:
		tier, n = model.RewardStandard, 4
	}

	var special []string
	if totalBudget > 8000 {
		special = append(special, "Free lodging upgrade")
	}
	if totalBudget > 12000 {
		special = append(special, "Exclusive VIP activity included")
	}
	if totalBudget > 15000 {
		special = append(special, "Professional group photo session")
	}
	if totalBudget > 20000 {
		special = append(special, "Guaranteed premium transport")
	}

	return model.Rewards{
		Tier:       tier,
		Individual: append([]string(nil), individualRewards[:n]...),
		Group:      append([]string(nil), groupRewards[:n]...),
		Special:    special,
	}
}
