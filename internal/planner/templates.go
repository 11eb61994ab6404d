package planner

import (
	"strings"

	"github.com/theirongolddev/eventoo/internal/model"
)

// challengeTemplate is a reusable challenge definition drawn into plans.
type challengeTemplate struct {
	Title        string
	Description  string
	BaseRevenue  float64
	TimeRequired int // days of preparation
	Resources    []string
}

// referenceChallengeBudget is the per-challenge budget the template revenues are calibrated for.
const referenceChallengeBudget = 500.0

// defaultPools maps a difficulty tier to its template pool.
// Entries are drawn round-robin, so order matters.
var defaultPools = map[model.Difficulty][]challengeTemplate{
	model.DifficultyEasy: {
		{
			Title:        "Themed Charity Dinner",
			Description:  "Host a dinner where every course represents the trip destination",
			BaseRevenue:  150,
			TimeRequired: 3,
			Resources:    []string{"Kitchen access", "Volunteer cooks", "Themed decoration"},
		},
		{
			Title:        "Local Experiences Raffle",
			Description:  "Raffle off unique experiences donated by local businesses",
			BaseRevenue:  200,
			TimeRequired: 2,
			Resources:    []string{"Business contacts", "Raffle tickets", "Donated prizes"},
		},
		{
			Title:        "Charity Game Marathon",
			Description:  "Board game and video game tournament with an entry fee",
			BaseRevenue:  180,
			TimeRequired: 1,
			Resources:    []string{"Games", "Event space", "Scoring system"},
		},
		{
			Title:        "Student Crafts Fair",
			Description:  "Sell products handmade by the students themselves",
			BaseRevenue:  120,
			TimeRequired: 4,
			Resources:    []string{"Craft materials", "Sales space", "Display stands"},
		},
		{
			Title:        "Charity Karaoke Afternoon",
			Description:  "Karaoke event with paid entry and a snack stand",
			BaseRevenue:  160,
			TimeRequired: 1,
			Resources:    []string{"Sound system", "Microphones", "Lyrics projector"},
		},
	},
	model.DifficultyMedium: {
		{
			Title:        "Charity Escape Room",
			Description:  "Build an escape room themed around the trip destination",
			BaseRevenue:  400,
			TimeRequired: 5,
			Resources:    []string{"Suitable space", "Puzzle materials", "Decoration", "Support staff"},
		},
		{
			Title:        "Donated Items Auction",
			Description:  "Silent auction of items donated by the community",
			BaseRevenue:  350,
			TimeRequired: 3,
			Resources:    []string{"Donated items", "Bidding system", "Volunteer organizers"},
		},
		{
			Title:        "Multi-Sport Tournament",
			Description:  "Competition across several sports with a team entry fee",
			BaseRevenue:  320,
			TimeRequired: 2,
			Resources:    []string{"Sports facilities", "Equipment", "Referees", "Prizes"},
		},
		{
			Title:        "Themed Talks Series",
			Description:  "Paid-entry talks about the trip destination",
			BaseRevenue:  280,
			TimeRequired: 4,
			Resources:    []string{"Speakers", "Conference room", "Audiovisual material", "Catering"},
		},
		{
			Title:        "Open-Air Film Festival",
			Description:  "Screen films related to the destination",
			BaseRevenue:  300,
			TimeRequired: 1,
			Resources:    []string{"Big screen", "Projector", "Sound system", "Popcorn"},
		},
	},
	model.DifficultyHard: {
		{
			Title:        "Charity Hackathon",
			Description:  "Programming competition building solutions for the destination",
			BaseRevenue:  800,
			TimeRequired: 7,
			Resources:    []string{"Computers", "Technical mentors", "24/7 venue", "Significant prizes"},
		},
		{
			Title:        "Charity Gala",
			Description:  "Formal evening with dinner, shows and a silent auction",
			BaseRevenue:  1200,
			TimeRequired: 8,
			Resources:    []string{"Event hall", "Professional catering", "Entertainment", "Sponsors"},
		},
		{
			Title:        "Weekend Expedition",
			Description:  "Two-day preparation trip to the main destination",
			BaseRevenue:  600,
			TimeRequired: 6,
			Resources:    []string{"Transport", "Lodging", "Meals", "Local guide", "Travel insurance"},
		},
		{
			Title:        "Local Music Festival",
			Description:  "Festival with local bands and food stalls",
			BaseRevenue:  1000,
			TimeRequired: 10,
			Resources:    []string{"Stage", "Sound system", "Bands", "Municipal permits", "Security"},
		},
		{
			Title:        "Intensive Language Course",
			Description:  "Intensive classes in the destination language with a certificate",
			BaseRevenue:  450,
			TimeRequired: 12,
			Resources:    []string{"Native teacher", "Course material", "Classrooms", "Certificates"},
		},
	},
}

// destinationTheme personalizes challenge copy for a known destination.
type destinationTheme struct {
	Adjective string // replaces "Themed" in titles
	Flavor    string // appended to descriptions
}

var defaultThemes = map[string]destinationTheme{
	"barcelona": {Adjective: "Gaudí", Flavor: " with elements of modernist architecture"},
	"paris":     {Adjective: "Parisian", Flavor: " with French, romantic touches"},
	"rome":      {Adjective: "Roman", Flavor: " inspired by Renaissance art"},
	"amsterdam": {Adjective: "Dutch", Flavor: " with the charm of the canals"},
	"prague":    {Adjective: "Czech", Flavor: " with the magic of Gothic architecture"},
}

var destinationAliases = map[string]string{
	"parís":     "paris",
	"roma":      "rome",
	"ámsterdam": "amsterdam",
	"praga":     "prague",
}

func themeKey(destination string) string {
	key := strings.ToLower(strings.TrimSpace(destination))
	if alias, ok := destinationAliases[key]; ok {
		return alias
	}
	return key
}

var milestoneTemplates = []model.Milestone{
	{Percentage: 25, Title: "Initial Goal Reached", Reward: "25% - Basic trip gear", Celebration: "🎉"},
	{Percentage: 50, Title: "Halfway There", Reward: "50% - Transport upgrade", Celebration: "🚀"},
	{Percentage: 75, Title: "Almost There", Reward: "75% - Surprise activity included", Celebration: "⭐"},
	{Percentage: 100, Title: "Goal Complete!", Reward: "100% - Full trip guaranteed", Celebration: "🏆"},
}

var individualRewards = []string{
	"Bronze trip badge",
	"Exclusive destination T-shirt",
	"Professional trip photo",
	"Priority access to future events",
	"Participation certificate",
	"10% discount on upcoming trips",
	"Official trip merchandise",
	"Social media shout-out",
}

var groupRewards = []string{
	"Free lodging upgrade",
	"Extra activity included",
	"Special dinner at the destination",
	"Premium transport",
	"Exclusive welcome kit",
	"Professional group photo session",
	"Post-trip networking event",
	"6-month VIP membership",
}

var mitigationStrategies = map[model.RiskLevel][]string{
	model.RiskHigh: {
		"Run more frequent weekly challenges",
		"Set up multiple income sources",
		"Prepare a sponsor contingency plan",
		"Monitor progress daily",
	},
	model.RiskMedium: {
		"Increase challenge frequency",
		"Diversify fundraising types",
		"Add more frequent control checkpoints",
	},
	model.RiskLow: {
		"Follow the established plan",
		"Review progress weekly",
	},
}

var backupStrategies = []string{
	"Local business sponsorship",
	"Family and friends crowdfunding",
	"Digital product sales",
	"Volunteer services in exchange for donations",
}

var defaultRecommendations = []model.Recommendation{
	{
		Category:    "Strategy",
		Title:       "Diversify Sources",
		Description: "Do not depend on a single income source. Combine different challenge types.",
		Priority:    "high",
	},
	{
		Category:    "Communication",
		Title:       "Full Transparency",
		Description: "Keep everyone informed about progress and next steps.",
		Priority:    "high",
	},
	{
		Category:    "Motivation",
		Title:       "Celebrate Small Wins",
		Description: "Recognize partial achievements to keep enthusiasm up.",
		Priority:    "medium",
	},
	{
		Category:    "Planning",
		Title:       "Always Have a Plan B",
		Description: "Keep alternatives ready in case something goes wrong.",
		Priority:    "medium",
	},
}
