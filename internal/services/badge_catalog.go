package services

import (
	"time"

	"nena/internal/models"
)

// DefaultBadges is the catalog seeded at startup, in display order.
func DefaultBadges() []*models.Badge {
	badge := func(name, description string, category models.BadgeCategory, icon string, criteria ...models.Criterion) *models.Badge {
		return &models.Badge{
			Name:        name,
			Description: description,
			Category:    category,
			IconName:    icon,
			Criteria:    criteria,
			IsActive:    true,
		}
	}

	return []*models.Badge{
		badge("First Steps", "Complete your first recording session", models.CategoryMilestone, "award",
			models.RecordingsAtLeast{Count: 1}),
		badge("Getting Started", "Complete 5 recording sessions", models.CategoryMilestone, "play",
			models.RecordingsAtLeast{Count: 5}),
		badge("Practice Pro", "Complete 10 recording sessions", models.CategoryMilestone, "target",
			models.RecordingsAtLeast{Count: 10}),
		badge("Speaking Veteran", "Complete 25 recording sessions", models.CategoryMilestone, "star",
			models.RecordingsAtLeast{Count: 25}),
		badge("Speech Master", "Complete 50 recording sessions", models.CategoryMilestone, "crown",
			models.RecordingsAtLeast{Count: 50}),

		badge("Daily Dedication", "Practice for 3 days in a row", models.CategoryConsistency, "calendar",
			models.StreakAtLeast{Days: 3}),
		badge("Streak Master", "Practice for 7 days in a row", models.CategoryConsistency, "flame",
			models.StreakAtLeast{Days: 7}),
		badge("Unstoppable", "Practice for 14 days in a row", models.CategoryConsistency, "trending-up",
			models.StreakAtLeast{Days: 14}),
		badge("Marathon Speaker", "Practice for 30 days in a row", models.CategoryConsistency, "trophy",
			models.StreakAtLeast{Days: 30}),

		badge("Confidence Builder", "Achieve 80% average confidence score", models.CategoryImprovement, "smile",
			models.AverageConfidenceAtLeast{Min: 0.8}),
		badge("Confidence King", "Achieve 90% average confidence score", models.CategoryImprovement, "zap",
			models.AverageConfidenceAtLeast{Min: 0.9}),
		badge("Perfect Pace", "Master optimal speaking pace (150-160 WPM)", models.CategoryImprovement, "gauge",
			models.PaceInRange{Min: 150, Max: 160}),
		badge("Clean Speaker", "Reduce filler words to under 2 per minute", models.CategoryImprovement, "sparkles",
			models.FillerRateAtMost{Max: 2}),
		badge("Filler-Free", "Achieve under 1 filler word per minute", models.CategoryImprovement, "check-circle",
			models.FillerRateAtMost{Max: 1}),

		badge("Hour of Power", "Practice for 60 total minutes", models.CategoryMilestone, "clock",
			models.TotalMinutesAtLeast{Minutes: 60}),
		badge("Marathon Practitioner", "Practice for 300 total minutes (5 hours)", models.CategoryMilestone, "stopwatch",
			models.TotalMinutesAtLeast{Minutes: 300}),

		badge("Weekend Warrior", "Practice on a weekend", models.CategorySpecial, "sun",
			models.PracticedOnWeekday{Weekday: time.Sunday}),
		badge("Monday Motivator", "Start your week with practice", models.CategorySpecial, "coffee",
			models.PracticedOnWeekday{Weekday: time.Monday}),
		badge("Monthly Champion", "Complete 12 sessions in a single month", models.CategoryConsistency, "calendar-check",
			models.MonthlySessions{Goal: 12}),
		badge("Rapid Improver", "Improve confidence by 10% or more", models.CategoryImprovement, "arrow-up",
			models.ImprovementRateAtLeast{Rate: 0.1}),
	}
}
