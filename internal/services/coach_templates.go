package services

import (
	"strings"

	"nena/internal/analysis"
	"nena/internal/models"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

const (
	defaultWhatWorking = "You're making great progress with your speaking practice!"
	defaultFocusArea   = "Keep focusing on building your confidence."
	defaultTip         = "Try recording yourself telling a 2-minute story about your day."
	defaultMotivation  = "Every session makes you stronger. Keep it up!"
)

func userLevel(totalSessions int) string {
	switch {
	case totalSessions < 5:
		return LevelBeginner
	case totalSessions < 20:
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

type exerciseTemplate struct {
	title        string
	category     string
	instructions []string
	tips         []string
}

var exerciseTemplates = map[string]exerciseTemplate{
	analysis.WeaknessFastPace: {
		title:    "🐌 Slow & Steady Story Time",
		category: "pace",
		instructions: []string{
			"Choose a childhood memory or favorite movie",
			"Set a timer for 3 minutes",
			"Tell the story, deliberately pausing between sentences",
			"Focus on speaking slower than feels natural",
			"Record and listen back for pace",
		},
		tips: []string{
			"Imagine you're explaining to someone who doesn't speak your language well",
			`Use the "dot dot dot" method - pause where you see periods`,
		},
	},
	analysis.WeaknessClarity: {
		title:    "🎯 Crystal Clear Challenge",
		category: "clarity",
		instructions: []string{
			"Read a news article paragraph out loud",
			"Exaggerate your mouth movements",
			"Focus on pronouncing every consonant clearly",
			"Record yourself reading it",
			"Compare with normal speech",
		},
		tips: []string{
			"Pretend you're speaking to someone across a noisy room",
			"Focus on moving your lips and tongue more than usual",
		},
	},
	analysis.WeaknessFillers: {
		title:    "🚫 Filler-Free Challenge",
		category: "confidence",
		instructions: []string{
			"Choose a topic you know well",
			"Speak for 2 minutes about it",
			`When you want to say "um" or "uh", pause instead`,
			"Count how many times you catch yourself",
			"Try again, aiming for fewer pauses",
		},
		tips: []string{
			"Silence is better than filler words",
			`Practice the "power pause" - count to 2 before continuing`,
		},
	},
}

// customExercise picks a template for the most common weakness and scales
// its length to the user's level. Unknown weaknesses get the clarity drill.
func customExercise(id string, t *userTrends) models.PracticeIdea {
	weakness := ""
	if len(t.commonWeaknesses) > 0 {
		weakness = t.commonWeaknesses[0]
	}
	tpl, ok := exerciseTemplates[weakness]
	if !ok {
		tpl = exerciseTemplates[analysis.WeaknessClarity]
	}

	focus := "your speaking skills"
	if weakness != "" {
		focus = strings.ToLower(weakness)
	}
	level := userLevel(t.totalSessions)
	duration := 10
	switch level {
	case LevelBeginner:
		duration = 5
	case LevelIntermediate:
		duration = 7
	}

	return models.PracticeIdea{
		ID:           id,
		Title:        tpl.title,
		Description:  "A personalized exercise to help with " + focus,
		Duration:     duration,
		Difficulty:   level,
		Category:     tpl.category,
		Instructions: append([]string(nil), tpl.instructions...),
		Tips:         append([]string(nil), tpl.tips...),
	}
}

func onboardingInsight(userID string) *models.CoachingInsight {
	return &models.CoachingInsight{
		UserID:              userID,
		WhatWorking:         "Welcome to Nena! You're taking the first step toward becoming a more confident speaker, which is already amazing progress.",
		ImprovementArea:     "Let's start with getting comfortable with recording yourself and hearing your own voice.",
		SpecificTip:         "For your first recording, just introduce yourself and talk about something you love for 2 minutes. Don't worry about being perfect!",
		MotivationalMessage: "Every expert was once a beginner. You've got this! 🌟",
		CustomExercise: models.PracticeIdea{
			ID:          "new-user-intro",
			Title:       "👋 Your First Speaking Adventure",
			Description: "A gentle introduction to get you started with confidence",
			Duration:    3,
			Difficulty:  LevelBeginner,
			Category:    "confidence",
			Instructions: []string{
				"Find a quiet, comfortable space",
				"Introduce yourself to the camera/microphone",
				"Talk about your favorite hobby or interest",
				"Don't worry about mistakes - just be yourself!",
				"Celebrate completing your first recording!",
			},
			Tips: []string{
				"Smile while speaking - it comes through in your voice",
				"Remember: this is just for you to learn and grow",
			},
		},
		Source: models.SourceOnboarding,
	}
}

// fallbackInsight is built from the trends alone and never calls out.
func fallbackInsight(userID, exerciseID string, t *userTrends) *models.CoachingInsight {
	return &models.CoachingInsight{
		UserID:              userID,
		WhatWorking:         "You're consistently working on your speaking skills, and that dedication is going to pay off!",
		ImprovementArea:     "Keep focusing on the fundamentals - clarity, pace, and confidence all work together.",
		SpecificTip:         "Try recording yourself reading something interesting out loud for 3 minutes, focusing on clear pronunciation.",
		MotivationalMessage: "Progress isn't always linear, but it's always happening. Keep practicing!",
		CustomExercise:      customExercise(exerciseID, t),
		Source:              models.SourceFallback,
	}
}

func defaultPracticeIdeas(t *userTrends) []models.PracticeIdea {
	level := userLevel(t.totalSessions)
	return []models.PracticeIdea{
		{
			ID:          "storytelling-basics",
			Title:       "📚 Story Time Challenge",
			Description: "Practice storytelling with a simple, engaging narrative",
			Duration:    5,
			Difficulty:  level,
			Category:    "storytelling",
			Instructions: []string{
				"Think of a funny or interesting thing that happened to you recently",
				"Structure it: setup, what happened, how it ended",
				"Tell it like you're talking to a friend",
				"Focus on being engaging rather than perfect",
			},
			Tips: []string{
				"Use your hands and facial expressions",
				"Vary your tone to keep it interesting",
			},
		},
		{
			ID:          "confidence-booster",
			Title:       "💪 Power Pose & Speak",
			Description: "Build confidence through body language and positive affirmations",
			Duration:    3,
			Difficulty:  LevelBeginner,
			Category:    "confidence",
			Instructions: []string{
				"Stand in a power pose (hands on hips, chest out) for 30 seconds",
				"Look in the mirror and give yourself a compliment",
				"Record yourself sharing 3 things you're good at",
				"Speak with the same confident posture",
			},
			Tips: []string{
				"Your body language affects how you sound",
				"Confidence is a skill you can practice",
			},
		},
		{
			ID:          "pace-control",
			Title:       "🎵 Rhythm & Flow Practice",
			Description: "Master your speaking pace with rhythm exercises",
			Duration:    7,
			Difficulty:  level,
			Category:    "pace",
			Instructions: []string{
				"Choose a topic you know well",
				"Speak about it for 1 minute at normal pace",
				"Repeat the same content speaking slower",
				"Then try it slightly faster but still clear",
				"Find your optimal pace",
			},
			Tips: []string{
				"Imagine you're a news anchor delivering important information",
				"Pace isn't just speed - it's about rhythm and pauses",
			},
		},
	}
}
