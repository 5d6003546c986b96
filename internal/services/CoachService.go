package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"nena/internal/generation"
	"nena/internal/models"
	"nena/internal/providers"
	"nena/internal/store"
	"nena/internal/structures"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	TrendBaseline  = "Building baseline"
	TrendStarting  = "Starting strong"
	TrendUpward    = "Trending upward"
	TrendDownward  = "Some recent challenges"
	TrendSteady    = "Staying consistent"
	trendThreshold = 5.0
	trendWindow    = 3
	maxHistory     = 10
	commonLimit    = 3
)

const (
	markerWorking    = "WHAT'S WORKING:"
	markerFocus      = "FOCUS AREA:"
	markerTip        = "SPECIFIC TIP:"
	markerMotivation = "MOTIVATION:"
)

type CoachServiceInterface interface {
	// GenerateFeedback composes a fresh coaching insight. Generation failures
	// resolve to a deterministic fallback; only store failures are returned.
	GenerateFeedback(ctx context.Context, userID string) (*models.CoachingInsight, error)
	// LatestInsight returns the stored insight, composing and storing one
	// when the user has none yet.
	LatestInsight(ctx context.Context, userID string) (*models.CoachingInsight, error)
	PracticeIdeas(ctx context.Context, userID string, count int) ([]models.PracticeIdea, error)
}

type CoachService struct {
	store     store.RecordStore
	generator generation.Generator
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	history   int
	ideas     int
	now       func() time.Time
}

// userTrends summarizes recent sessions, oldest first.
type userTrends struct {
	confidence        []float64
	pace              []float64
	clarity           []float64
	fillerRates       []float64
	commonWeaknesses  []string
	recentStrengths   []string
	practiceFrequency int
	totalSessions     int
}

func (s *CoachService) analyzeTrends(ctx context.Context, userID string) (*userTrends, error) {
	recs, err := s.store.RecentRecordings(ctx, userID, s.history)
	if err != nil {
		return nil, fmt.Errorf("load recent recordings: %w", err)
	}
	a, err := s.store.GetAnalytics(ctx, userID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("load analytics: %w", err)
	}

	t := &userTrends{}
	if a != nil {
		t.totalSessions = a.TotalRecordings
	}

	var weaknesses, strengths []string
	weekAgo := s.now().AddDate(0, 0, -7)
	for _, r := range recs {
		weaknesses = append(weaknesses, r.Weaknesses...)
		strengths = append(strengths, r.Strengths...)
		if r.CreatedAt.After(weekAgo) {
			t.practiceFrequency++
		}
	}
	t.commonWeaknesses = mostCommon(weaknesses, commonLimit)
	t.recentStrengths = mostCommon(strengths, commonLimit)

	for i := len(recs) - 1; i >= 0; i-- {
		r := recs[i]
		t.confidence = append(t.confidence, r.Confidence)
		t.pace = append(t.pace, r.SpeakingPace)
		t.clarity = append(t.clarity, r.ClarityScore)
		t.fillerRates = append(t.fillerRates, r.FillerRate())
	}
	return t, nil
}

// mostCommon orders items by frequency; ties keep first-seen order.
func mostCommon(items []string, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, it := range items {
		if counts[it] == 0 {
			order = append(order, it)
		}
		counts[it]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// describeTrend compares the last three values against everything before
// them. values must be oldest first.
func describeTrend(values []float64) string {
	if len(values) < trendWindow {
		return TrendBaseline
	}
	recent := mean(values[len(values)-trendWindow:])
	earlier := values[:len(values)-trendWindow]
	if len(earlier) == 0 {
		return TrendStarting
	}
	base := mean(earlier)
	if base == 0 {
		if recent > 0 {
			return TrendUpward
		}
		return TrendSteady
	}

	change := (recent - base) / base * 100
	switch {
	case change > trendThreshold:
		return TrendUpward
	case change < -trendThreshold:
		return TrendDownward
	default:
		return TrendSteady
	}
}

func orDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

func coachingPrompt(t *userTrends) string {
	var b strings.Builder
	b.WriteString("You are Nena, an encouraging and expert AI speaking coach. Analyze this user's progress:\n\n")
	b.WriteString("USER DATA:\n")
	fmt.Fprintf(&b, "- Total practice sessions: %d\n", t.totalSessions)
	fmt.Fprintf(&b, "- Recent confidence average: %.1f%%\n", mean(t.confidence)*100)
	fmt.Fprintf(&b, "- Speaking pace average: %.0f WPM (optimal: 140-160)\n", mean(t.pace))
	fmt.Fprintf(&b, "- Filler words per minute: %.1f (goal: under 2)\n", mean(t.fillerRates))
	fmt.Fprintf(&b, "- Practice frequency: %d sessions this week\n", t.practiceFrequency)
	fmt.Fprintf(&b, "- Common challenges: %s\n", orDefault(t.commonWeaknesses, "None identified"))
	fmt.Fprintf(&b, "- Recent strengths: %s\n\n", orDefault(t.recentStrengths, "Building foundation"))
	fmt.Fprintf(&b, "CONFIDENCE TREND: %s\n", describeTrend(t.confidence))
	fmt.Fprintf(&b, "PACE TREND: %s\n\n", describeTrend(t.pace))
	b.WriteString("Provide coaching feedback in this EXACT format:\n\n")
	b.WriteString(markerWorking + " [2-3 sentences about their strengths and positive progress]\n\n")
	b.WriteString(markerFocus + " [1-2 sentences about their biggest opportunity for improvement]\n\n")
	b.WriteString(markerTip + " [1 actionable, specific technique they can try in their next session]\n\n")
	b.WriteString(markerMotivation + " [1-2 encouraging sentences that acknowledge their effort and progress]\n\n")
	b.WriteString("Keep the tone warm, encouraging, and professional. Be specific but not overwhelming.\n")
	return b.String()
}

// extractSection returns the text between start and end (or the end of the
// response when end is empty or missing).
func extractSection(text, start, end string) string {
	i := strings.Index(text, start)
	if i < 0 {
		return ""
	}
	rest := text[i+len(start):]
	if end != "" {
		if j := strings.Index(rest, end); j >= 0 {
			rest = rest[:j]
		}
	}
	return strings.TrimSpace(rest)
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseCoaching(response string) (working, focus, tip, motivation string) {
	working = withDefault(extractSection(response, markerWorking, markerFocus), defaultWhatWorking)
	focus = withDefault(extractSection(response, markerFocus, markerTip), defaultFocusArea)
	tip = withDefault(extractSection(response, markerTip, markerMotivation), defaultTip)
	motivation = withDefault(extractSection(response, markerMotivation, ""), defaultMotivation)
	return
}

func (s *CoachService) GenerateFeedback(ctx context.Context, userID string) (*models.CoachingInsight, error) {
	trends, err := s.analyzeTrends(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	var ins *models.CoachingInsight
	if trends.totalSessions == 0 {
		ins = onboardingInsight(userID)
	} else {
		ins = s.compose(ctx, userID, trends)
	}
	ins.GeneratedAt = now
	s.metrics.IncCoachingInsights(string(ins.Source))
	return ins, nil
}

func (s *CoachService) compose(ctx context.Context, userID string, trends *userTrends) *models.CoachingInsight {
	exerciseID := "custom-" + uuid.NewString()
	response, err := s.generator.Generate(ctx, coachingPrompt(trends))
	if err != nil {
		s.logger.Warnf(providers.TypeWorker, "Coaching generation for user %s failed, using fallback: %v", userID, err)
		return fallbackInsight(userID, exerciseID, trends)
	}

	working, focus, tip, motivation := parseCoaching(response)
	return &models.CoachingInsight{
		UserID:              userID,
		WhatWorking:         working,
		ImprovementArea:     focus,
		SpecificTip:         tip,
		MotivationalMessage: motivation,
		CustomExercise:      customExercise(exerciseID, trends),
		Source:              models.SourceGenerated,
	}
}

func (s *CoachService) LatestInsight(ctx context.Context, userID string) (*models.CoachingInsight, error) {
	ins, err := s.store.LatestCoachingInsight(ctx, userID)
	if err == nil {
		return ins, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("latest insight: %w", err)
	}

	ins, err = s.GenerateFeedback(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveCoachingInsight(ctx, ins); err != nil {
		s.logger.Errorf(providers.TypeApp, "Store coaching insight for user %s: %v", userID, err)
	}
	return ins, nil
}

func practiceIdeasPrompt(t *userTrends, count int) string {
	recent := t.confidence
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	var b strings.Builder
	b.WriteString("Based on this user's speaking practice data:\n")
	fmt.Fprintf(&b, "- Average confidence: %.1f%%\n", mean(recent)*100)
	fmt.Fprintf(&b, "- Common weaknesses: %s\n", strings.Join(t.commonWeaknesses, ", "))
	fmt.Fprintf(&b, "- Practice level: %s\n", userLevel(t.totalSessions))
	fmt.Fprintf(&b, "- Sessions completed: %d\n\n", t.totalSessions)
	fmt.Fprintf(&b, "Generate %d personalized practice exercises in JSON format. Each should have:\n", count)
	b.WriteString("- title: Fun, engaging title\n")
	b.WriteString("- description: Brief description (1-2 sentences)\n")
	b.WriteString("- duration: Time in minutes (5-15)\n")
	b.WriteString("- difficulty: beginner/intermediate/advanced\n")
	b.WriteString("- category: confidence/pace/clarity/storytelling/presentation\n")
	b.WriteString("- instructions: Array of 3-5 step-by-step instructions\n")
	b.WriteString("- tips: Array of 2-3 helpful tips\n\n")
	b.WriteString("Make exercises specific to their weaknesses but keep them fun and achievable.\n")
	b.WriteString("Use encouraging language and creative scenarios.\n\n")
	b.WriteString("Return only valid JSON array.\n")
	return b.String()
}

// parsePracticeIdeas decodes the outermost JSON array in response. Ideas
// without a title are dropped.
func parsePracticeIdeas(response string) ([]models.PracticeIdea, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON array in response")
	}

	var raw []models.PracticeIdea
	if err := json.Unmarshal([]byte(response[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode practice ideas: %w", err)
	}
	out := make([]models.PracticeIdea, 0, len(raw))
	for _, idea := range raw {
		if strings.TrimSpace(idea.Title) != "" {
			out = append(out, idea)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no usable practice ideas")
	}
	return out, nil
}

func (s *CoachService) PracticeIdeas(ctx context.Context, userID string, count int) ([]models.PracticeIdea, error) {
	if count <= 0 {
		count = s.ideas
	}
	trends, err := s.analyzeTrends(ctx, userID)
	if err != nil {
		return nil, err
	}

	ideas, err := s.generateIdeas(ctx, userID, trends, count)
	if err != nil {
		s.logger.Warnf(providers.TypeWorker, "Practice ideas for user %s fell back to defaults: %v", userID, err)
		ideas = defaultPracticeIdeas(trends)
	}
	if len(ideas) > count {
		ideas = ideas[:count]
	}
	return ideas, nil
}

func (s *CoachService) generateIdeas(ctx context.Context, userID string, trends *userTrends, count int) ([]models.PracticeIdea, error) {
	response, err := s.generator.Generate(ctx, practiceIdeasPrompt(trends, count))
	if err != nil {
		return nil, err
	}
	ideas, err := parsePracticeIdeas(response)
	if err != nil {
		return nil, err
	}

	stamp := s.now().UnixMilli()
	level := userLevel(trends.totalSessions)
	for i := range ideas {
		ideas[i].ID = fmt.Sprintf("exercise-%s-%d-%d", userID, stamp, i)
		if ideas[i].Difficulty == "" {
			ideas[i].Difficulty = level
		}
	}
	return ideas, nil
}

func NewCoachService(conf *structures.Config, rs store.RecordStore, generator generation.Generator, logger providers.Logger, metrics providers.MetricsProviderInterface) CoachServiceInterface {
	history := conf.Coaching.HistorySize
	if history <= 0 || history > maxHistory {
		history = maxHistory
	}
	ideas := conf.Coaching.PracticeIdeas
	if ideas <= 0 {
		ideas = 3
	}
	return &CoachService{
		store:     rs,
		generator: generator,
		logger:    logger,
		metrics:   metrics,
		history:   history,
		ideas:     ideas,
		now:       time.Now,
	}
}
