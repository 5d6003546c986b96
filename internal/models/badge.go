package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

type BadgeCategory string

const (
	CategoryMilestone   BadgeCategory = "milestone"
	CategoryConsistency BadgeCategory = "consistency"
	CategoryImprovement BadgeCategory = "improvement"
	CategorySpecial     BadgeCategory = "special"
)

func (c BadgeCategory) Valid() bool {
	switch c {
	case CategoryMilestone, CategoryConsistency, CategoryImprovement, CategorySpecial:
		return true
	}
	return false
}

// Criterion is one threshold of a badge. A badge unlocks when every one of
// its criteria holds.
type Criterion interface {
	Requirement() string
	criterion()
}

type RecordingsAtLeast struct{ Count int }

type StreakAtLeast struct{ Days int }

type AverageConfidenceAtLeast struct{ Min float64 }

type PaceInRange struct{ Min, Max float64 }

type FillerRateAtMost struct{ Max float64 }

type TotalMinutesAtLeast struct{ Minutes float64 }

// DistinctPracticeDays requires sessions on Days different calendar days
// within the last Days days.
type DistinctPracticeDays struct{ Days int }

// PracticedOnWeekday requires a session on Weekday within the last month.
type PracticedOnWeekday struct{ Weekday time.Weekday }

// MonthlySessions requires Goal sessions since the start of the current month.
type MonthlySessions struct{ Goal int }

// ImprovementRateAtLeast compares against the latest confidence delta.
type ImprovementRateAtLeast struct{ Rate float64 }

func (RecordingsAtLeast) criterion()        {}
func (StreakAtLeast) criterion()            {}
func (AverageConfidenceAtLeast) criterion() {}
func (PaceInRange) criterion()              {}
func (FillerRateAtMost) criterion()         {}
func (TotalMinutesAtLeast) criterion()      {}
func (DistinctPracticeDays) criterion()     {}
func (PracticedOnWeekday) criterion()       {}
func (MonthlySessions) criterion()          {}
func (ImprovementRateAtLeast) criterion()   {}

func (c RecordingsAtLeast) Requirement() string {
	if c.Count == 1 {
		return "Complete 1 recording"
	}
	return fmt.Sprintf("Complete %d recordings", c.Count)
}

func (c StreakAtLeast) Requirement() string {
	return fmt.Sprintf("Practice for %d days in a row", c.Days)
}

func (c AverageConfidenceAtLeast) Requirement() string {
	return fmt.Sprintf("Achieve %d%% average confidence", int(math.Round(c.Min*100)))
}

func (c PaceInRange) Requirement() string {
	return fmt.Sprintf("Speak at %s-%s words per minute", formatNumber(c.Min), formatNumber(c.Max))
}

func (c FillerRateAtMost) Requirement() string {
	return fmt.Sprintf("Reduce filler words to under %s per minute", formatNumber(c.Max))
}

func (c TotalMinutesAtLeast) Requirement() string {
	return fmt.Sprintf("Practice for %s total minutes", formatNumber(c.Minutes))
}

func (c DistinctPracticeDays) Requirement() string {
	return fmt.Sprintf("Practice consistently for %d different days", c.Days)
}

func (c PracticedOnWeekday) Requirement() string {
	return fmt.Sprintf("Practice on a %s", c.Weekday)
}

func (c MonthlySessions) Requirement() string {
	return fmt.Sprintf("Complete %d sessions in a month", c.Goal)
}

func (c ImprovementRateAtLeast) Requirement() string {
	return fmt.Sprintf("Improve confidence by %d%%", int(math.Round(c.Rate*100)))
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// Criteria is the conjunction of a badge's thresholds. It is stored as a
// JSON object keyed by threshold name.
type Criteria []Criterion

func (c Criteria) Requirement() string {
	parts := make([]string, 0, len(c))
	for _, cr := range c {
		parts = append(parts, cr.Requirement())
	}
	return strings.Join(parts, " and ")
}

type rangeDoc struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ceilingDoc struct {
	Max float64 `json:"max"`
}

type criteriaDoc struct {
	Recordings        *int        `json:"recordings,omitempty"`
	Streak            *int        `json:"streak,omitempty"`
	AverageConfidence *float64    `json:"averageConfidence,omitempty"`
	SpeakingPace      *rangeDoc   `json:"speakingPace,omitempty"`
	FillersPerMinute  *ceilingDoc `json:"fillersPerMinute,omitempty"`
	TotalMinutes      *float64    `json:"totalMinutes,omitempty"`
	ConsistentDays    *int        `json:"consistentDays,omitempty"`
	SpecificWeekday   *int        `json:"specificWeekday,omitempty"`
	MonthlyGoal       *int        `json:"monthlyGoal,omitempty"`
	ImprovementRate   *float64    `json:"improvementRate,omitempty"`
}

func (c Criteria) MarshalJSON() ([]byte, error) {
	var doc criteriaDoc
	for _, cr := range c {
		switch v := cr.(type) {
		case RecordingsAtLeast:
			doc.Recordings = &v.Count
		case StreakAtLeast:
			doc.Streak = &v.Days
		case AverageConfidenceAtLeast:
			doc.AverageConfidence = &v.Min
		case PaceInRange:
			doc.SpeakingPace = &rangeDoc{Min: v.Min, Max: v.Max}
		case FillerRateAtMost:
			doc.FillersPerMinute = &ceilingDoc{Max: v.Max}
		case TotalMinutesAtLeast:
			doc.TotalMinutes = &v.Minutes
		case DistinctPracticeDays:
			doc.ConsistentDays = &v.Days
		case PracticedOnWeekday:
			d := int(v.Weekday)
			doc.SpecificWeekday = &d
		case MonthlySessions:
			doc.MonthlyGoal = &v.Goal
		case ImprovementRateAtLeast:
			doc.ImprovementRate = &v.Rate
		default:
			return nil, fmt.Errorf("unknown criterion %T", cr)
		}
	}
	return json.Marshal(doc)
}

func (c *Criteria) UnmarshalJSON(data []byte) error {
	var doc criteriaDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	out := Criteria{}
	if doc.Recordings != nil {
		out = append(out, RecordingsAtLeast{Count: *doc.Recordings})
	}
	if doc.Streak != nil {
		out = append(out, StreakAtLeast{Days: *doc.Streak})
	}
	if doc.AverageConfidence != nil {
		out = append(out, AverageConfidenceAtLeast{Min: *doc.AverageConfidence})
	}
	if doc.SpeakingPace != nil {
		out = append(out, PaceInRange{Min: doc.SpeakingPace.Min, Max: doc.SpeakingPace.Max})
	}
	if doc.FillersPerMinute != nil {
		out = append(out, FillerRateAtMost{Max: doc.FillersPerMinute.Max})
	}
	if doc.TotalMinutes != nil {
		out = append(out, TotalMinutesAtLeast{Minutes: *doc.TotalMinutes})
	}
	if doc.ConsistentDays != nil {
		out = append(out, DistinctPracticeDays{Days: *doc.ConsistentDays})
	}
	if doc.SpecificWeekday != nil {
		if *doc.SpecificWeekday < 0 || *doc.SpecificWeekday > 6 {
			return fmt.Errorf("specificWeekday out of range: %d", *doc.SpecificWeekday)
		}
		out = append(out, PracticedOnWeekday{Weekday: time.Weekday(*doc.SpecificWeekday)})
	}
	if doc.MonthlyGoal != nil {
		out = append(out, MonthlySessions{Goal: *doc.MonthlyGoal})
	}
	if doc.ImprovementRate != nil {
		out = append(out, ImprovementRateAtLeast{Rate: *doc.ImprovementRate})
	}
	*c = out
	return nil
}

func (c Criteria) Value() (driver.Value, error) {
	b, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Criteria) Scan(src any) error {
	raw, err := columnBytes(src)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*c = Criteria{}
		return nil
	}
	return c.UnmarshalJSON(raw)
}

// Validate rejects thresholds that could never be evaluated sensibly.
func (c Criteria) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: badge needs at least one criterion", ErrInvalidInput)
	}
	for _, cr := range c {
		switch v := cr.(type) {
		case RecordingsAtLeast:
			if v.Count <= 0 {
				return fmt.Errorf("%w: recordings must be positive", ErrInvalidInput)
			}
		case StreakAtLeast:
			if v.Days <= 0 {
				return fmt.Errorf("%w: streak must be positive", ErrInvalidInput)
			}
		case AverageConfidenceAtLeast:
			if v.Min <= 0 || v.Min > 1 {
				return fmt.Errorf("%w: averageConfidence must be in (0,1]", ErrInvalidInput)
			}
		case PaceInRange:
			if v.Min < 0 || v.Max <= v.Min {
				return fmt.Errorf("%w: speakingPace needs 0 <= min < max", ErrInvalidInput)
			}
		case FillerRateAtMost:
			if v.Max <= 0 {
				return fmt.Errorf("%w: fillersPerMinute max must be positive", ErrInvalidInput)
			}
		case TotalMinutesAtLeast:
			if v.Minutes <= 0 {
				return fmt.Errorf("%w: totalMinutes must be positive", ErrInvalidInput)
			}
		case DistinctPracticeDays:
			if v.Days <= 0 {
				return fmt.Errorf("%w: consistentDays must be positive", ErrInvalidInput)
			}
		case PracticedOnWeekday:
			if v.Weekday < time.Sunday || v.Weekday > time.Saturday {
				return fmt.Errorf("%w: specificWeekday out of range", ErrInvalidInput)
			}
		case MonthlySessions:
			if v.Goal <= 0 {
				return fmt.Errorf("%w: monthlyGoal must be positive", ErrInvalidInput)
			}
		case ImprovementRateAtLeast:
			if v.Rate <= 0 {
				return fmt.Errorf("%w: improvementRate must be positive", ErrInvalidInput)
			}
		default:
			return fmt.Errorf("%w: unknown criterion %T", ErrInvalidInput, cr)
		}
	}
	return nil
}

type Badge struct {
	ID          string        `json:"id" gorm:"primaryKey;size:36"`
	Name        string        `json:"name" gorm:"uniqueIndex;size:128;not null"`
	Description string        `json:"description" gorm:"type:text"`
	Category    BadgeCategory `json:"category" gorm:"size:32;not null"`
	IconName    string        `json:"iconName" gorm:"size:64"`
	Criteria    Criteria      `json:"criteria" gorm:"type:text;not null"`
	IsActive    bool          `json:"isActive" gorm:"not null;default:true"`
	Position    int           `json:"-" gorm:"index"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type UserBadge struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	UserID     string    `json:"userId" gorm:"uniqueIndex:idx_user_badge,priority:1;size:128;not null"`
	BadgeID    string    `json:"badgeId" gorm:"uniqueIndex:idx_user_badge,priority:2;size:36;not null"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

type BadgeView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    BadgeCategory `json:"category"`
	IconName    string        `json:"iconName"`
	Icon        string        `json:"icon"`
}

type BadgeProgress struct {
	Badge       BadgeView  `json:"badge"`
	IsUnlocked  bool       `json:"isUnlocked"`
	Progress    int        `json:"progress"`
	Requirement string     `json:"requirement"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

var badgeIcons = map[string]string{
	"award":          "🏆",
	"play":           "▶️",
	"target":         "🎯",
	"star":           "⭐",
	"crown":          "👑",
	"calendar":       "📅",
	"flame":          "🔥",
	"trending-up":    "📈",
	"trophy":         "🏆",
	"smile":          "😊",
	"zap":            "⚡",
	"gauge":          "⏱️",
	"sparkles":       "✨",
	"check-circle":   "✅",
	"clock":          "🕐",
	"stopwatch":      "⏰",
	"sun":            "☀️",
	"coffee":         "☕",
	"calendar-check": "📋",
	"arrow-up":       "⬆️",
}

// BadgeIcon returns the glyph for iconName, or a lock while the badge is locked.
func BadgeIcon(iconName string, unlocked bool) string {
	if !unlocked {
		return "🔒"
	}
	if icon, ok := badgeIcons[iconName]; ok {
		return icon
	}
	return "🎖️"
}
