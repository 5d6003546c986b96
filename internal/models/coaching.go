package models

import (
	"database/sql/driver"
	"time"

	json "github.com/goccy/go-json"
)

type InsightSource string

const (
	SourceOnboarding InsightSource = "onboarding"
	SourceGenerated  InsightSource = "generated"
	SourceFallback   InsightSource = "fallback"
)

type PracticeIdea struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Duration     int      `json:"duration"`
	Difficulty   string   `json:"difficulty"`
	Category     string   `json:"category"`
	Instructions []string `json:"instructions"`
	Tips         []string `json:"tips"`
}

func (p PracticeIdea) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *PracticeIdea) Scan(src any) error {
	raw, err := columnBytes(src)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*p = PracticeIdea{}
		return nil
	}
	return json.Unmarshal(raw, p)
}

// CoachingInsight is the latest composed coaching message for a user.
type CoachingInsight struct {
	UserID              string        `json:"userId" gorm:"primaryKey;size:128"`
	WhatWorking         string        `json:"whatWorking" gorm:"type:text"`
	ImprovementArea     string        `json:"improvementArea" gorm:"type:text"`
	SpecificTip         string        `json:"specificTip" gorm:"type:text"`
	MotivationalMessage string        `json:"motivationalMessage" gorm:"type:text"`
	CustomExercise      PracticeIdea  `json:"customExercise" gorm:"type:text"`
	Source              InsightSource `json:"source" gorm:"size:16"`
	GeneratedAt         time.Time     `json:"generatedAt"`
}

type Dashboard struct {
	Stats            *UserAnalytics    `json:"stats"`
	RecentRecordings []RecentRecording `json:"recentRecordings"`
	Progress         []ProgressPoint   `json:"progressData"`
	Badges           []BadgeProgress   `json:"badges"`
	Coaching         *CoachingInsight  `json:"coachingInsight"`
	PracticeIdeas    []PracticeIdea    `json:"practiceIdeas"`
}
