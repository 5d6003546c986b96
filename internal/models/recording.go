package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// Word is a single transcribed token with offsets in seconds from the start
// of the media.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type Transcript struct {
	Text       string  `json:"text"`
	Words      []Word  `json:"words"`
	Confidence float64 `json:"confidence"`
}

// SpeechMetrics is the quantitative summary of one transcript.
type SpeechMetrics struct {
	WordCount       int     `json:"wordCount"`
	SpeakingPace    float64 `json:"speakingPace"`
	FillerWordCount int     `json:"fillerWordCount"`
	ClarityScore    float64 `json:"clarityScore"`
	SentimentScore  float64 `json:"sentimentScore"`
	PauseCount      int     `json:"pauseCount"`
	AveragePause    float64 `json:"averagePause"`
}

type Insights struct {
	PrimaryInsight  string   `json:"primaryInsight"`
	ImprovementTips []string `json:"improvementTips"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
}

type AnalysisResult struct {
	Transcript string  `json:"transcription"`
	Confidence float64 `json:"confidence"`
	SpeechMetrics
	Insights
}

// StringList is a string slice stored as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	raw, err := columnBytes(src)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

func columnBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", src)
	}
}

// Recording is one analyzed session. It is never mutated once stored.
type Recording struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36"`
	UserID          string     `json:"userId" gorm:"index:idx_recordings_user_created,priority:1;size:128;not null"`
	CreatedAt       time.Time  `json:"createdAt" gorm:"index:idx_recordings_user_created,priority:2;not null"`
	MimeType        string     `json:"mimeType" gorm:"size:128"`
	Duration        float64    `json:"duration"`
	Transcript      string     `json:"transcription" gorm:"type:text"`
	Confidence      float64    `json:"confidence"`
	SpeakingPace    float64    `json:"speakingPace"`
	ClarityScore    float64    `json:"clarityScore"`
	SentimentScore  float64    `json:"sentimentScore"`
	FillerWordCount int        `json:"fillerWordCount"`
	PauseCount      int        `json:"pauseCount"`
	AveragePause    float64    `json:"averagePause"`
	PrimaryInsight  string     `json:"primaryInsight" gorm:"type:text"`
	ImprovementTips StringList `json:"improvementTips" gorm:"type:text"`
	Strengths       StringList `json:"strengths" gorm:"type:text"`
	Weaknesses      StringList `json:"weaknesses" gorm:"type:text"`
}

// FillerRate returns filler words per minute over the recording duration.
func (r *Recording) FillerRate() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.FillerWordCount) / (r.Duration / 60)
}

func (r *Recording) Sample() SessionSample {
	return SessionSample{
		Duration:   r.Duration,
		Confidence: r.Confidence,
		Pace:       r.SpeakingPace,
		Clarity:    r.ClarityScore,
		FillerRate: r.FillerRate(),
	}
}

type RecentRecording struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	Duration       float64   `json:"duration"`
	Confidence     float64   `json:"confidence"`
	PrimaryInsight string    `json:"primaryInsight"`
	Score          int       `json:"score"`
}

type ProgressPoint struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Month int    `json:"month"`
	Year  int    `json:"year"`
}
