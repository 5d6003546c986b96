package analysis

import (
	"fmt"
	"strings"

	"nena/internal/models"
)

const (
	StrengthClarity = "Excellent speech clarity"
	StrengthPace    = "Perfect speaking pace"
	StrengthFillers = "Great control of filler words"

	WeaknessClarity  = "Speech clarity could be improved"
	WeaknessFastPace = "Speaking too quickly"
	WeaknessSlowPace = "Speaking pace is quite slow"
	WeaknessFillers  = "Too many filler words"

	TipClarity  = "Try speaking more slowly and enunciating clearly"
	TipFastPace = "Slow down your pace - aim for 140-160 words per minute"
	TipSlowPace = "Try to increase your speaking pace slightly"
	TipFillers  = "Practice pausing instead of using filler words like 'um' and 'uh'"

	DefaultInsight = "Keep up the great work!"
)

const (
	confidenceStrong = 0.9
	confidenceWeak   = 0.7
	paceIdealMin     = 140.0
	paceIdealMax     = 160.0
	paceTooFast      = 180.0
	paceTooSlow      = 120.0
	fillerRateGood   = 2.0
	fillerRateBad    = 5.0
)

// Insights derives qualitative feedback from m and the raw transcription
// confidence. It returns models.ErrNoSpeech when m describes no words.
func Insights(m models.SpeechMetrics, confidence float64) (models.Insights, error) {
	if m.WordCount == 0 {
		return models.Insights{}, models.ErrNoSpeech
	}

	out := models.Insights{
		ImprovementTips: []string{},
		Strengths:       []string{},
		Weaknesses:      []string{},
	}

	switch {
	case confidence > confidenceStrong:
		out.Strengths = append(out.Strengths, StrengthClarity)
	case confidence < confidenceWeak:
		out.Weaknesses = append(out.Weaknesses, WeaknessClarity)
		out.ImprovementTips = append(out.ImprovementTips, TipClarity)
	}

	switch {
	case m.SpeakingPace >= paceIdealMin && m.SpeakingPace <= paceIdealMax:
		out.Strengths = append(out.Strengths, StrengthPace)
	case m.SpeakingPace > paceTooFast:
		out.Weaknesses = append(out.Weaknesses, WeaknessFastPace)
		out.ImprovementTips = append(out.ImprovementTips, TipFastPace)
	case m.SpeakingPace < paceTooSlow:
		out.Weaknesses = append(out.Weaknesses, WeaknessSlowPace)
		out.ImprovementTips = append(out.ImprovementTips, TipSlowPace)
	}

	switch rate := EstimatedFillerRate(m); {
	case rate < fillerRateGood:
		out.Strengths = append(out.Strengths, StrengthFillers)
	case rate > fillerRateBad:
		out.Weaknesses = append(out.Weaknesses, WeaknessFillers)
		out.ImprovementTips = append(out.ImprovementTips, TipFillers)
	}

	out.PrimaryInsight = primaryInsight(out.Strengths, out.Weaknesses)
	return out, nil
}

// EstimatedFillerRate is fillers per minute over the speaking time implied
// by the word count and pace.
func EstimatedFillerRate(m models.SpeechMetrics) float64 {
	pace := m.SpeakingPace
	if pace <= 0 {
		pace = DefaultPace
	}
	minutes := float64(m.WordCount) / pace
	if minutes <= 0 {
		return 0
	}
	return float64(m.FillerWordCount) / minutes
}

func primaryInsight(strengths, weaknesses []string) string {
	if len(strengths) > len(weaknesses) {
		return fmt.Sprintf("Your %s really shines through!", strings.ToLower(strengths[0]))
	}
	if len(weaknesses) > 0 {
		return fmt.Sprintf("Focus on %s for your next session", strings.ToLower(weaknesses[0]))
	}
	return DefaultInsight
}

// Analyze runs extraction and insight generation over one transcript.
func Analyze(t models.Transcript) (*models.AnalysisResult, error) {
	m := Extract(t)
	ins, err := Insights(m, t.Confidence)
	if err != nil {
		return nil, err
	}
	return &models.AnalysisResult{
		Transcript:    strings.TrimSpace(t.Text),
		Confidence:    t.Confidence,
		SpeechMetrics: m,
		Insights:      ins,
	}, nil
}
