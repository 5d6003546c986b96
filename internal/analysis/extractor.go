// Package analysis turns a transcript into speech metrics and coaching
// insights. Everything here is pure and safe for concurrent use.
package analysis

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"nena/internal/models"
)

const (
	DefaultPace       = 150.0
	NeutralSentiment  = 0.5
	pauseThreshold    = 0.5
	shortWordMaxLen   = 2
	shortWordRatioMax = 0.3
	clarityPenalty    = 0.9
	sentimentStep     = 0.1
)

var FillerWords = []string{"um", "uh", "like", "you know", "so", "actually", "basically", "literally"}

var fillerPatterns = compileFillers(FillerWords)

var (
	positiveWords = []string{"good", "great", "excellent", "amazing", "wonderful", "fantastic", "love", "enjoy"}
	negativeWords = []string{"bad", "terrible", "awful", "hate", "horrible", "worst", "stupid", "annoying"}
)

func compileFillers(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return out
}

// Extract computes the metrics bundle for t. An empty transcript yields
// neutral values; callers decide whether that is an error.
func Extract(t models.Transcript) models.SpeechMetrics {
	tokens := strings.Fields(t.Text)
	if len(tokens) == 0 {
		return models.SpeechMetrics{
			SpeakingPace:   DefaultPace,
			SentimentScore: NeutralSentiment,
		}
	}

	pauses, avgPause := Pauses(t.Words)
	return models.SpeechMetrics{
		WordCount:       len(tokens),
		SpeakingPace:    Pace(t.Words),
		FillerWordCount: CountFillers(t.Text),
		ClarityScore:    Clarity(t.Confidence, tokens),
		SentimentScore:  Sentiment(tokens),
		PauseCount:      pauses,
		AveragePause:    avgPause,
	}
}

// Pace returns words per minute over the timed span of words, or DefaultPace
// when the span cannot be determined.
func Pace(words []models.Word) float64 {
	if len(words) < 2 {
		return DefaultPace
	}
	minutes := (words[len(words)-1].End - words[0].Start) / 60
	if minutes <= 0 {
		return DefaultPace
	}
	return math.Round(float64(len(words)) / minutes)
}

func CountFillers(text string) int {
	count := 0
	for _, re := range fillerPatterns {
		count += len(re.FindAllStringIndex(text, -1))
	}
	return count
}

func Clarity(confidence float64, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	short := 0
	for _, tok := range tokens {
		if len([]rune(tok)) <= shortWordMaxLen {
			short++
		}
	}
	score := confidence
	if float64(short)/float64(len(tokens)) > shortWordRatioMax {
		score *= clarityPenalty
	}
	return clamp01(score)
}

// Sentiment scores each distinct lexicon word present in tokens once.
func Sentiment(tokens []string) float64 {
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		w := strings.TrimFunc(strings.ToLower(tok), func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if w != "" {
			seen[w] = struct{}{}
		}
	}
	balance := 0
	for _, w := range positiveWords {
		if _, ok := seen[w]; ok {
			balance++
		}
	}
	for _, w := range negativeWords {
		if _, ok := seen[w]; ok {
			balance--
		}
	}
	return clamp01(NeutralSentiment + float64(balance)*sentimentStep)
}

// Pauses counts inter-word gaps longer than half a second and returns their
// mean length.
func Pauses(words []models.Word) (int, float64) {
	count := 0
	total := 0.0
	for i := 1; i < len(words); i++ {
		gap := words[i].Start - words[i-1].End
		if gap > pauseThreshold {
			count++
			total += gap
		}
	}
	if count == 0 {
		return 0, 0
	}
	return count, total / float64(count)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
