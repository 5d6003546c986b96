package transcription

import (
	"strings"

	"nena/internal/models"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	vipb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"google.golang.org/protobuf/types/known/durationpb"
)

// DefaultVideoConfidence is used when video transcription reports no
// confidence for any segment.
const DefaultVideoConfidence = 0.75

func seconds(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return d.AsDuration().Seconds()
}

// fromSpeechResults joins the top alternative of every result. Confidence
// is the mean over results, counting a missing value as zero.
func fromSpeechResults(results []*speechpb.SpeechRecognitionResult) (*models.Transcript, error) {
	var (
		texts []string
		words []models.Word
		sum   float64
		n     int
	)
	for _, r := range results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		alt := r.Alternatives[0]
		n++
		sum += float64(alt.Confidence)
		if t := strings.TrimSpace(alt.Transcript); t != "" {
			texts = append(texts, t)
		}
		for _, w := range alt.Words {
			if w == nil {
				continue
			}
			words = append(words, models.Word{Text: w.Word, Start: seconds(w.StartTime), End: seconds(w.EndTime)})
		}
	}
	if n == 0 || len(texts) == 0 {
		return nil, models.ErrNoSpeech
	}
	return &models.Transcript{
		Text:       strings.Join(texts, " "),
		Words:      words,
		Confidence: sum / float64(n),
	}, nil
}

// fromVideoAnnotation reads the speech transcriptions of the first
// annotation result. Segments without a reported confidence do not count
// toward the mean.
func fromVideoAnnotation(resp *vipb.AnnotateVideoResponse) (*models.Transcript, error) {
	if resp == nil || len(resp.AnnotationResults) == 0 || resp.AnnotationResults[0] == nil {
		return nil, models.ErrNoSpeech
	}
	var (
		texts []string
		words []models.Word
		sum   float64
		n     int
	)
	for _, st := range resp.AnnotationResults[0].SpeechTranscriptions {
		if st == nil || len(st.Alternatives) == 0 || st.Alternatives[0] == nil {
			continue
		}
		alt := st.Alternatives[0]
		if t := strings.TrimSpace(alt.Transcript); t != "" {
			texts = append(texts, t)
		}
		if alt.Confidence > 0 {
			sum += float64(alt.Confidence)
			n++
		}
		for _, w := range alt.Words {
			if w == nil {
				continue
			}
			words = append(words, models.Word{Text: w.Word, Start: seconds(w.StartTime), End: seconds(w.EndTime)})
		}
	}
	if len(texts) == 0 {
		return nil, models.ErrNoSpeech
	}
	conf := DefaultVideoConfidence
	if n > 0 {
		conf = sum / float64(n)
	}
	return &models.Transcript{Text: strings.Join(texts, " "), Words: words, Confidence: conf}, nil
}
