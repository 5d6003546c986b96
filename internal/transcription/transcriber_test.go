package transcription

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"nena/internal/models"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	vipb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

func TestEncoding(t *testing.T) {
	tests := []struct {
		mime string
		want speechpb.RecognitionConfig_AudioEncoding
	}{
		{"audio/wav", speechpb.RecognitionConfig_LINEAR16},
		{"audio/mp3", speechpb.RecognitionConfig_MP3},
		{"audio/mpeg", speechpb.RecognitionConfig_MP3},
		{"audio/m4a", speechpb.RecognitionConfig_MP3},
		{"audio/aac", speechpb.RecognitionConfig_MP3},
		{"audio/webm", speechpb.RecognitionConfig_WEBM_OPUS},
		{"audio/webm;codecs=opus", speechpb.RecognitionConfig_WEBM_OPUS},
		{"AUDIO/OGG", speechpb.RecognitionConfig_OGG_OPUS},
		{"audio/flac", speechpb.RecognitionConfig_ENCODING_UNSPECIFIED},
		{"", speechpb.RecognitionConfig_ENCODING_UNSPECIFIED},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, Encoding(tt.mime))
		})
	}
}

func TestSampleRate(t *testing.T) {
	assert.Equal(t, int32(44100), SampleRate("audio/wav"))
	assert.Equal(t, int32(48000), SampleRate("audio/webm"))
	assert.Equal(t, int32(16000), SampleRate("audio/mpeg"))
	assert.Equal(t, int32(16000), SampleRate(""))
}

func TestRoute(t *testing.T) {
	const limit = 10 << 20
	assert.Equal(t, RouteVideo, Route("video/mp4", 10, limit))
	assert.Equal(t, RouteVideo, Route("video/quicktime", limit*3, limit))
	assert.Equal(t, RouteInline, Route("audio/wav", limit, limit))
	assert.Equal(t, RouteStaged, Route("audio/wav", limit+1, limit))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil))
	assert.ErrorIs(t, classify(status.Error(codes.ResourceExhausted, "slow down")), models.ErrQuotaExceeded)
	assert.ErrorIs(t, classify(fmt.Errorf("wrapped: %w", status.Error(codes.ResourceExhausted, "x"))), models.ErrQuotaExceeded)
	assert.ErrorIs(t, classify(errors.New("Quota exceeded for project")), models.ErrQuotaExceeded)
	assert.ErrorIs(t, classify(status.Error(codes.InvalidArgument, "bad encoding")), models.ErrUnsupportedMedia)
	assert.ErrorIs(t, classify(models.ErrNoSpeech), models.ErrNoSpeech)

	other := errors.New("connection reset")
	assert.Equal(t, other, classify(other))
}

func TestClassify_Transient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"context deadline", fmt.Errorf("recognize: %w", context.DeadlineExceeded), models.ErrUpstreamTimeout},
		{"grpc deadline", status.Error(codes.DeadlineExceeded, "deadline"), models.ErrUpstreamTimeout},
		{"wrapped grpc deadline", fmt.Errorf("poll: %w", status.Error(codes.DeadlineExceeded, "deadline")), models.ErrUpstreamTimeout},
		{"grpc unavailable", status.Error(codes.Unavailable, "connection refused"), models.ErrUpstreamUnavailable},
		{"grpc aborted", status.Error(codes.Aborted, "retry"), models.ErrUpstreamUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.NotErrorIs(t, got, models.ErrQuotaExceeded)
			assert.NotErrorIs(t, got, models.ErrNoSpeech)
		})
	}
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Transcribe(context.Background(), []byte("x"), "audio/wav")
	assert.ErrorIs(t, err, ErrDisabled)
}

func dur(sec float64) *durationpb.Duration {
	return durationpb.New(time.Duration(sec * float64(time.Second)))
}

func TestFromSpeechResults(t *testing.T) {
	results := []*speechpb.SpeechRecognitionResult{
		{Alternatives: []*speechpb.SpeechRecognitionAlternative{{
			Transcript: "Hello there.",
			Confidence: 0.9,
			Words: []*speechpb.WordInfo{
				{Word: "Hello", StartTime: dur(0), EndTime: dur(0.4)},
				{Word: "there.", StartTime: dur(0.5), EndTime: dur(0.9)},
			},
		}}},
		{Alternatives: []*speechpb.SpeechRecognitionAlternative{{
			Transcript: " How are you ",
			Words:      []*speechpb.WordInfo{{Word: "How", StartTime: dur(2), EndTime: dur(2.25)}},
		}}},
		{},
	}

	tr, err := fromSpeechResults(results)
	require.NoError(t, err)
	assert.Equal(t, "Hello there. How are you", tr.Text)
	assert.InDelta(t, 0.45, tr.Confidence, 1e-6)
	require.Len(t, tr.Words, 3)
	assert.Equal(t, models.Word{Text: "How", Start: 2, End: 2.25}, tr.Words[2])
}

func TestFromSpeechResults_NoSpeech(t *testing.T) {
	_, err := fromSpeechResults(nil)
	assert.ErrorIs(t, err, models.ErrNoSpeech)

	_, err = fromSpeechResults([]*speechpb.SpeechRecognitionResult{
		{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "  "}}},
	})
	assert.ErrorIs(t, err, models.ErrNoSpeech)
}

func videoResponse(alts ...*vipb.SpeechRecognitionAlternative) *vipb.AnnotateVideoResponse {
	var ts []*vipb.SpeechTranscription
	for _, a := range alts {
		ts = append(ts, &vipb.SpeechTranscription{Alternatives: []*vipb.SpeechRecognitionAlternative{a}})
	}
	return &vipb.AnnotateVideoResponse{
		AnnotationResults: []*vipb.VideoAnnotationResults{{SpeechTranscriptions: ts}},
	}
}

func TestFromVideoAnnotation(t *testing.T) {
	resp := videoResponse(
		&vipb.SpeechRecognitionAlternative{
			Transcript: "first part",
			Confidence: 0.8,
			Words:      []*vipb.WordInfo{{Word: "first", StartTime: dur(1), EndTime: dur(1.5)}},
		},
		&vipb.SpeechRecognitionAlternative{Transcript: "second part"},
	)

	tr, err := fromVideoAnnotation(resp)
	require.NoError(t, err)
	assert.Equal(t, "first part second part", tr.Text)
	assert.InDelta(t, 0.8, tr.Confidence, 1e-6, "unreported confidence is skipped")
	require.Len(t, tr.Words, 1)
	assert.Equal(t, 1.5, tr.Words[0].End)
}

func TestFromVideoAnnotation_DefaultConfidence(t *testing.T) {
	tr, err := fromVideoAnnotation(videoResponse(&vipb.SpeechRecognitionAlternative{Transcript: "hi"}))
	require.NoError(t, err)
	assert.Equal(t, DefaultVideoConfidence, tr.Confidence)
}

func TestFromVideoAnnotation_NoSpeech(t *testing.T) {
	_, err := fromVideoAnnotation(nil)
	assert.ErrorIs(t, err, models.ErrNoSpeech)

	_, err = fromVideoAnnotation(&vipb.AnnotateVideoResponse{})
	assert.ErrorIs(t, err, models.ErrNoSpeech)

	_, err = fromVideoAnnotation(videoResponse())
	assert.ErrorIs(t, err, models.ErrNoSpeech)
}

func TestObjectKey(t *testing.T) {
	a := objectKey("video/mp4")
	b := objectKey("video/mp4")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^uploads/[0-9a-f-]{36}`, a)
}
