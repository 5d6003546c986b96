// Package transcription turns uploaded audio or video into a timed transcript.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nena/internal/models"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Transcriber recognizes speech in media of the given MIME type.
type Transcriber interface {
	Transcribe(ctx context.Context, media []byte, mimeType string) (*models.Transcript, error)
}

var ErrDisabled = errors.New("speech recognition is not configured")

// Disabled rejects every request. It is used when speech.enabled is false.
type Disabled struct{}

func (Disabled) Transcribe(context.Context, []byte, string) (*models.Transcript, error) {
	return nil, ErrDisabled
}

const (
	RouteInline = "inline"
	RouteStaged = "staged"
	RouteVideo  = "video"
)

func normalizeMime(mimeType string) string {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	return m
}

func IsVideo(mimeType string) bool {
	return strings.HasPrefix(normalizeMime(mimeType), "video/")
}

// Encoding maps an audio MIME type onto the recognizer's encoding enum.
// Unknown types are left for the service to detect.
func Encoding(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	switch normalizeMime(mimeType) {
	case "audio/wav", "audio/wave", "audio/x-wav":
		return speechpb.RecognitionConfig_LINEAR16
	case "audio/mp3", "audio/mpeg", "audio/m4a", "audio/aac":
		return speechpb.RecognitionConfig_MP3
	case "audio/webm":
		return speechpb.RecognitionConfig_WEBM_OPUS
	case "audio/ogg":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func SampleRate(mimeType string) int32 {
	m := normalizeMime(mimeType)
	switch {
	case strings.Contains(m, "wav"):
		return 44100
	case strings.Contains(m, "webm"):
		return 48000
	default:
		return 16000
	}
}

// Route reports which recognition path media of this type and size takes.
func Route(mimeType string, size, inlineLimit int64) string {
	switch {
	case IsVideo(mimeType):
		return RouteVideo
	case size > inlineLimit:
		return RouteStaged
	default:
		return RouteInline
	}
}

// classify maps provider failures onto the domain error taxonomy.
func classify(err error) error {
	if err == nil || errors.Is(err, models.ErrNoSpeech) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", models.ErrUpstreamTimeout, err)
	}
	switch status.Code(err) {
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", models.ErrQuotaExceeded, err)
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %v", models.ErrUnsupportedMedia, err)
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", models.ErrUpstreamTimeout, err)
	case codes.Unavailable, codes.Aborted:
		return fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "quota") {
		return fmt.Errorf("%w: %v", models.ErrQuotaExceeded, err)
	}
	return err
}
