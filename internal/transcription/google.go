package transcription

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"nena/internal/models"
	"nena/internal/providers"
	"nena/internal/structures"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"cloud.google.com/go/storage"
	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	vipb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const (
	inlineTimeout = 2 * time.Minute
	stagedTimeout = 10 * time.Minute
	videoTimeout  = 10 * time.Minute
	uploadTimeout = 2 * time.Minute
	deleteTimeout = 30 * time.Second
)

// Google routes video through Cloud Storage and Video Intelligence, large
// audio through Cloud Storage and long-running recognition, and everything
// else through inline recognition.
type Google struct {
	speech      *speech.Client
	video       *videointelligence.Client
	storage     *storage.Client
	bucket      string
	language    string
	inlineLimit int64
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
}

func clientOptions(conf *structures.SpeechConfig) []option.ClientOption {
	creds := strings.TrimSpace(conf.CredentialsFile)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func NewGoogle(ctx context.Context, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (*Google, error) {
	opts := clientOptions(&conf.Speech)

	sc, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	vc, err := videointelligence.NewClient(ctx, opts...)
	if err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("videointelligence client: %w", err)
	}
	gc, err := storage.NewClient(ctx, append(opts, option.WithScopes(storage.ScopeReadWrite))...)
	if err != nil {
		_ = sc.Close()
		_ = vc.Close()
		return nil, fmt.Errorf("storage client: %w", err)
	}

	language := conf.Speech.Language
	if language == "" {
		language = "en-US"
	}
	return &Google{
		speech:      sc,
		video:       vc,
		storage:     gc,
		bucket:      conf.Speech.Bucket,
		language:    language,
		inlineLimit: conf.Analysis.InlineLimitBytes,
		logger:      logger,
		metrics:     metrics,
	}, nil
}

func (g *Google) Close() error {
	_ = g.video.Close()
	_ = g.storage.Close()
	return g.speech.Close()
}

func (g *Google) Transcribe(ctx context.Context, media []byte, mimeType string) (*models.Transcript, error) {
	if len(media) == 0 {
		return nil, fmt.Errorf("%w: empty media", models.ErrInvalidInput)
	}
	route := Route(mimeType, int64(len(media)), g.inlineLimit)
	start := time.Now()
	defer func() { g.metrics.ObserveTranscriptionDuration(route, time.Since(start)) }()

	var (
		t   *models.Transcript
		err error
	)
	switch route {
	case RouteVideo:
		t, err = g.transcribeVideo(ctx, media, mimeType)
	case RouteStaged:
		t, err = g.transcribeStaged(ctx, media, mimeType)
	default:
		t, err = g.transcribeInline(ctx, media, mimeType)
	}
	if err != nil {
		return nil, classify(err)
	}
	g.logger.Debugf(providers.TypeWorker, "Transcribed %d bytes of %s via %s: %d words", len(media), mimeType, route, len(t.Words))
	return t, nil
}

func (g *Google) recognitionConfig(mimeType string) *speechpb.RecognitionConfig {
	return &speechpb.RecognitionConfig{
		Encoding:                   Encoding(mimeType),
		SampleRateHertz:            SampleRate(mimeType),
		LanguageCode:               g.language,
		EnableWordTimeOffsets:      true,
		EnableAutomaticPunctuation: true,
		MaxAlternatives:            1,
	}
}

func (g *Google) transcribeInline(ctx context.Context, media []byte, mimeType string) (*models.Transcript, error) {
	ctx, cancel := context.WithTimeout(ctx, inlineTimeout)
	defer cancel()

	resp, err := g.speech.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: g.recognitionConfig(mimeType),
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: media}},
	})
	if err != nil {
		return nil, fmt.Errorf("speech recognize: %w", err)
	}
	return fromSpeechResults(resp.GetResults())
}

func (g *Google) transcribeStaged(ctx context.Context, media []byte, mimeType string) (*models.Transcript, error) {
	key, err := g.upload(ctx, media, mimeType)
	if err != nil {
		return nil, err
	}
	defer g.remove(key)

	ctx, cancel := context.WithTimeout(ctx, stagedTimeout)
	defer cancel()

	op, err := g.speech.LongRunningRecognize(ctx, &speechpb.LongRunningRecognizeRequest{
		Config: g.recognitionConfig(mimeType),
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Uri{Uri: g.uri(key)}},
	})
	if err != nil {
		return nil, fmt.Errorf("speech longrunningrecognize: %w", err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("speech longrunningrecognize wait: %w", err)
	}
	return fromSpeechResults(resp.GetResults())
}

func (g *Google) transcribeVideo(ctx context.Context, media []byte, mimeType string) (*models.Transcript, error) {
	key, err := g.upload(ctx, media, mimeType)
	if err != nil {
		return nil, err
	}
	defer g.remove(key)

	ctx, cancel := context.WithTimeout(ctx, videoTimeout)
	defer cancel()

	op, err := g.video.AnnotateVideo(ctx, &vipb.AnnotateVideoRequest{
		InputUri: g.uri(key),
		Features: []vipb.Feature{vipb.Feature_SPEECH_TRANSCRIPTION},
		VideoContext: &vipb.VideoContext{
			SpeechTranscriptionConfig: &vipb.SpeechTranscriptionConfig{
				LanguageCode:               g.language,
				EnableAutomaticPunctuation: true,
				MaxAlternatives:            1,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("videointelligence annotate: %w", err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("videointelligence annotate wait: %w", err)
	}
	return fromVideoAnnotation(resp)
}

func (g *Google) uri(key string) string {
	return "gs://" + g.bucket + "/" + key
}

func objectKey(mimeType string) string {
	ext := ""
	if exts, _ := mime.ExtensionsByType(normalizeMime(mimeType)); len(exts) > 0 {
		ext = exts[0]
	}
	return "uploads/" + uuid.NewString() + ext
}

func (g *Google) upload(ctx context.Context, media []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	key := objectKey(mimeType)
	w := g.storage.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = mimeType
	if _, err := w.Write(media); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return key, nil
}

// remove deletes a staged object. Failures are logged and never surface to
// the caller.
func (g *Google) remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()
	if err := g.storage.Bucket(g.bucket).Object(key).Delete(ctx); err != nil {
		g.logger.Warnf(providers.TypeWorker, "Failed to delete staged object gs://%s/%s: %s", g.bucket, key, err)
	}
}
