package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"nena/internal/analysis"
	"nena/internal/models"
	"nena/internal/providers"
	"nena/internal/structures"
	"nena/internal/transcription"
)

// Raw byte rate used to estimate duration when neither the client nor the
// transcript provides one.
const fallbackBytesPerSecond = 16000

const (
	OutcomeProcessed = "processed"
	OutcomeRejected  = "rejected"
	OutcomeNoSpeech  = "no_speech"
	OutcomeQuota     = "quota"
	OutcomeTransient = "transient"
	OutcomeFailed    = "failed"
)

type ProcessRequest struct {
	UserID   string
	Media    []byte
	MimeType string
	// Duration in seconds as reported by the client; 0 when unknown.
	Duration float64
}

type ProcessResult struct {
	Recording *models.Recording      `json:"recording"`
	Analysis  *models.AnalysisResult `json:"analysis"`
	Stats     *models.UserAnalytics  `json:"stats"`
	NewBadges []string               `json:"newBadges"`
}

type RecordingServiceInterface interface {
	Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error)
}

type RecordingService struct {
	transcriber transcription.Transcriber
	analytics   AnalyticsServiceInterface
	badges      BadgeServiceInterface
	queue       CoachingQueueInterface
	cache       providers.CacheProviderInterface
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	maxUpload   int64
	now         func() time.Time
}

func mediaType(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mt
}

func (s *RecordingService) validate(req ProcessRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("%w: user id is required", models.ErrInvalidInput)
	}
	if len(req.Media) == 0 {
		return fmt.Errorf("%w: media is empty", models.ErrInvalidInput)
	}
	if s.maxUpload > 0 && int64(len(req.Media)) > s.maxUpload {
		return fmt.Errorf("%w: %d bytes exceeds %d", models.ErrOversizeInput, len(req.Media), s.maxUpload)
	}
	mt := mediaType(req.MimeType)
	if !strings.HasPrefix(mt, "audio/") && !strings.HasPrefix(mt, "video/") {
		return fmt.Errorf("%w: %q", models.ErrUnsupportedMedia, req.MimeType)
	}
	if req.Duration < 0 {
		return fmt.Errorf("%w: negative duration", models.ErrInvalidInput)
	}
	return nil
}

func sessionDuration(req ProcessRequest, t *models.Transcript) float64 {
	if req.Duration > 0 {
		return req.Duration
	}
	if n := len(t.Words); n > 0 && t.Words[n-1].End > 0 {
		return t.Words[n-1].End
	}
	return float64(len(req.Media)) / fallbackBytesPerSecond
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeProcessed
	case errors.Is(err, models.ErrNoSpeech):
		return OutcomeNoSpeech
	case errors.Is(err, models.ErrQuotaExceeded):
		return OutcomeQuota
	case errors.Is(err, models.ErrUpstreamTimeout), errors.Is(err, models.ErrUpstreamUnavailable):
		return OutcomeTransient
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrOversizeInput),
		errors.Is(err, models.ErrUnsupportedMedia):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

func (s *RecordingService) Process(ctx context.Context, req ProcessRequest) (res *ProcessResult, err error) {
	defer func() { s.metrics.IncRecordings(outcome(err)) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}

	transcript, err := s.transcriber.Transcribe(ctx, req.Media, mediaType(req.MimeType))
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	result, err := analysis.Analyze(*transcript)
	if err != nil {
		return nil, err
	}

	rec := &models.Recording{
		UserID:          req.UserID,
		CreatedAt:       s.now().UTC(),
		MimeType:        mediaType(req.MimeType),
		Duration:        sessionDuration(req, transcript),
		Transcript:      result.Transcript,
		Confidence:      result.Confidence,
		SpeakingPace:    result.SpeakingPace,
		ClarityScore:    result.ClarityScore,
		SentimentScore:  result.SentimentScore,
		FillerWordCount: result.FillerWordCount,
		PauseCount:      result.PauseCount,
		AveragePause:    result.AveragePause,
		PrimaryInsight:  result.PrimaryInsight,
		ImprovementTips: result.ImprovementTips,
		Strengths:       result.Strengths,
		Weaknesses:      result.Weaknesses,
	}
	stats, err := s.analytics.SaveRecording(ctx, rec)
	if err != nil {
		return nil, err
	}
	InvalidateUser(s.cache, req.UserID)

	// The recording is committed past this point. Badges catch up on the
	// next evaluation.
	unlocked, badgeErr := s.badges.Evaluate(ctx, req.UserID)
	if badgeErr != nil {
		s.logger.Errorf(providers.TypeApp, "Recording %s stored, badge evaluation failed for user %s: %v",
			rec.ID, req.UserID, badgeErr)
		unlocked = []string{}
	}

	if !s.queue.Submit(req.UserID) {
		s.logger.Warnf(providers.TypeApp, "Coaching refresh for user %s not queued", req.UserID)
	}
	s.logger.Infof(providers.TypeApp, "Processed recording %s for user %s: %d words, %d new badges",
		rec.ID, req.UserID, result.WordCount, len(unlocked))

	return &ProcessResult{
		Recording: rec,
		Analysis:  result,
		Stats:     stats,
		NewBadges: unlocked,
	}, nil
}

func NewRecordingService(conf *structures.Config, transcriber transcription.Transcriber, analytics AnalyticsServiceInterface, badges BadgeServiceInterface, queue CoachingQueueInterface, cache providers.CacheProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) RecordingServiceInterface {
	return &RecordingService{
		transcriber: transcriber,
		analytics:   analytics,
		badges:      badges,
		queue:       queue,
		cache:       cache,
		logger:      logger,
		metrics:     metrics,
		maxUpload:   conf.Analysis.MaxUploadBytes,
		now:         time.Now,
	}
}
