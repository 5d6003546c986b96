package transcription

import (
	"context"

	"nena/internal/providers"
	"nena/internal/structures"
)

// NewTranscriber returns the Google-backed transcriber when speech is enabled
// and Disabled otherwise.
func NewTranscriber(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (Transcriber, error) {
	if !conf.Speech.Enabled {
		logger.Warnf(providers.TypeApp, "Speech recognition disabled, uploads will be rejected")
		return Disabled{}, nil
	}
	g, err := NewGoogle(context.Background(), conf, logger, metrics)
	if err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "Speech recognition via Google Cloud, staging bucket %s", conf.Speech.Bucket)
	return g, nil
}
