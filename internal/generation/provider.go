package generation

import (
	"nena/internal/providers"
	"nena/internal/structures"
)

func NewGenerator(conf *structures.Config, logger providers.Logger) Generator {
	if !conf.Generation.Enabled {
		logger.Warnf(providers.TypeApp, "Text generation disabled, coaching uses built-in fallbacks")
		return Disabled{}
	}
	logger.Infof(providers.TypeApp, "Text generation via model %s", conf.Generation.Model)
	return NewOpenAI(&conf.Generation, logger)
}
