package providers

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"nena/internal/structures"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var envBindings = map[string]string{
	"logger.level":              "NENA_LOG_LEVEL",
	"persistence.saveInterval":  "NENA_SAVE_INTERVAL",
	"cache.enabled":             "NENA_CACHE_ENABLED",
	"cache.size":                "NENA_CACHE_SIZE",
	"database.driver":           "NENA_DB_DRIVER",
	"database.dsn":              "NENA_DB_DSN",
	"speech.enabled":            "NENA_SPEECH_ENABLED",
	"speech.bucket":             "NENA_SPEECH_BUCKET",
	"speech.credentialsFile":    "GOOGLE_APPLICATION_CREDENTIALS",
	"generation.enabled":        "NENA_GENERATION_ENABLED",
	"generation.apiKey":         "NENA_GENERATION_API_KEY",
	"generation.model":          "NENA_GENERATION_MODEL",
	"generation.baseURL":        "NENA_GENERATION_BASE_URL",
	"coaching.workers":          "NENA_COACHING_WORKERS",
	"reconcile.interval":        "NENA_RECONCILE_INTERVAL",
	"analysis.maxUploadBytes":   "NENA_MAX_UPLOAD_BYTES",
	"analysis.inlineLimitBytes": "NENA_INLINE_LIMIT_BYTES",
	"metrics.enabled":           "NENA_METRICS_ENABLED",
	"persistence.filePath":      "NENA_SNAPSHOT_PATH",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("database.driver", "memory")
	v.SetDefault("analysis.maxUploadBytes", 500<<20)
	v.SetDefault("analysis.inlineLimitBytes", 10<<20)
	v.SetDefault("coaching.workers", 2)
	v.SetDefault("coaching.queueSize", 64)
	v.SetDefault("coaching.timeout", "30s")
	v.SetDefault("coaching.historySize", 10)
	v.SetDefault("coaching.practiceIdeas", 3)
	v.SetDefault("coaching.recentSessions", 5)
	v.SetDefault("coaching.progressMonths", 7)
	v.SetDefault("speech.language", "en-US")
	v.SetDefault("generation.model", "gpt-4o-mini")
	v.SetDefault("generation.timeout", "30s")
	v.SetDefault("generation.maxFailures", 5)
	v.SetDefault("generation.resetTimeout", "30s")
	v.SetDefault("generation.halfOpenRequests", 1)
	v.SetDefault("cache.ttl", "5s")
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	dir := filepath.Dir(flags.ConfigPath)
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(dir)
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	if err := NewCnfValidator(&conf).Validate(); err != nil {
		return nil, err
	}

	conf.AppName = "Nena"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
