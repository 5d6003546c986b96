package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"min:0"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"required|in:memory,postgres,sqlite"`
	DSN    string `yaml:"dsn"`
}

type AnalysisConfig struct {
	MaxUploadBytes   int64 `yaml:"maxUploadBytes" validate:"required|min:1"`
	InlineLimitBytes int64 `yaml:"inlineLimitBytes" validate:"min:0"`
}

type CoachingConfig struct {
	Workers        int           `yaml:"workers" validate:"required|min:1"`
	QueueSize      int           `yaml:"queueSize" validate:"required|min:1"`
	Timeout        time.Duration `yaml:"timeout" validate:"min:0"`
	HistorySize    int           `yaml:"historySize" validate:"min:0|max:10"`
	PracticeIdeas  int           `yaml:"practiceIdeas" validate:"min:0"`
	RecentSessions int           `yaml:"recentSessions" validate:"min:0"`
	ProgressMonths int           `yaml:"progressMonths" validate:"min:0"`
}

type ReconcileConfig struct {
	Interval time.Duration `yaml:"interval" validate:"min:0"`
}

type SpeechConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Language        string `yaml:"language"`
	CredentialsFile string `yaml:"credentialsFile"`
}

type GenerationConfig struct {
	Enabled          bool          `yaml:"enabled"`
	APIKey           string        `yaml:"apiKey"`
	Model            string        `yaml:"model"`
	BaseURL          string        `yaml:"baseURL"`
	Timeout          time.Duration `yaml:"timeout" validate:"min:0"`
	MaxFailures      int           `yaml:"maxFailures" validate:"min:0"`
	ResetTimeout     time.Duration `yaml:"resetTimeout" validate:"min:0"`
	HalfOpenRequests int           `yaml:"halfOpenRequests" validate:"min:0"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server           `yaml:"webServer"`
	Persistence Persistence      `yaml:"persistence"`
	Logger      LoggerConfig     `yaml:"logger"`
	Cache       CacheConfig      `yaml:"cache"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Database    DatabaseConfig   `yaml:"database"`
	Analysis    AnalysisConfig   `yaml:"analysis"`
	Coaching    CoachingConfig   `yaml:"coaching"`
	Reconcile   ReconcileConfig  `yaml:"reconcile"`
	Speech      SpeechConfig     `yaml:"speech"`
	Generation  GenerationConfig `yaml:"generation"`
}
