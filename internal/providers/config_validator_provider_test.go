package providers

import (
	"testing"
	"time"

	"nena/internal/structures"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Persistence: structures.Persistence{
			FilePath:     "/tmp/nena.snapshot",
			SaveInterval: 30 * time.Second,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Database: structures.DatabaseConfig{Driver: "memory"},
		Analysis: structures.AnalysisConfig{
			MaxUploadBytes:   500 << 20,
			InlineLimitBytes: 10 << 20,
		},
		Coaching: structures.CoachingConfig{
			Workers:     2,
			QueueSize:   16,
			HistorySize: 10,
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *structures.Config)
	}{
		{"empty host", func(c *structures.Config) { c.WebServer.Host = "" }},
		{"zero port", func(c *structures.Config) { c.WebServer.Port = 0 }},
		{"empty log level", func(c *structures.Config) { c.Logger.Level = "" }},
		{"invalid log level", func(c *structures.Config) { c.Logger.Level = "verbose" }},
		{"unknown driver", func(c *structures.Config) { c.Database.Driver = "mongo" }},
		{"postgres without dsn", func(c *structures.Config) { c.Database.Driver = "postgres" }},
		{"zero workers", func(c *structures.Config) { c.Coaching.Workers = 0 }},
		{"history too long", func(c *structures.Config) { c.Coaching.HistorySize = 11 }},
		{"speech without bucket", func(c *structures.Config) { c.Speech.Enabled = true }},
		{"generation without key", func(c *structures.Config) { c.Generation.Enabled = true }},
		{"inline above upload limit", func(c *structures.Config) { c.Analysis.InlineLimitBytes = c.Analysis.MaxUploadBytes + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, NewCnfValidator(c).Validate())
		})
	}
}

func TestConfigValidator_SqliteWithDSN(t *testing.T) {
	c := validConfig()
	c.Database = structures.DatabaseConfig{Driver: "sqlite", DSN: "file:nena.db"}
	assert.NoError(t, NewCnfValidator(c).Validate())
}
