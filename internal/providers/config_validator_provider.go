package providers

import (
	"errors"
	"fmt"

	"nena/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks the struct tags first and then the rules that span
// several sections.
func (v *CnfValidator) Validate() error {
	val := validate.Struct(v.conf)
	if !val.Validate() {
		return fmt.Errorf("invalid config: %s", val.Errors.One())
	}

	c := v.conf
	if c.Database.Driver != "memory" && c.Database.DSN == "" {
		return fmt.Errorf("invalid config: database.dsn is required for driver %q", c.Database.Driver)
	}
	if c.Speech.Enabled && c.Speech.Bucket == "" {
		return errors.New("invalid config: speech.bucket is required when speech is enabled")
	}
	if c.Generation.Enabled && c.Generation.APIKey == "" {
		return errors.New("invalid config: generation.apiKey is required when generation is enabled")
	}
	if c.Analysis.InlineLimitBytes > c.Analysis.MaxUploadBytes {
		return errors.New("invalid config: analysis.inlineLimitBytes exceeds analysis.maxUploadBytes")
	}
	return nil
}
