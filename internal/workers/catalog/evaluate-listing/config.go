// internal/workers/catalog/evaluate-listing/config.go
package evaluatelisting

import (
	"fmt"
	"time"

	"storefront-workers/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	MaxRetries    int
	// MaxLimit caps the products placed in job variables; zero disables the cap.
	MaxLimit int
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       15 * time.Second,
		MaxRetries:    3,
		MaxLimit:      500,
	}
}

// LoadConfig overlays the worker's entry from the application config onto the defaults.
func LoadConfig(appConfig *config.Config) *Config {
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	wc, ok := appConfig.Workers[TaskType]
	if !ok {
		return cfg
	}
	cfg.Enabled = wc.Enabled
	if wc.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wc.MaxJobsActive
	}
	if wc.Timeout > 0 {
		cfg.Timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	if wc.MaxRetries > 0 {
		cfg.MaxRetries = wc.MaxRetries
	}
	if wc.MaxLimit > 0 {
		cfg.MaxLimit = wc.MaxLimit
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.MaxLimit < 0 {
		return fmt.Errorf("max_limit must not be negative")
	}
	return nil
}
