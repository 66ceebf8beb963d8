// Package config provides configuration loading for cortexd.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/cortexd/internal/learning"
	"github.com/fyrsmithlabs/cortexd/internal/logging"
	"github.com/fyrsmithlabs/cortexd/internal/qa"
)

// Config is the full cortexd configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  logging.Config `koanf:"logging"`
	Decision DecisionConfig `koanf:"decision"`
	QA       QAConfig       `koanf:"qa"`
	Learning LearningConfig `koanf:"learning"`
	NATS     NATSConfig     `koanf:"nats"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DecisionConfig holds orchestrator settings.
type DecisionConfig struct {
	// RequestBudget is the per-request wall-clock limit.
	RequestBudget time.Duration `koanf:"request_budget"`

	// HistoryLimit bounds the recent-decision store.
	HistoryLimit int `koanf:"history_limit"`
}

// QAConfig holds validation gate settings. Weights, when present, must
// cover all six criteria and sum to 1.0; violations are fatal at startup.
type QAConfig struct {
	Weights            map[string]float64 `koanf:"weights"`
	TrustedSources     []string           `koanf:"trusted_sources"`
	BlacklistedSources []string           `koanf:"blacklisted_sources"`
	HistoryLimit       int                `koanf:"history_limit"`
}

// LearningConfig holds learning-loop settings.
type LearningConfig struct {
	// Retention is how long history entries live before ageing out.
	Retention time.Duration `koanf:"retention"`
}

// NATSConfig holds the optional feedback bus intake settings.
type NATSConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
}

// CriteriaWeights converts configured weights into validator form, falling
// back to the production defaults when none are configured.
func (c *QAConfig) CriteriaWeights() map[qa.Criterion]float64 {
	if len(c.Weights) == 0 {
		return qa.DefaultWeights()
	}
	out := make(map[qa.Criterion]float64, len(c.Weights))
	for k, v := range c.Weights {
		out[qa.Criterion(k)] = v
	}
	return out
}

// Validate checks the configuration. Failures here are fatal at startup;
// nothing else in the system raises configuration errors.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Decision.RequestBudget < 0 {
		return fmt.Errorf("request budget cannot be negative")
	}
	if err := qa.ValidateWeights(c.QA.CriteriaWeights()); err != nil {
		return err
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("nats intake enabled but no url configured")
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9270
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Decision.RequestBudget == 0 {
		cfg.Decision.RequestBudget = 30 * time.Second
	}
	if cfg.Decision.HistoryLimit == 0 {
		cfg.Decision.HistoryLimit = 1000
	}
	if cfg.QA.HistoryLimit == 0 {
		cfg.QA.HistoryLimit = 100
	}
	// nil means unset; an explicit empty list in the file stays empty.
	if cfg.QA.TrustedSources == nil {
		cfg.QA.TrustedSources = []string{learning.SourceFeedbackAnalyzer}
	}
	if cfg.Learning.Retention == 0 {
		cfg.Learning.Retention = 30 * 24 * time.Hour
	}
	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = "cortexd.feedback"
	}
}
