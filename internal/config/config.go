package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	defaultServiceName     = "supportbot"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8080
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "supportbot"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = 25
	defaultDBMaxIdleConns  = 5
	defaultLogLevel        = "info"
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultOpenAIMaxTokens = 500
	defaultOpenAITemp      = 0.2
	defaultOpenAITimeout   = 30 * time.Second
	defaultOpenAIRPS       = 5
	defaultMatchScorer     = "advanced"
)

// defaultSystemPrompt frames the generative fallback as the same support
// assistant the canned prompts implement.
const defaultSystemPrompt = "You are a helpful customer support assistant for a home appliance company. " +
	"Answer questions about refrigerators, freezers, repairs, and warranties concisely and politely. " +
	"If you do not know the answer, suggest contacting a support agent."

// Config holds all configuration for the support-bot service.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Matching MatchingConfig `yaml:"matching"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"SUPPORTBOT_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"       yaml:"debug"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `env:"LOG_LEVEL" yaml:"level"`
	Development bool   `yaml:"development"`
}

// MatchingConfig holds the matching engine configuration.
// Scorer selects the scoring strategy: "basic" or "advanced".
// Weight and threshold overrides are zero-valued when unset; the matching
// package substitutes its documented defaults.
type MatchingConfig struct {
	Scorer                  string  `env:"MATCH_SCORER" yaml:"scorer"`
	PhraseScore             int     `yaml:"phrase_score"`
	ExactWordScore          int     `yaml:"exact_word_score"`
	StemScore               int     `yaml:"stem_score"`
	SynonymScore            int     `yaml:"synonym_score"`
	PartialScore            int     `yaml:"partial_score"`
	FuzzyScore              int     `yaml:"fuzzy_score"`
	IrrelevantWordPenalty   int     `yaml:"irrelevant_word_penalty"`
	LengthMismatchPenalty   int     `yaml:"length_mismatch_penalty"`
	MinConfidenceThreshold  float64 `yaml:"min_confidence_threshold"`
	HighConfidenceThreshold float64 `yaml:"high_confidence_threshold"`
	BasicMinScore           int     `yaml:"basic_min_score"`
}

// OpenAIConfig holds the generative fallback configuration.
type OpenAIConfig struct {
	APIKey            string        `env:"OPENAI_API_KEY" yaml:"api_key"`
	Model             string        `yaml:"model"`
	MaxTokens         int           `yaml:"max_tokens"`
	Temperature       float64       `yaml:"temperature"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond int           `yaml:"requests_per_second"`
	SystemPrompt      string        `yaml:"system_prompt"`
	Enabled           bool          `env:"OPENAI_ENABLED" yaml:"enabled"`
}

// SetDefaults applies default values to unset fields.
func (c *Config) SetDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = defaultServiceName
	}
	if c.Service.Version == "" {
		c.Service.Version = defaultServiceVersion
	}
	if c.Service.Port == 0 {
		c.Service.Port = defaultServicePort
	}
	if c.Database.Host == "" {
		c.Database.Host = defaultDBHost
	}
	if c.Database.Port == 0 {
		c.Database.Port = defaultDBPort
	}
	if c.Database.User == "" {
		c.Database.User = defaultDBUser
	}
	if c.Database.Database == "" {
		c.Database.Database = defaultDBName
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = defaultDBSSLMode
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = defaultDBMaxConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaultDBMaxIdleConns
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Matching.Scorer == "" {
		c.Matching.Scorer = defaultMatchScorer
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = defaultOpenAIModel
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = defaultOpenAIMaxTokens
	}
	if c.OpenAI.Temperature == 0 {
		c.OpenAI.Temperature = defaultOpenAITemp
	}
	if c.OpenAI.Timeout == 0 {
		c.OpenAI.Timeout = defaultOpenAITimeout
	}
	if c.OpenAI.RequestsPerSecond == 0 {
		c.OpenAI.RequestsPerSecond = defaultOpenAIRPS
	}
	if c.OpenAI.SystemPrompt == "" {
		c.OpenAI.SystemPrompt = defaultSystemPrompt
	}
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid service port %d", c.Service.Port)
	}
	if c.Matching.Scorer != "basic" && c.Matching.Scorer != "advanced" {
		return fmt.Errorf("unknown scorer strategy %q", c.Matching.Scorer)
	}
	if c.OpenAI.Enabled && c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai fallback enabled but no API key configured")
	}
	return nil
}
