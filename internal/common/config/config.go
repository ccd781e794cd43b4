package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig              `mapstructure:"app"`
	Server    ServerConfig           `mapstructure:"server"`
	Database  DatabaseConfig         `mapstructure:"database"`
	Providers ProvidersConfig        `mapstructure:"providers"`
	Agents    map[string]AgentConfig `mapstructure:"agents"`
	Session   SessionConfig          `mapstructure:"session"`
	Language  LanguageConfig         `mapstructure:"language"`
	Manifest  ManifestConfig         `mapstructure:"manifest"`
	Logging   LoggingConfig          `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Provider Configuration ---

// ProvidersConfig holds settings for the external collaborators: the
// translation/generation service, the embedding model, and the per-agent
// data backends.
type ProvidersConfig struct {
	GenAI struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
		MaxRetries int    `mapstructure:"max_retries"`
	} `mapstructure:"genai"`

	Ollama struct {
		Host           string `mapstructure:"host"`
		EmbeddingModel string `mapstructure:"embedding_model"`
	} `mapstructure:"ollama"`

	Weather struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"weather"`

	Market struct {
		BaseURL string `mapstructure:"base_url"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"market"`
}

// AgentConfig holds the core settings applicable to every domain agent.
type AgentConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Timeout    int  `mapstructure:"timeout"`     // milliseconds, per dispatch call
	MaxRetries int  `mapstructure:"max_retries"` // provider-call retries inside the agent
}

// SessionConfig holds the conversational memory settings.
type SessionConfig struct {
	Capacity int    `mapstructure:"capacity"` // (query, answer) pairs per session
	TTL      int    `mapstructure:"ttl"`      // seconds, redis store only
	Store    string `mapstructure:"store"`    // "memory" or "redis"
}

// LanguageConfig holds the detection/translation settings.
type LanguageConfig struct {
	Supported           []string `mapstructure:"supported"`
	DetectionThreshold  float64  `mapstructure:"detection_threshold"`
	DefaultLanguage     string   `mapstructure:"default_language"`
	TranslationDisabled bool     `mapstructure:"translation_disabled"`
}

// ManifestConfig locates the agent manifest file.
type ManifestConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
