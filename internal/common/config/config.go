// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Storage       StorageConfig           `mapstructure:"storage"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Agent         AgentConfig             `mapstructure:"agent"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Logging       LoggingConfig           `mapstructure:"logging"`
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
	CORSOrigin   string `mapstructure:"cors_origin"`
	ReadOnly     bool   `mapstructure:"read_only"`
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"

	UndoStoreMemory = "memory"
	UndoStoreRedis  = "redis"
)

type StorageConfig struct {
	Driver     string `mapstructure:"driver"` // memory | postgres | sqlite
	SeedFile   string `mapstructure:"seed_file"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
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

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Specific Configuration Sections ---

// AgentConfig holds settings for the command runner and its CLI client.
type AgentConfig struct {
	UndoTTL      int    `mapstructure:"undo_ttl"` // milliseconds
	UndoStore    string `mapstructure:"undo_store"`
	FollowUpHour int    `mapstructure:"follow_up_hour"`
	ServerURL    string `mapstructure:"server_url"`
	Timezone     string `mapstructure:"timezone"`
}

// NotificationConfig holds settings for the follow-up digest.
type NotificationConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Schedule  string `mapstructure:"schedule"` // standard 5-field cron spec
	FromEmail string `mapstructure:"from_email"`
	ToEmail   string `mapstructure:"to_email"`
	SMSPhone  string `mapstructure:"sms_phone"`
	Tone      string `mapstructure:"tone"`
	AWS       struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	Slack SlackConfig `mapstructure:"slack"`
}

type SlackConfig struct {
	Token     string `mapstructure:"token"`
	ChannelID string `mapstructure:"channel_id"`
}

// Configured reports whether digests can be posted to Slack.
func (s SlackConfig) Configured() bool {
	return s.Token != "" && s.ChannelID != ""
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
