package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1,lte=300"`

	// LogFile, when set, mirrors JSON logs into a size-rotated file.
	LogFile           string `mapstructure:"log_file"`
	LogFileMaxSizeMB  int    `mapstructure:"log_file_max_size_mb" validate:"gte=1"`
	LogFileMaxBackups int    `mapstructure:"log_file_max_backups" validate:"gte=0"`
	LogFileMaxAgeDays int    `mapstructure:"log_file_max_age_days" validate:"gte=0"`
}

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	// URL is required for the postgres driver.
	URL                    string `mapstructure:"url" validate:"required_if=Driver postgres"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
	AutoMigrate            bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains credential hashing settings.
type AuthConfig struct {
	// BCryptCost must lie within bcrypt.MinCost and bcrypt.MaxCost.
	BCryptCost int `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// TaskConfig sizes the background task runner.
type TaskConfig struct {
	QueueSize   int `mapstructure:"queue_size" validate:"gte=1"`
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1"`
}
