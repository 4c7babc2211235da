package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port    string         `mapstructure:"port"`
	MongoDB DatabaseConfig `mapstructure:"mongo"`
	Redis   RedisConfig    `mapstructure:"redis"`

	// TypingQuietPeriod is how long after the last keystroke a typing marker
	// is cleared. Defaults to one second when unset.
	TypingQuietPeriod time.Duration `mapstructure:"typing_quiet_period"`
}

// Identity definition identity_service YAML structure
type Identity struct {
	Port       string        `mapstructure:"port"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Redis      RedisConfig    `mapstructure:"redis"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	RedisDB int    `mapstructure:"redis_db"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
