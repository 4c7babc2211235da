package config

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvInfo holds service names and paths read from .env
type EnvInfo struct {
	// image name
	ChatService     string
	IdentityService string

	// service yaml path
	ChatServiceYAMLPath     string
	IdentityServiceYAMLPath string

	// service log path
	ChatServiceLogPath     string
	IdentityServiceLogPath string
}

// EnvConfig holds the .env values for both services
var (
	EnvConfig = initEnv()
	envConfig EnvInfo
	once      sync.Once
	env       string
)

func initEnv() EnvInfo {
	once.Do(func() {
		path, err := GetPath(".env", 5)
		if err != nil {
			log.Printf("Warning: Could not get .env path: %v", err)
		}

		if err := godotenv.Load(path); err != nil {
			log.Printf("Warning: Could not load .env file: %v", err)
		}

		env = os.Getenv("ENV")

		envConfig = EnvInfo{
			ChatService:     os.Getenv("CHAT_SERVICE"),
			IdentityService: os.Getenv("IDENTITY_SERVICE"),

			ChatServiceYAMLPath:     os.Getenv("CHAT_SERVICE_YAML"),
			IdentityServiceYAMLPath: os.Getenv("IDENTITY_SERVICE_YAML"),

			ChatServiceLogPath:     os.Getenv("CHAT_SERVICE_LOG"),
			IdentityServiceLogPath: os.Getenv("IDENTITY_SERVICE_LOG"),
		}
	})

	return envConfig
}

// IsProduction check run env
func IsProduction() bool {
	return env == "production"
}

// IsLocal check run env
func IsLocal() bool {
	return env == "local"
}

// LoadConfig reads the service YAML through viper, expanding ${VAR}
// placeholders from the environment before unmarshaling.
func LoadConfig[T any](serviceName string, configPath string) T {
	v := viper.New()
	v.SetConfigName(serviceName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error loading config file: %v", err)
	}

	rawConfig, err := os.ReadFile(v.ConfigFileUsed())
	if err != nil {
		log.Fatalf("Error reading raw config file: %v", err)
	}

	expandedConfig := os.ExpandEnv(string(rawConfig))

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expandedConfig))); err != nil {
		log.Fatalf("Error reading expanded config: %v", err)
	}

	var cfg T
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Error unmarshaling config: %v", err)
	}
	return cfg
}

// RedisAddr format host:port for the redis client
func RedisAddr(r RedisConfig) string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GetPath walks up at most maxCount directories looking for fileName
func GetPath(fileName string, maxCount int) (string, error) {
	path := "./" + fileName

	for i := 0; i < maxCount; i++ {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = "../" + path
	}
	return "", errors.New(fileName + " can't find path")
}
