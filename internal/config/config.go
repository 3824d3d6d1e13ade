package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Logger LoggerConfig
	Redis  RedisConfig
	Quiz   QuizConfig
	Export ExportConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

// RedisConfig configures the job board. An empty address keeps the board in memory.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type ProgressConfig struct {
	Step     int
	Interval time.Duration
}

type QuizConfig struct {
	Generation  ProgressConfig
	RevealDelay time.Duration
	SessionTTL  time.Duration
}

type ExportConfig struct {
	Progress       ProgressConfig
	ClearOnSuccess bool
	JobTTL         time.Duration
	SessionTTL     time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "20s")
	v.SetDefault("server.write_timeout", "20s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("quiz.generation.step", 10)
	v.SetDefault("quiz.generation.interval", "300ms")
	v.SetDefault("quiz.reveal_delay", "2s")
	v.SetDefault("quiz.session_ttl", "30m")

	v.SetDefault("export.progress.step", 10)
	v.SetDefault("export.progress.interval", "200ms")
	v.SetDefault("export.clear_on_success", false)
	v.SetDefault("export.job_ttl", "3s")
	v.SetDefault("export.session_ttl", "30m")
}

// LoadConfig reads config.yaml from the working directory or ./config.
// Environment variables override file values, e.g. REDIS_ADDRESS or QUIZ_REVEAL_DELAY.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Quiz: QuizConfig{
			Generation: ProgressConfig{
				Step:     v.GetInt("quiz.generation.step"),
				Interval: v.GetDuration("quiz.generation.interval"),
			},
			RevealDelay: v.GetDuration("quiz.reveal_delay"),
			SessionTTL:  v.GetDuration("quiz.session_ttl"),
		},
		Export: ExportConfig{
			Progress: ProgressConfig{
				Step:     v.GetInt("export.progress.step"),
				Interval: v.GetDuration("export.progress.interval"),
			},
			ClearOnSuccess: v.GetBool("export.clear_on_success"),
			JobTTL:         v.GetDuration("export.job_ttl"),
			SessionTTL:     v.GetDuration("export.session_ttl"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	for name, p := range map[string]ProgressConfig{
		"quiz.generation": c.Quiz.Generation,
		"export.progress": c.Export.Progress,
	} {
		if p.Step <= 0 || p.Step > 100 {
			return fmt.Errorf("%s.step must be within 1..100, got %d", name, p.Step)
		}
		if p.Interval <= 0 {
			return fmt.Errorf("%s.interval must be positive", name)
		}
	}
	if c.Quiz.RevealDelay < 0 {
		return fmt.Errorf("quiz.reveal_delay must not be negative")
	}
	if c.Quiz.SessionTTL < 0 || c.Export.SessionTTL < 0 {
		return fmt.Errorf("session_ttl must not be negative")
	}
	return nil
}
