// Package config loads application configuration from config.yaml and the
// environment and wires the global zap logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Artifacts ArtifactsConfig `yaml:"artifacts" mapstructure:"artifacts"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	KeepAlive KeepAliveConfig `yaml:"keepalive" mapstructure:"keepalive"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ArtifactsConfig locates the serialized model artifacts. Each path is
// overridable via the environment (e.g. STRESS_SCREEN_ARTIFACTS_MODEL_PATH).
type ArtifactsConfig struct {
	ModelPath        string `yaml:"model_path" mapstructure:"model_path"`
	PreprocessorPath string `yaml:"preprocessor_path" mapstructure:"preprocessor_path"`
	ThresholdPath    string `yaml:"threshold_path" mapstructure:"threshold_path"`
	ThresholdKey     string `yaml:"threshold_key" mapstructure:"threshold_key"`
}

// ServerConfig configures the HTTP calculator.
type ServerConfig struct {
	Port           int     `yaml:"port" mapstructure:"port"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// KeepAliveConfig configures the keep-alive probe. TargetURL is the one
// required setting; the probe exits non-zero without it.
type KeepAliveConfig struct {
	TargetURL          string   `yaml:"target_url" mapstructure:"target_url"`
	MaxAttempts        int      `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffSecs int      `yaml:"initial_backoff_secs" mapstructure:"initial_backoff_secs"`
	MaxBackoffSecs     int      `yaml:"max_backoff_secs" mapstructure:"max_backoff_secs"`
	HealthTimeoutSecs  int      `yaml:"health_timeout_secs" mapstructure:"health_timeout_secs"`
	SelectorWaitSecs   int      `yaml:"selector_wait_secs" mapstructure:"selector_wait_secs"`
	ResumeWaitSecs     int      `yaml:"resume_wait_secs" mapstructure:"resume_wait_secs"`
	UserAgent          string   `yaml:"user_agent" mapstructure:"user_agent"`
	WindowWidth        int      `yaml:"window_width" mapstructure:"window_width"`
	WindowHeight       int      `yaml:"window_height" mapstructure:"window_height"`
	ContentSelectors   []string `yaml:"content_selectors" mapstructure:"content_selectors"`
	ResumeTexts        []string `yaml:"resume_texts" mapstructure:"resume_texts"`
	LogFile            string   `yaml:"log_file" mapstructure:"log_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STRESS_SCREEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("artifacts.model_path", "models/xgboost.json")
	v.SetDefault("artifacts.preprocessor_path", "models/preprocessor.json")
	v.SetDefault("artifacts.threshold_path", "models/best_thresholds.json")
	v.SetDefault("artifacts.threshold_key", "XGBoost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 5.0)
	v.SetDefault("server.rate_limit_burst", 10)
	v.SetDefault("keepalive.max_attempts", 3)
	v.SetDefault("keepalive.initial_backoff_secs", 20)
	v.SetDefault("keepalive.max_backoff_secs", 120)
	v.SetDefault("keepalive.health_timeout_secs", 10)
	v.SetDefault("keepalive.selector_wait_secs", 10)
	v.SetDefault("keepalive.resume_wait_secs", 20)
	v.SetDefault("keepalive.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	v.SetDefault("keepalive.window_width", 1920)
	v.SetDefault("keepalive.window_height", 1080)
	v.SetDefault("keepalive.content_selectors", []string{
		"form#screening-form", "main", "h1",
	})
	v.SetDefault("keepalive.resume_texts", []string{
		"Yes, get this app back up!", "Resume app", "Wake up",
	})
	v.SetDefault("keepalive.log_file", "keepalive.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	zapCfg, err := baseLoggerConfig(cfg)
	if err != nil {
		return err
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// InitProbeLogger initializes the global logger for the keep-alive probe,
// teeing output to stdout and the fixed append-mode log file.
func InitProbeLogger(cfg LogConfig, logFile string) error {
	zapCfg, err := baseLoggerConfig(cfg)
	if err != nil {
		return err
	}
	zapCfg.OutputPaths = []string{"stdout"}
	if logFile != "" {
		zapCfg.OutputPaths = append(zapCfg.OutputPaths, logFile)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build probe logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

func baseLoggerConfig(cfg LogConfig) (zap.Config, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zapCfg, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	return zapCfg, nil
}
