package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Transfer TransferConfig `yaml:"transfer"`
	LogLevel string         `yaml:"log_level"`
}

// StorageConfig represents S3-compatible storage configuration
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// TransferConfig represents transfer-specific configuration
type TransferConfig struct {
	Parallelism   int    `yaml:"parallelism"`
	Journal       string `yaml:"journal"`
	ShowProgress  bool   `yaml:"show_progress"`
	MetricsListen string `yaml:"metrics_listen"`
}

// Load loads configuration in precedence order: defaults, YAML file,
// environment, command line flags.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		Storage: StorageConfig{
			Secure: true,
		},
		Transfer: TransferConfig{
			Parallelism:  8,
			Journal:      "./s3batch.db",
			ShowProgress: true,
		},
	}

	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if flags != nil {
		if err := loadFromFlags(cfg, flags); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv fills credentials and endpoint from the environment. A .env
// file in the working directory is honored when present.
func loadFromEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("S3BATCH_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := firstEnv("S3BATCH_ACCESS_KEY", "AWS_ACCESS_KEY_ID"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := firstEnv("S3BATCH_SECRET_KEY", "AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("S3BATCH_SECURE"); v != "" {
		cfg.Storage.Secure = v == "true" || v == "1"
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func loadFromFlags(cfg *Config, flags *pflag.FlagSet) error {
	if flags.Changed("endpoint") {
		cfg.Storage.Endpoint, _ = flags.GetString("endpoint")
	}
	if flags.Changed("access-key") {
		cfg.Storage.AccessKey, _ = flags.GetString("access-key")
	}
	if flags.Changed("secret-key") {
		cfg.Storage.SecretKey, _ = flags.GetString("secret-key")
	}
	if flags.Changed("secure") {
		cfg.Storage.Secure, _ = flags.GetBool("secure")
	}
	if flags.Changed("parallelism") {
		cfg.Transfer.Parallelism, _ = flags.GetInt("parallelism")
	}
	if flags.Changed("journal") {
		cfg.Transfer.Journal, _ = flags.GetString("journal")
	}
	if flags.Changed("show-progress") {
		cfg.Transfer.ShowProgress, _ = flags.GetBool("show-progress")
	}
	if flags.Changed("metrics-listen") {
		cfg.Transfer.MetricsListen, _ = flags.GetString("metrics-listen")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	return nil
}

func (c *Config) validate() error {
	if c.Storage.Endpoint == "" {
		return fmt.Errorf("endpoint is required (flag --endpoint or S3BATCH_ENDPOINT)")
	}
	if c.Storage.AccessKey == "" {
		return fmt.Errorf("access key is required (flag --access-key, S3BATCH_ACCESS_KEY or AWS_ACCESS_KEY_ID)")
	}
	if c.Storage.SecretKey == "" {
		return fmt.Errorf("secret key is required (flag --secret-key, S3BATCH_SECRET_KEY or AWS_SECRET_ACCESS_KEY)")
	}

	if c.Transfer.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}

	return nil
}
