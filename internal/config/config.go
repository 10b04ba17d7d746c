package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"text-adventure/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// Storage drivers.
const (
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// AI client types.
const (
	AIClientOpenAI = "openai"
	AIClientOllama = "ollama"
)

// Config is created once at process start and passed down read-only.
type Config struct {
	// Logging
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding   string `envconfig:"LOG_ENCODING" default:"json"`
	LogOutputPath string `envconfig:"LOG_OUTPUT_PATH" default:"text-adventure.log"`

	// Narrative endpoint. The default points at LM Studio's OpenAI-compatible API.
	AIClientType  string        `envconfig:"AI_CLIENT_TYPE" default:"openai"`
	AIBaseURL     string        `envconfig:"AI_BASE_URL" default:"http://localhost:1234/v1"`
	AIModel       string        `envconfig:"AI_MODEL" default:"local-model"`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	AIMaxAttempts int           `envconfig:"AI_MAX_ATTEMPTS" default:"3"`
	AIRetryDelay  time.Duration `envconfig:"AI_RETRY_DELAY" default:"2s"`
	AITemperature float64       `envconfig:"AI_TEMPERATURE" default:"0.8"`
	AIAPIKey      string        `envconfig:"AI_API_KEY"`

	// Save storage
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"file"`
	SaveDir       string `envconfig:"SAVE_DIR" default:"saves"`

	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`
	RedisKeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"text_adventure:save:"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`

	DBHost        string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" default:"postgres"`
	DBName        string        `envconfig:"DB_NAME" default:"text_adventure"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"4"`
	DBIdleTimeout time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"5m"`
	DBPassword    string        `envconfig:"DB_PASSWORD"`

	// Metrics (empty address disables the /metrics server)
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	// Directory with Docker-style secret files, consulted for empty secrets.
	SecretsDir string `envconfig:"SECRETS_DIR" default:"/run/secrets"`

	// Enrich the default class catalog with classes invented by the narrator.
	GenerateClasses bool `envconfig:"GENERATE_CLASSES" default:"true"`
}

// LoadConfig reads envFilePath (if it exists) and then the process environment.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				return nil, fmt.Errorf("could not load %s: %w", envFilePath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("could not stat %s: %w", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Secrets are optional: LM Studio and a local Redis work without them.
	if cfg.AIAPIKey == "" {
		if secret, err := utils.ReadSecret(cfg.SecretsDir, "ai_api_key"); err == nil {
			cfg.AIAPIKey = secret
		} else if !errors.Is(err, utils.ErrSecretNotFound) {
			return nil, err
		}
	}
	if cfg.DBPassword == "" {
		if secret, err := utils.ReadSecret(cfg.SecretsDir, "db_password"); err == nil {
			cfg.DBPassword = secret
		} else if !errors.Is(err, utils.ErrSecretNotFound) {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalises enum fields and rejects unusable values.
func (c *Config) Validate() error {
	c.AIClientType = strings.ToLower(strings.TrimSpace(c.AIClientType))
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))

	switch c.AIClientType {
	case AIClientOpenAI, AIClientOllama:
	default:
		return fmt.Errorf("unknown AI_CLIENT_TYPE '%s'", c.AIClientType)
	}
	switch c.StorageDriver {
	case StorageFile:
		if strings.TrimSpace(c.SaveDir) == "" {
			return errors.New("SAVE_DIR must not be empty for file storage")
		}
	case StorageRedis, StoragePostgres:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER '%s'", c.StorageDriver)
	}
	if c.AIMaxAttempts < 1 {
		return fmt.Errorf("AI_MAX_ATTEMPTS must be at least 1, got %d", c.AIMaxAttempts)
	}
	if c.AIRetryDelay < 0 {
		return fmt.Errorf("AI_RETRY_DELAY must not be negative, got %v", c.AIRetryDelay)
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// getMaskedDSN returns the DSN with the password masked for logging.
func (c *Config) getMaskedDSN() string {
	dsn := c.GetDSN()
	parts := strings.Split(dsn, "@")
	if len(parts) != 2 {
		return "[invalid dsn format]"
	}
	userInfo := strings.Split(parts[0], ":")
	if len(userInfo) >= 2 {
		userInfo[len(userInfo)-1] = "********"
	}
	return strings.Join(userInfo, ":") + "@" + parts[1]
}

// LogFields describes the loaded configuration without secrets.
func (c *Config) LogFields() []zap.Field {
	fields := []zap.Field{
		zap.String("aiClientType", c.AIClientType),
		zap.String("aiBaseURL", c.AIBaseURL),
		zap.String("aiModel", c.AIModel),
		zap.Duration("aiTimeout", c.AITimeout),
		zap.Int("aiMaxAttempts", c.AIMaxAttempts),
		zap.Duration("aiRetryDelay", c.AIRetryDelay),
		zap.Bool("aiAPIKeySet", c.AIAPIKey != ""),
		zap.String("storageDriver", c.StorageDriver),
		zap.Bool("generateClasses", c.GenerateClasses),
	}
	switch c.StorageDriver {
	case StorageFile:
		fields = append(fields, zap.String("saveDir", c.SaveDir))
	case StorageRedis:
		fields = append(fields, zap.String("redisAddr", c.RedisAddr), zap.Int("redisDB", c.RedisDB))
	case StoragePostgres:
		fields = append(fields, zap.String("dbDSN", c.getMaskedDSN()))
	}
	if c.MetricsAddr != "" {
		fields = append(fields, zap.String("metricsAddr", c.MetricsAddr))
	}
	return fields
}
