package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/creatorly/styletrain/internal/domain"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Storage   StorageConfig   `mapstructure:"storage"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
	VideoAPI  VideoAPIConfig  `mapstructure:"video_api"`
	Inference InferenceConfig `mapstructure:"inference"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Voice     VoiceConfig     `mapstructure:"voice"`
	Training  TrainingConfig  `mapstructure:"training"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	Path   string `mapstructure:"path"`   // sqlite file path
	DSN    string `mapstructure:"dsn"`    // postgres connection string
}

type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
	APIKey     string `mapstructure:"api_key"`
	UseTLS     bool   `mapstructure:"use_tls"`
}

type StorageConfig struct {
	Backend   string `mapstructure:"backend"` // "minio" or "s3"
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

// OAuthConfig holds the IdP credentials used to validate and refresh the
// creator's stored platform access token.
type OAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TokenInfoURL string `mapstructure:"tokeninfo_url"`
	TokenURL     string `mapstructure:"token_url"`
}

type VideoAPIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type InferenceConfig struct {
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type EmbeddingConfig struct {
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

type VoiceConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type TrainingConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/styletrain.db")
	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.collection", "style_profiles")
	v.SetDefault("storage.backend", "minio")
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "style-audio")
	v.SetDefault("oauth.tokeninfo_url", "https://oauth2.googleapis.com/tokeninfo")
	v.SetDefault("oauth.token_url", "https://oauth2.googleapis.com/token")
	v.SetDefault("video_api.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("inference.model", "gemini-2.0-flash")
	v.SetDefault("inference.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("embedding.model", "text-embedding-004")
	v.SetDefault("embedding.dimensions", 768)
	v.SetDefault("voice.base_url", "https://api.elevenlabs.io")
	v.SetDefault("training.workers", 5)
	v.SetDefault("training.queue_size", 64)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_URL")
	v.BindEnv("qdrant.host", "QDRANT_HOST")
	v.BindEnv("qdrant.port", "QDRANT_PORT")
	v.BindEnv("qdrant.api_key", "QDRANT_API_KEY")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")
	v.BindEnv("oauth.client_id", "OAUTH_CLIENT_ID")
	v.BindEnv("oauth.client_secret", "OAUTH_CLIENT_SECRET")
	v.BindEnv("inference.api_key", "INFERENCE_API_KEY")
	v.BindEnv("inference.model", "INFERENCE_MODEL")
	v.BindEnv("voice.api_key", "VOICE_API_KEY")
	v.BindEnv("training.workers", "TRAINING_WORKERS")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate is the environment gate: it checks once, before any stage runs,
// that every provider credential the pipeline will need is present. It names
// all missing settings in one error rather than failing on the first.
func (c *Config) Validate() error {
	var missing []string

	if c.Inference.APIKey == "" {
		missing = append(missing, "inference.api_key (INFERENCE_API_KEY)")
	}
	if c.Voice.APIKey == "" {
		missing = append(missing, "voice.api_key (VOICE_API_KEY)")
	}
	if c.OAuth.ClientID == "" {
		missing = append(missing, "oauth.client_id (OAUTH_CLIENT_ID)")
	}
	if c.OAuth.ClientSecret == "" {
		missing = append(missing, "oauth.client_secret (OAUTH_CLIENT_SECRET)")
	}
	if c.Storage.AccessKey == "" {
		missing = append(missing, "storage.access_key (STORAGE_ACCESS_KEY)")
	}
	if c.Storage.SecretKey == "" {
		missing = append(missing, "storage.secret_key (STORAGE_SECRET_KEY)")
	}
	if c.Embedding.Dimensions <= 0 {
		missing = append(missing, "embedding.dimensions")
	}

	if len(missing) > 0 {
		return domain.NewError(domain.ErrEnvironmentConfig,
			"missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
