package config

import (
	"strings"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port int    `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxIdle     int    `mapstructure:"max_idle"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	EnableTLS   bool   `mapstructure:"enable_tls"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	EnableTLS bool   `mapstructure:"enable_tls"`
	// TTL in seconds for cached public content lists.
	PublicCacheTTLSec int `mapstructure:"public_cache_ttl_sec"`
}

type S3Config struct {
	Endpoint      string `mapstructure:"endpoint"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	UsePathStyle  bool   `mapstructure:"use_path_style"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type RabbitMQConfig struct {
	URL       string `mapstructure:"url"`
	Exchange  string `mapstructure:"exchange"`
	EnableTLS bool   `mapstructure:"enable_tls"`
}

type SupabaseConfig struct {
	ProjectRef string `mapstructure:"project_ref"`
	APIKey     string `mapstructure:"api_key"`
	AuthURL    string `mapstructure:"auth_url"`
}

type MailerConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type PaymentsConfig struct {
	CheckoutBaseURL   string `mapstructure:"checkout_base_url"`
	CheckoutSecretKey string `mapstructure:"checkout_secret_key"`
	WalletBaseURL     string `mapstructure:"wallet_base_url"`
	WalletClientID    string `mapstructure:"wallet_client_id"`
	WalletSecret      string `mapstructure:"wallet_secret"`
	SuccessURL        string `mapstructure:"success_url"`
	CancelURL         string `mapstructure:"cancel_url"`
	// Basic auth credentials the wallet processor uses on webhook calls.
	// The password is stored as an argon2id PHC hash.
	WebhookLogin       string `mapstructure:"webhook_login"`
	WebhookSecretPHC   string `mapstructure:"webhook_secret_phc"`
	WebhookPepper      string `mapstructure:"webhook_pepper"`
	BookingQRSecret    string `mapstructure:"booking_qr_secret"`
	EnableVerification bool   `mapstructure:"enable_verification"`
}

type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OtlpEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	S3        S3Config        `mapstructure:"s3"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Mailer    MailerConfig    `mapstructure:"mailer"`
	Payments  PaymentsConfig  `mapstructure:"payments"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// Load reads configuration from config.yaml (optional) and CALABRIANDO_*
// environment variables. Env vars win over file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("CALABRIANDO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "calabriando-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("log.level", "info")

	v.SetDefault("database.max_open", 20)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.public_cache_ttl_sec", 300)

	v.SetDefault("s3.region", "eu-south-1")
	v.SetDefault("s3.bucket", "calabriando-images")

	v.SetDefault("rabbitmq.exchange", "calabriando.events")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.sample_ratio", 1.0)
}
