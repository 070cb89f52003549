package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServiceConfig struct {
	Environment string
	LogDir      string
	AuthPort    string
	AccountPort string
	DatabaseCfg DatabaseConfig
	PostgresCfg PostgresConfig
	SQLiteCfg   SQLiteConfig
	AuthCfg     AuthConfig
	OTPCfg      OTPConfig
	LockoutCfg  LockoutConfig
	RedisCfg    RedisConfig
	NotifierCfg NotifierConfig
	RabbitMQCfg RabbitMQConfig
	SMTPCfg     SMTPConfig
	MailgunCfg  MailgunConfig
	MinioCfg    MinioConfig
}

type DatabaseConfig struct {
	// Driver is either "postgres" or "sqlite".
	Driver string
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
	SSLMode  string
}

type SQLiteConfig struct {
	Path string
}

type AuthConfig struct {
	JWTSecret      string
	Issuer         string
	AccessTokenTTL time.Duration
}

type OTPConfig struct {
	TTL              time.Duration
	ExposeInResponse bool
	RequestLimit     int
	RequestWindow    time.Duration
}

type LockoutConfig struct {
	Threshold int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type NotifierConfig struct {
	// Driver selects OTP delivery: none, amqp, smtp or mailgun.
	Driver string
}

type RabbitMQConfig struct {
	Host     string
	Username string
	Password string
	Port     string
	Queue    string
}

func (r RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", r.Username, r.Password, r.Host, r.Port)
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type MailgunConfig struct {
	Domain  string
	APIKey  string
	APIBase string
	From    string
}

type MinioConfig struct {
	MinioUrl         string
	MinioAccessKey   string
	MinioSecretKey   string
	MinioLocation    string
	MinioSecure      bool
	MinioBucket      string
	MinioResourceUrl string
}

// Enabled reports whether object storage was configured.
func (m MinioConfig) Enabled() bool {
	return m.MinioUrl != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("AUTH_PORT", "8001")
	v.SetDefault("ACCOUNT_PORT", "8002")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("POSTGRES_DB", "auth_account")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "auth_account.db")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "auth-account")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", time.Hour)

	v.SetDefault("OTP_TTL", 5*time.Minute)
	v.SetDefault("OTP_EXPOSE_IN_RESPONSE", false)
	v.SetDefault("OTP_REQUEST_LIMIT", 5)
	v.SetDefault("OTP_REQUEST_WINDOW", 15*time.Minute)

	v.SetDefault("LOCKOUT_THRESHOLD", 5)

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("NOTIFIER_DRIVER", "none")

	v.SetDefault("RABBITMQ_HOST", "localhost")
	v.SetDefault("RABBITMQ_USER", "guest")
	v.SetDefault("RABBITMQ_PWD", "guest")
	v.SetDefault("RABBITMQ_PORT", "5672")
	v.SetDefault("RABBITMQ_OTP_QUEUE", "otp_notifications")

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")

	v.SetDefault("MAILGUN_DOMAIN", "")
	v.SetDefault("MAILGUN_API_KEY", "")
	v.SetDefault("MAILGUN_API_BASE", "")
	v.SetDefault("MAILGUN_FROM", "")

	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "minio")
	v.SetDefault("MINIO_SECRET_KEY", "minio123")
	v.SetDefault("MINIO_LOCATION", "us-east-1")
	v.SetDefault("MINIO_SECURE", false)
	v.SetDefault("MINIO_BUCKET", "avatars")
	v.SetDefault("MINIO_RESOURCE_URL", "http://localhost:9000/")
}

// New loads configuration from defaults, an optional config file in the
// working directory and the environment, in increasing order of precedence.
func New() (*ServiceConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *ServiceConfig {
	return &ServiceConfig{
		Environment: v.GetString("ENVIRONMENT"),
		LogDir:      v.GetString("LOG_DIR"),
		AuthPort:    v.GetString("AUTH_PORT"),
		AccountPort: v.GetString("ACCOUNT_PORT"),
		DatabaseCfg: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
		},
		PostgresCfg: PostgresConfig{
			DBname:   v.GetString("POSTGRES_DB"),
			Username: v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetString("POSTGRES_PORT"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
		},
		SQLiteCfg: SQLiteConfig{
			Path: v.GetString("SQLITE_PATH"),
		},
		AuthCfg: AuthConfig{
			JWTSecret:      v.GetString("JWT_SECRET"),
			Issuer:         v.GetString("JWT_ISSUER"),
			AccessTokenTTL: v.GetDuration("JWT_ACCESS_TOKEN_TTL"),
		},
		OTPCfg: OTPConfig{
			TTL:              v.GetDuration("OTP_TTL"),
			ExposeInResponse: v.GetBool("OTP_EXPOSE_IN_RESPONSE"),
			RequestLimit:     v.GetInt("OTP_REQUEST_LIMIT"),
			RequestWindow:    v.GetDuration("OTP_REQUEST_WINDOW"),
		},
		LockoutCfg: LockoutConfig{
			Threshold: v.GetInt("LOCKOUT_THRESHOLD"),
		},
		RedisCfg: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		NotifierCfg: NotifierConfig{
			Driver: strings.ToLower(v.GetString("NOTIFIER_DRIVER")),
		},
		RabbitMQCfg: RabbitMQConfig{
			Host:     v.GetString("RABBITMQ_HOST"),
			Username: v.GetString("RABBITMQ_USER"),
			Password: v.GetString("RABBITMQ_PWD"),
			Port:     v.GetString("RABBITMQ_PORT"),
			Queue:    v.GetString("RABBITMQ_OTP_QUEUE"),
		},
		SMTPCfg: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		MailgunCfg: MailgunConfig{
			Domain:  v.GetString("MAILGUN_DOMAIN"),
			APIKey:  v.GetString("MAILGUN_API_KEY"),
			APIBase: v.GetString("MAILGUN_API_BASE"),
			From:    v.GetString("MAILGUN_FROM"),
		},
		MinioCfg: MinioConfig{
			MinioUrl:         v.GetString("MINIO_ENDPOINT"),
			MinioAccessKey:   v.GetString("MINIO_ACCESS_KEY"),
			MinioSecretKey:   v.GetString("MINIO_SECRET_KEY"),
			MinioLocation:    v.GetString("MINIO_LOCATION"),
			MinioSecure:      v.GetBool("MINIO_SECURE"),
			MinioBucket:      v.GetString("MINIO_BUCKET"),
			MinioResourceUrl: v.GetString("MINIO_RESOURCE_URL"),
		},
	}
}

// IsProduction reports whether the service runs outside development.
func (c *ServiceConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects configurations the services cannot start with.
func (c *ServiceConfig) Validate() error {
	switch c.DatabaseCfg.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DatabaseCfg.Driver)
	}

	switch c.NotifierCfg.Driver {
	case "none", "amqp", "smtp", "mailgun":
	default:
		return fmt.Errorf("unsupported NOTIFIER_DRIVER %q", c.NotifierCfg.Driver)
	}

	if c.AuthCfg.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.AuthCfg.JWTSecret = "dev-secret-change-me"
	}
	if c.AuthCfg.AccessTokenTTL <= 0 {
		return errors.New("JWT_ACCESS_TOKEN_TTL must be positive")
	}
	if c.OTPCfg.TTL <= 0 {
		return errors.New("OTP_TTL must be positive")
	}
	if c.LockoutCfg.Threshold <= 0 {
		return errors.New("LOCKOUT_THRESHOLD must be positive")
	}
	return nil
}
