package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string

	Redis    RedisConfig
	OTPStore string
	OTPTTL   time.Duration

	JWTSecret          string
	ChallengeJWTSecret string
	JWTIssuer          string

	CookieDomain  string
	CookieSecure  bool
	RatePerMinute int

	Mail    MailConfig
	Storage StorageConfig

	SecurityLogRetention time.Duration
	SecurityLogPruneSpec string

	LogLevel  string
	LogFormat string
}

type RedisConfig struct {
	URL      string
	Address  string
	Password string
	DB       int
}

type MailConfig struct {
	Provider       string
	From           string
	FromName       string
	ResendAPIKey   string
	SendgridAPIKey string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
}

type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	PublicURL       string
	UsePathStyle    bool
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		OTPStore:           strings.ToLower(getEnv("OTP_STORE", "redis")),
		OTPTTL:             time.Duration(getEnvInt("OTP_TTL_MINUTES", 5)) * time.Minute,
		JWTSecret:          os.Getenv("JWT_SECRET"),
		ChallengeJWTSecret: os.Getenv("CHALLENGE_JWT_SECRET"),
		JWTIssuer:          getEnv("JWT_ISSUER", "rotkit"),
		CookieDomain:       os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:       os.Getenv("COOKIE_SECURE") != "false",
		RatePerMinute:      getEnvInt("RATE_LIMIT_PER_MINUTE", 20),
		Mail: MailConfig{
			Provider:       strings.ToLower(getEnv("MAIL_PROVIDER", "resend")),
			From:           os.Getenv("MAIL_FROM"),
			FromName:       getEnv("MAIL_FROM_NAME", "ROT KIT"),
			ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
			SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			SMTPHost:       os.Getenv("SMTP_HOST"),
			SMTPPort:       getEnvInt("SMTP_PORT", 587),
			SMTPUser:       os.Getenv("SMTP_USER"),
			SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		},
		Storage: StorageConfig{
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			Region:          os.Getenv("S3_REGION"),
			Bucket:          os.Getenv("S3_BUCKET"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			Prefix:          os.Getenv("S3_PREFIX"),
			PublicURL:       os.Getenv("S3_PUBLIC_URL"),
			UsePathStyle:    os.Getenv("S3_USE_PATH_STYLE") == "true",
		},
		SecurityLogRetention: time.Duration(getEnvInt("SECURITY_LOG_RETENTION_DAYS", 90)) * 24 * time.Hour,
		SecurityLogPruneSpec: getEnv("SECURITY_LOG_PRUNE_SPEC", "0 3 * * *"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}
	if cfg.ChallengeJWTSecret == "" {
		cfg.ChallengeJWTSecret = cfg.JWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.OTPStore {
	case "redis", "memory":
	default:
		return errors.New("OTP_STORE must be redis or memory")
	}
	switch c.Mail.Provider {
	case "resend", "sendgrid", "smtp", "log":
	default:
		return errors.New("MAIL_PROVIDER must be resend, sendgrid, smtp or log")
	}
	if c.OTPTTL <= 0 {
		return errors.New("OTP_TTL_MINUTES must be positive")
	}
	return nil
}

func getEnv(key string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
