package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string        `env:"DATABASE_URL" env-required:"true"`
	HTTPPort    string        `env:"HTTP_PORT" env-default:"8080"`
	LogLevel    string        `env:"LOG_LEVEL" env-default:"info"`
	JWTSecret   string        `env:"JWT_SECRET" env-required:"true"`
	JWTTTL      time.Duration `env:"JWT_EXPIRES_IN" env-default:"24h"`

	CORSOrigins []string `env:"CORS_ORIGINS" env-default:"*"`

	S3 S3Config
}

// S3Config points at an S3-compatible bucket (Cloudflare R2 in
// production) used for property photos. PublicBaseURL is the bucket's
// public hostname; object keys are appended to it verbatim.
type S3Config struct {
	Endpoint        string `env:"S3_ENDPOINT_URL"`
	Region          string `env:"AWS_REGION" env-default:"auto"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Bucket          string `env:"S3_BUCKET_NAME"`
	PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
