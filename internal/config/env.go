package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Env struct {
	AppAddr string `yaml:"app_addr" validate:"required"`
	GinMode string `yaml:"gin_mode" validate:"omitempty,oneof=debug release test"`

	DBHost     string `yaml:"db_host" validate:"required"`
	DBPort     string `yaml:"db_port" validate:"required,numeric"`
	DBUser     string `yaml:"db_user" validate:"required"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name" validate:"required"`

	JWTSecret string `yaml:"jwt_secret" validate:"required,min=8"`

	// RedisAddr selects the Redis OTP store; empty keeps codes in process memory.
	RedisAddr     string        `yaml:"redis_addr"`
	OTPTTL        time.Duration `yaml:"otp_ttl" validate:"gt=0"`
	SearchTimeout time.Duration `yaml:"search_timeout" validate:"gt=0"`

	LogFile  string `yaml:"log_file" validate:"required"`
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

func defaultEnv() Env {
	return Env{
		AppAddr:       ":8080",
		DBHost:        "127.0.0.1",
		DBPort:        "3306",
		DBUser:        "root",
		DBName:        "bus_pass",
		JWTSecret:     "super-secret-key-change-me",
		OTPTTL:        5 * time.Minute,
		SearchTimeout: 5 * time.Second,
		LogFile:       "./logs/app.log",
		LogLevel:      "info",
		CORSAllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
	}
}

// LoadEnv builds the configuration from defaults, an optional config.yml,
// .env and the process environment (in that order of precedence).
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	env := defaultEnv()
	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "config.yml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &env); err != nil {
			return Env{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	overrideString(&env.AppAddr, "APP_ADDR")
	overrideString(&env.GinMode, "GIN_MODE")
	overrideString(&env.DBHost, "DB_HOST")
	overrideString(&env.DBPort, "DB_PORT")
	overrideString(&env.DBUser, "DB_USER")
	overrideString(&env.DBPassword, "DB_PASSWORD")
	overrideString(&env.DBName, "DB_NAME")
	overrideString(&env.JWTSecret, "JWT_SECRET")
	overrideString(&env.RedisAddr, "REDIS_ADDR")
	overrideString(&env.LogFile, "LOG_FILE")
	overrideString(&env.LogLevel, "LOG_LEVEL")
	if err := overrideDuration(&env.OTPTTL, "OTP_TTL"); err != nil {
		return Env{}, err
	}
	if err := overrideDuration(&env.SearchTimeout, "SEARCH_TIMEOUT"); err != nil {
		return Env{}, err
	}
	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		env.CORSAllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSAllowedOrigins = append(env.CORSAllowedOrigins, o)
			}
		}
	}

	if err := validator.New().Struct(env); err != nil {
		return Env{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return env, nil
}

// DSN returns the go-sql-driver/mysql data source name.
func (e Env) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		e.DBUser,
		e.DBPassword,
		e.DBHost,
		e.DBPort,
		e.DBName,
	)
}

func overrideString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func overrideDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
