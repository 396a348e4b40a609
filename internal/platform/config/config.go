package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration. FromEnv keeps main lean; every
// field has a development default so the service boots without a full env.
type Config struct {
	Addr     string
	Timezone string

	// Confirmation deadlines (defaults: medication 5m/5m, wellness 30m/30m).
	MedicationT1 time.Duration
	MedicationT2 time.Duration
	WellnessT1   time.Duration
	WellnessT2   time.Duration

	// External collaborators.
	AnthropicModel     string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioFromNumber   string
	PostgresURL        string
	Redis              RedisConfig
	OracleTimeout      time.Duration
	GatewayTimeout     time.Duration
	AdminTokenHash     string // bcrypt hash of the admin API shared secret
	AdminJWTSigningKey string
}

// RedisConfig mirrors the platform redis client knobs.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:     envOr("ASISTENTE_ADDR", ":8080"),
		Timezone: envOr("ASISTENTE_TZ", "America/Argentina/Buenos_Aires"),

		MedicationT1: envMinutes("MED_CONFIRM_T1_MINUTES", 5),
		MedicationT2: envMinutes("MED_CONFIRM_T2_MINUTES", 5),
		WellnessT1:   envMinutes("WELLNESS_CONFIRM_T1_MINUTES", 30),
		WellnessT2:   envMinutes("WELLNESS_CONFIRM_T2_MINUTES", 30),

		AnthropicModel:   envOr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
		PostgresURL:      os.Getenv("POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envSeconds("REDIS_DIAL_TIMEOUT_SECONDS", 5),
			ReadTimeout:  envSeconds("REDIS_READ_TIMEOUT_SECONDS", 3),
			WriteTimeout: envSeconds("REDIS_WRITE_TIMEOUT_SECONDS", 3),
		},
		OracleTimeout:  envSeconds("ORACLE_TIMEOUT_SECONDS", 30),
		GatewayTimeout: envSeconds("GATEWAY_TIMEOUT_SECONDS", 10),
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		AdminJWTSigningKey: envOr("ADMIN_JWT_SIGNING_KEY",
			// Development default - override in production.
			"dev-secret-key-change-in-production"),
	}
}

// Location resolves the configured timezone, falling back to UTC so a bad env
// never prevents boot; callers log the fallback.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envMinutes(name string, fallback int) time.Duration {
	return time.Duration(envInt(name, fallback)) * time.Minute
}

func envSeconds(name string, fallback int) time.Duration {
	return time.Duration(envInt(name, fallback)) * time.Second
}
