package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rpupo63/oneword-blog-backend/errs"
)

const (
	AuthProviderSupabase = "supabase"
	AuthProviderJWT      = "jwt"

	DBTypeSupabase = "supa"
	DBTypePostgres = "postgres"
)

// Config is the process configuration, built once in main and handed to
// constructors.
type Config struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AcceptedOrigin []string

	LogLevel  string
	LogFormat string

	DB  DBConfig
	LLM LLMConfig

	AuthProvider      string
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	SupabaseAudience  string

	AutoMigrate    bool
	GenerateModels bool
}

type DBConfig struct {
	Type       string
	URL        string
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	ReplicaURL string
}

type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// DSN returns DATABASE_URL when set, otherwise a keyword DSN built from the
// parts. Supabase connections require TLS.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslmode := "disable"
	if c.Type == DBTypeSupabase {
		sslmode = "require"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, sslmode)
}

// Load reads .env (if present), the process environment and, when
// SSM_PARAMETER_PATH is set, parameters from AWS SSM. Environment values win
// over SSM values.
func Load(ctx context.Context) (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	env := New()
	if path := GetString(env, "SSM_PARAMETER_PATH", ""); path != "" {
		store, err := NewSSMStore(ctx)
		if err != nil {
			return nil, errs.NewConfigError("SSM_PARAMETER_PATH", err)
		}
		env, err = Overlay(ctx, store, path, env)
		if err != nil {
			return nil, errs.NewConfigError("SSM_PARAMETER_PATH", err)
		}
	}

	cfg := FromMap(env)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromMap builds a Config from an environment snapshot, applying defaults.
func FromMap(env map[string]string) *Config {
	return &Config{
		Port:           GetInt(env, "PORT", 8080),
		ReadTimeout:    time.Duration(GetInt(env, "READ_TIMEOUT_SECONDS", 30)) * time.Second,
		WriteTimeout:   time.Duration(GetInt(env, "WRITE_TIMEOUT_SECONDS", 90)) * time.Second,
		IdleTimeout:    time.Duration(GetInt(env, "IDLE_TIMEOUT_SECONDS", 120)) * time.Second,
		AcceptedOrigin: GetStrings(env, "ACCEPTED_ORIGINS", []string{"*"}),

		LogLevel:  GetString(env, "LOG_LEVEL", "info"),
		LogFormat: GetString(env, "LOG_FORMAT", "json"),

		DB: DBConfig{
			Type:       GetString(env, "DB_TYPE", DBTypeSupabase),
			URL:        GetString(env, "DATABASE_URL", ""),
			Host:       GetString(env, "SUPABASE_DB_HOST", ""),
			User:       GetString(env, "SUPABASE_DB_USER", ""),
			Password:   GetString(env, "SUPABASE_DB_PASSWORD", ""),
			Name:       GetString(env, "SUPABASE_DB_NAME", "postgres"),
			Port:       GetString(env, "SUPABASE_DB_PORT", "5432"),
			ReplicaURL: GetString(env, "DATABASE_REPLICA_URL", ""),
		},

		LLM: LLMConfig{
			APIKey:      GetString(env, "LLM_API_KEY", ""),
			BaseURL:     GetString(env, "LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:       GetString(env, "LLM_MODEL", "gpt-4o-mini"),
			Temperature: GetFloat(env, "LLM_TEMPERATURE", 0.9),
			MaxTokens:   GetInt(env, "LLM_MAX_TOKENS", 4000),
			Timeout:     time.Duration(GetInt(env, "LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		},

		AuthProvider:      strings.ToLower(GetString(env, "AUTH_PROVIDER", AuthProviderSupabase)),
		SupabaseURL:       strings.TrimRight(GetString(env, "SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:   GetString(env, "SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret: GetString(env, "SUPABASE_JWT_SECRET", ""),
		SupabaseAudience:  GetString(env, "SUPABASE_JWT_AUDIENCE", "authenticated"),

		AutoMigrate:    GetBool(env, "AUTO_MIGRATE", false),
		GenerateModels: GetBool(env, "GENERATE_MODELS", false),
	}
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return errs.NewEnvironmentVariableError("LLM_API_KEY")
	}
	if c.LLM.Timeout <= 0 {
		return errs.NewConfigInvalidError("LLM_TIMEOUT_SECONDS", "must be positive")
	}
	if c.LLM.MaxTokens <= 0 {
		return errs.NewConfigInvalidError("LLM_MAX_TOKENS", "must be positive")
	}

	switch c.DB.Type {
	case DBTypeSupabase, DBTypePostgres:
	default:
		return errs.NewConfigInvalidError("DB_TYPE", fmt.Sprintf("unsupported value %q", c.DB.Type))
	}
	if c.DB.URL == "" && c.DB.Host == "" {
		return errs.NewEnvironmentVariableError("DATABASE_URL")
	}

	switch c.AuthProvider {
	case AuthProviderSupabase:
		if c.SupabaseURL == "" {
			return errs.NewEnvironmentVariableError("SUPABASE_URL")
		}
		if c.SupabaseAnonKey == "" {
			return errs.NewEnvironmentVariableError("SUPABASE_ANON_KEY")
		}
	case AuthProviderJWT:
		if c.SupabaseJWTSecret == "" {
			return errs.NewEnvironmentVariableError("SUPABASE_JWT_SECRET")
		}
	default:
		return errs.NewConfigInvalidError("AUTH_PROVIDER", fmt.Sprintf("unsupported value %q", c.AuthProvider))
	}
	return nil
}

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetFloat(config map[string]string, key string, defaultValue float64) float64 {
	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return b
}

// GetStrings splits a comma separated value, dropping blank entries.
func GetStrings(config map[string]string, key string, defaultValue []string) []string {
	s := GetString(config, key, "")
	if s == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
