package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

type HTTPConfig struct {
	Addr           string
	TrustedProxies []string
}

type StorageConfig struct {
	Backend       string // memory, sqlite, redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MaxBooks      int
	MaxProfiles   int
	DBPath        string
}

type NotifyConfig struct {
	EmailJSServiceID  string
	EmailJSTemplateID string
	EmailJSPublicKey  string
	EmailJSPrivateKey string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
	OwnerEmail        string
	OwnerPhone        string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type Config struct {
	Env     string
	HTTP    HTTPConfig
	Auth    AuthConfig
	Storage StorageConfig
	Notify  NotifyConfig
	Log     LogConfig
}

// DevJWTSecret is the signing key used when none is configured. Load refuses
// it in production.
const DevJWTSecret = "dev-secret-change-me"

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.trusted_proxies", []string{"127.0.0.1"})

	// dev default (change for demo / production)
	v.SetDefault("auth.jwt_secret", DevJWTSecret)
	v.SetDefault("auth.jwt_issuer", "houseoflove")
	v.SetDefault("auth.jwt_ttl", 24*time.Hour)

	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.max_books", 64)
	v.SetDefault("storage.max_profiles", 10000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

// Load reads config.toml (optional) and HOUSEOFLOVE_* environment overrides.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("HOUSEOFLOVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// HOUSEOFLOVE_DB_PATH predates the storage section and is still honored
	_ = v.BindEnv("storage.db_path", "HOUSEOFLOVE_STORAGE_DB_PATH", "HOUSEOFLOVE_DB_PATH")

	cfg := &Config{
		Env: v.GetString("env"),
		HTTP: HTTPConfig{
			Addr:           v.GetString("http.addr"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Auth: AuthConfig{
			JWTSecret:   v.GetString("auth.jwt_secret"),
			JWTIssuer:   v.GetString("auth.jwt_issuer"),
			JWTDuration: v.GetDuration("auth.jwt_ttl"),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(v.GetString("storage.backend")),
			RedisAddr:     v.GetString("storage.redis_addr"),
			RedisPassword: v.GetString("storage.redis_password"),
			RedisDB:       v.GetInt("storage.redis_db"),
			MaxBooks:      v.GetInt("storage.max_books"),
			MaxProfiles:   v.GetInt("storage.max_profiles"),
			DBPath:        v.GetString("storage.db_path"),
		},
		Notify: NotifyConfig{
			EmailJSServiceID:  v.GetString("notify.emailjs_service_id"),
			EmailJSTemplateID: v.GetString("notify.emailjs_template_id"),
			EmailJSPublicKey:  v.GetString("notify.emailjs_public_key"),
			EmailJSPrivateKey: v.GetString("notify.emailjs_private_key"),
			TwilioAccountSID:  v.GetString("notify.twilio_account_sid"),
			TwilioAuthToken:   v.GetString("notify.twilio_auth_token"),
			TwilioFromNumber:  v.GetString("notify.twilio_from_number"),
			OwnerEmail:        v.GetString("notify.owner_email"),
			OwnerPhone:        v.GetString("notify.owner_phone"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	if cfg.Auth.JWTDuration <= 0 {
		cfg.Auth.JWTDuration = 24 * time.Hour
	}
	if cfg.Env == "production" && (cfg.Auth.JWTSecret == "" || cfg.Auth.JWTSecret == DevJWTSecret) {
		return nil, fmt.Errorf("auth.jwt_secret must be set in production")
	}
	switch cfg.Storage.Backend {
	case "memory", "sqlite", "redis":
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

// Configured reports whether both providers have credentials.
func (c NotifyConfig) Configured() bool {
	return c.EmailJSServiceID != "" && c.TwilioAccountSID != ""
}
