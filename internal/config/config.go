package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mind-engage/mindengage-taxexam/internal/dashboard"
)

type Config struct {
	HTTPAddr string

	DBDriver string // sqlite|postgres
	DBDSN    string

	// AuthHMACSecret enables bearer tokens; empty means requests name
	// their own user.
	AuthHMACSecret string
	CORSOrigins    []string
	// GuestAuth mounts /api/auth/guest; needs AuthHMACSecret.
	GuestAuth bool
	GuestTTL  time.Duration

	LogLevel  string
	LogFormat string // console|json

	FullLengthQuestions int
	Categories          []dashboard.Category
	RecordTimeout       time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "")
	v.SetDefault("auth_hmac_secret", "")
	v.SetDefault("guest_auth", false)
	v.SetDefault("guest_ttl", "720h")
	v.SetDefault("cors_origins", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("full_length_questions", dashboard.DefaultFullLength)
	v.SetDefault("record_timeout", "10s")
}

// FromEnv reads defaults, then an optional config.yaml (or CONFIG_FILE),
// then environment variables such as HTTP_ADDR and DB_DSN.
func FromEnv() (Config, error) {
	return Load(viper.New())
}

func Load(v *viper.Viper) (Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if f := v.GetString("config_file"); f != "" {
		v.SetConfigFile(f)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := Config{
		HTTPAddr:            v.GetString("http_addr"),
		DBDriver:            v.GetString("db_driver"),
		DBDSN:               v.GetString("db_dsn"),
		AuthHMACSecret:      v.GetString("auth_hmac_secret"),
		CORSOrigins:         stringList(v.Get("cors_origins")),
		GuestAuth:           v.GetBool("guest_auth"),
		GuestTTL:            v.GetDuration("guest_ttl"),
		LogLevel:            strings.ToLower(v.GetString("log_level")),
		LogFormat:           strings.ToLower(v.GetString("log_format")),
		FullLengthQuestions: v.GetInt("full_length_questions"),
		RecordTimeout:       v.GetDuration("record_timeout"),
	}
	if err := v.UnmarshalKey("categories", &cfg.Categories); err != nil {
		return Config{}, fmt.Errorf("config: categories: %w", err)
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = dashboard.DefaultCategories
	}
	if cfg.GuestAuth && cfg.AuthHMACSecret == "" {
		return Config{}, errors.New("config: guest_auth requires auth_hmac_secret")
	}
	if cfg.FullLengthQuestions <= 0 {
		return Config{}, fmt.Errorf("config: full_length_questions must be positive, got %d", cfg.FullLengthQuestions)
	}
	return cfg, nil
}

// stringList accepts either a comma separated string (env) or a YAML list.
func stringList(raw any) []string {
	var parts []string
	switch x := raw.(type) {
	case string:
		parts = strings.Split(x, ",")
	case []string:
		parts = x
	case []any:
		for _, e := range x {
			parts = append(parts, fmt.Sprint(e))
		}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
