package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	CORS      CORSConfig
	WS        WSConfig
	Dashboard DashboardConfig
	MQTT      MQTTConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type CORSConfig struct {
	AllowedOrigins string
}

// WSConfig tunes the live feed; PollIntervalMS is the keepalive ping period.
type WSConfig struct {
	PollIntervalMS int
}

// DashboardConfig controls the developer dashboard sessions.
type DashboardConfig struct {
	// OpenAccess admits ?dev=1 / ?dashboard=1 requests without a token.
	OpenAccess      bool
	ChatDelay       time.Duration
	RefreshSchedule string
	SessionTTL      time.Duration
}

type MQTTConfig struct {
	URL   string
	Topic string
}

type LogConfig struct {
	Level  string
	Format string
}

var defaults = map[string]any{
	"SERVER_PORT":                8080,
	"DB_HOST":                    "localhost",
	"DB_PORT":                    5432,
	"DB_USER":                    "indiflow",
	"DB_PASSWORD":                "indiflow_dev_password",
	"DB_NAME":                    "indiflow",
	"DB_SSLMODE":                 "disable",
	"JWT_SECRET":                 "indiflow-dev-secret",
	"JWT_EXPIRY_HOURS":           24,
	"REDIS_HOST":                 "localhost",
	"REDIS_PORT":                 6379,
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"CORS_ALLOWED_ORIGINS":       "*",
	"WS_POLL_INTERVAL_MS":        30000,
	"DASHBOARD_OPEN_ACCESS":      true,
	"DASHBOARD_CHAT_DELAY_MS":    800,
	"DASHBOARD_REFRESH_SCHEDULE": "@every 30s",
	"DASHBOARD_SESSION_TTL_MIN":  60,
	"MQTT_URL":                   "",
	"MQTT_TOPIC":                 "indiflow/training/+",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "console",
}

// LoadConfig reads settings from the environment. If CONFIG_FILE names a
// YAML file its keys (lower-cased variable names) are used underneath the
// environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWT:   JWTConfig{Secret: v.GetString("JWT_SECRET")},
		Redis: RedisConfig{Host: v.GetString("REDIS_HOST"), Password: v.GetString("REDIS_PASSWORD")},
		CORS:  CORSConfig{AllowedOrigins: v.GetString("CORS_ALLOWED_ORIGINS")},
		Dashboard: DashboardConfig{
			RefreshSchedule: v.GetString("DASHBOARD_REFRESH_SCHEDULE"),
		},
		MQTT: MQTTConfig{URL: v.GetString("MQTT_URL"), Topic: v.GetString("MQTT_TOPIC")},
		Log:  LogConfig{Level: v.GetString("LOG_LEVEL"), Format: v.GetString("LOG_FORMAT")},
	}

	var chatDelayMS, ttlMin int
	ints := map[string]*int{
		"SERVER_PORT":               &cfg.Server.Port,
		"DB_PORT":                   &cfg.Database.Port,
		"JWT_EXPIRY_HOURS":          &cfg.JWT.ExpiryHours,
		"REDIS_PORT":                &cfg.Redis.Port,
		"REDIS_DB":                  &cfg.Redis.DB,
		"WS_POLL_INTERVAL_MS":       &cfg.WS.PollIntervalMS,
		"DASHBOARD_CHAT_DELAY_MS":   &chatDelayMS,
		"DASHBOARD_SESSION_TTL_MIN": &ttlMin,
	}
	for key, dst := range ints {
		n, err := intSetting(v, key)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}

	open, err := cast.ToBoolE(v.Get("DASHBOARD_OPEN_ACCESS"))
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_OPEN_ACCESS: %w", err)
	}
	cfg.Dashboard.OpenAccess = open
	cfg.Dashboard.ChatDelay = time.Duration(chatDelayMS) * time.Millisecond
	cfg.Dashboard.SessionTTL = time.Duration(ttlMin) * time.Minute

	return cfg, nil
}

func intSetting(v *viper.Viper, key string) (int, error) {
	return cast.ToIntE(v.Get(key))
}
