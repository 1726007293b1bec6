package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/rpattn/assettrack/internal/db"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// AlertConfig holds the background alert job settings. Windows are in
// days; Schedule is a standard 5-field cron expression.
type AlertConfig struct {
	WarrantyWindowDays    int
	MaintenanceWindowDays int
	Schedule              string
}

// Config is the full application configuration.
type Config struct {
	DB     db.Config
	Server ServerConfig
	Alerts AlertConfig
}

// Default returns the configuration used when no file or env override
// is present.
func Default() Config {
	return Config{
		DB: db.DefaultConfig(),
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Alerts: AlertConfig{
			WarrantyWindowDays:    30,
			MaintenanceWindowDays: 30,
			Schedule:              "0 8 * * *",
		},
	}
}

// Load reads config.yaml from configPath if present and applies env
// overrides. Missing file means defaults plus env.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("ASSETTRACK")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if v.IsSet("database.host") {
		cfg.DB.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.DB.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.DB.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.DB.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.DB.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.DB.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("alerts.warranty_window_days") {
		cfg.Alerts.WarrantyWindowDays = v.GetInt("alerts.warranty_window_days")
	}
	if v.IsSet("alerts.maintenance_window_days") {
		cfg.Alerts.MaintenanceWindowDays = v.GetInt("alerts.maintenance_window_days")
	}
	if v.IsSet("alerts.schedule") {
		cfg.Alerts.Schedule = v.GetString("alerts.schedule")
	}

	return cfg, nil
}
