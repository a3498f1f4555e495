package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the nearby restaurants tool.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the monitoring server.
// - Serve: Keep serving the screen state over HTTP after rendering it.
// - ProviderType: The type of search provider to use (nominatim, google).
// - APIKey: The API key for the search provider (required for Google).
// - Location: Where the position fix comes from and whether consent was given.
// - Database: Optional PostgreSQL settings for the search history.
type Config struct {
	Env          string         `yaml:"env"`              // Env is the current environment: local, development, production.
	Port         int            `yaml:"health_port"`      // Port is the monitoring server port.
	Serve        bool           `yaml:"serve"`            // Serve keeps the process alive serving /state.
	ProviderType string         `yaml:"provider.type"`    // ProviderType specifies which search provider to use.
	APIKey       string         `yaml:"provider.api_key"` // The API key for accessing external services.
	Timeout      time.Duration  `yaml:"shutdown_timeout"` // Timeout bounds the monitoring server shutdown.
	Location     LocationConfig `yaml:"location"`         // Location holds the position source settings.
	Database     PostgresConfig `yaml:"postgres"`         // Database holds the postgres database configuration.
}

// LocationConfig describes the position source.
type LocationConfig struct {
	Source    string  `yaml:"source"`    // Source is "ip" or "static".
	Latitude  float64 `yaml:"latitude"`  // Latitude of the static position.
	Longitude float64 `yaml:"longitude"` // Longitude of the static position.
	Consent   bool    `yaml:"consent"`   // Consent grants location access without prompting.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Name     string `yaml:"db_name"`  // Name is the name of the database.
}

// Enabled reports whether the search history database is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

var bindings = map[string]string{
	"env":                "NEARBY_ENV",
	"health_port":        "NEARBY_HEALTH_PORT",
	"serve":              "NEARBY_SERVE",
	"shutdown_timeout":   "NEARBY_SHUTDOWN_TIMEOUT",
	"provider.type":      "NEARBY_PROVIDER_TYPE",
	"provider.api_key":   "NEARBY_PROVIDER_KEY",
	"location.source":    "NEARBY_LOCATION_SOURCE",
	"location.latitude":  "NEARBY_LATITUDE",
	"location.longitude": "NEARBY_LONGITUDE",
	"location.consent":   "NEARBY_LOCATION_CONSENT",
	"postgres.host":      "DB_HOST",
	"postgres.port":      "DB_PORT",
	"postgres.user":      "DB_USERNAME",
	"postgres.password":  "DB_PASSWORD",
	"postgres.db_name":   "DB_NAME",
}

var defaults = map[string]string{
	"env":                "production",
	"health_port":        "8080",
	"serve":              "false",
	"shutdown_timeout":   "5s",
	"provider.type":      "nominatim",
	"location.source":    "ip",
	"location.latitude":  "0",
	"location.longitude": "0",
	"location.consent":   "false",
	"postgres.port":      "5432",
}

// MustLoad loads the configuration from the environment, an optional .env file and
// an optional YAML file named by NEARBY_CONFIG. Environment variables win over the file.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}

	if path, ok := os.LookupEnv("NEARBY_CONFIG"); ok && path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	healthPort, err := strconv.Atoi(v.GetString("health_port"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	serve, err := strconv.ParseBool(v.GetString("serve"))
	if err != nil {
		panic("failed to parse serve flag from configuration, must be a boolean")
	}

	timeout, err := time.ParseDuration(v.GetString("shutdown_timeout"))
	if err != nil {
		panic("failed to parse shutdown timeout from configuration")
	}

	latitude, err := strconv.ParseFloat(v.GetString("location.latitude"), 64)
	if err != nil {
		panic("failed to parse latitude from configuration")
	}

	longitude, err := strconv.ParseFloat(v.GetString("location.longitude"), 64)
	if err != nil {
		panic("failed to parse longitude from configuration")
	}

	consent, err := strconv.ParseBool(v.GetString("location.consent"))
	if err != nil {
		panic("failed to parse location consent from configuration, must be a boolean")
	}

	return &Config{
		Env:          v.GetString("env"),
		Port:         healthPort,
		Serve:        serve,
		ProviderType: v.GetString("provider.type"),
		APIKey:       v.GetString("provider.api_key"),
		Timeout:      timeout,
		Location: LocationConfig{
			Source:    v.GetString("location.source"),
			Latitude:  latitude,
			Longitude: longitude,
			Consent:   consent,
		},
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.db_name"),
		},
	}
}
