package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// DefaultPaths are searched in order when no explicit path is given.
var DefaultPaths = []string{"config.yml", "./config/config.yml"}

// LoadAppConfig loads the configuration and stores it in Config.
func LoadAppConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}

// Load reads the configuration from path, or from the first of DefaultPaths
// that exists when path is empty. A missing default file is not an error:
// Default() plus the environment is a complete configuration.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	data, err := readConfigFile(path)
	if err != nil {
		return AppConfig{}, err
	}
	if data != nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return AppConfig{}, err
	}

	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return data, nil
	}
	for _, p := range DefaultPaths {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", p, err)
		}
	}
	return nil, nil
}

// Validate checks the struct tags of every section.
func Validate(cfg AppConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyEnv overrides selected fields from TRANSIT_* variables.
func applyEnv(cfg *AppConfig, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("TRANSIT_ENVIRONMENT", &cfg.Server.Environment)
	str("TRANSIT_LOG_LEVEL", &cfg.Server.LogLevel)
	str("TRANSIT_LOG_FORMAT", &cfg.Server.LogFormat)
	str("TRANSIT_GRAPH_LOCATION", &cfg.Graph.Location)
	str("TRANSIT_GRAPH_CACHE", &cfg.Graph.CachePath)
	str("TRANSIT_GTFS_PATH", &cfg.GTFS.StaticPath)
	str("TRANSIT_TRIP_UPDATES_URL", &cfg.GTFSRT.TripUpdatesURL)
	str("TRANSIT_API_KEY", &cfg.GTFSRT.APIKey)

	if v, ok := lookup("TRANSIT_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TRANSIT_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v, ok := lookup("TRANSIT_REALTIME_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid TRANSIT_REALTIME_ENABLED %q: %w", v, err)
		}
		cfg.Realtime.Enabled = enabled
	}
	if v, ok := lookup("TRANSIT_CORS_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
	return nil
}
