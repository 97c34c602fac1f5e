// Package config loads the application configuration from an optional YAML
// file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultCSVPath is the dataset used when neither a csv nor a sqlite source
// is configured
const DefaultCSVPath = "./data/incidents.csv"

// Config is the application configuration
type Config struct {
	Server  ServerConfig        `yaml:"server"`
	Dataset DatasetConfig       `yaml:"dataset"`
	Display DisplayConfig       `yaml:"display"`
	Filters map[string][]string `yaml:"filters"` // declared option order per nominal attribute
	Log     LogConfig           `yaml:"log"`
}

// ServerConfig configures the HTTP adapter
type ServerConfig struct {
	Port string `yaml:"port" validate:"required"`
	// JWTSecret enables bearer auth when set
	JWTSecret string `yaml:"jwt_secret"`
	// RateLimit is the number of requests a client may make per RateWindow;
	// 0 disables limiting
	RateLimit  int           `yaml:"rate_limit" validate:"gte=0"`
	RateWindow time.Duration `yaml:"rate_window" validate:"gte=0"`
}

// DatasetConfig locates the dataset and boundary files
type DatasetConfig struct {
	CSVPath      string  `yaml:"csv_path"`
	SQLitePath   string  `yaml:"sqlite_path"`
	BoundaryPath string  `yaml:"boundary_path"`
	JitterMeters float64 `yaml:"jitter_meters" validate:"gte=0"`
}

// DisplayConfig holds map, marker and color settings
type DisplayConfig struct {
	Width             int      `yaml:"width" validate:"gt=0"`
	Height            int      `yaml:"height" validate:"gt=0"`
	Scale             float64  `yaml:"scale" validate:"gt=0"`
	TranslateX        float64  `yaml:"translate_x"`
	TranslateY        float64  `yaml:"translate_y"`
	Radius            float64  `yaml:"radius" validate:"gt=0"`
	HoverMultiplier   float64  `yaml:"hover_multiplier" validate:"gte=1"`
	MinZoom           float64  `yaml:"min_zoom" validate:"gt=0"`
	MaxZoom           float64  `yaml:"max_zoom" validate:"gtefield=MinZoom"`
	FadeInMillis      int      `yaml:"fade_in_ms" validate:"gte=0"`
	FadeOutMillis     int      `yaml:"fade_out_ms" validate:"gte=0"`
	DefaultColor      string   `yaml:"default_color" validate:"hexcolor"`
	MissingColor      string   `yaml:"missing_color" validate:"hexcolor"`
	LowColor          string   `yaml:"low_color" validate:"hexcolor"`
	HighColor         string   `yaml:"high_color" validate:"hexcolor"`
	Palette           []string `yaml:"palette" validate:"dive,hexcolor"`
	SimplifyTolerance float64  `yaml:"simplify_tolerance" validate:"gte=0"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       ":8080",
			RateLimit:  120,
			RateWindow: time.Minute,
		},
		Dataset: DatasetConfig{
			CSVPath: DefaultCSVPath,
		},
		Display: DisplayConfig{
			Width:           750,
			Height:          450,
			Scale:           1070,
			TranslateX:      480,
			TranslateY:      250,
			Radius:          4,
			HoverMultiplier: 2,
			MinZoom:         1,
			MaxZoom:         8,
			FadeInMillis:    200,
			FadeOutMillis:   500,
			DefaultColor:    "#4682b4",
			MissingColor:    "#bdbdbd",
			LowColor:        "#ffffb2",
			HighColor:       "#bd0026",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path when it is not empty, applies environment overrides and
// validates the result. The default csv path is only used when neither
// csv_path nor sqlite_path (or DB_PATH) is set.
func Load(path string) (*Config, error) {
	cfg := Default()
	// a configured sqlite source must not lose to the default csv path
	cfg.Dataset.CSVPath = ""

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.Dataset.CSVPath == "" && cfg.Dataset.SQLitePath == "" {
		cfg.Dataset.CSVPath = DefaultCSVPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every field constraint
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Dataset.CSVPath == "" && c.Dataset.SQLitePath == "" {
		return errors.New("invalid config: dataset needs csv_path or sqlite_path")
	}
	return nil
}

// applyEnv applies PORT, DB_PATH, JWT_SECRET and INCIDENTMAP_* overrides
func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		cfg.Server.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Dataset.SQLitePath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}

	strs := map[string]*string{
		"INCIDENTMAP_CSV":        &cfg.Dataset.CSVPath,
		"INCIDENTMAP_BOUNDARY":   &cfg.Dataset.BoundaryPath,
		"INCIDENTMAP_LOG_LEVEL":  &cfg.Log.Level,
		"INCIDENTMAP_LOG_FORMAT": &cfg.Log.Format,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"INCIDENTMAP_JITTER_METERS": &cfg.Dataset.JitterMeters,
	}
	for name, dst := range floats {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = f
	}

	if v := os.Getenv("INCIDENTMAP_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid INCIDENTMAP_RATE_LIMIT: %w", err)
		}
		cfg.Server.RateLimit = n
	}
	return nil
}
