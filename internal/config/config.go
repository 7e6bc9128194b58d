package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const (
	AppName    = "Binary Options Winrate Analyzer"
	AppVersion = "1.2.0"
)

// Config represents the application configuration
type Config struct {
	Log      LogConfig      `yaml:"logger"`
	Paths    PathsConfig    `yaml:"paths"`
	Graph    GraphConfig    `yaml:"graph_settings"`
	Colors   ColorsConfig   `yaml:"colors"`
	Analysis AnalysisConfig `yaml:"analysis_settings"`
	Rates    RatesConfig    `yaml:"rates"`
	Journal  JournalConfig  `yaml:"journal"`
	Web      WebConfig      `yaml:"web"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn error"`
	Encoding string `yaml:"encoding" validate:"oneof=console json"`
}

// PathsConfig holds input and output locations
type PathsConfig struct {
	TradesDir  string `yaml:"trades_dir" validate:"required"`
	OutputsDir string `yaml:"outputs_dir" validate:"required"`
}

// GraphConfig holds chart page settings
type GraphConfig struct {
	FigureWidth     int     `yaml:"figure_width" validate:"min=1"`  // inches, 100px each on the page
	FigureHeight    int     `yaml:"figure_height" validate:"min=1"`
	BackgroundColor string  `yaml:"background_color" validate:"hexcolor"`
	PlotBackground  string  `yaml:"plot_background" validate:"hexcolor"`
	GridAlpha       float64 `yaml:"grid_alpha" validate:"gte=0,lte=1"`
	FontSize        int     `yaml:"font_size" validate:"min=1"`
}

// ColorsConfig holds series colours
type ColorsConfig struct {
	Win          string `yaml:"win" validate:"hexcolor"`
	Loss         string `yaml:"loss" validate:"hexcolor"`
	Line         string `yaml:"line" validate:"hexcolor"`
	Threshold    string `yaml:"threshold" validate:"hexcolor"`
	WeekProgress string `yaml:"week_progress" validate:"hexcolor"`
}

// AnalysisConfig holds statistics settings
type AnalysisConfig struct {
	RollingWindowPercent int `yaml:"rolling_window_percent" validate:"min=1,max=100"`
	TopAssetsCount       int `yaml:"top_assets_count" validate:"min=1"`
	MaxFilesToShow       int `yaml:"max_files_to_show" validate:"min=1"`
}

// RatesConfig holds exchange-rate API settings
type RatesConfig struct {
	BaseURL   string        `yaml:"base_url" validate:"required,url"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	CacheTTL  time.Duration `yaml:"cache_ttl" validate:"gt=0"`
	RateLimit int           `yaml:"rate_limit" validate:"min=1"` // requests per minute
}

// JournalConfig holds run history settings
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// WebConfig holds report server settings
type WebConfig struct {
	Port int `yaml:"port" validate:"min=1,max=65535"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Paths: PathsConfig{
			TradesDir:  "trades",
			OutputsDir: "outputs",
		},
		Graph: GraphConfig{
			FigureWidth:     14,
			FigureHeight:    9,
			BackgroundColor: "#1e1e1e",
			PlotBackground:  "#2b2b2b",
			GridAlpha:       0.5,
			FontSize:        11,
		},
		Colors: ColorsConfig{
			Win:          "#00ff88",
			Loss:         "#ff4444",
			Line:         "#00d4ff",
			Threshold:    "#ffaa00",
			WeekProgress: "#ff8800",
		},
		Analysis: AnalysisConfig{
			RollingWindowPercent: 10,
			TopAssetsCount:       10,
			MaxFilesToShow:       5,
		},
		Rates: RatesConfig{
			BaseURL:   "https://api.exchangerate-api.com/v4",
			Timeout:   10 * time.Second,
			CacheTTL:  5 * time.Minute,
			RateLimit: 30,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join("outputs", "journal.db"),
		},
		Web: WebConfig{
			Port: 8765,
		},
	}
}

// Load loads configuration from a YAML or legacy INI file.
// A missing file is not an error: defaults are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ini":
			if err := loadINI(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Override with environment variables if set
	if v := os.Getenv("WINRATE_RATES_URL"); v != "" {
		cfg.Rates.BaseURL = v
	}
	if v := os.Getenv("WINRATE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("WINRATE_TRADES_DIR"); v != "" {
		cfg.Paths.TradesDir = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadINI reads the analyzer_config.ini layout: graph_settings, colors and
// analysis_settings sections. Keys that are absent keep their defaults.
func loadINI(data []byte, cfg *Config) error {
	f, err := ini.Load(data)
	if err != nil {
		return err
	}

	g := f.Section("graph_settings")
	cfg.Graph.FigureWidth = g.Key("figure_width").MustInt(cfg.Graph.FigureWidth)
	cfg.Graph.FigureHeight = g.Key("figure_height").MustInt(cfg.Graph.FigureHeight)
	cfg.Graph.BackgroundColor = g.Key("background_color").MustString(cfg.Graph.BackgroundColor)
	cfg.Graph.PlotBackground = g.Key("plot_background").MustString(cfg.Graph.PlotBackground)
	cfg.Graph.GridAlpha = g.Key("grid_alpha").MustFloat64(cfg.Graph.GridAlpha)
	cfg.Graph.FontSize = g.Key("font_size").MustInt(cfg.Graph.FontSize)

	c := f.Section("colors")
	cfg.Colors.Win = c.Key("win").MustString(cfg.Colors.Win)
	cfg.Colors.Loss = c.Key("loss").MustString(cfg.Colors.Loss)
	cfg.Colors.Line = c.Key("line").MustString(cfg.Colors.Line)
	cfg.Colors.Threshold = c.Key("threshold").MustString(cfg.Colors.Threshold)
	cfg.Colors.WeekProgress = c.Key("week_progress").MustString(cfg.Colors.WeekProgress)

	a := f.Section("analysis_settings")
	cfg.Analysis.RollingWindowPercent = a.Key("rolling_window_percent").MustInt(cfg.Analysis.RollingWindowPercent)
	cfg.Analysis.TopAssetsCount = a.Key("top_assets_count").MustInt(cfg.Analysis.TopAssetsCount)
	cfg.Analysis.MaxFilesToShow = a.Key("max_files_to_show").MustInt(cfg.Analysis.MaxFilesToShow)

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
