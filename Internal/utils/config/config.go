package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string `yaml:"port"`
		AllowedOrigins string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Shocks struct {
		ReturnThreshold float64 `yaml:"return_threshold"`
		WindowDays      int     `yaml:"window_days"`
		PivotLookback   int     `yaml:"pivot_lookback"`
		CutoffDays      int     `yaml:"cutoff_days"`
		MaxEvents       int     `yaml:"max_events"`
		MinGapDays      int     `yaml:"min_gap_days"`
	} `yaml:"shocks"`

	News struct {
		SearchBackDays    int     `yaml:"search_back_days"`
		SearchForwardDays int     `yaml:"search_forward_days"`
		MinPrimaryItems   int     `yaml:"min_primary_items"`
		MatchScoreFloor   float64 `yaml:"match_score_floor"`
		SecondaryLimit    int     `yaml:"secondary_limit"`
		RequestsPerMinute int     `yaml:"requests_per_minute"`
	} `yaml:"news"`

	AI struct {
		Model            string   `yaml:"model"`
		CallTimeout      Duration `yaml:"call_timeout"`
		ClassifyPoolSize int      `yaml:"classify_pool_size"`
	} `yaml:"ai"`

	Cache struct {
		AnalysisTTL Duration `yaml:"analysis_ttl"`
		EventsTTL   Duration `yaml:"events_ttl"`
		PSRatioTTL  Duration `yaml:"ps_ratio_ttl"`
		MarkerFile  string   `yaml:"marker_file"`
	} `yaml:"cache"`
}

// Duration wraps time.Duration so yaml values like "25s" parse cleanly.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Defaults returns the configuration used when no config.yaml is found.
// The shock and news numbers are load-bearing: the detector and dedup
// behavior in Internal/shocks is specified against them.
func Defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Server.AllowedOrigins = "http://localhost:5173"
	cfg.Shocks.ReturnThreshold = 0.05
	cfg.Shocks.WindowDays = 14
	cfg.Shocks.PivotLookback = 10
	cfg.Shocks.CutoffDays = 730
	cfg.Shocks.MaxEvents = 5
	cfg.Shocks.MinGapDays = 3
	cfg.News.SearchBackDays = 10
	cfg.News.SearchForwardDays = 4
	cfg.News.MinPrimaryItems = 3
	cfg.News.MatchScoreFloor = 0.7
	cfg.News.SecondaryLimit = 15
	cfg.News.RequestsPerMinute = 60
	cfg.AI.Model = "gemini-2.0-flash"
	cfg.AI.CallTimeout = Duration{25 * time.Second}
	cfg.AI.ClassifyPoolSize = 5
	cfg.Cache.AnalysisTTL = Duration{30 * time.Minute}
	cfg.Cache.EventsTTL = Duration{24 * time.Hour}
	cfg.Cache.PSRatioTTL = Duration{time.Hour}
	cfg.Cache.MarkerFile = "news_cache.json"
	return cfg
}

func LoadConfig() (*Config, error) {
	// Resolve path relative to this file first
	_, filePath, _, ok := runtime.Caller(0)
	var basePath string
	if ok {
		basePath = filepath.Dir(filePath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	possiblePaths := []string{}
	if basePath != "" {
		possiblePaths = append(possiblePaths, filepath.Join(basePath, "config.yaml"))
	}
	possiblePaths = append(possiblePaths,
		filepath.Join(cwd, "Internal", "utils", "config", "config.yaml"),
		"Internal/utils/config/config.yaml",
		"config.yaml",
	)

	var data []byte
	for _, path := range possiblePaths {
		data, err = os.ReadFile(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		// Missing config file is not fatal; the defaults are complete.
		return Defaults(), nil
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
