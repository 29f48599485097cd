package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HistoryFile string     `yaml:"history_file"`
	Regression  Regression `yaml:"regression"`
	Stability   Stability  `yaml:"stability"`
	Report      Report     `yaml:"report"`
	Retention   Retention  `yaml:"retention"`
}

type Regression struct {
	Threshold   float64 `yaml:"threshold"`
	TrendWindow int     `yaml:"trend_window"`
}

type Stability struct {
	MinRuns   int     `yaml:"min_runs"`
	FlakyMin  float64 `yaml:"flaky_min"`
	FlakyMax  float64 `yaml:"flaky_max"`
	StableMin float64 `yaml:"stable_min"`
}

type Report struct {
	TrendRuns    int     `yaml:"trend_runs"`
	RecentWindow int     `yaml:"recent_window"`
	TargetRate   float64 `yaml:"target_rate"`
	GoodRate     float64 `yaml:"good_rate"`
	WarnRate     float64 `yaml:"warn_rate"`
}

type Retention struct {
	// MaxRuns caps the number of retained runs; 0 keeps everything.
	MaxRuns int `yaml:"max_runs"`
}

func Default() *Config {
	return &Config{
		HistoryFile: "benchtrack_history.json",
		Regression: Regression{
			Threshold:   0.05,
			TrendWindow: 3,
		},
		Stability: Stability{
			MinRuns:   3,
			FlakyMin:  20,
			FlakyMax:  80,
			StableMin: 80,
		},
		Report: Report{
			TrendRuns:    10,
			RecentWindow: 5,
			TargetRate:   70,
			GoodRate:     70,
			WarnRate:     50,
		},
	}
}

// Load reads the config file at path. A missing file yields the defaults; a
// present file is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.HistoryFile == "" {
		return fmt.Errorf("history_file is required")
	}
	if cfg.Regression.Threshold <= 0 || cfg.Regression.Threshold >= 1 {
		return fmt.Errorf("regression.threshold must be in (0, 1), got %g", cfg.Regression.Threshold)
	}
	if cfg.Regression.TrendWindow < 1 {
		return fmt.Errorf("regression.trend_window must be at least 1")
	}
	if cfg.Stability.MinRuns < 1 {
		return fmt.Errorf("stability.min_runs must be at least 1")
	}
	if cfg.Stability.FlakyMin < 0 || cfg.Stability.FlakyMax > 100 ||
		cfg.Stability.FlakyMin > cfg.Stability.FlakyMax {
		return fmt.Errorf("stability flaky band [%g, %g] must sit inside [0, 100]",
			cfg.Stability.FlakyMin, cfg.Stability.FlakyMax)
	}
	if cfg.Stability.StableMin <= 0 || cfg.Stability.StableMin > 100 {
		return fmt.Errorf("stability.stable_min must be in (0, 100], got %g", cfg.Stability.StableMin)
	}
	if cfg.Report.TrendRuns < 1 {
		return fmt.Errorf("report.trend_runs must be at least 1")
	}
	if cfg.Report.RecentWindow < 1 {
		return fmt.Errorf("report.recent_window must be at least 1")
	}
	for name, rate := range map[string]float64{
		"target_rate": cfg.Report.TargetRate,
		"good_rate":   cfg.Report.GoodRate,
		"warn_rate":   cfg.Report.WarnRate,
	} {
		if rate < 0 || rate > 100 {
			return fmt.Errorf("report.%s must be in [0, 100], got %g", name, rate)
		}
	}
	if cfg.Report.WarnRate > cfg.Report.GoodRate {
		return fmt.Errorf("report.warn_rate %g must not exceed good_rate %g",
			cfg.Report.WarnRate, cfg.Report.GoodRate)
	}
	if cfg.Retention.MaxRuns < 0 {
		return fmt.Errorf("retention.max_runs must not be negative")
	}
	return nil
}
