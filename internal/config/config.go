// Package config holds the boqa-eval.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/p2gx/boqa-eval/internal/fixture"
	"github.com/p2gx/boqa-eval/internal/metrics"
	"github.com/p2gx/boqa-eval/internal/store"
)

// DefaultPath is looked up in the working directory when --config is not given.
const DefaultPath = "boqa-eval.yaml"

type Config struct {
	Flatten  FlattenConfig  `yaml:"flatten"`
	Fixtures FixturesConfig `yaml:"fixtures"`
}

type FlattenConfig struct {
	Input       string `yaml:"input"`
	Schema      string `yaml:"schema,omitempty"`
	TableOut    string `yaml:"table_out"`
	ChartOut    string `yaml:"chart_out"`
	SummaryOut  string `yaml:"summary_out,omitempty"`
	MarkdownOut string `yaml:"markdown_out,omitempty"`
	DuckDB      string `yaml:"duckdb,omitempty"`
	TopK        []int  `yaml:"top_k"`
	Head        int    `yaml:"head"`
	NoChart     bool   `yaml:"no_chart"`
}

type FixturesConfig struct {
	Alpha    []float64 `yaml:"alpha"`
	Beta     []float64 `yaml:"beta"`
	Cases    int       `yaml:"cases"`
	MaxCount int       `yaml:"max_count"`
	// Negative seeds draw counts non-deterministically.
	Seed int64  `yaml:"seed"`
	Out  string `yaml:"out"`
}

// Options converts the configured sweep into generator options.
func (f FixturesConfig) Options() fixture.Options {
	return fixture.Options{
		Alpha:    f.Alpha,
		Beta:     f.Beta,
		Cases:    f.Cases,
		MaxCount: f.MaxCount,
		Seed:     f.Seed,
	}
}

func Default() Config {
	gen := fixture.DefaultOptions()
	return Config{
		Flatten: FlattenConfig{
			TableOut: "boqa_results_parsed.csv",
			ChartOut: "boqa_accuracy_analysis.png",
			TopK:     append([]int(nil), metrics.DefaultTopK...),
			Head:     10,
		},
		Fixtures: FixturesConfig{
			Alpha:    gen.Alpha,
			Beta:     gen.Beta,
			Cases:    gen.Cases,
			MaxCount: gen.MaxCount,
			Seed:     gen.Seed,
			Out:      fixture.DefaultOut,
		},
	}
}

func LoadConfig(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Load reads path over Default(). An empty path falls back to DefaultPath;
// a missing DefaultPath yields the defaults, a missing explicit path is an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := LoadConfig(path, &cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) YAML() ([]byte, error) {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return raw, nil
}

// WriteDefault writes Default() to path unless a file already exists there.
// It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if store.FileExists(path) {
		return false, nil
	}
	raw, err := Default().YAML()
	if err != nil {
		return false, err
	}
	if err := store.WriteFile(path, raw); err != nil {
		return false, err
	}
	return true, nil
}
