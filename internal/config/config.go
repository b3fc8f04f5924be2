// Package config loads the analysis configuration driving exports and
// expectation checks. TOML is the native format; JSON is accepted for
// compatibility with configs generated by the upstream pipeline.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

type Config struct {
	Run     Run           `toml:"run" json:"run,omitempty"`
	Signals []string      `toml:"signals" json:"signals,omitempty"`
	Grid    []uint64      `toml:"grid" json:"grid,omitempty"`
	Output  Output        `toml:"output" json:"output,omitempty"`
	Expect  []Expectation `toml:"expect" json:"expect,omitempty"`
}

type Run struct {
	Label   string `toml:"label" json:"label,omitempty"`
	VCDFile string `toml:"vcd_file" json:"vcd_file,omitempty"`
}

type Output struct {
	Dir        string `toml:"dir" json:"dir,omitempty"`
	TimingCSV  bool   `toml:"timing_csv" json:"timing_csv"`
	SignalCSVs bool   `toml:"signal_csvs" json:"signal_csvs"`
	SummaryCSV bool   `toml:"summary_csv" json:"summary_csv"`
	Markdown   bool   `toml:"markdown" json:"markdown"`
	JSON       bool   `toml:"json" json:"json"`
}

// An Expectation is one declared property of the waveform: the signal
// must exist and, where set, match the declared width, reach the
// minimum transition count, and hold the final value at max-time.
type Expectation struct {
	Signal         string `toml:"signal" json:"signal"`
	Width          int    `toml:"width" json:"width,omitempty"`
	MinTransitions int    `toml:"min_transitions" json:"min_transitions,omitempty"`
	FinalValue     string `toml:"final_value" json:"final_value,omitempty"`
}

func Default() *Config {
	return &Config{
		Output: Output{
			Dir:        "results",
			TimingCSV:  true,
			SignalCSVs: true,
			SummaryCSV: true,
			Markdown:   true,
			JSON:       true,
		},
	}
}

// Load reads a config file, dispatching on extension: .toml or .json.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		cfg := Default()
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		return cfg, nil
	case ".json":
		cfg, err := parseJSON(data)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		return cfg, nil
	default:
		return nil, errors.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

func parseJSON(data []byte) (*Config, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.Run.Label = string(v.GetStringBytes("run", "label"))
	cfg.Run.VCDFile = string(v.GetStringBytes("run", "vcd_file"))

	for _, s := range v.GetArray("signals") {
		b, err := s.StringBytes()
		if err != nil {
			return nil, errors.Wrap(err, "signals entries must be strings")
		}
		cfg.Signals = append(cfg.Signals, string(b))
	}
	for _, g := range v.GetArray("grid") {
		t, err := g.Uint64()
		if err != nil {
			return nil, errors.Wrap(err, "grid entries must be non-negative integers")
		}
		cfg.Grid = append(cfg.Grid, t)
	}

	if dir := v.GetStringBytes("output", "dir"); dir != nil {
		cfg.Output.Dir = string(dir)
	}
	jsonBool(v, &cfg.Output.TimingCSV, "output", "timing_csv")
	jsonBool(v, &cfg.Output.SignalCSVs, "output", "signal_csvs")
	jsonBool(v, &cfg.Output.SummaryCSV, "output", "summary_csv")
	jsonBool(v, &cfg.Output.Markdown, "output", "markdown")
	jsonBool(v, &cfg.Output.JSON, "output", "json")

	for _, e := range v.GetArray("expect") {
		cfg.Expect = append(cfg.Expect, Expectation{
			Signal:         string(e.GetStringBytes("signal")),
			Width:          e.GetInt("width"),
			MinTransitions: e.GetInt("min_transitions"),
			FinalValue:     string(e.GetStringBytes("final_value")),
		})
	}
	return cfg, nil
}

func jsonBool(v *fastjson.Value, dst *bool, keys ...string) {
	if v.Exists(keys...) {
		*dst = v.GetBool(keys...)
	}
}
