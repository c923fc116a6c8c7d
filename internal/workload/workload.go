// Package workload loads the YAML workload descriptions used by the profiling
// harnesses under profile/.
package workload

import (
	"os"

	"github.com/pkg/profile"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Profile modes understood by the harnesses.
const (
	ProfileCPU    = "cpu"
	ProfileMem    = "mem"
	ProfileAllocs = "allocs"
)

// Config describes one profiling run.
type Config struct {
	Rounds     int     `yaml:"rounds"`
	Iterations int     `yaml:"iterations"`
	Entities   int     `yaml:"entities"`
	Churn      float64 `yaml:"churn"`   // fraction of entities migrated or destroyed per iteration
	Profile    string  `yaml:"profile"` // cpu, mem or allocs
	Output     string  `yaml:"output"`  // directory for profile files
}

// Default returns the workload used when no file is given.
func Default() Config {
	return Config{
		Rounds:     50,
		Iterations: 1000,
		Entities:   1000,
		Churn:      0.25,
		Profile:    ProfileAllocs,
		Output:     ".",
	}
}

// Load reads path and overlays it on Default. An empty path yields Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "workload: load %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML workload and overlays it on Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, eris.Wrap(err, "workload: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the ranges of every field.
func (c Config) Validate() error {
	switch {
	case c.Rounds <= 0:
		return eris.Errorf("workload: rounds must be positive, got %d", c.Rounds)
	case c.Iterations <= 0:
		return eris.Errorf("workload: iterations must be positive, got %d", c.Iterations)
	case c.Entities <= 0:
		return eris.Errorf("workload: entities must be positive, got %d", c.Entities)
	case c.Churn < 0 || c.Churn > 1:
		return eris.Errorf("workload: churn must be within [0, 1], got %v", c.Churn)
	}
	switch c.Profile {
	case ProfileCPU, ProfileMem, ProfileAllocs:
	default:
		return eris.Errorf("workload: unknown profile mode %q", c.Profile)
	}
	return nil
}

// ChurnCount returns how many entities one iteration touches.
func (c Config) ChurnCount() int {
	return int(float64(c.Entities) * c.Churn)
}

// ProfileOptions translates the profile mode into pkg/profile options. The
// harnesses stop the profiler themselves, so the shutdown hook is disabled.
func (c Config) ProfileOptions() []func(*profile.Profile) {
	opts := []func(*profile.Profile){profile.ProfilePath(c.Output), profile.NoShutdownHook}
	switch c.Profile {
	case ProfileCPU:
		opts = append(opts, profile.CPUProfile)
	case ProfileMem:
		opts = append(opts, profile.MemProfile)
	default:
		opts = append(opts, profile.MemProfileAllocs)
	}
	return opts
}
