package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTolerance is the slack applied to every timing check to absorb
// scheduler jitter in the simulation under test.
const DefaultTolerance = 10 * time.Millisecond

// Ruleset selects how forks are modeled.
type Ruleset int

const (
	// RulesetClassic models forks as per-neighbor pairs around the table.
	RulesetClassic Ruleset = iota
	// RulesetBonus models forks as a single counting pool of size
	// philosophers/2, matching the semaphore-based bonus simulations.
	RulesetBonus
)

func (r Ruleset) String() string {
	switch r {
	case RulesetClassic:
		return "classic"
	case RulesetBonus:
		return "bonus"
	default:
		return fmt.Sprintf("ruleset(%d)", int(r))
	}
}

// Simulation holds the parameters the simulation under test was started with,
// plus validator-only settings. It is assembled and validated by the CLI and
// treated as immutable by the engine.
type Simulation struct {
	// Philosophers is the number of seats at the table. Ids are 1-based.
	Philosophers uint32

	// TimeToDie is how long a philosopher survives without finishing a meal.
	TimeToDie time.Duration
	// TimeToEat is the minimum duration of one meal.
	TimeToEat time.Duration
	// TimeToSleep is the minimum duration of one nap.
	TimeToSleep time.Duration

	// MustEat, when non-nil, is the meal count after which a philosopher is
	// done and must not eat again.
	MustEat *uint32

	// Ruleset selects the fork model.
	Ruleset Ruleset

	// Tolerance is the jitter allowance around every deadline comparison.
	Tolerance time.Duration

	// Debug enables the per-record diagnostic trace and the full anomaly
	// listing in the report.
	Debug bool
}

// Validate reports whether the parameters describe a runnable dinner.
func (s Simulation) Validate() error {
	if s.Philosophers == 0 {
		return errors.New("config: number of philosophers must be positive")
	}
	if s.TimeToDie <= 0 {
		return errors.New("config: time to die must be positive")
	}
	if s.TimeToEat <= 0 {
		return errors.New("config: time to eat must be positive")
	}
	if s.TimeToSleep <= 0 {
		return errors.New("config: time to sleep must be positive")
	}
	if s.MustEat != nil && *s.MustEat == 0 {
		return errors.New("config: number of times each philosopher must eat must be positive")
	}
	if s.Tolerance < 0 {
		return errors.New("config: tolerance must not be negative")
	}
	return nil
}

// PoolSize returns the size of the shared fork pool under the bonus ruleset.
func (s Simulation) PoolSize() int {
	return int(s.Philosophers / 2)
}

// ToleranceMillis returns the tolerance in the unit event timestamps use.
func (s Simulation) ToleranceMillis() uint64 {
	return uint64(s.Tolerance.Milliseconds())
}

// File is the optional YAML overlay for validator settings. All fields are
// pointers so absent keys leave the flag-derived values untouched.
type File struct {
	ToleranceMS *int64 `yaml:"tolerance_ms"`
	Debug       *bool  `yaml:"debug"`
	Bonus       *bool  `yaml:"bonus"`
}

// LoadFile reads and decodes the YAML overlay at path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if f.ToleranceMS != nil && *f.ToleranceMS < 0 {
		return File{}, fmt.Errorf("config: tolerance_ms in %s must not be negative", path)
	}
	return f, nil
}

// Apply copies the overlay's present fields onto s.
func (f File) Apply(s *Simulation) {
	if f.ToleranceMS != nil {
		s.Tolerance = time.Duration(*f.ToleranceMS) * time.Millisecond
	}
	if f.Debug != nil {
		s.Debug = *f.Debug
	}
	if f.Bonus != nil && *f.Bonus {
		s.Ruleset = RulesetBonus
	}
}
