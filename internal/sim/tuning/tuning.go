package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	Seed int64 `yaml:"seed"`

	// TickMs is the driver's dig cadence.
	TickMs int `yaml:"tick_ms"`
	// DumpEveryTicks writes a world dump every N ticks (0 = only at exit).
	DumpEveryTicks int `yaml:"dump_every_ticks"`

	Dig Dig `yaml:"dig"`
	// World describes how the driver populates a fresh run.
	World World `yaml:"world"`
}

type Dig struct {
	// ShareDivisor bounds one dig to deposit/ShareDivisor before multipliers.
	ShareDivisor         uint32 `yaml:"share_divisor"`
	ToolWearPerDig       uint32 `yaml:"tool_wear_per_dig"`
	HealthCostPerDig     uint32 `yaml:"health_cost_per_dig"`
	DefaultToolCondition uint32 `yaml:"default_tool_condition"`
}

type World struct {
	Deposit      uint32   `yaml:"deposit"`
	WorkerHealth uint32   `yaml:"worker_health"`
	WorkerNames  []string `yaml:"worker_names"`
	StarterTool  string   `yaml:"starter_tool"`
}

func Defaults() Tuning {
	return Tuning{
		Seed:   1337,
		TickMs: 500,
		Dig:    DefaultDig(),
		World: World{
			Deposit:      50000,
			WorkerHealth: 100,
			WorkerNames:  []string{"ada", "bo", "cy"},
		},
	}
}

func DefaultDig() Dig {
	return Dig{
		ShareDivisor:         100,
		ToolWearPerDig:       1,
		HealthCostPerDig:     1,
		DefaultToolCondition: 100,
	}
}

// Load reads path over the defaults, so a partial file only overrides what
// it names.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickMs <= 0 {
		return fmt.Errorf("tick_ms must be > 0")
	}
	if t.DumpEveryTicks < 0 {
		return fmt.Errorf("dump_every_ticks must be >= 0")
	}
	if t.Dig.ShareDivisor == 0 {
		return fmt.Errorf("dig.share_divisor must be > 0")
	}
	if t.Dig.DefaultToolCondition > 100 {
		return fmt.Errorf("dig.default_tool_condition must be <= 100")
	}
	return nil
}

func (t Tuning) TickDuration() time.Duration {
	return time.Duration(t.TickMs) * time.Millisecond
}
