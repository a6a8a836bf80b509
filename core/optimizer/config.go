package optimizer

import (
	"fmt"

	"github.com/kilianp07/procsched/core/model"
)

// Assigner names accepted in Config.Assigner.
const (
	AssignerGreedy = "greedy"
	AssignerLP     = "lp"
)

// Config defines optimizer settings.
type Config struct {
	// Workers bounds the goroutines computing similarity rows. Values below
	// 2 compute sequentially.
	Workers int `json:"workers"`
	// Assigner selects "greedy" (default) or "lp".
	Assigner string `json:"assigner"`
	// SpecialistCategories lists resource types that may host procedures
	// requiring a specialist.
	SpecialistCategories []string `json:"specialist_categories"`
	// LPMaxPairs caps the number of feasible request/slot pairs handed to
	// the LP solver. Larger problems use the greedy assigner.
	LPMaxPairs int `json:"lp_max_pairs"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.Assigner == "" {
		c.Assigner = AssignerGreedy
	}
	if len(c.SpecialistCategories) == 0 {
		c.SpecialistCategories = append([]string(nil), model.DefaultSpecialistCategories...)
	}
	if c.LPMaxPairs == 0 {
		c.LPMaxPairs = 2000
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.Assigner != AssignerGreedy && c.Assigner != AssignerLP {
		return fmt.Errorf("unknown assigner %s", c.Assigner)
	}
	if c.LPMaxPairs < 0 {
		return fmt.Errorf("lp_max_pairs must not be negative")
	}
	return nil
}
