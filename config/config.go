// Package config holds the searcher hyperparameters. A Config is built once,
// validated, and then shared read-only by every search.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"montecarlo/game"
)

type Config struct {
	// Rewards used to score a playout
	WinScore        float64 `yaml:"winScore"`
	DrawScore       float64 `yaml:"drawScore"`
	UseOtherMetrics bool    `yaml:"useOtherMetrics"`

	// Search budget
	UseNumberOfSimulations bool          `yaml:"useNumberOfSimulations"`
	NumberOfSimulations    int           `yaml:"numberOfSimulations"`
	SimulationTime         time.Duration `yaml:"simulationTime"`
	LessTimeFewActions     bool          `yaml:"lessTimeFewActions"`
	FewActions             int           `yaml:"fewActions"`
	FewActionsSimulations  int           `yaml:"fewActionsSimulations"`
	FewActionsTime         time.Duration `yaml:"fewActionsSimulationTime"`
	SkippedSimulation      time.Duration `yaml:"skippedSimulation"`

	// UCT exploration constant
	LearningRate float64 `yaml:"learningRate"`

	// Sentinel statuses shared with the rules
	OngoingGame game.Status `yaml:"ongoingGame"`
	Draw        game.Status `yaml:"draw"`

	// Playouts
	SearchDepth         int  `yaml:"searchDepth"`
	UseRandomActionType bool `yaml:"useRandomActionType"`
	OnlyRandomMoves     bool `yaml:"onlyRandomMoves"`

	// Expansion
	UseChanceNodes   bool `yaml:"useChanceNodes"`
	UseGroupNodes    bool `yaml:"useGroupNodes"`
	ExpansionWorkers int  `yaml:"expansionWorkers"`
}

func Default() Config {
	return Config{
		WinScore:               1.0,
		DrawScore:              0.5,
		UseNumberOfSimulations: true,
		NumberOfSimulations:    10000,
		SimulationTime:         time.Second,
		FewActions:             3,
		FewActionsSimulations:  1000,
		FewActionsTime:         200 * time.Millisecond,
		SkippedSimulation:      -1,
		LearningRate:           math.Sqrt2,
		OngoingGame:            game.Ongoing,
		Draw:                   game.Draw,
		SearchDepth:            100,
		UseChanceNodes:         true,
		UseGroupNodes:          true,
		ExpansionWorkers:       1,
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Markers returns the status markers the searcher expects from the rules.
func (c Config) Markers() game.Markers {
	return game.Markers{Ongoing: c.OngoingGame, Draw: c.Draw}
}

func (c Config) Validate() error {
	var errs []error

	if c.UseNumberOfSimulations && c.NumberOfSimulations <= 0 {
		errs = append(errs, errors.New("numberOfSimulations must be positive"))
	}
	if !c.UseNumberOfSimulations && c.SimulationTime <= 0 {
		errs = append(errs, errors.New("simulationTime must be positive"))
	}
	if c.LessTimeFewActions {
		if c.FewActions < 2 {
			errs = append(errs, errors.New("fewActions must be at least 2"))
		}
		if c.UseNumberOfSimulations && c.FewActionsSimulations <= 0 {
			errs = append(errs, errors.New("fewActionsSimulations must be positive"))
		}
		if !c.UseNumberOfSimulations && c.FewActionsTime <= 0 {
			errs = append(errs, errors.New("fewActionsSimulationTime must be positive"))
		}
	}
	if c.SkippedSimulation >= 0 {
		errs = append(errs, errors.New("skippedSimulation must be negative"))
	}
	if c.LearningRate < 0 || math.IsNaN(c.LearningRate) || math.IsInf(c.LearningRate, 0) {
		errs = append(errs, fmt.Errorf("learningRate %v is not a finite non-negative number", c.LearningRate))
	}
	if c.OngoingGame == c.Draw {
		errs = append(errs, errors.New("ongoingGame and draw markers must differ"))
	}
	if c.OngoingGame > 0 || c.Draw > 0 {
		errs = append(errs, errors.New("ongoingGame and draw markers must not collide with player ids"))
	}
	if c.SearchDepth <= 0 {
		errs = append(errs, errors.New("searchDepth must be positive"))
	}
	if c.ExpansionWorkers < 0 {
		errs = append(errs, errors.New("expansionWorkers must not be negative"))
	}

	return errors.Join(errs...)
}

// Budget returns the iteration count or duration a search is allowed, given
// the number of legal actions at the root.
func (c Config) Budget(actions int) (iterations int, duration time.Duration) {
	few := c.LessTimeFewActions && actions <= c.FewActions
	if c.UseNumberOfSimulations {
		if few {
			return c.FewActionsSimulations, 0
		}
		return c.NumberOfSimulations, 0
	}
	if few {
		return 0, c.FewActionsTime
	}
	return 0, c.SimulationTime
}
