package experiments

import (
	"time"

	"montecarlo/config"
	"montecarlo/experiments/metrics"
)

// Throughput plays time-limited agents with growing expansion worker pools
// against themselves, for the same playing strength and similar game length.
func Throughput(g Game, cfg config.Config, budget time.Duration) Experiment {
	var configs []metrics.AgentConfig
	var matchUps [][2]metrics.AgentConfig
	for i, workers := range []int{1, 2, 4, 8, 16} {
		c := metrics.AgentConfig{ID: i + 1, Config: cfg}
		c.UseNumberOfSimulations = false
		c.SimulationTime = budget
		c.ExpansionWorkers = workers
		configs = append(configs, c)
		matchUps = append(matchUps, [2]metrics.AgentConfig{c, c})
	}
	return Experiment{Name: "throughput", Game: g, Configs: configs, MatchUps: matchUps, NumGames: 1}
}
