// Package experiments pits agent configurations against each other on the
// reference games and stores the results as CSV.
package experiments

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"montecarlo/agent"
	"montecarlo/config"
	"montecarlo/engine"
	"montecarlo/experiments/metrics"
	"montecarlo/game"
	"montecarlo/searcher"
)

const NumGames = 30 // Per match up

// ErrNoVerdict is returned when a finished game names no seated winner.
var ErrNoVerdict = errors.New("game ended without a verdict")

type Experiment struct {
	Name     string
	Game     Game
	Configs  []metrics.AgentConfig
	MatchUps [][2]metrics.AgentConfig
	NumGames int    // Per match up
	MaxMoves int    // 0 selects engine.MaxMoves
	Seed     uint64 // Base seed of every agent
	OutDir   string // Results are only written when set
}

type Summary struct {
	Name           string
	Games          int
	Wins           map[int]int // By AgentConfig.ID
	Draws          int
	MeanMoves      float64
	MeanIterations float64 // Over searched moves only
	StdIterations  float64
	Dir            string // Where the records were written
}

// Versus pits a searching agent against a random one.
func Versus(g Game, cfg config.Config) Experiment {
	searching := metrics.AgentConfig{ID: 1, Config: cfg}
	random := metrics.AgentConfig{ID: 0, Random: true, Config: cfg}
	return Experiment{
		Name:     "versus_random",
		Game:     g,
		Configs:  []metrics.AgentConfig{random, searching},
		MatchUps: [][2]metrics.AgentConfig{{searching, random}},
		NumGames: NumGames,
	}
}

// Containers measures chance and group nodes against a flat tree.
func Containers(g Game, cfg config.Config) Experiment {
	baseline := metrics.AgentConfig{ID: 0, Config: cfg}
	baseline.UseChanceNodes = false
	baseline.UseGroupNodes = false

	configs := []metrics.AgentConfig{baseline}
	for i, flags := range [][2]bool{{true, false}, {false, true}, {true, true}} {
		c := metrics.AgentConfig{ID: i + 1, Config: cfg}
		c.UseChanceNodes, c.UseGroupNodes = flags[0], flags[1]
		configs = append(configs, c)
	}

	var matchUps [][2]metrics.AgentConfig
	for _, c := range configs[1:] {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, c})
	}
	return Experiment{Name: "containers", Game: g, Configs: configs, MatchUps: matchUps, NumGames: NumGames}
}

// Depth pairs a full-depth baseline against shallower playouts.
func Depth(g Game, cfg config.Config) Experiment {
	baseline := metrics.AgentConfig{ID: 0, Config: cfg}
	configs := []metrics.AgentConfig{baseline}
	var matchUps [][2]metrics.AgentConfig
	for i, depth := range []int{5, 10, 25, 50} {
		c := metrics.AgentConfig{ID: i + 1, Config: cfg}
		c.SearchDepth = depth
		configs = append(configs, c)
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, c})
	}
	return Experiment{Name: "depth", Game: g, Configs: configs, MatchUps: matchUps, NumGames: NumGames}
}

// Run plays every match up, alternating seats between games.
func Run(e Experiment) (Summary, error) {
	if len(e.MatchUps) == 0 || e.NumGames <= 0 {
		return Summary{}, errors.New("experiment has no games to play")
	}
	for _, c := range e.Configs {
		if !c.Random && c.Markers() != e.Game.Markers {
			return Summary{}, fmt.Errorf("agent%d expects markers %+v but %s reports %+v", c.ID, c.Markers(), e.Game.Name, e.Game.Markers)
		}
	}

	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	summary := Summary{Name: e.Name, Wins: make(map[int]int)}
	var moves, iterations []float64

	log.Info().Msgf("starting %s experiment on %s...", e.Name, e.Game.Name)

	for mi, matchUp := range e.MatchUps {
		log.Info().Msgf("starting matchup %d of %d between agent%d and agent%d...", mi+1, len(e.MatchUps), matchUp[0].ID, matchUp[1].ID)

		for i := 0; i < e.NumGames; i++ {
			seats := matchUp
			if i%2 == 1 {
				seats[0], seats[1] = seats[1], seats[0]
			}

			count++
			winner, gameMetric, moveMetrics, err := runGame(e, seats, e.Seed+uint64(count)*2)
			if err != nil {
				return summary, fmt.Errorf("game %d of matchup %d: %w", i+1, mi+1, err)
			}

			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     seats[0].ID,
				Agent2:     seats[1].ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
				if !mm.Skipped {
					iterations = append(iterations, float64(mm.Iterations))
				}
			}
			moves = append(moves, float64(gameMetric.TotalMoves))

			switch {
			case winner == e.Game.Markers.Draw:
				summary.Draws++
			case winner >= game.Winner(1) && int(winner) <= len(seats):
				summary.Wins[seats[winner-1].ID]++
			default:
				return summary, fmt.Errorf("game %d of matchup %d reported %d: %w", i+1, mi+1, winner, ErrNoVerdict)
			}
			log.Info().Msgf("completed matchup %d of %d game %d with winner: %d", mi+1, len(e.MatchUps), i+1, winner)
		}
	}

	summary.Games = count
	summary.MeanMoves = stat.Mean(moves, nil)
	if len(iterations) > 0 {
		summary.MeanIterations, summary.StdIterations = stat.MeanStdDev(iterations, nil)
	}
	log.Info().Msgf("completed %s experiment", e.Name)

	if e.OutDir == "" {
		return summary, nil
	}
	dir, err := store(e, gameRecords, moveRecords)
	summary.Dir = dir
	return summary, err
}

func store(e Experiment, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) (string, error) {
	writer, err := metrics.NewWriter(e.OutDir, e.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(e.Configs); err != nil {
		return writer.Dir(), fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return writer.Dir(), fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return writer.Dir(), fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return writer.Dir(), nil
}

// runGame executes a single game between two agents and returns the winner.
func runGame(e Experiment, seats [2]metrics.AgentConfig, seed uint64) (game.Status, metrics.GameMetric, []metrics.MoveMetric, error) {
	agents := make([]agent.Agent, len(seats))
	for i, c := range seats {
		a, err := createAgent(e.Game.Rules, c, seed+uint64(i))
		if err != nil {
			return e.Game.Markers.Ongoing, metrics.GameMetric{}, nil, fmt.Errorf("agent%d: %w", c.ID, err)
		}
		agents[i] = a
	}

	eng, err := engine.NewLocalEngine(e.Game.Rules, e.Game.Markers, e.Game.Start(), agents, e.MaxMoves)
	if err != nil {
		return e.Game.Markers.Ongoing, metrics.GameMetric{}, nil, err
	}
	return eng.Run()
}

func createAgent(rules game.Rules, c metrics.AgentConfig, seed uint64) (agent.Agent, error) {
	if c.Random {
		return agent.NewRandomAgent(rules, seed), nil
	}
	mcts, err := searcher.NewMCTS(rules, c.Config, searcher.WithSeed(seed), searcher.WithMetrics())
	if err != nil {
		return nil, err
	}
	return agent.NewEvaluationAgent(mcts, seed), nil
}
