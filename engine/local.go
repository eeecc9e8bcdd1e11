package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"montecarlo/agent"
	"montecarlo/experiments/metrics"
	"montecarlo/game"
)

type LocalEngine struct {
	rules    game.Rules
	markers  game.Markers
	position game.Position
	agents   []agent.Agent // Indexed by player - 1
	maxMoves int
}

// NewLocalEngine prepares a game from start. The markers must match the ones
// rules reports. A maxMoves of 0 selects MaxMoves.
func NewLocalEngine(rules game.Rules, markers game.Markers, start game.Position, agents []agent.Agent, maxMoves int) (*LocalEngine, error) {
	if rules == nil || start == nil {
		return nil, errors.New("rules and start position are required")
	}
	if len(agents) < 2 {
		return nil, fmt.Errorf("need at least two agents, got %d", len(agents))
	}
	if maxMoves <= 0 {
		maxMoves = MaxMoves
	}
	return &LocalEngine{
		rules:    rules,
		markers:  markers,
		position: start.Clone(),
		agents:   agents,
		maxMoves: maxMoves,
	}, nil
}

// Position returns the current position of the game.
func (e *LocalEngine) Position() game.Position {
	return e.position
}

// Run executes the entire game loop until a winner is found.
func (e *LocalEngine) Run() (game.Status, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: int(e.rules.CurrentPlayer(e.position)),
		StartTime:      time.Now(),
	}
	log.Info().Msgf("player %d is starting", gameMetric.StartingPlayer)

	var moveMetrics []metrics.MoveMetric
	status := e.rules.Status(e.position, false)
	step := 0
	for status == e.markers.Ongoing && step < e.maxMoves {
		player := e.rules.CurrentPlayer(e.position)
		if player < 1 || int(player) > len(e.agents) {
			return status, gameMetric, moveMetrics, fmt.Errorf("no agent for player %d", player)
		}

		result, err := e.agents[player-1].FindMove(e.position)
		if err != nil {
			return status, gameMetric, moveMetrics, fmt.Errorf("player %d failed to move at step %d: %w", player, step+1, err)
		}
		step++
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       int(player),
			SearchMetric: result.Metric,
		})
		log.Debug().Int("step", step).Int("player", int(player)).Str("action", result.Action.Type()).Str("position", result.Position.ID()).Msg("played move")

		e.position = result.Position
		status = e.rules.Status(e.position, false)
	}

	if status == e.markers.Ongoing {
		log.Info().Msgf("stopped after %d moves without a winner", step)
		status = e.rules.Status(e.position, true)
	}

	gameMetric.Winner = int(status)
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = step
	log.Info().Int("winner", gameMetric.Winner).Int("moves", step).Dur("duration", gameMetric.Duration).Msg("game over")

	return status, gameMetric, moveMetrics, nil
}
