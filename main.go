package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"montecarlo/config"
	"montecarlo/experiments"
)

func main() {
	gameName := flag.String("game", "pig", fmt.Sprintf("Game to play, one of %v", experiments.GameNames()))
	configPath := flag.String("config", "", "YAML file overriding the default search config")
	experiment := flag.String("experiment", "versus", "Experiment to run: versus, containers, depth or throughput")
	numGames := flag.Int("games", 10, "Number of games per match up")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Base seed of the agents")
	outDir := flag.String("out", "", "Directory to store CSV records in")
	verbose := flag.Bool("v", false, "Log every move")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := run(*gameName, *configPath, *experiment, *numGames, *seed, *outDir); err != nil {
		log.Fatal().Err(err).Msg("experiment failed")
	}
}

func run(gameName, configPath, experimentName string, numGames int, seed uint64, outDir string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	g, err := experiments.LookupGame(gameName, cfg.Markers())
	if err != nil {
		return err
	}

	var e experiments.Experiment
	switch experimentName {
	case "versus":
		e = experiments.Versus(g, cfg)
	case "containers":
		e = experiments.Containers(g, cfg)
	case "depth":
		e = experiments.Depth(g, cfg)
	case "throughput":
		e = experiments.Throughput(g, cfg, cfg.SimulationTime)
	default:
		return fmt.Errorf("unknown experiment %q", experimentName)
	}
	e.NumGames = numGames
	e.Seed = seed
	e.OutDir = outDir

	summary, err := experiments.Run(e)
	if err != nil {
		return err
	}
	printSummary(summary)
	return nil
}

func printSummary(s experiments.Summary) {
	out := termenv.NewOutput(os.Stdout)
	title := out.String(fmt.Sprintf("%s: %d games", s.Name, s.Games)).Bold()
	fmt.Fprintln(out, title)

	ids := make([]int, 0, len(s.Wins))
	for id := range s.Wins {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		wins := out.String(fmt.Sprintf("%d", s.Wins[id])).Foreground(termenv.ANSIGreen)
		fmt.Fprintf(out, "  agent%d wins: %s\n", id, wins)
	}
	fmt.Fprintf(out, "  draws: %s\n", out.String(fmt.Sprintf("%d", s.Draws)).Foreground(termenv.ANSIYellow))
	fmt.Fprintf(out, "  moves per game: %.1f\n", s.MeanMoves)
	fmt.Fprintf(out, "  iterations per search: %.1f ± %.1f\n", s.MeanIterations, s.StdIterations)
	if s.Dir != "" {
		fmt.Fprintf(out, "  records: %s\n", out.String(s.Dir).Faint())
	}
}
