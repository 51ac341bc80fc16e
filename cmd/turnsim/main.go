// Package main provides turnsim, a command-line host that resolves one turn:
// it loads the previous snapshot and a delta, runs the orchestrator, prints
// the next snapshot, and optionally persists it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chronicle/internal/config"
	"github.com/cory-johannsen/chronicle/internal/game/calendar"
	"github.com/cory-johannsen/chronicle/internal/game/character"
	"github.com/cory-johannsen/chronicle/internal/game/dice"
	"github.com/cory-johannsen/chronicle/internal/game/idgen"
	"github.com/cory-johannsen/chronicle/internal/game/loot"
	"github.com/cory-johannsen/chronicle/internal/game/ruleset"
	"github.com/cory-johannsen/chronicle/internal/game/turn"
	"github.com/cory-johannsen/chronicle/internal/game/weather"
	"github.com/cory-johannsen/chronicle/internal/game/world"
	"github.com/cory-johannsen/chronicle/internal/observability"
	"github.com/cory-johannsen/chronicle/internal/storage"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	gameID := flag.String("game", "", "game id used to load and persist snapshots")
	seedPath := flag.String("new", "", "start a new game from this seed map YAML instead of loading a snapshot")
	partyPath := flag.String("party", "", "JSON list of creation choices for a new game's party")
	contextPath := flag.String("context", "", "previous snapshot JSON file; empty loads the latest stored snapshot")
	fromTurn := flag.Int("turn", 0, "load this stored turn instead of the latest (0 = latest)")
	deltaPath := flag.String("delta", "-", "turn delta JSON file; '-' reads stdin")
	statePath := flag.String("state", "", "optional aggregate character state JSON file")
	historyPath := flag.String("history", "", "optional JSON list of history entries")
	advance := flag.Bool("advance", true, "advance the clock, weather, and effect durations")
	persist := flag.Bool("persist", false, "store the resulting snapshot under -game")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "turnsim")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if (*persist || (*contextPath == "" && *seedPath == "")) && *gameID == "" {
		logger.Fatal("-game is required to load or persist snapshots")
	}

	orch, factory, err := buildEngine(cfg, logger)
	if err != nil {
		logger.Fatal("building turn engine", zap.Error(err))
	}

	var repo storage.SnapshotRepository
	if *persist || (*contextPath == "" && *seedPath == "") {
		r, closeRepo, err := openRepository(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("opening snapshot store", zap.Error(err))
		}
		defer closeRepo()
		repo = r
	}

	gameLog := observability.ForGame(logger, *gameID, "turnsim")

	var prev turn.Context
	switch {
	case *seedPath != "":
		prev, err = newGame(orch, factory, cfg.Engine, *seedPath, *partyPath)
	case *contextPath != "":
		prev, err = readContext(*contextPath, gameLog)
	case *fromTurn > 0:
		prev, err = repo.LoadTurn(ctx, *gameID, *fromTurn)
	default:
		prev, err = repo.Load(ctx, *gameID)
	}
	if err != nil {
		gameLog.Fatal("loading previous snapshot", zap.Error(err))
	}

	var delta turn.Delta
	if err := readJSON(*deltaPath, &delta); err != nil {
		gameLog.Fatal("reading delta", zap.Error(err))
	}
	var state turn.AggregateState
	if *statePath != "" {
		if err := readJSON(*statePath, &state); err != nil {
			gameLog.Fatal("reading aggregate state", zap.Error(err))
		}
	}
	var history []string
	if *historyPath != "" {
		if err := readJSON(*historyPath, &history); err != nil {
			gameLog.Fatal("reading history", zap.Error(err))
		}
	}

	next := orch.Advance(prev, delta, state, history, *advance)

	if *persist {
		if err := repo.Save(ctx, *gameID, next); err != nil {
			gameLog.Fatal("persisting snapshot", zap.Error(err))
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(next); err != nil {
		gameLog.Fatal("writing snapshot", zap.Error(err))
	}

	gameLog.Info("turnsim finished",
		zap.Int("turn", next.Turn),
		zap.Bool("persisted", *persist),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// buildEngine loads the content files named by cfg and wires the orchestrator
// and character factory.
func buildEngine(cfg config.Config, logger *zap.Logger) (*turn.Orchestrator, *character.Factory, error) {
	cal, err := calendar.Load(cfg.Content.CalendarFile)
	if err != nil {
		return nil, nil, err
	}
	table, err := loadWeather(cfg.Content.WeatherFile, logger)
	if err != nil {
		return nil, nil, err
	}
	expr, err := dice.Parse(cfg.Engine.DiceExpression)
	if err != nil {
		return nil, nil, fmt.Errorf("engine.dice_expression: %w", err)
	}

	ids := idgen.UUID{}
	src := dice.FromSeed(cfg.Engine.RNGSeed)
	orch := turn.NewOrchestrator(
		cal,
		table,
		world.NewMerger(ids, logger.Named("merger")),
		loot.NewGenerator(src, logger.Named("loot")),
		dice.NewRoller(src, logger.Named("dice")),
		ids,
		turn.Options{
			LootBatchSize:  cfg.Engine.LootBatchSize,
			DiceBatchSize:  cfg.Engine.DiceBatchSize,
			DiceExpression: expr,
		},
		logger.Named("turn"),
	)

	var factory *character.Factory
	if cfg.Content.RacesDir != "" && cfg.Content.ClassesDir != "" {
		rules, err := ruleset.Load(cfg.Content.RacesDir, cfg.Content.ClassesDir)
		if err != nil {
			return nil, nil, err
		}
		races, classes := rules.Counts()
		logger.Info("ruleset loaded", zap.Int("races", races), zap.Int("classes", classes))
		factory = character.NewFactory(rules, ids, cfg.Engine.CreationPointPool, logger.Named("character"))
	}
	return orch, factory, nil
}

// loadWeather reads the weather table, falling back to a single calm state
// when no file is configured.
func loadWeather(path string, logger *zap.Logger) (*weather.Table, error) {
	if path == "" {
		logger.Warn("no weather file configured; weather is fixed")
		return weather.NewTable(map[string][]string{weather.DefaultBiome: {"clear"}}, logger.Named("weather"))
	}
	return weather.Load(path, logger.Named("weather"))
}

// newGame builds a turn-1 snapshot from a seed map and, when partyPath is
// set, a party created from the listed choices.
func newGame(orch *turn.Orchestrator, factory *character.Factory, engine config.EngineConfig, seedPath, partyPath string) (turn.Context, error) {
	seed, err := world.LoadSeedFromFile(seedPath)
	if err != nil {
		return turn.Context{}, err
	}
	var party []character.Player
	if partyPath != "" {
		if factory == nil {
			return turn.Context{}, fmt.Errorf("creating a party requires content.races_dir and content.classes_dir")
		}
		var choices []character.Choices
		if err := readJSON(partyPath, &choices); err != nil {
			return turn.Context{}, fmt.Errorf("reading party choices: %w", err)
		}
		for _, ch := range choices {
			p, err := factory.FromChoices(ch)
			if err != nil {
				return turn.Context{}, fmt.Errorf("creating %q: %w", ch.Name, err)
			}
			party = append(party, p)
		}
	}
	return orch.NewGame(seed, party, turn.Settings{
		Cooperative:  engine.Cooperative,
		AutoPassTurn: engine.AutoPassTurn,
	}), nil
}

// readContext decodes a snapshot file the same way stored snapshots are
// decoded, so legacy bonus strings are normalized.
func readContext(path string, logger *zap.Logger) (turn.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return turn.Context{}, fmt.Errorf("reading %s: %w", path, err)
	}
	c, rejects, err := storage.Decode(data)
	if err != nil {
		return turn.Context{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(rejects) > 0 {
		logger.Warn("ignoring malformed legacy bonuses", zap.Strings("bonuses", rejects))
	}
	return c, nil
}

func readJSON(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
