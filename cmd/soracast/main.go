package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ayane-k/soracast/internal/api"
	"github.com/ayane-k/soracast/internal/config"
	"github.com/ayane-k/soracast/internal/corpus"
	"github.com/ayane-k/soracast/internal/gazetteer"
	"github.com/ayane-k/soracast/internal/generate"
	"github.com/ayane-k/soracast/internal/llm"
	"github.com/ayane-k/soracast/internal/observability"
	"github.com/ayane-k/soracast/internal/provider"
	"github.com/ayane-k/soracast/internal/rules"
	"github.com/ayane-k/soracast/internal/scheduler"
	"github.com/ayane-k/soracast/internal/snapshot"
)

var cli struct {
	DB       string `help:"Path to the sqlite database." env:"SORACAST_DB" default:"data/soracast.db"`
	Rules    string `help:"Path to a rule-set YAML file. Uses the embedded default when empty." env:"SORACAST_RULES"`
	LogLevel string `help:"Log level (debug, info, warn, error)." env:"LOG_LEVEL" default:"info"`

	Serve    serveCmd    `cmd:"" default:"1" help:"Run the HTTP API server."`
	Generate generateCmd `cmd:"" help:"Generate a comment pair for one location and print it."`
	Batch    batchCmd    `cmd:"" help:"Generate comments for many locations."`
	Seed     seedCmd     `cmd:"" help:"Seed the candidate corpus into the database."`
}

// appEnv bundles the wired collaborators handed to each subcommand.
type appEnv struct {
	cfg   *config.Config
	log   *zap.Logger
	gaz   *gazetteer.Gazetteer
	store *corpus.Store
	orch  *generate.Orchestrator
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("soracast"),
		kong.Description("Weather comment generation service."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	app, cleanup, err := buildApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "soracast: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	kctx.FatalIfErrorf(kctx.Run(app))
}

func buildApp() (*appEnv, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := observability.NewLogger(cli.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("could not load timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	gaz, err := gazetteer.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load gazetteer: %w", err)
	}

	var rs *rules.RuleSet
	if cli.Rules != "" {
		rs, err = rules.LoadFile(cli.Rules)
	} else {
		rs, err = rules.LoadDefault()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load rules: %w", err)
	}

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	store := corpus.New(db)
	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	if n, err := store.SeedDefault(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("seed corpus: %w", err)
	} else if n > 0 {
		log.Info("corpus seeded", zap.Int("candidates", n))
	}

	chain := buildChain(cfg, log)
	orch := generate.New(
		provider.NewOpenMeteo(loc),
		snapshot.NewBuilder(loc),
		rs,
		store,
		chain,
		log,
	)

	cleanup := func() {
		db.Close()
		log.Sync()
	}
	return &appEnv{cfg: cfg, log: log, gaz: gaz, store: store, orch: orch}, cleanup, nil
}

// buildChain assembles the LLM fallback chain from the configured provider
// order. Providers without a key are skipped with a warning; an empty chain
// disables refinement.
func buildChain(cfg *config.Config, log *zap.Logger) *llm.Chain {
	opts := llm.Options{
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	}

	var providers []llm.Provider
	for _, name := range cfg.LLMProviders {
		key := cfg.APIKeyFor(name)
		var (
			p   llm.Provider
			err error
		)
		switch name {
		case "openai":
			p, err = llm.NewOpenAI(key, opts)
		case "groq":
			p, err = llm.NewGroq(key, opts)
		case "gemini":
			p, err = llm.NewGemini(key, opts)
		case "anthropic":
			p, err = llm.NewAnthropic(key, opts)
		}
		if err != nil {
			log.Warn("llm provider disabled", zap.String("provider", name), zap.Error(err))
			continue
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		log.Info("llm refinement disabled")
		return nil
	}
	return llm.NewChain(providers, cfg.MaxRetryAttempts, log)
}

type serveCmd struct {
	Port string `help:"HTTP server port." env:"PORT" default:"8080"`
}

func (c *serveCmd) Run(app *appEnv) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if app.cfg.ScheduleEnabled {
		sched := scheduler.New(app.orch, app.gaz.All(), app.cfg.ScheduleInterval,
			app.cfg.BatchConcurrency, app.cfg.BatchTimeout, app.log)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	server := api.NewServer(app.orch, app.store, app.gaz, app.log, api.Options{
		Port:             c.Port,
		BatchConcurrency: app.cfg.BatchConcurrency,
		BatchTimeout:     app.cfg.BatchTimeout,
	})
	return server.Run(ctx)
}

type generateCmd struct {
	Location string `arg:"" help:"Location name from the gazetteer."`
}

func (c *generateCmd) Run(app *appEnv) error {
	loc, ok := app.gaz.Lookup(c.Location)
	if !ok {
		return fmt.Errorf("unknown location %q", c.Location)
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.BatchTimeout)
	defer cancel()

	res := app.orch.Generate(ctx, loc)
	if !res.Success {
		return fmt.Errorf("generation failed: %s", res.Error)
	}
	fmt.Printf("%s\n%s\n%s\n", res.Location, res.Comment, res.AdviceComment)
	return nil
}

type batchCmd struct {
	Locations []string `arg:"" optional:"" help:"Location names. All gazetteer locations when empty."`
}

func (c *batchCmd) Run(app *appEnv) error {
	var locs []gazetteer.Location
	if len(c.Locations) == 0 {
		locs = app.gaz.All()
	} else {
		for _, name := range c.Locations {
			loc, ok := app.gaz.Lookup(name)
			if !ok {
				return fmt.Errorf("unknown location %q", name)
			}
			locs = append(locs, loc)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	results := app.orch.GenerateBatch(ctx, locs, app.cfg.BatchConcurrency, app.cfg.BatchTimeout)
	failed := 0
	for _, res := range results {
		if res.Success {
			fmt.Printf("%s\t%s / %s\n", res.Location, res.Comment, res.AdviceComment)
		} else {
			failed++
			fmt.Printf("%s\tFAILED: %s\n", res.Location, res.Error)
		}
	}
	if failed > 0 {
		fmt.Printf("%d of %d locations failed\n", failed, len(results))
	}
	return nil
}

type seedCmd struct {
	CSV string `help:"Optional CSV file to import instead of the embedded corpus." type:"existingfile"`
}

func (c *seedCmd) Run(app *appEnv) error {
	if c.CSV == "" {
		n, err := app.store.SeedDefault()
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d candidates from embedded corpus\n", n)
		return nil
	}

	f, err := os.Open(c.CSV)
	if err != nil {
		return err
	}
	defer f.Close()
	n, err := app.store.SeedFromCSV(f)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d candidates from %s\n", n, c.CSV)
	return nil
}
