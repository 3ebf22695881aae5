package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tarnished-tactics/api/internal/config"
	"github.com/tarnished-tactics/api/internal/database"
	"github.com/tarnished-tactics/api/internal/llm"
	"github.com/tarnished-tactics/api/internal/repository"
	"github.com/tarnished-tactics/api/internal/service"
	"github.com/tarnished-tactics/api/migrations"
)

// tool holds what every command shares
type tool struct {
	out io.Writer
	cfg *config.Config
	db  database.Database
}

func (t *tool) load(c *cli.Context) error {
	if path := c.String("config"); path != "" {
		if err := os.Setenv("CONFIG_FILE", path); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	t.cfg = cfg

	level, _ := cfg.Log.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func (t *tool) close(*cli.Context) error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

// connect opens the database on first use
func (t *tool) connect(ctx context.Context) (database.Database, error) {
	if t.db != nil {
		return t.db, nil
	}
	db := database.NewSurrealDB(t.cfg.Database.Connection())
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	t.db = db
	return db, nil
}

func (t *tool) ping(c *cli.Context) error {
	db, err := t.connect(c.Context)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := db.Ping(c.Context); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "ok %s (%s)\n", t.cfg.Database.Connection().Endpoint(), time.Since(start).Round(time.Millisecond))
	return nil
}

func (t *tool) migrate(c *cli.Context) error {
	db, err := t.connect(c.Context)
	if err != nil {
		return err
	}
	n, err := database.Migrate(c.Context, db, migrations.FS)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "applied %d migrations\n", n)
	return nil
}

func (t *tool) seeder(ctx context.Context) (*service.SeederService, error) {
	db, err := t.connect(ctx)
	if err != nil {
		return nil, err
	}
	return service.NewSeederService(service.SeederServiceConfig{
		Builds: service.NewBuildService(service.BuildServiceConfig{Repo: repository.NewBuildRepository(db)}),
		Guides: service.NewGuideService(service.GuideServiceConfig{Repo: repository.NewGuideRepository(db)}),
	}), nil
}

func (t *tool) seed(c *cli.Context, run func(*service.SeederService, context.Context) (*service.SeedResult, error)) error {
	seeder, err := t.seeder(c.Context)
	if err != nil {
		return err
	}
	result, err := run(seeder, c.Context)
	if result != nil {
		for _, id := range result.IDs {
			fmt.Fprintf(t.out, "added %s\n", id)
		}
	}
	return err
}

func (t *tool) seedBuild(c *cli.Context) error {
	return t.seed(c, (*service.SeederService).SeedBuild)
}

func (t *tool) seedGuide(c *cli.Context) error {
	return t.seed(c, (*service.SeederService).SeedGuide)
}

func (t *tool) seedAll(c *cli.Context) error {
	return t.seed(c, (*service.SeederService).SeedAll)
}

func (t *tool) completer(ctx context.Context) (llm.Completer, error) {
	completer, err := llm.New(ctx, t.cfg.LLM.Client())
	if errors.Is(err, llm.ErrNotConfigured) {
		return nil, errors.New("no LLM API key configured (set LLM_API_KEY)")
	}
	return completer, err
}

func (t *tool) generateGuide(c *cli.Context) error {
	buildID := c.Args().First()
	if buildID == "" {
		return cli.Exit("missing <buildId>", 2)
	}

	db, err := t.connect(c.Context)
	if err != nil {
		return err
	}
	completer, err := t.completer(c.Context)
	if err != nil {
		return err
	}

	drafts := service.NewGuideDraftService(service.GuideDraftServiceConfig{
		Builds:    repository.NewBuildRepository(db),
		Completer: completer,
	})
	draft, err := drafts.Generate(c.Context, buildID, c.String("user"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(t.out)
	enc.SetIndent("", "  ")
	return enc.Encode(draft)
}

func (t *tool) llmPing(c *cli.Context) error {
	completer, err := t.completer(c.Context)
	if err != nil {
		return err
	}
	start := time.Now()
	reply, err := completer.Complete(c.Context, "Answer with a single word.", `Reply with "pong".`)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "%s replied %q in %s\n", t.cfg.LLM.Provider, reply, time.Since(start).Round(time.Millisecond))
	return nil
}
