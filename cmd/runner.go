package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/tunebridge/tmx/internal/catalog"
	"github.com/tunebridge/tmx/internal/formatter"
	"github.com/tunebridge/tmx/internal/matching"
	"github.com/tunebridge/tmx/internal/models"
	"github.com/tunebridge/tmx/internal/repositories"
	"github.com/tunebridge/tmx/internal/shared"
	"github.com/tunebridge/tmx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		matchCommand, batchCommand, setupCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveConfig reloads configuration when the command names a config file,
// falling back to the runner's current config.
func (r *Runner) resolveConfig(cmd *cli.Command) *shared.Config {
	path := cmd.String("config")
	if path == "" {
		return r.config
	}
	if config, err := shared.LoadConfig(path); err == nil {
		return config
	} else if path != "config.toml" {
		r.logger.Warn("failed to load config, using defaults", "path", path, "error", err)
	}
	return r.config
}

// openDatabase opens the configured SQLite store and applies pending migrations.
func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDatabaseUnavailable, err)
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// loadTrack reads one CanonicalTrack from a JSON file.
func loadTrack(path string) (models.CanonicalTrack, error) {
	var track models.CanonicalTrack

	data, err := os.ReadFile(path)
	if err != nil {
		return track, fmt.Errorf("failed to read track file: %w", err)
	}
	if err := json.Unmarshal(data, &track); err != nil {
		return track, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if err := track.Validate(); err != nil {
		return track, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	return track, nil
}

// loadTrackSet reads a TrackSet (or bare track array) from a JSON file.
func loadTrackSet(path string) (models.TrackSet, error) {
	snapshot, err := catalog.LoadSnapshot(path)
	if err != nil {
		return models.TrackSet{}, err
	}
	return models.TrackSet{Name: snapshot.Name(), Tracks: snapshot.Tracks()}, nil
}

// Match resolves a single source track against a candidate file.
func (r *Runner) Match(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	source, err := loadTrack(cmd.String("source"))
	if err != nil {
		return err
	}

	candidateSet, err := loadTrackSet(cmd.String("candidates"))
	if err != nil {
		return err
	}

	result := matching.Match(source, candidateSet.Tracks, config.Matching)

	r.logger.Info("resolved track",
		"title", source.Title,
		"state", result.State(),
		"candidates", len(candidateSet.Tracks))

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	return r.writePlain("%s", formatter.RenderResult(result))
}

// Batch resolves every track of a source set against a catalog snapshot.
func (r *Runner) Batch(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	set, err := loadTrackSet(cmd.String("source"))
	if err != nil {
		return err
	}

	snapshot, err := catalog.LoadSnapshot(cmd.String("catalog"))
	if err != nil {
		return err
	}

	opts := tasks.EngineOpts{
		Config:         config.Matching,
		Workers:        config.Batch.Workers,
		CandidateLimit: config.Batch.CandidateLimit,
	}
	if workers := int(cmd.Int("workers")); workers > 0 {
		opts.Workers = workers
	}

	var db *sql.DB
	if cmd.Bool("save") {
		db, err = r.openDatabase(config)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Recorder = repositories.NewMatchRecorderAdapter(repositories.NewMatchRepository(db))
	}

	engine := tasks.NewMatchEngine(snapshot, opts)

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
		}
	}()

	result, err := engine.Run(ctx, progress, set)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}

	r.logger.Info("batch complete",
		"tracks", result.TotalTracks,
		"matched", result.MatchedCount,
		"ambiguous", result.AmbiguousCount,
		"not_found", result.NotFoundCount,
		"rate", fmt.Sprintf("%.1f%%", result.MatchRate))

	format := cmd.String("format")
	if format == "" {
		return r.writeJSON(result, true)
	}

	path, err := formatter.WriteExport(result, format, cmd.String("out"))
	if err != nil {
		return err
	}
	return r.writePlain("Report written to %s\n", path)
}

// SetupDatabase initializes the SQLite store and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("database ready", "path", config.Database.Path)
	return r.writePlain("Database initialized at %s\n", config.Database.Path)
}

// SetupConfig writes the example configuration file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	return r.writePlain("Config written to %s\n", path)
}

// CacheList prints recorded match outcomes.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewMatchRepository(db)
	records, err := repo.List(map[string]any{"state": cmd.String("state")})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]map[string]any, len(records))
		for i, rec := range records {
			rows[i] = map[string]any{
				"id":             rec.ID(),
				"source_service": rec.SourceService(),
				"source_id":      rec.SourceID(),
				"target_service": rec.TargetService(),
				"target_id":      rec.TargetID(),
				"state":          rec.State(),
				"score":          rec.Score(),
				"reasons":        rec.Reasons(),
				"recorded_at":    rec.CreatedAt(),
			}
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(records) == 0 {
		return r.writePlain("No recorded matches.\n")
	}

	for _, rec := range records {
		target := "-"
		if rec.TargetID() != "" {
			target = fmt.Sprintf("%s:%s", rec.TargetService(), rec.TargetID())
		}
		if err := r.writePlain("%s  %s:%s -> %s  [%s] %.2f\n",
			rec.CreatedAt().Format("2006-01-02 15:04"),
			rec.SourceService(), rec.SourceID(), target, rec.State(), rec.Score()); err != nil {
			return err
		}
	}
	return nil
}

// CacheClear purges all recorded match outcomes.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewMatchRepository(db)
	n, err := repo.Purge()
	if err != nil {
		return err
	}

	r.logger.Info("cache cleared", "records", n)
	return r.writePlain("Removed %d recorded matches.\n", n)
}
