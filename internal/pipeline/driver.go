// Package pipeline orchestrates the per-id fetch -> transform -> load
// flow and aggregates per-id outcomes into a run summary.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/pokedata/pokepipeline/models"
	"github.com/pokedata/pokepipeline/pkg/db"
	"github.com/pokedata/pokepipeline/pkg/transform"
)

// Stage names a step of the per-id state machine.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageTransform Stage = "transform"
	StageEvolution Stage = "evolution"
	StageLoad      Stage = "load"
)

// Failure records one id that did not complete a stage.
type Failure struct {
	ID    int
	Stage Stage
	Err   error
}

// Summary aggregates the outcome of a whole run. Partial lists ids
// whose base data loaded but whose evolution edges were skipped.
type Summary struct {
	Succeeded []int
	Failed    []Failure
	Partial   []Failure
	Elapsed   time.Duration
}

// API is the subset of the pokeapi client the driver consumes.
type API interface {
	GetPokemon(ctx context.Context, id int) (*models.Pokemon, error)
	GetSpecies(ctx context.Context, url string) (*models.Species, error)
}

// ChainResolver flattens a species' evolution chain.
type ChainResolver interface {
	Resolve(ctx context.Context, species *models.Species) (int, []models.EvolutionEdge, error)
}

type Driver struct {
	api      API
	resolver ChainResolver
	store    *db.DB
	logger   *slog.Logger

	// ShowProgress renders a terminal progress bar across the id set.
	ShowProgress bool
}

// New builds a driver. The caller owns the database handle and closes
// it after the run.
func New(api API, resolver ChainResolver, store *db.DB, logger *slog.Logger) *Driver {
	return &Driver{
		api:      api,
		resolver: resolver,
		store:    store,
		logger:   logger,
	}
}

// outcome is the terminal state of one id.
type outcome struct {
	id       int
	stage    Stage // set when failed or degraded
	err      error
	failed   bool
	degraded bool // base data loaded, evolution edges skipped
}

// Run processes ids sequentially, one at a time. Per-id failures are
// recorded and do not stop the run; only run bookkeeping failures
// (which indicate an unusable database) abort.
func (d *Driver) Run(ctx context.Context, ids []int) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	runID, err := d.store.CreateRun(len(ids))
	if err != nil {
		return nil, err
	}

	var bar *pb.ProgressBar
	if d.ShowProgress {
		bar = pb.StartNew(len(ids))
	}

	for _, id := range ids {
		o := d.processOne(ctx, id)

		res := db.RunResult{PokemonID: id, Status: "success"}
		if o.failed {
			res.Status = "failed"
			res.Stage = string(o.stage)
			res.ErrorMessage = o.err.Error()
			summary.Failed = append(summary.Failed, Failure{ID: id, Stage: o.stage, Err: o.err})
		} else {
			summary.Succeeded = append(summary.Succeeded, id)
			if o.degraded {
				res.Status = "partial"
				res.Stage = string(o.stage)
				res.ErrorMessage = o.err.Error()
				summary.Partial = append(summary.Partial, Failure{ID: id, Stage: o.stage, Err: o.err})
			}
		}
		if err := d.store.RecordRunResult(runID, res); err != nil {
			d.logger.Error("failed to record run result", "pokemon_id", id, "error", err)
		}
		if bar != nil {
			bar.Increment()
		}
	}

	if bar != nil {
		bar.Finish()
	}

	summary.Elapsed = time.Since(start)
	if err := d.store.FinishRun(runID, len(summary.Succeeded), len(summary.Failed)); err != nil {
		d.logger.Error("failed to finish run", "run_id", runID, "error", err)
	}
	return summary, nil
}

// processOne walks one id through the state machine:
// Pending -> Fetching -> Transforming -> Loading -> Done, with a
// Failed(stage) terminal branch. Evolution resolution failures degrade
// the record instead of failing it.
func (d *Driver) processOne(ctx context.Context, id int) outcome {
	d.logger.Info("processing pokemon", "pokemon_id", id)

	raw, err := d.api.GetPokemon(ctx, id)
	if err != nil {
		d.logger.Error("fetch failed", "pokemon_id", id, "error", err)
		return outcome{id: id, stage: StageFetch, err: err, failed: true}
	}

	rec, err := transform.Record(raw)
	if err != nil {
		d.logger.Error("transform failed", "pokemon_id", id, "error", err)
		return outcome{id: id, stage: StageTransform, err: err, failed: true}
	}

	chainID, edges, evoErr := d.resolveEvolution(ctx, rec)
	if evoErr != nil {
		d.logger.Warn("evolution resolution failed, loading base data only",
			"pokemon_id", id, "error", evoErr)
	}

	if err := d.store.LoadRecord(rec, chainID); err != nil {
		d.logger.Error("load failed", "pokemon_id", id, "error", err)
		return outcome{id: id, stage: StageLoad, err: err, failed: true}
	}

	if chainID != nil && len(edges) > 0 {
		if err := d.store.InsertEvolutions(*chainID, edges); err != nil {
			d.logger.Error("evolution load failed", "pokemon_id", id, "error", err)
			return outcome{id: id, stage: StageLoad, err: err, failed: true}
		}
	}

	if evoErr != nil {
		return outcome{id: id, stage: StageEvolution, err: evoErr, degraded: true}
	}

	d.logger.Info("stored pokemon", "pokemon_id", id, "name", rec.Name, "edges", len(edges))
	return outcome{id: id}
}

// resolveEvolution fetches the species document and flattens its chain.
// All failures here are soft: the record still loads without edges.
func (d *Driver) resolveEvolution(ctx context.Context, rec *models.NormalizedRecord) (*int, []models.EvolutionEdge, error) {
	if rec.SpeciesURL == "" {
		return nil, nil, nil
	}

	species, err := d.api.GetSpecies(ctx, rec.SpeciesURL)
	if err != nil {
		return nil, nil, fmt.Errorf("species fetch: %w", err)
	}

	chainID, edges, err := d.resolver.Resolve(ctx, species)
	if err != nil {
		return nil, nil, err
	}
	return &chainID, edges, nil
}
