package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/pokedata/pokepipeline/models"
	"github.com/pokedata/pokepipeline/pkg/db"
	"github.com/pokedata/pokepipeline/pkg/evolution"
	"github.com/pokedata/pokepipeline/pkg/pokeapi"
)

func newLogger(quiet bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// RunAction executes the ETL pipeline over the selected id set.
// Per-id failures are reported in the summary but leave the exit
// status at zero; only setup failures exit non-zero.
func RunAction(c *cli.Context) error {
	logger := newLogger(c.Bool("quiet"))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("max-retries") {
		cfg.MaxRetries = c.Int("max-retries")
	}

	ids, err := BuildIDList(c.IntSlice("ids"), c.Int("start-id"), c.Int("end-id"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(2)
	}
	defer database.Close()

	client := pokeapi.NewClient(cfg, logger)
	resolver := evolution.NewResolver(client, logger)
	driver := New(client, resolver, database, logger)
	driver.ShowProgress = !c.Bool("quiet")

	logger.Info("starting pipeline run",
		"id_count", len(ids), "db", cfg.DBPath, "base_url", cfg.BaseURL)

	summary, err := driver.Run(context.Background(), ids)
	if err != nil {
		logger.Error("run aborted", "error", err)
		return cli.Exit("run aborted: database is unusable", 2)
	}

	return BuildOutput(summary, database).Write(os.Stdout)
}

// ShowAction prints stored pokemon: all of them, or one id with its
// types, abilities, stats and evolution edges.
func ShowAction(c *cli.Context) error {
	logger := newLogger(c.Bool("quiet"))

	database, err := db.Open(c.String("db"))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	if c.Args().Len() == 0 {
		return showAll(database)
	}

	id, err := strconv.Atoi(c.Args().First())
	if err != nil || id <= 0 {
		return cli.Exit(fmt.Sprintf("invalid pokemon id %q", c.Args().First()), 1)
	}
	return showOne(database, id)
}

func showAll(database *db.DB) error {
	list, err := database.ListPokemon()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No pokemon stored. Run the pipeline first.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPES")
	for _, p := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.Types)
	}
	return w.Flush()
}

func showOne(database *db.DB, id int) error {
	d, err := database.GetPokemonDetail(id)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Printf("#%d %s\n", d.ID, d.Name)
	fmt.Printf("  height: %d  weight: %d", d.Height, d.Weight)
	if d.BaseExperience != nil {
		fmt.Printf("  base_experience: %d", *d.BaseExperience)
	}
	fmt.Println()

	if len(d.Types) > 0 {
		fmt.Println("  types:")
		for _, t := range d.Types {
			fmt.Printf("    %d. %s\n", t.Slot, t.Name)
		}
	}
	if len(d.Abilities) > 0 {
		fmt.Println("  abilities:")
		for _, a := range d.Abilities {
			hidden := ""
			if a.IsHidden {
				hidden = " (hidden)"
			}
			fmt.Printf("    %d. %s%s\n", a.Slot, a.Name, hidden)
		}
	}
	if len(d.Stats) > 0 {
		fmt.Println("  stats:")
		for _, s := range d.Stats {
			fmt.Printf("    %s: %d (effort %d)\n", s.Name, s.BaseStat, s.Effort)
		}
	}
	if d.EvolutionChainID != nil {
		fmt.Printf("  evolution chain %d:\n", *d.EvolutionChainID)
		for _, e := range d.Evolutions {
			fmt.Printf("    %d -> %d\n", e.FromID, e.ToID)
		}
	}
	return nil
}

// RunsAction lists recorded pipeline runs, newest first.
func RunsAction(c *cli.Context) error {
	logger := newLogger(c.Bool("quiet"))

	database, err := db.Open(c.String("db"))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tTOTAL\tSUCCEEDED\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n",
			r.RunID, humanize.Time(r.StartedAt), r.Total, r.Succeeded, r.Failed)
	}
	return w.Flush()
}
