package pipeline

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/pokedata/pokepipeline/pkg/db"
)

// ResultOutput is the per-id entry of the final JSON summary.
type ResultOutput struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
	Stage  string `json:"stage,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Stats provides summary statistics for the run.
type Stats struct {
	Total            int     `json:"total"`
	Succeeded        int     `json:"succeeded"`
	Failed           int     `json:"failed"`
	Partial          int     `json:"partial"`
	TotalTimeSeconds float64 `json:"total_time_seconds"`
	DBPath           string  `json:"db_path"`
	PokemonRows      int     `json:"pokemon_rows"`
	EvolutionEdges   int     `json:"evolution_edges"`
}

// FinalOutput is the structured output for the entire run.
type FinalOutput struct {
	Status  string         `json:"status"`
	Results []ResultOutput `json:"results"`
	Stats   Stats          `json:"stats"`
}

// BuildOutput assembles the machine-readable run summary. Row counts
// come from the database so they reflect re-runs accurately.
func BuildOutput(summary *Summary, database *db.DB) *FinalOutput {
	out := &FinalOutput{Status: "ok"}
	if len(summary.Failed) > 0 {
		out.Status = "partial_failure"
	}

	degraded := make(map[int]Failure, len(summary.Partial))
	for _, f := range summary.Partial {
		degraded[f.ID] = f
	}

	for _, id := range summary.Succeeded {
		res := ResultOutput{ID: id, Status: "success"}
		if f, ok := degraded[id]; ok {
			res.Status = "partial"
			res.Stage = string(f.Stage)
			res.Error = f.Err.Error()
		}
		out.Results = append(out.Results, res)
	}
	for _, f := range summary.Failed {
		out.Results = append(out.Results, ResultOutput{
			ID:     f.ID,
			Status: "failed",
			Stage:  string(f.Stage),
			Error:  f.Err.Error(),
		})
	}

	out.Stats = Stats{
		Total:            len(summary.Succeeded) + len(summary.Failed),
		Succeeded:        len(summary.Succeeded),
		Failed:           len(summary.Failed),
		Partial:          len(summary.Partial),
		TotalTimeSeconds: summary.Elapsed.Seconds(),
		DBPath:           database.Path(),
	}
	if n, err := database.CountRows("pokemon"); err == nil {
		out.Stats.PokemonRows = n
	}
	if n, err := database.CountRows("evolutions"); err == nil {
		out.Stats.EvolutionEdges = n
	}
	return out
}

// Write renders the summary as indented JSON followed by a one-line
// human footer.
func (o *FinalOutput) Write(w io.Writer) error {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Done: %s succeeded, %s failed in %.1fs\n",
		humanize.Comma(int64(o.Stats.Succeeded)),
		humanize.Comma(int64(o.Stats.Failed)),
		o.Stats.TotalTimeSeconds)
	return err
}
