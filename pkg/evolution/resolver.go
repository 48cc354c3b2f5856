// Package evolution resolves a species' evolution chain into directed
// parent->child edges keyed by species ids.
package evolution

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pokedata/pokepipeline/models"
	"github.com/pokedata/pokepipeline/pkg/transform"
)

// ResolutionError reports a failure scoped to evolution data: a
// malformed chain URL or a failed chain fetch. Callers degrade to
// loading the pokemon without edges.
type ResolutionError struct {
	SpeciesID int
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve evolution chain for species %d: %v", e.SpeciesID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ChainFetcher fetches an evolution-chain document by URL.
type ChainFetcher interface {
	GetEvolutionChain(ctx context.Context, url string) (*models.EvolutionChain, error)
}

type Resolver struct {
	fetcher ChainFetcher
	logger  *slog.Logger
}

func NewResolver(fetcher ChainFetcher, logger *slog.Logger) *Resolver {
	return &Resolver{fetcher: fetcher, logger: logger}
}

// Resolve derives the chain id from the species' evolution-chain URL,
// fetches the chain document and flattens its tree into edges.
func (r *Resolver) Resolve(ctx context.Context, species *models.Species) (int, []models.EvolutionEdge, error) {
	chainURL := species.EvolutionChain.URL
	chainID := transform.IDFromURL(chainURL)
	if chainID == 0 {
		return 0, nil, &ResolutionError{
			SpeciesID: species.ID,
			Err:       fmt.Errorf("malformed evolution chain URL %q", chainURL),
		}
	}

	doc, err := r.fetcher.GetEvolutionChain(ctx, chainURL)
	if err != nil {
		return 0, nil, &ResolutionError{SpeciesID: species.ID, Err: err}
	}

	edges := FlattenChain(&doc.Chain)
	r.logger.Debug("flattened evolution chain",
		"species_id", species.ID, "chain_id", chainID, "edges", len(edges))
	return chainID, edges, nil
}

// FlattenChain walks the chain tree depth-first in document order and
// emits one (parent, child) edge per evolution. An explicit worklist
// keeps stack usage flat for arbitrarily deep chains. Nodes whose
// species URL carries no parseable id contribute no edge but their
// subtree is still walked.
func FlattenChain(root *models.ChainLink) []models.EvolutionEdge {
	type frame struct {
		parentID int // 0 for the root
		node     *models.ChainLink
	}

	var edges []models.EvolutionEdge
	stack := []frame{{parentID: 0, node: root}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		nodeID := transform.IDFromURL(f.node.Species.URL)
		if f.parentID != 0 && nodeID != 0 {
			edges = append(edges, models.EvolutionEdge{FromID: f.parentID, ToID: nodeID})
		}

		// Push children in reverse so document order pops first.
		for i := len(f.node.EvolvesTo) - 1; i >= 0; i-- {
			stack = append(stack, frame{parentID: nodeID, node: &f.node.EvolvesTo[i]})
		}
	}

	return edges
}
