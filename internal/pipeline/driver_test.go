package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokedata/pokepipeline/models"
	"github.com/pokedata/pokepipeline/pkg/db"
	"github.com/pokedata/pokepipeline/pkg/pokeapi"
)

type stubAPI struct {
	pokemon    map[int]*models.Pokemon
	pokemonErr map[int]error
	species    map[string]*models.Species
	speciesErr error
}

func (s *stubAPI) GetPokemon(_ context.Context, id int) (*models.Pokemon, error) {
	if err, ok := s.pokemonErr[id]; ok {
		return nil, err
	}
	p, ok := s.pokemon[id]
	if !ok {
		return nil, &pokeapi.FetchError{URL: fmt.Sprintf("/pokemon/%d", id), StatusCode: 404, Attempts: 1}
	}
	return p, nil
}

func (s *stubAPI) GetSpecies(_ context.Context, url string) (*models.Species, error) {
	if s.speciesErr != nil {
		return nil, s.speciesErr
	}
	sp, ok := s.species[url]
	if !ok {
		return nil, &pokeapi.FetchError{URL: url, StatusCode: 404, Attempts: 1}
	}
	return sp, nil
}

type stubResolver struct {
	chainID int
	edges   []models.EvolutionEdge
	err     error
}

func (s *stubResolver) Resolve(context.Context, *models.Species) (int, []models.EvolutionEdge, error) {
	if s.err != nil {
		return 0, nil, s.err
	}
	return s.chainID, s.edges, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPokemon(id int, name string) *models.Pokemon {
	return &models.Pokemon{
		ID:     id,
		Name:   name,
		Height: 7,
		Weight: 69,
		Species: models.NamedResource{
			Name: name,
			URL:  fmt.Sprintf("https://pokeapi.co/api/v2/pokemon-species/%d/", id),
		},
		Types: []models.TypeSlot{
			{Slot: 1, Type: models.NamedResource{Name: "grass", URL: "https://pokeapi.co/api/v2/type/12/"}},
		},
		Abilities: []models.AbilitySlot{
			{Slot: 1, Ability: models.NamedResource{Name: "overgrow", URL: "https://pokeapi.co/api/v2/ability/65/"}},
		},
		Stats: []models.StatValue{
			{BaseStat: 45, Stat: models.NamedResource{Name: "hp"}},
		},
	}
}

func testSpecies(id int, chainID int) *models.Species {
	sp := &models.Species{ID: id, Name: fmt.Sprintf("species-%d", id)}
	sp.EvolutionChain.URL = fmt.Sprintf("https://pokeapi.co/api/v2/evolution-chain/%d/", chainID)
	return sp
}

func newTestDriver(t *testing.T, api API, resolver ChainResolver) (*Driver, *db.DB) {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return New(api, resolver, database, discardLogger()), database
}

func TestRun_SuccessfulBatch(t *testing.T) {
	api := &stubAPI{
		pokemon: map[int]*models.Pokemon{
			1: testPokemon(1, "bulbasaur"),
			2: testPokemon(2, "ivysaur"),
		},
		species: map[string]*models.Species{
			"https://pokeapi.co/api/v2/pokemon-species/1/": testSpecies(1, 1),
			"https://pokeapi.co/api/v2/pokemon-species/2/": testSpecies(2, 1),
		},
	}
	resolver := &stubResolver{
		chainID: 1,
		edges: []models.EvolutionEdge{
			{FromID: 1, ToID: 2},
			{FromID: 2, ToID: 3},
		},
	}
	driver, database := newTestDriver(t, api, resolver)

	summary, err := driver.Run(context.Background(), []int{1, 2})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, summary.Succeeded)
	assert.Empty(t, summary.Failed)
	assert.Empty(t, summary.Partial)

	count, err := database.CountRows("pokemon")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	edges, err := database.CountRows("evolutions")
	require.NoError(t, err)
	assert.Equal(t, 2, edges)
}

func TestRun_FetchFailureDoesNotStopRun(t *testing.T) {
	api := &stubAPI{
		pokemon: map[int]*models.Pokemon{
			1: testPokemon(1, "bulbasaur"),
			// id 2 missing: stub returns a 404 FetchError
			3: testPokemon(3, "venusaur"),
		},
		species: map[string]*models.Species{
			"https://pokeapi.co/api/v2/pokemon-species/1/": testSpecies(1, 1),
			"https://pokeapi.co/api/v2/pokemon-species/3/": testSpecies(3, 1),
		},
	}
	driver, database := newTestDriver(t, api, &stubResolver{chainID: 1})

	summary, err := driver.Run(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, summary.Succeeded)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, 2, summary.Failed[0].ID)
	assert.Equal(t, StageFetch, summary.Failed[0].Stage)

	count, err := database.CountRows("pokemon")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRun_SpeciesFailureDegradesToBaseData(t *testing.T) {
	api := &stubAPI{
		pokemon: map[int]*models.Pokemon{
			1: testPokemon(1, "bulbasaur"),
		},
		speciesErr: &pokeapi.FetchError{URL: "species", StatusCode: 500, Attempts: 3},
	}
	driver, database := newTestDriver(t, api, &stubResolver{chainID: 1})

	summary, err := driver.Run(context.Background(), []int{1})
	require.NoError(t, err)

	// Base data still loads: the id counts as succeeded, but the
	// degradation is recorded.
	assert.Equal(t, []int{1}, summary.Succeeded)
	assert.Empty(t, summary.Failed)
	require.Len(t, summary.Partial, 1)
	assert.Equal(t, StageEvolution, summary.Partial[0].Stage)

	detail, err := database.GetPokemonDetail(1)
	require.NoError(t, err)
	assert.Nil(t, detail.EvolutionChainID)
	assert.Len(t, detail.Types, 1)
	assert.Len(t, detail.Abilities, 1)
	assert.Len(t, detail.Stats, 1)

	edges, err := database.CountRows("evolutions")
	require.NoError(t, err)
	assert.Equal(t, 0, edges, "no evolution edges for a degraded pokemon")
}

func TestRun_TransformFailure(t *testing.T) {
	broken := testPokemon(1, "bulbasaur")
	broken.Name = ""
	api := &stubAPI{pokemon: map[int]*models.Pokemon{1: broken}}
	driver, database := newTestDriver(t, api, &stubResolver{})

	summary, err := driver.Run(context.Background(), []int{1})
	require.NoError(t, err)

	require.Len(t, summary.Failed, 1)
	assert.Equal(t, StageTransform, summary.Failed[0].Stage)

	count, err := database.CountRows("pokemon")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRun_RecordsRunBookkeeping(t *testing.T) {
	api := &stubAPI{
		pokemon: map[int]*models.Pokemon{1: testPokemon(1, "bulbasaur")},
		species: map[string]*models.Species{
			"https://pokeapi.co/api/v2/pokemon-species/1/": testSpecies(1, 1),
		},
	}
	driver, database := newTestDriver(t, api, &stubResolver{chainID: 1})

	_, err := driver.Run(context.Background(), []int{1, 2})
	require.NoError(t, err)

	runs, err := database.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Total)
	assert.Equal(t, 1, runs[0].Succeeded)
	assert.Equal(t, 1, runs[0].Failed)
	assert.NotNil(t, runs[0].FinishedAt)

	results, err := database.GetRunResults(runs[0].RunID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "success", results[0].Status)
	assert.Equal(t, "failed", results[1].Status)
	assert.Equal(t, "fetch", results[1].Stage)
}

func TestRun_RerunKeepsLookupsStable(t *testing.T) {
	api := &stubAPI{
		pokemon: map[int]*models.Pokemon{
			1: testPokemon(1, "bulbasaur"),
			2: testPokemon(2, "ivysaur"),
		},
		species: map[string]*models.Species{
			"https://pokeapi.co/api/v2/pokemon-species/1/": testSpecies(1, 1),
			"https://pokeapi.co/api/v2/pokemon-species/2/": testSpecies(2, 1),
		},
	}
	resolver := &stubResolver{chainID: 1, edges: []models.EvolutionEdge{{FromID: 1, ToID: 2}}}
	driver, database := newTestDriver(t, api, resolver)

	_, err := driver.Run(context.Background(), []int{1, 2})
	require.NoError(t, err)

	typesBefore, err := database.CountRows("types")
	require.NoError(t, err)
	abilitiesBefore, err := database.CountRows("abilities")
	require.NoError(t, err)

	_, err = driver.Run(context.Background(), []int{1, 2})
	require.NoError(t, err)

	typesAfter, err := database.CountRows("types")
	require.NoError(t, err)
	abilitiesAfter, err := database.CountRows("abilities")
	require.NoError(t, err)

	assert.Equal(t, typesBefore, typesAfter)
	assert.Equal(t, abilitiesBefore, abilitiesAfter)

	edges, err := database.CountRows("evolutions")
	require.NoError(t, err)
	assert.Equal(t, 1, edges)
}
