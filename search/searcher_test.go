package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/dialograph/ai/mock"
	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/storage"
	"github.com/poiesic/dialograph/storage/badger"
)

func seedEntities(t *testing.T, repo storage.GraphRepository, embedder *mock.MockEmbedder) {
	t.Helper()
	ctx := context.Background()

	embed := func(name string) []float32 {
		vec, err := embedder.EmbedText(ctx, name)
		require.NoError(t, err)
		return vec
	}

	delta := &core.GraphDelta{
		Entities: []*core.EntityNode{
			{
				Id:            core.IDFromContent("openai"),
				Name:          "OpenAI",
				Aliases:       []string{"OpenAI Inc"},
				EntityType:    "COMPANY",
				GroupID:       "g1",
				NameEmbedding: embed("OpenAI"),
			},
			{
				Id:            core.IDFromContent("zhangsan"),
				Name:          "张三",
				EntityType:    "PERSON",
				GroupID:       "g1",
				NameEmbedding: embed("张三"),
			},
			{
				Id:            core.IDFromContent("paris"),
				Name:          "Paris",
				EntityType:    "LOCATION",
				GroupID:       "g1",
				NameEmbedding: embed("Paris"),
			},
		},
		Report: &core.DedupReport{Redirects: make(core.RedirectMap)},
	}
	require.NoError(t, repo.ApplyDelta(ctx, delta))
}

func newTestSearcher(t *testing.T, embedder *mock.MockEmbedder) *Searcher {
	t.Helper()
	repo, err := badger.NewMemoryGraphRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	seedEntities(t, repo, embedder)

	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockExtractor(), mock.NewMockJudge())
	searcher, err := NewSearcher(repo, provider)
	require.NoError(t, err)
	return searcher
}

func TestFindEntitiesByName(t *testing.T) {
	searcher := newTestSearcher(t, mock.NewMockEmbedder())

	results, err := searcher.FindEntities(context.Background(), "g1", "OpenAI", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "OpenAI", results[0].Entity.Name)
	// Exact match plus identical embedding beats every other entity.
	assert.Greater(t, results[0].Score, 1.0)
}

func TestFindEntitiesByAlias(t *testing.T) {
	searcher := newTestSearcher(t, mock.NewMockEmbedder())

	results, err := searcher.FindEntities(context.Background(), "g1", "OpenAI Inc", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "OpenAI", results[0].Entity.Name)
}

func TestFindEntitiesLexicalFallback(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	searcher := newTestSearcher(t, embedder)

	// Embedding service failure degrades to lexical ranking.
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("service down")
	}

	results, err := searcher.FindEntities(context.Background(), "g1", "张三", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "张三", results[0].Entity.Name)
}

func TestFindEntitiesFiltersAndCaps(t *testing.T) {
	searcher := newTestSearcher(t, mock.NewMockEmbedder())
	ctx := context.Background()

	// An unrelated query in another group finds nothing.
	results, err := searcher.FindEntities(ctx, "g2", "OpenAI", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	// maxHits caps the result count.
	results, err = searcher.FindEntities(ctx, "g1", "OpenAI Paris 张三", 1)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 1)
}

func TestNewSearcherValidation(t *testing.T) {
	repo, err := badger.NewMemoryGraphRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	_, err = NewSearcher(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrGraphRepositoryRequired)

	_, err = NewSearcher(repo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}
