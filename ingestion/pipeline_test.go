package ingestion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/dialograph/ai"
	"github.com/poiesic/dialograph/ai/mock"
	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/resolve"
	"github.com/poiesic/dialograph/storage"
	"github.com/poiesic/dialograph/storage/badger"
)

// testTriplets returns scripted extraction results so dedup behavior is
// fully predictable. Alice appears in both statements and must collapse to
// one entity.
func testTriplets(ctx context.Context, statement string) (*ai.TripletResult, error) {
	switch {
	case strings.Contains(statement, "joined"):
		return &ai.TripletResult{
			Entities: []ai.ExtractedEntity{
				{Name: "Alice", Type: "PERSON"},
				{Name: "Acme", Type: "COMPANY", Aliases: []string{"Acme Corp"}},
			},
			Relations: []ai.ExtractedRelation{
				{SubjectIdx: 0, ObjectIdx: 1, Predicate: "joined"},
			},
		}, nil
	case strings.Contains(statement, "lives"):
		return &ai.TripletResult{
			Entities: []ai.ExtractedEntity{
				{Name: "Alice", Type: "PERSON"},
				{Name: "Paris", Type: "LOCATION"},
			},
			Relations: []ai.ExtractedRelation{
				{SubjectIdx: 0, ObjectIdx: 1, Predicate: "lives in"},
			},
		}, nil
	}
	return &ai.TripletResult{}, nil
}

func newTestPipeline(t *testing.T, repo storage.GraphRepository, provider ai.AIProvider, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithPoolSize(2)}, opts...)
	p, err := NewPipeline(repo, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func newMemoryRepo(t *testing.T) storage.GraphRepository {
	t.Helper()
	repo, err := badger.NewMemoryGraphRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRunFullPipeline(t *testing.T) {
	extractor := mock.NewMockExtractor()
	extractor.ExtractTripletsFunc = testTriplets
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor, mock.NewMockJudge())
	repo := newMemoryRepo(t)
	pipeline := newTestPipeline(t, repo, provider)
	ctx := context.Background()

	delta, err := pipeline.Run(ctx, &IngestRequest{
		GroupID: "g1",
		UserID:  "u1",
		RunID:   "r1",
		Title:   "alice",
		Chunks:  []string{"Alice joined Acme. Alice lives in Paris."},
	})
	require.NoError(t, err)

	require.Len(t, delta.Chunks, 1)
	require.Len(t, delta.Statements, 2)
	for _, stmt := range delta.Statements {
		assert.Equal(t, core.TemporalKindAtemporal, stmt.TemporalKind)
		assert.NotEmpty(t, stmt.Embedding)
		assert.Equal(t, core.ConnectStrengthStrong, stmt.ConnectStrength)
	}

	// 4 raw mentions, the two Alices collapse to one canonical record.
	assert.Len(t, delta.RawEntities, 4)
	require.Len(t, delta.Entities, 3)
	require.Len(t, delta.Report.ExactMerges, 1)
	assert.Equal(t, "Alice", delta.Report.ExactMerges[0].Name)

	byName := make(map[string]*core.EntityNode)
	for _, entity := range delta.Entities {
		byName[entity.Name] = entity
		assert.Equal(t, "g1", entity.GroupID)
		assert.Equal(t, "u1", entity.Provenance.UserID)
		assert.NotEmpty(t, entity.NameEmbedding)
	}
	require.Contains(t, byName, "Alice")
	// Fusion accumulated both supporting statements.
	assert.Contains(t, byName["Alice"].FactSummary, "Alice joined Acme")
	assert.Contains(t, byName["Alice"].FactSummary, "Alice lives in Paris")
	assert.Equal(t, []string{"Acme Corp"}, byName["Acme"].Aliases)

	// Both relations survive, rewritten to the canonical Alice.
	require.Len(t, delta.EntityEntityEdges, 2)
	for _, edge := range delta.EntityEntityEdges {
		assert.Equal(t, byName["Alice"].Id, edge.SourceID)
	}
	assert.Len(t, delta.StatementEntityEdges, 4)

	// The delta persists and is findable by name afterwards.
	require.NoError(t, repo.ApplyDelta(ctx, delta))
	found, err := repo.QueryExistingEntities(ctx, "g1", []string{"alice"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, byName["Alice"].Id, found[0].Id)
}

func TestRunPilotSkipsEnrichment(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	extractor := mock.NewMockExtractor()
	extractor.ExtractTripletsFunc = testTriplets
	provider := mock.NewMockProviderWithServices(embedder, extractor, mock.NewMockJudge())
	pipeline := newTestPipeline(t, nil, provider)

	delta, err := pipeline.Run(context.Background(), &IngestRequest{
		GroupID: "g1",
		Chunks:  []string{"Alice joined Acme. Alice lives in Paris."},
		Pilot:   true,
	})
	require.NoError(t, err)

	assert.Zero(t, embedder.CallCount())
	for _, stmt := range delta.Statements {
		assert.Empty(t, stmt.Embedding)
		assert.Equal(t, core.TemporalKindAtemporal, stmt.TemporalKind)
	}
	for _, entity := range delta.Entities {
		assert.Empty(t, entity.NameEmbedding)
	}

	// Exact dedup still runs in pilot mode.
	assert.Len(t, delta.Entities, 3)
	require.Len(t, delta.Report.ExactMerges, 1)
}

func TestRunWidensDedupWithStoredEntities(t *testing.T) {
	extractor := mock.NewMockExtractor()
	extractor.ExtractTripletsFunc = testTriplets
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor, mock.NewMockJudge())
	repo := newMemoryRepo(t)
	pipeline := newTestPipeline(t, repo, provider)
	ctx := context.Background()

	first, err := pipeline.Run(ctx, &IngestRequest{
		GroupID: "g1",
		Title:   "day one",
		Chunks:  []string{"Alice joined Acme."},
	})
	require.NoError(t, err)
	require.NoError(t, repo.ApplyDelta(ctx, first))

	var storedAlice core.ID
	for _, entity := range first.Entities {
		if entity.Name == "Alice" {
			storedAlice = entity.Id
		}
	}
	require.NotZero(t, storedAlice)

	// A later dialogue mentions Alice again with a different statement, so
	// the new mention hashes to a different id.
	second, err := pipeline.Run(ctx, &IngestRequest{
		GroupID: "g1",
		Title:   "day two",
		Chunks:  []string{"Alice lives in Paris."},
	})
	require.NoError(t, err)

	// The stored record wins as canonical; the new mention redirects to it.
	var canonicalAlice *core.EntityNode
	for _, entity := range second.Entities {
		if entity.Name == "Alice" {
			canonicalAlice = entity
		}
	}
	require.NotNil(t, canonicalAlice)
	assert.Equal(t, storedAlice, canonicalAlice.Id)

	redirected := false
	for _, canonical := range second.Report.Redirects {
		if canonical == storedAlice {
			redirected = true
		}
	}
	assert.True(t, redirected)

	// Applying the second delta keeps exactly one Alice in the store.
	require.NoError(t, repo.ApplyDelta(ctx, second))
	found, err := repo.QueryExistingEntities(ctx, "g1", []string{"Alice"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, storedAlice, found[0].Id)
}

func TestRunRawEntitiesKeepPremergeState(t *testing.T) {
	extractor := mock.NewMockExtractor()
	extractor.ExtractTripletsFunc = testTriplets
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor, mock.NewMockJudge())
	pipeline := newTestPipeline(t, newMemoryRepo(t), provider)

	delta, err := pipeline.Run(context.Background(), &IngestRequest{
		GroupID: "g1",
		Chunks:  []string{"Alice joined Acme. Alice lives in Paris."},
	})
	require.NoError(t, err)

	// Fusion mutates the canonical Alice; the raw records are snapshots and
	// each still carries only its own source statement.
	var rawAlices int
	for _, entity := range delta.RawEntities {
		if entity.Name != "Alice" {
			continue
		}
		rawAlices++
		joined := strings.Contains(entity.FactSummary, "Alice joined Acme")
		lives := strings.Contains(entity.FactSummary, "Alice lives in Paris")
		assert.False(t, joined && lives,
			"raw entity carries post-merge summary: %q", entity.FactSummary)
	}
	assert.Equal(t, 2, rawAlices)
}

func TestRunKeepsBlockedPairsAcrossDedupStages(t *testing.T) {
	extractor := mock.NewMockExtractor()
	extractor.ExtractTripletsFunc = func(ctx context.Context, statement string) (*ai.TripletResult, error) {
		return &ai.TripletResult{
			Entities: []ai.ExtractedEntity{
				{Name: "Mercury", Type: "PERSON"},
				{Name: "Mercury", Type: "PRODUCT"},
				{Name: "Paris", Type: "LOCATION"},
			},
		}, nil
	}

	// The judge blocks on its first consultation and would merge on any
	// later one.
	judge := mock.NewMockJudge()
	var verdicts int
	judge.JudgePairFunc = func(ctx context.Context, left, right ai.JudgeEntity, contextText string) (*ai.PairJudgment, error) {
		verdicts++
		if verdicts == 1 {
			return &ai.PairJudgment{Decision: ai.DecisionBlock, Confidence: 0.9, Reason: "distinct referents"}, nil
		}
		return &ai.PairJudgment{Decision: ai.DecisionMerge, Confidence: 0.9, Reason: "same referent"}, nil
	}

	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor, judge)
	repo := newMemoryRepo(t)
	ctx := context.Background()

	// A stored entity colliding on "Paris" forces the widened second pass.
	seed := &core.GraphDelta{Entities: []*core.EntityNode{{
		Id:         core.IDFromContent("seed|paris"),
		Name:       "Paris",
		EntityType: "LOCATION",
		GroupID:    "g1",
	}}}
	require.NoError(t, repo.ApplyDelta(ctx, seed))

	pipeline := newTestPipeline(t, repo, provider,
		WithDedupConfig(resolve.NewDedupConfig(resolve.WithLLMDisambiguation(true))))

	delta, err := pipeline.Run(ctx, &IngestRequest{
		GroupID: "g1",
		Chunks:  []string{"Mercury shipped Mercury from Paris."},
	})
	require.NoError(t, err)

	// The block verdict from the first pass binds the widened pass, so the
	// judge is consulted exactly once and both Mercurys survive.
	assert.Equal(t, 1, verdicts)
	var mercuries int
	for _, entity := range delta.Entities {
		if entity.Name == "Mercury" {
			mercuries++
		}
	}
	assert.Equal(t, 2, mercuries)
	require.Len(t, delta.Report.Blocked, 1)
	assert.Equal(t, "distinct referents", delta.Report.Blocked[0].Reason)
}

func TestRunValidation(t *testing.T) {
	provider := mock.NewMockProvider()
	pipeline := newTestPipeline(t, nil, provider)
	ctx := context.Background()

	_, err := pipeline.Run(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyRequest)

	_, err = pipeline.Run(ctx, &IngestRequest{GroupID: "g1"})
	assert.ErrorIs(t, err, ErrEmptyRequest)

	_, err = pipeline.Run(ctx, &IngestRequest{Chunks: []string{"text"}, Pilot: true})
	assert.ErrorIs(t, err, ErrGroupRequired)

	// Non-pilot runs need a repository for the widened dedup stage.
	_, err = pipeline.Run(ctx, &IngestRequest{GroupID: "g1", Chunks: []string{"text"}})
	assert.ErrorIs(t, err, ErrGraphRepositoryRequired)

	_, err = NewPipeline(nil, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestRunProgressEvents(t *testing.T) {
	var mu sync.Mutex
	var stages []string
	sink := func(stage, message string, data any) {
		mu.Lock()
		stages = append(stages, stage)
		mu.Unlock()
		panic("sink misbehaves")
	}

	pipeline := newTestPipeline(t, nil, mock.NewMockProvider(), WithProgressSink(sink))

	// A panicking sink never aborts the run.
	_, err := pipeline.Run(context.Background(), &IngestRequest{
		GroupID: "g1",
		Chunks:  []string{"Alice joined Acme."},
		Pilot:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{StageStatementsExtracted, StageGraphBuilt, StageDeduplicated}, stages)
}

func TestRunDegradesOnExtractionFailures(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}
	extractor := mock.NewMockExtractor()
	extractor.ExtractStatementsFunc = func(ctx context.Context, text string) ([]ai.ExtractedStatement, error) {
		if strings.Contains(text, "broken") {
			return nil, errors.New("model error")
		}
		return []ai.ExtractedStatement{{Statement: strings.TrimSuffix(text, "."), Strength: "strong"}}, nil
	}
	extractor.ExtractTripletsFunc = func(ctx context.Context, statement string) (*ai.TripletResult, error) {
		if strings.Contains(statement, "lives") {
			return nil, errors.New("model error")
		}
		return testTriplets(ctx, statement)
	}
	provider := mock.NewMockProviderWithServices(embedder, extractor, mock.NewMockJudge())
	pipeline := newTestPipeline(t, newMemoryRepo(t), provider)

	delta, err := pipeline.Run(context.Background(), &IngestRequest{
		GroupID: "g1",
		Chunks:  []string{"Alice joined Acme.", "this chunk is broken.", "Alice lives in Paris."},
	})
	require.NoError(t, err)

	// The broken chunk contributes nothing; the others survive.
	require.Len(t, delta.Statements, 2)

	// The failed triplet item yields no entities, the failed embedding
	// stage leaves vectors empty, and neither failure is fatal.
	assert.Len(t, delta.Entities, 2)
	for _, stmt := range delta.Statements {
		assert.Empty(t, stmt.Embedding)
	}
	for _, entity := range delta.Entities {
		assert.Empty(t, entity.NameEmbedding)
	}
}

func TestRunCancelled(t *testing.T) {
	pipeline := newTestPipeline(t, nil, mock.NewMockProvider())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Run(ctx, &IngestRequest{
		GroupID: "g1",
		Chunks:  []string{"Alice joined Acme."},
		Pilot:   true,
	})
	assert.ErrorIs(t, err, context.Canceled)
}
