package reembed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/dialograph/ai/mock"
	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/storage"
	"github.com/poiesic/dialograph/storage/badger"
)

func seedRepo(t *testing.T, count int) storage.GraphRepository {
	t.Helper()
	repo, err := badger.NewMemoryGraphRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	entities := make([]*core.EntityNode, count)
	for i := range entities {
		name := fmt.Sprintf("Entity %d", i)
		entities[i] = &core.EntityNode{
			Id:            core.IDFromContent(name),
			Name:          name,
			EntityType:    "CONCEPT",
			GroupID:       "g1",
			NameEmbedding: []float32{1, 0, 0}, // stale model output
		}
	}
	require.NoError(t, repo.ApplyDelta(context.Background(), &core.GraphDelta{Entities: entities}))
	return repo
}

func testConfig() *Config {
	return &Config{
		BatchSize:      4,
		ReportInterval: 5,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func TestReembedderRun(t *testing.T) {
	repo := seedRepo(t, 10)
	embedder := mock.NewMockEmbedder()
	var buf bytes.Buffer

	reembedder := NewReembedder(repo, embedder, testConfig(), &buf)
	require.NoError(t, reembedder.Run(context.Background(), "g1"))

	// 10 entities at batch size 4 is 3 embedding calls.
	assert.Equal(t, 3, embedder.CallCount())
	assert.Contains(t, buf.String(), "Reembedding complete")

	entities, err := repo.GetEntitiesByGroup(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, entities, 10)
	for _, entity := range entities {
		assert.Len(t, entity.NameEmbedding, 384, "stale vector replaced by new model output")
	}
}

func TestReembedderEmptyGroup(t *testing.T) {
	repo := seedRepo(t, 3)
	var buf bytes.Buffer

	reembedder := NewReembedder(repo, mock.NewMockEmbedder(), nil, &buf)
	require.NoError(t, reembedder.Run(context.Background(), "empty"))
	assert.Contains(t, buf.String(), "No entities found")
}

func TestReembedderRetriesThenFails(t *testing.T) {
	repo := seedRepo(t, 3)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}

	reembedder := NewReembedder(repo, embedder, testConfig(), &bytes.Buffer{})
	err := reembedder.Run(context.Background(), "g1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service down")
	// MaxRetries attempts were made before giving up.
	assert.Equal(t, 2, embedder.CallCount())
}
