// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/dialograph/ai"
	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/similarity"
	"github.com/poiesic/dialograph/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of entities to embed in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of entities)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the name embeddings of all entities in a group.
type Reembedder struct {
	repo     storage.GraphRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.GraphRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reembedder{
		repo:     repo,
		embedder: embedder,
		config:   config,
		progress: progress,
	}
}

// Run reembeds every entity in the group, writing the updated records back
// in batches. Failed embedding batches are retried with backoff; a batch
// that keeps failing aborts the run with its error.
func (r *Reembedder) Run(ctx context.Context, groupID string) error {
	entities, err := r.repo.GetEntitiesByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to load entities: %w", err)
	}

	total := len(entities)
	if total == 0 {
		fmt.Fprintf(r.progress, "No entities found in group %q\n", groupID)
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d entities (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	for start := 0; start < total; start += r.config.BatchSize {
		end := min(start+r.config.BatchSize, total)
		batch := entities[start:end]

		if err := r.processBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch at offset %d: %w", start, err)
		}

		processed += len(batch)
		tracker.Update(processed)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d entities in %v (%.1f entities/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}

// processBatch embeds one batch of entity names and persists the updated
// records through an entity-only delta.
func (r *Reembedder) processBatch(ctx context.Context, batch []*core.EntityNode) error {
	names := make([]string, len(batch))
	for i, entity := range batch {
		names[i] = entity.Name
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = r.embedder.EmbedTexts(ctx, names)
		return embedErr
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return err
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding count mismatch: want %d, got %d", len(batch), len(vectors))
	}

	for i, entity := range batch {
		entity.NameEmbedding = similarity.NormalizeVector(vectors[i])
	}

	return r.repo.ApplyDelta(ctx, &core.GraphDelta{Entities: batch})
}
