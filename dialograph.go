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


package dialograph

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/poiesic/dialograph/ai"
	"github.com/poiesic/dialograph/ai/openai"
	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/ingestion"
	"github.com/poiesic/dialograph/search"
	"github.com/poiesic/dialograph/storage"
	"github.com/poiesic/dialograph/storage/badger"
)

// Graph bundles the storage backend and AI provider behind one handle.
type Graph struct {
	repo     storage.GraphRepository
	provider ai.AIProvider
	logger   *slog.Logger
}

// GraphOption configures a Graph.
type GraphOption func(*graphOptions)

type graphOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
}

// WithAIConfig sets the AI service configuration used to construct the
// default OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) GraphOption {
	return func(o *graphOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a pre-built provider, bypassing the AI config.
func WithAIProvider(provider ai.AIProvider) GraphOption {
	return func(o *graphOptions) {
		o.provider = provider
	}
}

// NewGraph opens (or creates) a graph database at filePath.
func NewGraph(filePath string, opts ...GraphOption) (*Graph, error) {
	options := &graphOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	repo, err := badger.NewGraphRepository(filePath)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repo.Close()
			return nil, err
		}
	}

	return &Graph{
		repo:     repo,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close releases the AI provider and the storage backend.
func (g *Graph) Close() error {
	if err := g.provider.Close(); err != nil {
		g.logger.Error("error closing AI provider", "err", err)
	}
	if err := g.repo.Close(); err != nil {
		g.logger.Error("error closing graph repository", "err", err)
		return err
	}
	return nil
}

// GraphRepository exposes the underlying repository for direct queries.
func (g *Graph) GraphRepository() storage.GraphRepository {
	return g.repo
}

// NewIngestionPipeline creates a pipeline bound to this graph's repository
// and provider.
func (g *Graph) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(g.repo, g.provider, opts...)
}

// NewSearcher creates an entity searcher bound to this graph's repository
// and provider.
func (g *Graph) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(g.repo, g.provider, opts...)
}

// Ingest runs the full pipeline over one dialogue and persists the resulting
// delta. Missing ApplyID/RunID provenance fields are filled with generated
// ids. The persisted delta is returned for inspection.
func (g *Graph) Ingest(ctx context.Context, req *ingestion.IngestRequest, opts ...ingestion.Option) (*core.GraphDelta, error) {
	if req != nil {
		if req.ApplyID == "" {
			req.ApplyID = uuid.NewString()
		}
		if req.RunID == "" {
			req.RunID = uuid.NewString()
		}
	}

	pipeline, err := g.NewIngestionPipeline(opts...)
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()

	delta, err := pipeline.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	if !req.Pilot {
		if err := g.repo.ApplyDelta(ctx, delta); err != nil {
			return nil, err
		}
	}
	return delta, nil
}
