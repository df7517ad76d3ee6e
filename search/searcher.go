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


package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/dialograph/ai"
	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/similarity"
	"github.com/poiesic/dialograph/storage"
)

// minScore filters out entities with no meaningful relation to the query.
const minScore = 0.2

// Searcher ranks stored entities against free-text queries.
type Searcher struct {
	repository storage.GraphRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

// Result is one ranked entity hit.
type Result struct {
	Entity *core.EntityNode
	Score  float64
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "search")
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(repository storage.GraphRepository, provider ai.AIProvider, opts ...Option) (*Searcher, error) {
	if repository == nil {
		return nil, ErrGraphRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		repository: repository,
		embedder:   provider.Embedder(),
		logger:     slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// FindEntities returns up to maxHits entities in the group ranked against
// the query. The score blends cosine similarity of the query embedding with
// lexical overlap of names and aliases; exact name or alias matches get a
// fixed boost on top.
func (s *Searcher) FindEntities(ctx context.Context, groupID, query string, maxHits int) ([]*Result, error) {
	if maxHits < 1 {
		maxHits = 1
	}

	queryVec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		// Lexical ranking still works without the embedding.
		s.logger.Warn("query embedding failed, falling back to lexical ranking", "err", err)
		queryVec = nil
	}
	queryVec = similarity.NormalizeVector(queryVec)

	entities, err := s.repository.GetEntitiesByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("error loading entities for search", "group_id", groupID, "err", err)
		return nil, err
	}

	results := make([]*Result, 0, len(entities))
	for _, entity := range entities {
		score := scoreEntity(queryVec, query, entity)
		if score < minScore {
			continue
		}
		results = append(results, &Result{Entity: entity, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	return results, nil
}

func scoreEntity(queryVec []float32, query string, entity *core.EntityNode) float64 {
	semantic := similarity.Cosine(queryVec, entity.NameEmbedding)

	lexical := similarity.NameJaccard(query, entity.Name)
	for _, alias := range entity.Aliases {
		if j := similarity.NameJaccard(query, alias); j > lexical {
			lexical = j
		}
	}

	score := 0.7*semantic + 0.3*lexical
	if entity.HasAlias(query) {
		score += 0.3
	}
	return score
}
