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


package ingestion

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/dialograph/ai"
	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/similarity"
)

// enrichment holds the outputs of the parallel per-statement extraction
// sub-tasks, keyed by statement id. A missing key means that item failed or
// was skipped; downstream assignment substitutes defaults.
type enrichment struct {
	mu         sync.Mutex
	triplets   map[core.ID]*ai.TripletResult
	temporal   map[core.ID]*ai.TemporalRange
	embeddings map[core.ID][]float32
}

func newEnrichment() *enrichment {
	return &enrichment{
		triplets:   make(map[core.ID]*ai.TripletResult),
		temporal:   make(map[core.ID]*ai.TemporalRange),
		embeddings: make(map[core.ID][]float32),
	}
}

// extractStatements fans statement extraction out per chunk and returns the
// statement nodes in chunk order. A chunk whose extraction fails contributes
// nothing; the failure is logged.
func (p *Pipeline) extractStatements(ctx context.Context, groupID string, chunks []*core.ChunkNode) []*core.StatementNode {
	extractor := p.provider.StatementExtractor()

	perChunk := make([][]*core.StatementNode, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		p.submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			extracted, err := extractor.ExtractStatements(ctx, chunk.Content)
			if err != nil {
				p.logger.Warn("statement extraction failed for chunk",
					"chunk_index", chunk.ChunkIndex, "err", err)
				return
			}
			nodes := make([]*core.StatementNode, 0, len(extracted))
			for _, stmt := range extracted {
				text := strings.TrimSpace(stmt.Statement)
				node := &core.StatementNode{
					Id:              core.IDFromContent(fmt.Sprintf("statement|%s|%d|%s", groupID, chunk.Id, text)),
					GroupID:         groupID,
					Statement:       text,
					ConnectStrength: strengthOf(stmt.Strength),
					ChunkID:         chunk.Id,
				}
				if err := core.ValidateStatementNode(node); err != nil {
					continue
				}
				nodes = append(nodes, node)
			}
			perChunk[i] = nodes
		})
	}
	wg.Wait()

	seen := make(map[core.ID]bool)
	statements := make([]*core.StatementNode, 0, len(chunks))
	for _, nodes := range perChunk {
		for _, node := range nodes {
			if seen[node.Id] {
				continue
			}
			seen[node.Id] = true
			statements = append(statements, node)
		}
	}
	return statements
}

// enrichStatements runs the three per-statement sub-tasks concurrently:
// triplet extraction, temporal classification and statement embedding. The
// sub-tasks consume the same statement set but are independent; each one
// fails soft per item (or, for the batch embedding call, per stage) so a
// broken service degrades the result without corrupting the others.
func (p *Pipeline) enrichStatements(ctx context.Context, statements []*core.StatementNode, pilot bool) *enrichment {
	enriched := newEnrichment()
	if len(statements) == 0 {
		return enriched
	}

	var g errgroup.Group

	g.Go(func() error {
		p.extractTriplets(ctx, statements, enriched)
		return nil
	})

	if !pilot {
		g.Go(func() error {
			p.extractTemporal(ctx, statements, enriched)
			return nil
		})
		g.Go(func() error {
			p.embedStatements(ctx, statements, enriched)
			return nil
		})
	}

	g.Wait()
	return enriched
}

func (p *Pipeline) extractTriplets(ctx context.Context, statements []*core.StatementNode, enriched *enrichment) {
	extractor := p.provider.TripletExtractor()

	var wg sync.WaitGroup
	for _, stmt := range statements {
		wg.Add(1)
		p.submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			result, err := extractor.ExtractTriplets(ctx, stmt.Statement)
			if err != nil {
				p.logger.Warn("triplet extraction failed for statement",
					"statement_id", stmt.Id, "err", err)
				return
			}
			enriched.mu.Lock()
			enriched.triplets[stmt.Id] = result
			enriched.mu.Unlock()
		})
	}
	wg.Wait()
}

func (p *Pipeline) extractTemporal(ctx context.Context, statements []*core.StatementNode, enriched *enrichment) {
	extractor := p.provider.TemporalExtractor()

	var wg sync.WaitGroup
	for _, stmt := range statements {
		wg.Add(1)
		p.submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			result, err := extractor.ExtractTemporal(ctx, stmt.Statement)
			if err != nil {
				p.logger.Warn("temporal extraction failed for statement",
					"statement_id", stmt.Id, "err", err)
				return
			}
			enriched.mu.Lock()
			enriched.temporal[stmt.Id] = result
			enriched.mu.Unlock()
		})
	}
	wg.Wait()
}

// embedStatements generates base embeddings for all statements in one batch
// call. A batch failure drops the whole stage rather than the run.
func (p *Pipeline) embedStatements(ctx context.Context, statements []*core.StatementNode, enriched *enrichment) {
	texts := make([]string, len(statements))
	for i, stmt := range statements {
		texts[i] = stmt.Statement
	}

	vectors, err := p.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		p.logger.Warn("statement embedding failed, continuing without embeddings", "err", err)
		return
	}
	if len(vectors) != len(statements) {
		p.logger.Warn("statement embedding count mismatch, continuing without embeddings",
			"want", len(statements), "got", len(vectors))
		return
	}

	enriched.mu.Lock()
	defer enriched.mu.Unlock()
	for i, stmt := range statements {
		enriched.embeddings[stmt.Id] = similarity.NormalizeVector(vectors[i])
	}
}

// assignResults writes the enrichment outputs back onto the statement nodes.
// Items with no result get the empty defaults: atemporal, no embedding.
func assignResults(statements []*core.StatementNode, enriched *enrichment) {
	for _, stmt := range statements {
		stmt.TemporalKind = core.TemporalKindAtemporal
		if tr, ok := enriched.temporal[stmt.Id]; ok && tr != nil {
			if tr.Kind == string(core.TemporalKindTemporal) {
				stmt.TemporalKind = core.TemporalKindTemporal
			}
			stmt.ValidAt = tr.ValidAt
			stmt.InvalidAt = tr.InvalidAt
		}
		if vec, ok := enriched.embeddings[stmt.Id]; ok {
			stmt.Embedding = vec
		}
	}
}

// embedEntityNames batch-embeds the distinct entity names found by triplet
// extraction and returns unit vectors keyed by name. Skipped in pilot mode.
func (p *Pipeline) embedEntityNames(ctx context.Context, statements []*core.StatementNode, enriched *enrichment, pilot bool) map[string][]float32 {
	vectors := make(map[string][]float32)
	if pilot {
		return vectors
	}

	var names []string
	seen := make(map[string]bool)
	for _, stmt := range statements {
		result := enriched.triplets[stmt.Id]
		if result == nil {
			continue
		}
		for _, entity := range result.Entities {
			name := strings.TrimSpace(entity.Name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return vectors
	}

	embedded, err := p.provider.Embedder().EmbedTexts(ctx, names)
	if err != nil {
		p.logger.Warn("entity name embedding failed, continuing without embeddings", "err", err)
		return vectors
	}
	if len(embedded) != len(names) {
		p.logger.Warn("entity name embedding count mismatch, continuing without embeddings",
			"want", len(names), "got", len(embedded))
		return vectors
	}

	for i, name := range names {
		vectors[name] = similarity.NormalizeVector(embedded[i])
	}
	return vectors
}

func strengthOf(s string) core.ConnectStrength {
	if s == string(core.ConnectStrengthStrong) {
		return core.ConnectStrengthStrong
	}
	return core.ConnectStrengthWeak
}
