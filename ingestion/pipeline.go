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
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/dialograph/ai"
	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/resolve"
	"github.com/poiesic/dialograph/storage"
)

// Pipeline orchestrates dialogue ingestion: extraction, enrichment, graph
// construction and entity resolution. It manages a worker pool for the
// per-chunk and per-statement extraction fan-out.
type Pipeline struct {
	repository  storage.GraphRepository
	provider    ai.AIProvider
	dedup       *resolve.DedupConfig
	extractPool *ants.Pool
	progress    ProgressSink
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent extraction.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.extractPool != nil {
			p.extractPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.extractPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// WithDedupConfig overrides the resolution configuration.
// Default is resolve.DefaultDedupConfig().
func WithDedupConfig(config *resolve.DedupConfig) Option {
	return func(p *Pipeline) error {
		if err := config.Validate(); err != nil {
			return err
		}
		p.dedup = config
		return nil
	}
}

// WithProgressSink installs a progress callback. The sink is invoked after
// statement extraction, after graph construction and after resolution.
func WithProgressSink(sink ProgressSink) Option {
	return func(p *Pipeline) error {
		p.progress = sink
		return nil
	}
}

// NewPipeline creates an ingestion pipeline. repository may be nil for
// pilot-only use; Run rejects non-pilot requests without one.
func NewPipeline(repository storage.GraphRepository, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository:  repository,
		provider:    provider,
		dedup:       resolve.DefaultDedupConfig(),
		extractPool: pool,
		logger:      slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestRequest describes one dialogue to ingest.
type IngestRequest struct {
	// GroupID is the identity space the dialogue belongs to. Required.
	GroupID string

	// UserID, ApplyID and RunID are recorded as provenance on every
	// extracted entity.
	UserID  string
	ApplyID string
	RunID   string

	// Title labels the dialogue node.
	Title string

	// Chunks are the pre-split transcript slices, each the unit of
	// statement extraction.
	Chunks []string

	// Pilot requests a reduced-cost run: temporal extraction, embedding
	// generation and the store-widened and LLM resolution stages are
	// skipped.
	Pilot bool
}

// Run executes the full pipeline over one dialogue and returns the resolved
// graph delta. The delta is not persisted; callers apply it to a repository
// when durability is wanted.
//
// Extraction failures degrade the result (missing temporal tags, embeddings
// or merges) but do not fail the run. Only request validation, configuration
// errors and context cancellation are returned as errors.
func (p *Pipeline) Run(ctx context.Context, req *IngestRequest) (*core.GraphDelta, error) {
	if req == nil || len(req.Chunks) == 0 {
		return nil, ErrEmptyRequest
	}
	if strings.TrimSpace(req.GroupID) == "" {
		return nil, ErrGroupRequired
	}
	if !req.Pilot && p.repository == nil {
		return nil, ErrGraphRepositoryRequired
	}

	started := time.Now()
	now := started.UTC()

	dialogue := &core.DialogueNode{
		Id:        core.IDFromContent(fmt.Sprintf("dialogue|%s|%s|%s", req.GroupID, req.Title, req.RunID)),
		GroupID:   req.GroupID,
		UserID:    req.UserID,
		Title:     req.Title,
		CreatedAt: now,
	}

	chunks := make([]*core.ChunkNode, 0, len(req.Chunks))
	for i, content := range req.Chunks {
		chunk := &core.ChunkNode{
			Id:         core.IDFromContent(fmt.Sprintf("chunk|%s|%d|%s", req.GroupID, i, content)),
			DialogueID: dialogue.Id,
			GroupID:    req.GroupID,
			Content:    content,
			ChunkIndex: i,
			CreatedAt:  now,
		}
		if err := core.ValidateChunkNode(chunk); err != nil {
			p.logger.Warn("skipping invalid chunk", "chunk_index", i, "err", err)
			continue
		}
		chunks = append(chunks, chunk)
	}

	statements := p.extractStatements(ctx, req.GroupID, chunks)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.emit(StageStatementsExtracted,
		fmt.Sprintf("extracted %d statements from %d chunks", len(statements), len(chunks)),
		len(statements))

	enriched := p.enrichStatements(ctx, statements, req.Pilot)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	assignResults(statements, enriched)

	nameVectors := p.embedEntityNames(ctx, statements, enriched, req.Pilot)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entities, stmtEdges, entityEdges := p.buildGraph(req, now, statements, enriched, nameVectors)

	// Snapshot the extraction output now: fusion mutates surviving records
	// in place, and the delta promises the pre-merge view alongside the
	// resolved one.
	rawEntities := make([]*core.EntityNode, len(entities))
	for i, entity := range entities {
		rawEntities[i] = entity.Clone()
	}

	p.emit(StageGraphBuilt,
		fmt.Sprintf("built %d entities, %d relations", len(entities), len(entityEdges)),
		len(entities))

	result, err := p.dedupe(ctx, req, entities, stmtEdges, entityEdges)
	if err != nil {
		return nil, err
	}
	p.emit(StageDeduplicated,
		fmt.Sprintf("merged %d entities, %d survive", result.Report.MergeCount(), len(result.Entities)),
		result.Report)

	p.logger.Info("ingestion complete",
		"group_id", req.GroupID,
		"chunks", len(chunks),
		"statements", len(statements),
		"entities", len(result.Entities),
		"merged", result.Report.MergeCount(),
		"pilot", req.Pilot,
		"elapsed", time.Since(started))

	return &core.GraphDelta{
		Dialogue:                dialogue,
		Chunks:                  chunks,
		Statements:              statements,
		RawEntities:             rawEntities,
		RawStatementEntityEdges: stmtEdges,
		RawEntityEntityEdges:    entityEdges,
		Entities:                result.Entities,
		StatementEntityEdges:    result.StatementEntityEdges,
		EntityEntityEdges:       result.EntityEntityEdges,
		Report:                  result.Report,
	}, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.extractPool != nil {
		p.extractPool.Release()
	}
}

// submit schedules task on the worker pool, falling back to running it
// inline if the pool rejects it. Callers pair this with a WaitGroup.
func (p *Pipeline) submit(task func()) {
	if err := p.extractPool.Submit(task); err != nil {
		task()
	}
}
