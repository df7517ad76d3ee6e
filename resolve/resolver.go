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


package resolve

import (
	"context"
	"log/slog"

	"github.com/poiesic/dialograph/ai"
	"github.com/poiesic/dialograph/core"
)

// Resolver composes the four resolution stages and edge reconciliation into
// one pass over a working entity set.
type Resolver struct {
	config *DedupConfig
	judge  ai.DedupJudge
	logger *slog.Logger
}

// Result is the output of one resolution pass.
type Result struct {
	Entities             []*core.EntityNode
	StatementEntityEdges []*core.StatementEntityEdge
	EntityEntityEdges    []*core.EntityEntityEdge
	Report               *core.DedupReport
}

// NewResolver creates a resolver. judge may be nil when both LLM stages are
// disabled.
func NewResolver(config *DedupConfig, judge ai.DedupJudge) (*Resolver, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{
		config: config,
		judge:  judge,
		logger: slog.Default().With("component", "resolver"),
	}, nil
}

// Resolve runs exact, fuzzy, disambiguation and blockwise resolution over
// the entities, then rewrites and deduplicates the edges through the final
// redirect map. The input slices are not modified; entity records reachable
// from them are mutated by fusion.
//
// Resolution is idempotent: running Resolve on its own output produces no
// further merges.
func (r *Resolver) Resolve(ctx context.Context, entities []*core.EntityNode, stmtEdges []*core.StatementEntityEdge, entityEdges []*core.EntityEntityEdge) *Result {
	return r.ResolveSeeded(ctx, entities, stmtEdges, entityEdges, nil)
}

// ResolveSeeded is Resolve with a pre-populated set of blocked pairs. Callers
// chaining resolution passes seed the next pass with the previous report's
// blocks, so a pair adjudicated as distinct stays distinct; the returned
// report's Blocked list carries the seeds forward.
func (r *Resolver) ResolveSeeded(ctx context.Context, entities []*core.EntityNode, stmtEdges []*core.StatementEntityEdge, entityEdges []*core.EntityEntityEdge, seed []core.BlockedPair) *Result {
	redirects := make(core.RedirectMap)
	blocked := make(core.BlockedPairs)
	for _, pair := range seed {
		blocked.Block(pair.LeftID, pair.RightID, pair.Reason)
	}

	working, exactLog := ResolveExact(entities, redirects, r.logger)
	working, fuzzyLog := r.config.ResolveFuzzy(working, redirects, blocked, r.logger)
	working, gateLog := r.config.ResolveDisambiguation(ctx, r.judge, working, redirects, blocked, r.logger)
	working, blockLog := r.config.ResolveBlockwise(ctx, r.judge, working, entityEdges, redirects, blocked, r.logger)

	report := &core.DedupReport{
		ExactMerges: exactLog,
		FuzzyMerges: fuzzyLog,
		LLMMerges:   append(gateLog, blockLog...),
		Blocked:     blocked.List(),
		Redirects:   redirects,
	}

	r.logger.Info("resolution complete",
		"input", len(entities),
		"survivors", len(working),
		"merged", report.MergeCount(),
		"blocked", len(report.Blocked))

	return &Result{
		Entities:             working,
		StatementEntityEdges: ReconcileStatementEdges(stmtEdges, redirects),
		EntityEntityEdges:    ReconcileEntityEdges(entityEdges, redirects),
		Report:               report,
	}
}
