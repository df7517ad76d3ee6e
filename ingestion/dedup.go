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

	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/resolve"
)

// dedupe runs entity resolution in two stages: first over the batch alone,
// then widened with stored entities whose names collide with the survivors.
// Pilot runs stop after the first stage and skip the LLM stages entirely.
func (p *Pipeline) dedupe(ctx context.Context, req *IngestRequest, entities []*core.EntityNode, stmtEdges []*core.StatementEntityEdge, entityEdges []*core.EntityEntityEdge) (*resolve.Result, error) {
	config := p.dedup
	if req.Pilot {
		pilot := *p.dedup
		pilot.EnableLLMDisambiguation = false
		pilot.EnableLLMBlockwise = false
		config = &pilot
	}

	resolver, err := resolve.NewResolver(config, p.provider.DedupJudge())
	if err != nil {
		return nil, err
	}

	first := resolver.Resolve(ctx, entities, stmtEdges, entityEdges)
	if req.Pilot || p.repository == nil {
		return first, nil
	}

	stored := p.queryCollidingEntities(ctx, req.GroupID, first.Entities)
	if len(stored) == 0 {
		return first, nil
	}

	// Stored entities go first so their ids win ties and stay stable
	// across runs.
	widened := make([]*core.EntityNode, 0, len(stored)+len(first.Entities))
	widened = append(widened, stored...)
	widened = append(widened, first.Entities...)

	// First-pass block verdicts keep binding in the widened pass.
	second := resolver.ResolveSeeded(ctx, widened, first.StatementEntityEdges, first.EntityEntityEdges, first.Report.Blocked)
	second.Report = combineReports(first.Report, second.Report)
	return second, nil
}

// queryCollidingEntities looks up stored entities whose name or aliases match
// any surviving entity's name or aliases. Entities already in the batch (a
// re-run over the same content) are excluded. Store failures degrade to
// batch-only resolution.
func (p *Pipeline) queryCollidingEntities(ctx context.Context, groupID string, survivors []*core.EntityNode) []*core.EntityNode {
	inBatch := make(map[core.ID]bool, len(survivors))
	var names []string
	seen := make(map[string]bool)
	for _, entity := range survivors {
		inBatch[entity.Id] = true
		for _, name := range append([]string{entity.Name}, entity.Aliases...) {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}

	stored, err := p.repository.QueryExistingEntities(ctx, groupID, names)
	if err != nil {
		p.logger.Warn("existing-entity lookup failed, dedup limited to this batch", "err", err)
		return nil
	}

	filtered := stored[:0]
	for _, entity := range stored {
		if !inBatch[entity.Id] {
			filtered = append(filtered, entity)
		}
	}
	return filtered
}

// combineReports folds the batch-stage report into the widened-stage report.
// The combined redirect map stays flattened: first-stage targets are resolved
// through the second stage before recording. The second stage was seeded with
// the first's blocked pairs, so its Blocked list already covers both.
func combineReports(first, second *core.DedupReport) *core.DedupReport {
	redirects := make(core.RedirectMap, len(first.Redirects)+len(second.Redirects))
	for loser, canonical := range first.Redirects {
		redirects[loser] = second.Redirects.Resolve(canonical)
	}
	for loser, canonical := range second.Redirects {
		redirects[loser] = canonical
	}

	return &core.DedupReport{
		ExactMerges: append(first.ExactMerges, second.ExactMerges...),
		FuzzyMerges: append(first.FuzzyMerges, second.FuzzyMerges...),
		LLMMerges:   append(first.LLMMerges, second.LLMMerges...),
		Blocked:     second.Blocked,
		Redirects:   redirects,
	}
}
