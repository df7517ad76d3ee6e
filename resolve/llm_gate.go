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
	"strings"
	"sync"

	"github.com/poiesic/dialograph/ai"
	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/similarity"
	"golang.org/x/sync/errgroup"
)

// gateCandidate is one same-name different-type pair awaiting adjudication.
type gateCandidate struct {
	left  *core.EntityNode
	right *core.EntityNode
}

// gateVerdict pairs a candidate with its judgment. Judged concurrently,
// applied serially.
type gateVerdict struct {
	candidate gateCandidate
	judgment  *ai.PairJudgment
}

// judgeEntityView projects an entity record for the judge.
func judgeEntityView(e *core.EntityNode) ai.JudgeEntity {
	return ai.JudgeEntity{
		ID:          uint64(e.Id),
		Name:        e.Name,
		Aliases:     e.Aliases,
		EntityType:  e.EntityType,
		Description: e.Description,
		FactSummary: e.FactSummary,
	}
}

// ResolveDisambiguation adjudicates same-name different-type pairs through
// the judge. "Same name, different meaning" pairs are blocked so later stages
// keep them apart; "same name, inconsistent type tagging" pairs are merged.
// Disabled or judge-less configurations return the input unchanged.
//
// Judgments run concurrently up to LLMPairConcurrency; merges are applied
// serially afterwards so the working list has a single writer.
func (c *DedupConfig) ResolveDisambiguation(ctx context.Context, judge ai.DedupJudge, entities []*core.EntityNode, redirects core.RedirectMap, blocked core.BlockedPairs, logger *slog.Logger) ([]*core.EntityNode, []core.LLMMergeRecord) {
	if !c.EnableLLMDisambiguation || judge == nil {
		return entities, nil
	}

	candidates := gateCandidates(entities, blocked)
	if len(candidates) == 0 {
		return entities, nil
	}

	var (
		mu       sync.Mutex
		verdicts []gateVerdict
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.LLMPairConcurrency)
	for _, candidate := range candidates {
		group.Go(func() error {
			judgment, err := judge.JudgePair(groupCtx,
				judgeEntityView(candidate.left),
				judgeEntityView(candidate.right),
				"")
			if err != nil {
				// A failed judgment means no merge and no block; local
				// rules remain authoritative.
				logger.Warn("pair adjudication failed, skipping",
					"left", candidate.left.Name,
					"right", candidate.right.Name,
					"err", err)
				return nil
			}
			mu.Lock()
			verdicts = append(verdicts, gateVerdict{candidate: candidate, judgment: judgment})
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = group.Wait()

	return c.applyGateVerdicts(verdicts, entities, redirects, blocked, logger)
}

// gateCandidates selects pairs with identical trimmed names but different
// canonical types. These are exactly the cases local scoring cannot settle.
func gateCandidates(entities []*core.EntityNode, blocked core.BlockedPairs) []gateCandidate {
	var out []gateCandidate
	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			left, right := entities[i], entities[j]
			if left.GroupID != right.GroupID {
				continue
			}
			if blocked.Blocked(left.Id, right.Id) {
				continue
			}
			if !strings.EqualFold(strings.TrimSpace(left.Name), strings.TrimSpace(right.Name)) {
				continue
			}
			if similarity.CanonicalizeType(left.EntityType) == similarity.CanonicalizeType(right.EntityType) {
				continue
			}
			out = append(out, gateCandidate{left: left, right: right})
		}
	}
	return out
}

// applyGateVerdicts applies collected judgments to the working list. Blocks
// are recorded unconditionally; merges additionally require the configured
// confidence floor.
func (c *DedupConfig) applyGateVerdicts(verdicts []gateVerdict, entities []*core.EntityNode, redirects core.RedirectMap, blocked core.BlockedPairs, logger *slog.Logger) ([]*core.EntityNode, []core.LLMMergeRecord) {
	var log []core.LLMMergeRecord
	removed := make(map[core.ID]bool)

	for _, v := range verdicts {
		left, right := v.candidate.left, v.candidate.right

		if v.judgment.Decision == ai.DecisionBlock {
			blocked.Block(left.Id, right.Id, v.judgment.Reason)
			logger.Debug("pair blocked",
				"left", left.Name, "left_type", left.EntityType,
				"right", right.Name, "right_type", right.EntityType,
				"reason", v.judgment.Reason)
			continue
		}

		if v.judgment.Confidence < c.LLMMinConfidence {
			logger.Debug("merge verdict below confidence floor, skipping",
				"left", left.Name,
				"right", right.Name,
				"confidence", v.judgment.Confidence)
			continue
		}

		// An earlier verdict may have merged either side away already.
		canonicalID := redirects.Resolve(left.Id)
		loserID := redirects.Resolve(right.Id)
		if canonicalID == loserID {
			continue
		}
		canonical := findEntity(entities, canonicalID, removed)
		loser := findEntity(entities, loserID, removed)
		if canonical == nil || loser == nil {
			continue
		}

		if err := MergeAttributes(canonical, loser); err != nil {
			logger.Warn("adjudicated merge failed, keeping entities separate",
				"canonical", canonical.Name, "loser", loser.Name, "err", err)
			continue
		}
		redirects.Point(loser.Id, canonical.Id)
		removed[loser.Id] = true

		log = append(log, core.LLMMergeRecord{
			CanonicalID: canonical.Id,
			LoserID:     loser.Id,
			Stage:       "disambiguation",
			Confidence:  v.judgment.Confidence,
			Reason:      v.judgment.Reason,
		})
	}

	if len(removed) == 0 {
		return entities, log
	}
	survivors := make([]*core.EntityNode, 0, len(entities)-len(removed))
	for _, e := range entities {
		if !removed[e.Id] {
			survivors = append(survivors, e)
		}
	}
	return survivors, log
}

// findEntity looks up a surviving entity by id.
func findEntity(entities []*core.EntityNode, id core.ID, removed map[core.ID]bool) *core.EntityNode {
	if removed[id] {
		return nil
	}
	for _, e := range entities {
		if e.Id == id {
			return e
		}
	}
	return nil
}
