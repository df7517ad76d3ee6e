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
	"sync"

	"github.com/poiesic/dialograph/ai"
	"github.com/poiesic/dialograph/core"
	"golang.org/x/sync/errgroup"
)

// ResolveBlockwise runs batched adjudication over the surviving entities.
// Entities are partitioned into overlapping blocks so duplicates near a
// block boundary still meet in some block; blocks are judged with bounded
// concurrency and merges are applied serially between rounds. A round that
// produces no merges ends the stage early.
func (c *DedupConfig) ResolveBlockwise(ctx context.Context, judge ai.DedupJudge, entities []*core.EntityNode, edges []*core.EntityEntityEdge, redirects core.RedirectMap, blocked core.BlockedPairs, logger *slog.Logger) ([]*core.EntityNode, []core.LLMMergeRecord) {
	if !c.EnableLLMBlockwise || judge == nil {
		return entities, nil
	}

	var log []core.LLMMergeRecord

	for round := 1; round <= c.LLMMaxRounds; round++ {
		if len(entities) < 2 {
			break
		}

		judgments := c.judgeRound(ctx, judge, entities, edges, logger)
		survivors, roundLog := c.applyBlockJudgments(judgments, entities, redirects, blocked, logger)

		logger.Debug("blockwise round complete",
			"round", round,
			"entities", len(entities),
			"merges", len(roundLog))

		log = append(log, roundLog...)
		entities = survivors
		if len(roundLog) == 0 {
			break
		}
	}

	return entities, log
}

// judgeRound partitions entities into overlapping blocks and collects the
// judge's verdicts for all of them.
func (c *DedupConfig) judgeRound(ctx context.Context, judge ai.DedupJudge, entities []*core.EntityNode, edges []*core.EntityEntityEdge, logger *slog.Logger) []ai.BlockJudgment {
	blocks := partitionBlocks(entities, c.LLMBlockSize, c.LLMBlockOverlap)

	var (
		mu        sync.Mutex
		judgments []ai.BlockJudgment
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.LLMBlockConcurrency)
	for _, block := range blocks {
		group.Go(func() error {
			views := make([]ai.JudgeEntity, len(block))
			ids := make(map[core.ID]bool, len(block))
			for i, e := range block {
				views[i] = judgeEntityView(e)
				ids[e.Id] = true
			}

			result, err := judge.JudgeBlock(groupCtx, views, relationViews(edges, ids))
			if err != nil {
				// A failed block contributes nothing; its entities survive.
				logger.Warn("block adjudication failed, skipping block",
					"size", len(block), "err", err)
				return nil
			}
			mu.Lock()
			judgments = append(judgments, result...)
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	return judgments
}

// partitionBlocks slices entities into blocks of size with the given overlap
// between consecutive blocks.
func partitionBlocks(entities []*core.EntityNode, size, overlap int) [][]*core.EntityNode {
	if len(entities) <= size {
		return [][]*core.EntityNode{entities}
	}

	step := size - overlap
	var blocks [][]*core.EntityNode
	for start := 0; start < len(entities); start += step {
		end := start + size
		if end > len(entities) {
			end = len(entities)
		}
		blocks = append(blocks, entities[start:end])
		if end == len(entities) {
			break
		}
	}
	return blocks
}

// relationViews projects edges touching the block's entities for context.
func relationViews(edges []*core.EntityEntityEdge, ids map[core.ID]bool) []ai.JudgeRelation {
	var out []ai.JudgeRelation
	for _, edge := range edges {
		if !ids[edge.SourceID] && !ids[edge.TargetID] {
			continue
		}
		out = append(out, ai.JudgeRelation{
			SourceID:  uint64(edge.SourceID),
			TargetID:  uint64(edge.TargetID),
			Predicate: edge.RelationType,
		})
	}
	return out
}

// applyBlockJudgments applies one round's verdicts to the working list.
// Blocked pairs and the confidence floor are both honored; group isolation
// is re-checked because overlapping blocks can pair entities across groups.
func (c *DedupConfig) applyBlockJudgments(judgments []ai.BlockJudgment, entities []*core.EntityNode, redirects core.RedirectMap, blocked core.BlockedPairs, logger *slog.Logger) ([]*core.EntityNode, []core.LLMMergeRecord) {
	var log []core.LLMMergeRecord
	removed := make(map[core.ID]bool)

	for _, j := range judgments {
		leftID := core.ID(j.LeftID)
		rightID := core.ID(j.RightID)

		if j.Decision == ai.DecisionBlock {
			blocked.Block(leftID, rightID, j.Reason)
			continue
		}
		if j.Confidence < c.LLMMinConfidence {
			continue
		}
		if blocked.Blocked(leftID, rightID) {
			continue
		}

		canonicalID := redirects.Resolve(leftID)
		loserID := redirects.Resolve(rightID)
		if canonicalID == loserID {
			continue
		}
		canonical := findEntity(entities, canonicalID, removed)
		loser := findEntity(entities, loserID, removed)
		if canonical == nil || loser == nil {
			continue
		}
		if canonical.GroupID != loser.GroupID {
			continue
		}

		if err := MergeAttributes(canonical, loser); err != nil {
			logger.Warn("blockwise merge failed, keeping entities separate",
				"canonical", canonical.Name, "loser", loser.Name, "err", err)
			continue
		}
		redirects.Point(loser.Id, canonical.Id)
		removed[loser.Id] = true

		log = append(log, core.LLMMergeRecord{
			CanonicalID: canonical.Id,
			LoserID:     loser.Id,
			Stage:       "blockwise",
			Confidence:  j.Confidence,
			Reason:      j.Reason,
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
