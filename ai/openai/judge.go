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


package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/dialograph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Judge implements ai.DedupJudge using OpenAI-compatible chat APIs.
//
// Prompts reference entities by zero-based index rather than by ID; entity
// IDs are 64-bit hashes that lose precision when round-tripped through JSON
// numbers. Indices are mapped back to IDs on the way out.
type Judge struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.DedupJudge = (*Judge)(nil)

type pairJudgmentResponse struct {
	Decision   string  `json:"decision"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

type blockJudgmentResponse struct {
	Judgments []struct {
		Left       int     `json:"left"`
		Right      int     `json:"right"`
		Decision   string  `json:"decision"`
		Confidence float64 `json:"confidence"`
		Reason     string  `json:"reason"`
	} `json:"judgments"`
}

// newJudge is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newJudge(config *ai.Config) (*Judge, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.JudgeModel),
	)
	if err != nil {
		return nil, err
	}

	return &Judge{
		client: client,
		logger: slog.Default().With("component", "openai-judge"),
	}, nil
}

// NewJudge creates a duplicate-adjudication service using the provided
// configuration.
func NewJudge(config *ai.Config) (ai.DedupJudge, error) {
	return newJudge(config)
}

// JudgePair decides whether two same-name entities refer to the same thing.
func (j *Judge) JudgePair(ctx context.Context, left, right ai.JudgeEntity, contextText string) (*ai.PairJudgment, error) {
	var sb strings.Builder
	sb.WriteString(formatJudgeEntity("Record A", left))
	sb.WriteString("\n\n")
	sb.WriteString(formatJudgeEntity("Record B", right))
	if contextText != "" {
		sb.WriteString("\n\nContext:\n")
		sb.WriteString(truncate(contextText, 500))
	}

	var result pairJudgmentResponse
	if err := completeJSON(ctx, j.client, j.logger, buildJudgePairPrompt(), sb.String(), &result); err != nil {
		return nil, err
	}

	decision := ai.Decision(result.Decision)
	if decision != ai.DecisionMerge && decision != ai.DecisionBlock {
		// An unparseable decision must never merge; keeping entities
		// separate is recoverable, a wrong merge is not.
		j.logger.Warn("unrecognized pair decision, keeping separate",
			"decision", result.Decision,
			"left", left.Name,
			"right", right.Name)
		decision = ai.DecisionBlock
	}

	j.logger.Debug("judged pair",
		"left", left.Name,
		"right", right.Name,
		"decision", decision,
		"confidence", result.Confidence)

	return &ai.PairJudgment{
		Decision:   decision,
		Confidence: result.Confidence,
		Reason:     result.Reason,
	}, nil
}

// JudgeBlock examines a block of entities and returns merge judgments for
// duplicates found among them.
func (j *Judge) JudgeBlock(ctx context.Context, entities []ai.JudgeEntity, relations []ai.JudgeRelation) ([]ai.BlockJudgment, error) {
	if len(entities) < 2 {
		return nil, nil
	}

	userPrompt := formatBlockInput(entities, relations)

	var result blockJudgmentResponse
	if err := completeJSON(ctx, j.client, j.logger, buildJudgeBlockPrompt(), userPrompt, &result); err != nil {
		return nil, err
	}

	judgments := make([]ai.BlockJudgment, 0, len(result.Judgments))
	for _, raw := range result.Judgments {
		if raw.Left < 0 || raw.Left >= len(entities) ||
			raw.Right < 0 || raw.Right >= len(entities) ||
			raw.Left == raw.Right {
			j.logger.Warn("dropping judgment with out-of-range indices",
				"left", raw.Left, "right", raw.Right, "entities", len(entities))
			continue
		}
		decision := ai.Decision(raw.Decision)
		if decision != ai.DecisionMerge && decision != ai.DecisionBlock {
			continue
		}
		judgments = append(judgments, ai.BlockJudgment{
			LeftID:     entities[raw.Left].ID,
			RightID:    entities[raw.Right].ID,
			Decision:   decision,
			Confidence: raw.Confidence,
			Reason:     raw.Reason,
		})
	}

	j.logger.Debug("judged block",
		"entities", len(entities),
		"judgments", len(judgments))
	return judgments, nil
}

// formatBlockInput renders the numbered entity list and relation context for
// a block adjudication prompt. Relations are rewritten to use the same
// indices as the entity list.
func formatBlockInput(entities []ai.JudgeEntity, relations []ai.JudgeRelation) string {
	index := make(map[uint64]int, len(entities))
	for i, e := range entities {
		index[e.ID] = i
	}

	var sb strings.Builder
	sb.WriteString("Entities:\n")
	for i, e := range entities {
		sb.WriteString(formatJudgeEntity(fmt.Sprintf("[%d]", i), e))
		sb.WriteString("\n")
	}

	if len(relations) > 0 {
		sb.WriteString("\nRelations:\n")
		for _, r := range relations {
			src, okSrc := index[r.SourceID]
			dst, okDst := index[r.TargetID]
			if !okSrc || !okDst {
				continue
			}
			fmt.Fprintf(&sb, "[%d] %s [%d]\n", src, r.Predicate, dst)
		}
	}

	return sb.String()
}
