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
	"log/slog"
	"strings"

	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/similarity"
)

// pairScore is the similarity breakdown for one candidate pair.
type pairScore struct {
	name       float64
	typ        float64
	overall    float64
	aliasExact bool
	sameName   bool
}

// scorePair computes the composite name/type similarity for two entities.
//
// The name score blends embedding cosine, primary-name token Jaccard and the
// best pairwise Jaccard over the full {name ∪ aliases} cross product, with
// weights 0.6/0.2/0.2. When any surface form on one side exactly matches one
// on the other, the weights shift to 0.4/0.4 between cosine and the alias
// component, since the exact match carries more signal than the embedding.
func scorePair(left, right *core.EntityNode) pairScore {
	var score pairScore

	score.sameName = strings.EqualFold(strings.TrimSpace(left.Name), strings.TrimSpace(right.Name))
	score.aliasExact = aliasIntersects(left, right)

	cos := similarity.Cosine(left.NameEmbedding, right.NameEmbedding)
	primary := similarity.NameJaccard(left.Name, right.Name)
	alias := bestAliasJaccard(left, right)

	if score.aliasExact {
		score.name = 0.4*cos + 0.2*primary + 0.4*alias
	} else {
		score.name = 0.6*cos + 0.2*primary + 0.2*alias
	}

	score.typ = similarity.TypeSimilarity(left.EntityType, right.EntityType)
	score.overall = 0.7*score.name + 0.3*score.typ
	return score
}

// aliasIntersects reports whether any surface form (name or alias) of one
// entity exactly matches one of the other's, case-insensitively.
func aliasIntersects(left, right *core.EntityNode) bool {
	if right.HasAlias(left.Name) {
		return true
	}
	for _, alias := range left.Aliases {
		if right.HasAlias(alias) {
			return true
		}
	}
	return false
}

// bestAliasJaccard returns the maximum token Jaccard over the cross product
// of both entities' surface forms.
func bestAliasJaccard(left, right *core.EntityNode) float64 {
	leftForms := append([]string{left.Name}, left.Aliases...)
	rightForms := append([]string{right.Name}, right.Aliases...)

	best := 0.0
	for _, lf := range leftForms {
		for _, rf := range rightForms {
			if j := similarity.NameJaccard(lf, rf); j > best {
				best = j
			}
		}
	}
	return best
}

// shouldMerge applies the fast-path rules and threshold checks to a scored
// pair. Thresholds relax to the unknown-type variants when either side's
// canonical type is UNKNOWN.
func (c *DedupConfig) shouldMerge(left, right *core.EntityNode, score pairScore) (merge, fastPath bool) {
	// Fast paths: an exact surface-form match plus a compatible type is
	// stronger evidence than any blended score.
	if score.aliasExact && score.typ >= 0.7 {
		return true, true
	}
	if score.sameName && score.aliasExact && score.typ >= 0.5 {
		return true, true
	}

	nameThreshold := c.FuzzyNameThresholdStrict
	typeThreshold := c.FuzzyTypeThresholdStrict
	if similarity.CanonicalizeType(left.EntityType) == similarity.TypeUnknown ||
		similarity.CanonicalizeType(right.EntityType) == similarity.TypeUnknown {
		nameThreshold = c.FuzzyUnknownTypeNameThreshold
		typeThreshold = c.FuzzyUnknownTypeTypeThreshold
	}

	if score.name >= nameThreshold && score.typ >= typeThreshold && score.overall >= c.FuzzyOverallThreshold {
		return true, false
	}
	return false, false
}

// ResolveFuzzy runs the pairwise O(n²) scan over the surviving entities.
// The scan repeats until a full pass produces no merge: fusion may add
// aliases to a canonical that now match candidates the scan already passed
// over, including ones at earlier positions. Blocked pairs are never merged.
func (c *DedupConfig) ResolveFuzzy(entities []*core.EntityNode, redirects core.RedirectMap, blocked core.BlockedPairs, logger *slog.Logger) ([]*core.EntityNode, []core.FuzzyMergeRecord) {
	working := make([]*core.EntityNode, len(entities))
	copy(working, entities)

	var log []core.FuzzyMergeRecord

	for {
		merged := false
		for i := 0; i < len(working); i++ {
			canonical := working[i]
			for j := i + 1; j < len(working); j++ {
				candidate := working[j]
				if canonical.GroupID != candidate.GroupID {
					continue
				}
				if blocked.Blocked(canonical.Id, candidate.Id) {
					continue
				}

				score := scorePair(canonical, candidate)
				merge, fastPath := c.shouldMerge(canonical, candidate, score)
				if !merge {
					continue
				}

				if err := MergeAttributes(canonical, candidate); err != nil {
					logger.Warn("fuzzy merge failed, keeping entity separate",
						"canonical", canonical.Name,
						"candidate", candidate.Name,
						"err", err)
					continue
				}
				redirects.Point(candidate.Id, canonical.Id)
				working = append(working[:j], working[j+1:]...)
				merged = true

				log = append(log, core.FuzzyMergeRecord{
					CanonicalID: canonical.Id,
					LoserID:     candidate.Id,
					Name:        canonical.Name,
					NameScore:   score.name,
					TypeScore:   score.typ,
					Overall:     score.overall,
					FastPath:    fastPath,
				})

				logger.Debug("fuzzy merge",
					"canonical", canonical.Name,
					"loser", candidate.Name,
					"name_score", score.name,
					"type_score", score.typ,
					"overall", score.overall,
					"fast_path", fastPath)

				// The next candidate shifted into position j.
				j--
			}
		}
		if !merged {
			return working, log
		}
	}
}
