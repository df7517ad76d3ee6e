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

// exactKey partitions entities for exact-match resolution. The type part is
// canonicalized, so "人物" and "PERSON" land in the same partition.
func exactKey(e *core.EntityNode) string {
	return e.GroupID + "\x00" + strings.TrimSpace(e.Name) + "\x00" + similarity.CanonicalizeType(e.EntityType)
}

// ResolveExact collapses entities sharing (group, trimmed name, canonical
// type). The first entity seen for a key becomes canonical; later entities
// with the same key are fused into it and recorded as losers in redirects.
// Input order determines canonicals, so the output is deterministic.
func ResolveExact(entities []*core.EntityNode, redirects core.RedirectMap, logger *slog.Logger) ([]*core.EntityNode, []core.ExactMergeRecord) {
	canonicals := make(map[string]*core.EntityNode, len(entities))
	merges := make(map[string]*core.ExactMergeRecord)
	survivors := make([]*core.EntityNode, 0, len(entities))
	var mergeOrder []string

	for _, entity := range entities {
		key := exactKey(entity)
		canonical, ok := canonicals[key]
		if !ok {
			canonicals[key] = entity
			survivors = append(survivors, entity)
			continue
		}

		if err := MergeAttributes(canonical, entity); err != nil {
			// Group mismatch cannot happen here since the key embeds the
			// group, but a fusion failure must not lose the record.
			logger.Warn("exact merge failed, keeping entity separate",
				"name", entity.Name, "err", err)
			survivors = append(survivors, entity)
			continue
		}
		redirects.Point(entity.Id, canonical.Id)

		rec, ok := merges[key]
		if !ok {
			rec = &core.ExactMergeRecord{
				CanonicalID: canonical.Id,
				Name:        canonical.Name,
				EntityType:  canonical.EntityType,
			}
			merges[key] = rec
			mergeOrder = append(mergeOrder, key)
		}
		rec.MergedIDs = append(rec.MergedIDs, entity.Id)
	}

	// Emit records in first-merge order so the report is deterministic.
	log := make([]core.ExactMergeRecord, 0, len(mergeOrder))
	for _, key := range mergeOrder {
		log = append(log, *merges[key])
	}

	if len(log) > 0 {
		logger.Debug("exact resolution complete",
			"input", len(entities),
			"survivors", len(survivors),
			"partitions_merged", len(log))
	}
	return survivors, log
}
