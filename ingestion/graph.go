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
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/dialograph/core"
)

// buildGraph constructs entity nodes and edges from the triplet extraction
// results. Entity ids are content hashes over (group, statement, index, name)
// so re-running the same input reproduces the same graph.
func (p *Pipeline) buildGraph(req *IngestRequest, now time.Time, statements []*core.StatementNode, enriched *enrichment, nameVectors map[string][]float32) ([]*core.EntityNode, []*core.StatementEntityEdge, []*core.EntityEntityEdge) {
	provenance := core.Provenance{
		UserID:  req.UserID,
		ApplyID: req.ApplyID,
		RunID:   req.RunID,
	}

	var entities []*core.EntityNode
	var stmtEdges []*core.StatementEntityEdge
	var entityEdges []*core.EntityEntityEdge

	for _, stmt := range statements {
		result := enriched.triplets[stmt.Id]
		if result == nil || len(result.Entities) == 0 {
			continue
		}

		ids := make([]core.ID, len(result.Entities))
		for idx, extracted := range result.Entities {
			name := strings.TrimSpace(extracted.Name)

			entity := &core.EntityNode{
				Id:              core.IDFromContent(fmt.Sprintf("entity|%s|%d|%d|%s", req.GroupID, stmt.Id, idx, name)),
				Name:            name,
				Aliases:         cleanAliases(name, extracted.Aliases),
				EntityType:      extracted.Type,
				Description:     strings.TrimSpace(extracted.Description),
				FactSummary:     "entity: " + name + "\nsource: " + stmt.Statement,
				ConnectStrength: entityStrength(extracted.Strength, stmt.ConnectStrength),
				NameEmbedding:   nameVectors[name],
				GroupID:         req.GroupID,
				Provenance:      provenance,
				CreatedAt:       &now,
				StatementID:     stmt.Id,
				EntityIdx:       idx,
			}
			if err := core.ValidateEntityNode(entity); err != nil {
				p.logger.Warn("dropping invalid extracted entity",
					"statement_id", stmt.Id, "entity_idx", idx, "err", err)
				continue
			}
			ids[idx] = entity.Id
			entities = append(entities, entity)

			stmtEdges = append(stmtEdges, &core.StatementEntityEdge{
				SourceID:        stmt.Id,
				TargetID:        entity.Id,
				ConnectStrength: stmt.ConnectStrength,
			})
		}

		for _, rel := range result.Relations {
			if rel.SubjectIdx < 0 || rel.SubjectIdx >= len(ids) ||
				rel.ObjectIdx < 0 || rel.ObjectIdx >= len(ids) {
				continue
			}
			source, target := ids[rel.SubjectIdx], ids[rel.ObjectIdx]
			if source == 0 || target == 0 || source == target {
				continue
			}
			entityEdges = append(entityEdges, &core.EntityEntityEdge{
				SourceID:          source,
				TargetID:          target,
				RelationType:      rel.Predicate,
				Statement:         stmt.Statement,
				SourceStatementID: stmt.Id,
			})
		}
	}

	return entities, stmtEdges, entityEdges
}

// cleanAliases trims, deduplicates and drops aliases equal to the primary
// name, case-insensitively.
func cleanAliases(name string, raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	seen := map[string]bool{strings.ToLower(name): true}
	var aliases []string
	for _, alias := range raw {
		alias = strings.TrimSpace(alias)
		key := strings.ToLower(alias)
		if alias == "" || seen[key] {
			continue
		}
		seen[key] = true
		aliases = append(aliases, alias)
	}
	return aliases
}

// entityStrength prefers the mention's own strength tag, falling back to the
// statement's.
func entityStrength(s string, fallback core.ConnectStrength) core.ConnectStrength {
	switch core.ConnectStrength(s) {
	case core.ConnectStrengthStrong, core.ConnectStrengthWeak, core.ConnectStrengthBoth:
		return core.ConnectStrength(s)
	}
	return fallback
}
