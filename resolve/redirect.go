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

import "github.com/poiesic/dialograph/core"

// ReconcileStatementEdges rewrites each edge's target through the redirect
// map and collapses duplicates sharing (source, target). When duplicates
// disagree on strength, the strong edge wins.
//
// Pure function of its inputs; kept single-pass so output order is the
// input's first-occurrence order.
func ReconcileStatementEdges(edges []*core.StatementEntityEdge, redirects core.RedirectMap) []*core.StatementEntityEdge {
	type edgeKey struct {
		source core.ID
		target core.ID
	}

	index := make(map[edgeKey]*core.StatementEntityEdge, len(edges))
	out := make([]*core.StatementEntityEdge, 0, len(edges))

	for _, edge := range edges {
		rewritten := &core.StatementEntityEdge{
			SourceID:        edge.SourceID,
			TargetID:        redirects.Resolve(edge.TargetID),
			ConnectStrength: edge.ConnectStrength,
		}

		key := edgeKey{source: rewritten.SourceID, target: rewritten.TargetID}
		existing, ok := index[key]
		if !ok {
			index[key] = rewritten
			out = append(out, rewritten)
			continue
		}
		if existing.ConnectStrength != core.ConnectStrengthStrong &&
			rewritten.ConnectStrength == core.ConnectStrengthStrong {
			existing.ConnectStrength = core.ConnectStrengthStrong
		}
	}

	return out
}

// ReconcileEntityEdges rewrites both endpoints of each relation through the
// redirect map and collapses duplicates sharing (source, target), keeping the
// first occurrence. Relations whose endpoints collapse onto the same entity
// are dropped.
func ReconcileEntityEdges(edges []*core.EntityEntityEdge, redirects core.RedirectMap) []*core.EntityEntityEdge {
	type edgeKey struct {
		source core.ID
		target core.ID
	}

	seen := make(map[edgeKey]bool, len(edges))
	out := make([]*core.EntityEntityEdge, 0, len(edges))

	for _, edge := range edges {
		rewritten := &core.EntityEntityEdge{
			SourceID:          redirects.Resolve(edge.SourceID),
			TargetID:          redirects.Resolve(edge.TargetID),
			RelationType:      edge.RelationType,
			Statement:         edge.Statement,
			SourceStatementID: edge.SourceStatementID,
		}
		if rewritten.SourceID == rewritten.TargetID {
			continue
		}

		key := edgeKey{source: rewritten.SourceID, target: rewritten.TargetID}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rewritten)
	}

	return out
}
