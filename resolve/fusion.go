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
	"sort"
	"strings"

	"github.com/poiesic/dialograph/core"
)

// MergeAttributes fuses the loser's attributes into the canonical entity.
// Each field merges independently; the sub-merges are union-based, so fusing
// A into B and then B into C yields the same attribute sets as any other
// merge order.
func MergeAttributes(canonical, loser *core.EntityNode) error {
	if canonical.GroupID != loser.GroupID {
		return core.ErrCrossGroupMerge
	}

	canonical.ConnectStrength = core.MergeStrength(canonical.ConnectStrength, loser.ConnectStrength)
	canonical.Aliases = mergeAliases(canonical, loser)

	if len(loser.Description) > len(canonical.Description) {
		canonical.Description = loser.Description
	}

	canonical.FactSummary = mergeFactSummaries(canonical.Name, canonical.FactSummary, loser.FactSummary)

	if len(canonical.NameEmbedding) == 0 && len(loser.NameEmbedding) > 0 {
		canonical.NameEmbedding = loser.NameEmbedding
	}

	mergeWindow(canonical, loser)
	return nil
}

// mergeAliases unions the canonical's aliases with the loser's name and
// aliases, case-insensitively deduplicated and sorted. The canonical's own
// name never appears in the result.
func mergeAliases(canonical, loser *core.EntityNode) []string {
	seen := map[string]bool{
		strings.ToLower(strings.TrimSpace(canonical.Name)): true,
	}
	merged := make([]string, 0, len(canonical.Aliases)+len(loser.Aliases)+1)

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		merged = append(merged, name)
	}

	for _, alias := range canonical.Aliases {
		add(alias)
	}
	add(loser.Name)
	for _, alias := range loser.Aliases {
		add(alias)
	}

	sort.Strings(merged)
	return merged
}

// mergeFactSummaries combines two fact summaries into one "entity:" header
// plus deduplicated "source:" lines. A summary without source markers is
// treated as a single source.
func mergeFactSummaries(name, a, b string) string {
	sources := append(parseSources(a), parseSources(b)...)

	seen := make(map[string]bool, len(sources))
	unique := sources[:0]
	for _, src := range sources {
		if seen[src] {
			continue
		}
		seen[src] = true
		unique = append(unique, src)
	}

	if len(unique) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("entity: ")
	sb.WriteString(name)
	for _, src := range unique {
		sb.WriteString("\nsource: ")
		sb.WriteString(src)
	}
	return sb.String()
}

// parseSources extracts source lines from a fact summary. Both the "source:"
// and "来源:" prefixes are recognized; "entity:" header lines are skipped.
// Text without any marker counts as one source.
func parseSources(summary string) []string {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil
	}

	var sources []string
	found := false
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(line)
		var src string
		switch {
		case strings.HasPrefix(line, "source:"):
			src = strings.TrimSpace(strings.TrimPrefix(line, "source:"))
		case strings.HasPrefix(line, "来源:"):
			src = strings.TrimSpace(strings.TrimPrefix(line, "来源:"))
		case strings.HasPrefix(line, "entity:"):
			found = true
			continue
		default:
			continue
		}
		found = true
		if src != "" {
			sources = append(sources, src)
		}
	}

	if !found {
		// No structure at all: the whole text is one source.
		return []string{summary}
	}
	return sources
}

// mergeWindow widens the canonical's validity window to cover the loser's.
// CreatedAt takes the earlier of the two; ExpiredAt takes the later, with a
// nil bound meaning unbounded and winning over any concrete date.
func mergeWindow(canonical, loser *core.EntityNode) {
	if canonical.CreatedAt == nil {
		canonical.CreatedAt = loser.CreatedAt
	} else if loser.CreatedAt != nil && loser.CreatedAt.Before(*canonical.CreatedAt) {
		canonical.CreatedAt = loser.CreatedAt
	}

	if canonical.ExpiredAt == nil || loser.ExpiredAt == nil {
		canonical.ExpiredAt = nil
		return
	}
	if loser.ExpiredAt.After(*canonical.ExpiredAt) {
		canonical.ExpiredAt = loser.ExpiredAt
	}
}
