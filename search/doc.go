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


// Package search provides entity lookup over a persisted knowledge graph.
//
// The Searcher type ranks entities in a group against a free-text query by
// combining two signals:
//   - semantic similarity between the query embedding and entity name
//     embeddings
//   - lexical overlap between the query and entity names and aliases
//
// An unreachable embedding service degrades the search to lexical-only
// ranking rather than failing it.
package search
