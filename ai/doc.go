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


// Package ai provides abstractions for the AI services used in Dialograph.
//
// This package defines interfaces for AI operations including text
// embeddings, statement/triplet/temporal extraction and duplicate-entity
// adjudication. It follows the dependency inversion principle: the extraction
// pipeline and the resolution engine depend on these abstractions, never on
// concrete clients.
//
// # Design Principles
//
// The package is designed around five key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - StatementExtractor: Splits chunked dialogue into fact statements
//   - TripletExtractor: Extracts entities and relations from a statement
//   - TemporalExtractor: Classifies a statement's validity window
//   - DedupJudge: Adjudicates ambiguous duplicate-entity candidates
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, etc.) return interface types to
// enforce abstraction. Mock constructors return concrete types to enable
// behavior injection and call-count assertions in tests.
//
// Every service must tolerate being unavailable: the pipeline degrades to
// local-only resolution when the judge cannot be reached, and substitutes
// empty results when extraction or embedding fails.
package ai
