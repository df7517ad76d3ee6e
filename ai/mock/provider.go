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


package mock

import "github.com/poiesic/dialograph/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedder, extractor and judge instances.
type MockProvider struct {
	embedder  *MockEmbedder
	extractor *MockExtractor
	judge     *MockJudge
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockExtractor()/GetMockJudge() to access concrete
// types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		extractor: NewMockExtractor(),
		judge:     NewMockJudge(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, extractor *MockExtractor, judge *MockJudge) ai.AIProvider {
	return &MockProvider{
		embedder:  embedder,
		extractor: extractor,
		judge:     judge,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// StatementExtractor returns the mock extractor.
func (p *MockProvider) StatementExtractor() ai.StatementExtractor {
	return p.extractor
}

// TripletExtractor returns the mock extractor.
func (p *MockProvider) TripletExtractor() ai.TripletExtractor {
	return p.extractor
}

// TemporalExtractor returns the mock extractor.
func (p *MockProvider) TemporalExtractor() ai.TemporalExtractor {
	return p.extractor
}

// DedupJudge returns the mock judge.
func (p *MockProvider) DedupJudge() ai.DedupJudge {
	return p.judge
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockExtractor returns the underlying mock extractor for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockExtractor() *MockExtractor {
	return p.extractor
}

// GetMockJudge returns the underlying mock judge for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockJudge() *MockJudge {
	return p.judge
}
