package mock

import (
	"context"
	"strings"
	"unicode"

	"github.com/poiesic/dialograph/ai"
)

// MockExtractor is a test double for the three extraction interfaces:
// ai.StatementExtractor, ai.TripletExtractor and ai.TemporalExtractor.
// It allows custom behavior injection via function fields.
type MockExtractor struct {
	// ExtractStatementsFunc is called by ExtractStatements if set.
	// If nil, uses default sentence splitting.
	ExtractStatementsFunc func(ctx context.Context, text string) ([]ai.ExtractedStatement, error)

	// ExtractTripletsFunc is called by ExtractTriplets if set.
	// If nil, uses default capitalized-word extraction.
	ExtractTripletsFunc func(ctx context.Context, statement string) (*ai.TripletResult, error)

	// ExtractTemporalFunc is called by ExtractTemporal if set.
	// If nil, every statement is classified atemporal.
	ExtractTemporalFunc func(ctx context.Context, statement string) (*ai.TemporalRange, error)

	callCount int
}

var (
	_ ai.StatementExtractor = (*MockExtractor)(nil)
	_ ai.TripletExtractor   = (*MockExtractor)(nil)
	_ ai.TemporalExtractor  = (*MockExtractor)(nil)
)

// NewMockExtractor creates a mock extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// ExtractStatements splits text into statements at sentence boundaries.
// Every statement gets strength "strong".
func (m *MockExtractor) ExtractStatements(ctx context.Context, text string) ([]ai.ExtractedStatement, error) {
	m.callCount++

	if m.ExtractStatementsFunc != nil {
		return m.ExtractStatementsFunc(ctx, text)
	}

	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '。' || r == '！' || r == '？' || r == '\n'
	})

	statements := make([]ai.ExtractedStatement, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		statements = append(statements, ai.ExtractedStatement{
			Statement: part,
			Strength:  "strong",
		})
	}
	return statements, nil
}

// ExtractTriplets extracts capitalized words as entities of type UNKNOWN and
// links consecutive entities with a "related to" relation.
func (m *MockExtractor) ExtractTriplets(ctx context.Context, statement string) (*ai.TripletResult, error) {
	m.callCount++

	if m.ExtractTripletsFunc != nil {
		return m.ExtractTripletsFunc(ctx, statement)
	}

	result := &ai.TripletResult{}
	seen := make(map[string]bool)
	for _, word := range strings.Fields(statement) {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if word == "" || seen[strings.ToLower(word)] {
			continue
		}
		runes := []rune(word)
		if !unicode.IsUpper(runes[0]) && !unicode.Is(unicode.Han, runes[0]) {
			continue
		}
		seen[strings.ToLower(word)] = true
		result.Entities = append(result.Entities, ai.ExtractedEntity{
			Name: word,
			Type: "UNKNOWN",
		})
	}

	for i := 1; i < len(result.Entities); i++ {
		result.Relations = append(result.Relations, ai.ExtractedRelation{
			SubjectIdx: i - 1,
			ObjectIdx:  i,
			Predicate:  "related to",
		})
	}
	return result, nil
}

// ExtractTemporal classifies every statement as atemporal by default.
func (m *MockExtractor) ExtractTemporal(ctx context.Context, statement string) (*ai.TemporalRange, error) {
	m.callCount++

	if m.ExtractTemporalFunc != nil {
		return m.ExtractTemporalFunc(ctx, statement)
	}

	return &ai.TemporalRange{Kind: "atemporal"}, nil
}

// CallCount returns the number of times any method was called.
func (m *MockExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockExtractor) Reset() {
	m.callCount = 0
	m.ExtractStatementsFunc = nil
	m.ExtractTripletsFunc = nil
	m.ExtractTemporalFunc = nil
}
