package mock

import (
	"context"
	"strings"

	"github.com/poiesic/dialograph/ai"
)

// MockJudge is a test double for ai.DedupJudge.
// It allows custom behavior injection via function fields.
type MockJudge struct {
	// JudgePairFunc is called by JudgePair if set.
	// If nil, merges entities whose names match case-insensitively.
	JudgePairFunc func(ctx context.Context, left, right ai.JudgeEntity, contextText string) (*ai.PairJudgment, error)

	// JudgeBlockFunc is called by JudgeBlock if set.
	// If nil, returns no judgments.
	JudgeBlockFunc func(ctx context.Context, entities []ai.JudgeEntity, relations []ai.JudgeRelation) ([]ai.BlockJudgment, error)

	callCount int
}

var _ ai.DedupJudge = (*MockJudge)(nil)

// NewMockJudge creates a mock judge with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockJudge().
func NewMockJudge() *MockJudge {
	return &MockJudge{}
}

// JudgePair merges entities with matching names by default.
func (m *MockJudge) JudgePair(ctx context.Context, left, right ai.JudgeEntity, contextText string) (*ai.PairJudgment, error) {
	m.callCount++

	if m.JudgePairFunc != nil {
		return m.JudgePairFunc(ctx, left, right, contextText)
	}

	if strings.EqualFold(left.Name, right.Name) {
		return &ai.PairJudgment{
			Decision:   ai.DecisionMerge,
			Confidence: 0.9,
			Reason:     "same name",
		}, nil
	}
	return &ai.PairJudgment{
		Decision:   ai.DecisionBlock,
		Confidence: 0.9,
		Reason:     "different names",
	}, nil
}

// JudgeBlock returns no judgments by default.
func (m *MockJudge) JudgeBlock(ctx context.Context, entities []ai.JudgeEntity, relations []ai.JudgeRelation) ([]ai.BlockJudgment, error) {
	m.callCount++

	if m.JudgeBlockFunc != nil {
		return m.JudgeBlockFunc(ctx, entities, relations)
	}

	return nil, nil
}

// CallCount returns the number of times any method was called.
func (m *MockJudge) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockJudge) Reset() {
	m.callCount = 0
	m.JudgePairFunc = nil
	m.JudgeBlockFunc = nil
}
