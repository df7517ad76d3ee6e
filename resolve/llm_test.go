package resolve

import (
	"context"
	"log/slog"
	"testing"

	"github.com/poiesic/dialograph/ai"
	"github.com/poiesic/dialograph/ai/mock"
	"github.com/poiesic/dialograph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisambiguationBlockVerdict(t *testing.T) {
	a := testEntity("苹果", "FRUIT")
	b := testEntity("苹果", "COMPANY")

	judge := mock.NewMockJudge()
	judge.JudgePairFunc = func(ctx context.Context, left, right ai.JudgeEntity, contextText string) (*ai.PairJudgment, error) {
		return &ai.PairJudgment{
			Decision:   ai.DecisionBlock,
			Confidence: 0.95,
			Reason:     "fruit vs company",
		}, nil
	}

	config := NewDedupConfig(WithLLMDisambiguation(true))
	redirects := make(core.RedirectMap)
	blocked := make(core.BlockedPairs)

	survivors, log := config.ResolveDisambiguation(context.Background(), judge, []*core.EntityNode{a, b}, redirects, blocked, slog.Default())

	assert.Len(t, survivors, 2)
	assert.Empty(t, log)
	assert.True(t, blocked.Blocked(a.Id, b.Id))
	assert.Equal(t, 1, judge.CallCount())

	// A blocked pair stays apart through every later stage.
	survivors, fuzzyLog := config.ResolveFuzzy(survivors, redirects, blocked, slog.Default())
	assert.Len(t, survivors, 2)
	assert.Empty(t, fuzzyLog)
}

func TestDisambiguationMergeVerdict(t *testing.T) {
	a := testEntity("长城", "LOCATION")
	b := testEntity("长城", "WORK")

	judge := mock.NewMockJudge()
	judge.JudgePairFunc = func(ctx context.Context, left, right ai.JudgeEntity, contextText string) (*ai.PairJudgment, error) {
		return &ai.PairJudgment{
			Decision:   ai.DecisionMerge,
			Confidence: 0.9,
			Reason:     "inconsistent type tagging",
		}, nil
	}

	config := NewDedupConfig(WithLLMDisambiguation(true))
	redirects := make(core.RedirectMap)

	survivors, log := config.ResolveDisambiguation(context.Background(), judge, []*core.EntityNode{a, b}, redirects, make(core.BlockedPairs), slog.Default())

	require.Len(t, survivors, 1)
	assert.Equal(t, a.Id, survivors[0].Id)
	assert.Equal(t, a.Id, redirects.Resolve(b.Id))
	require.Len(t, log, 1)
	assert.Equal(t, "disambiguation", log[0].Stage)
}

func TestDisambiguationConfidenceFloor(t *testing.T) {
	a := testEntity("长城", "LOCATION")
	b := testEntity("长城", "WORK")

	judge := mock.NewMockJudge()
	judge.JudgePairFunc = func(ctx context.Context, left, right ai.JudgeEntity, contextText string) (*ai.PairJudgment, error) {
		return &ai.PairJudgment{Decision: ai.DecisionMerge, Confidence: 0.4}, nil
	}

	config := NewDedupConfig(WithLLMDisambiguation(true))
	survivors, log := config.ResolveDisambiguation(context.Background(), judge, []*core.EntityNode{a, b}, make(core.RedirectMap), make(core.BlockedPairs), slog.Default())

	assert.Len(t, survivors, 2)
	assert.Empty(t, log)
}

func TestDisambiguationDisabled(t *testing.T) {
	a := testEntity("苹果", "FRUIT")
	b := testEntity("苹果", "COMPANY")

	judge := mock.NewMockJudge()
	config := DefaultDedupConfig()

	survivors, log := config.ResolveDisambiguation(context.Background(), judge, []*core.EntityNode{a, b}, make(core.RedirectMap), make(core.BlockedPairs), slog.Default())

	assert.Len(t, survivors, 2)
	assert.Empty(t, log)
	assert.Zero(t, judge.CallCount())
}

func TestDisambiguationJudgeFailure(t *testing.T) {
	a := testEntity("苹果", "FRUIT")
	b := testEntity("苹果", "COMPANY")

	judge := mock.NewMockJudge()
	judge.JudgePairFunc = func(ctx context.Context, left, right ai.JudgeEntity, contextText string) (*ai.PairJudgment, error) {
		return nil, assert.AnError
	}

	config := NewDedupConfig(WithLLMDisambiguation(true))
	blocked := make(core.BlockedPairs)
	survivors, log := config.ResolveDisambiguation(context.Background(), judge, []*core.EntityNode{a, b}, make(core.RedirectMap), blocked, slog.Default())

	// A failed judgment means neither merge nor block.
	assert.Len(t, survivors, 2)
	assert.Empty(t, log)
	assert.Empty(t, blocked)
}

func TestBlockwiseMergeAcrossBlocks(t *testing.T) {
	// "Robert Smith" and "Bob Smith" share no exact surface form, so only
	// the judge can connect them.
	a := testEntity("Robert Smith", "PERSON")
	b := testEntity("Alice Chen", "PERSON")
	c := testEntity("Bob Smith", "PERSON")

	judge := mock.NewMockJudge()
	judge.JudgeBlockFunc = func(ctx context.Context, entities []ai.JudgeEntity, relations []ai.JudgeRelation) ([]ai.BlockJudgment, error) {
		var out []ai.BlockJudgment
		for i := 0; i < len(entities); i++ {
			for j := i + 1; j < len(entities); j++ {
				if entities[i].Name == "Robert Smith" && entities[j].Name == "Bob Smith" {
					out = append(out, ai.BlockJudgment{
						LeftID:     entities[i].ID,
						RightID:    entities[j].ID,
						Decision:   ai.DecisionMerge,
						Confidence: 0.85,
						Reason:     "nickname",
					})
				}
			}
		}
		return out, nil
	}

	config := NewDedupConfig(WithLLMBlockwise(true))
	redirects := make(core.RedirectMap)

	survivors, log := config.ResolveBlockwise(context.Background(), judge, []*core.EntityNode{a, b, c}, nil, redirects, make(core.BlockedPairs), slog.Default())

	require.Len(t, survivors, 2)
	assert.Equal(t, a.Id, redirects.Resolve(c.Id))
	require.Len(t, log, 1)
	assert.Equal(t, "blockwise", log[0].Stage)
	assert.Contains(t, survivors[0].Aliases, "Bob Smith")
}

func TestBlockwiseRespectsBlockedPairs(t *testing.T) {
	a := testEntity("苹果", "FRUIT")
	b := testEntity("苹果", "COMPANY")

	judge := mock.NewMockJudge()
	judge.JudgeBlockFunc = func(ctx context.Context, entities []ai.JudgeEntity, relations []ai.JudgeRelation) ([]ai.BlockJudgment, error) {
		return []ai.BlockJudgment{{
			LeftID:     entities[0].ID,
			RightID:    entities[1].ID,
			Decision:   ai.DecisionMerge,
			Confidence: 0.99,
		}}, nil
	}

	blocked := make(core.BlockedPairs)
	blocked.Block(a.Id, b.Id, "adjudicated distinct")

	config := NewDedupConfig(WithLLMBlockwise(true))
	survivors, log := config.ResolveBlockwise(context.Background(), judge, []*core.EntityNode{a, b}, nil, make(core.RedirectMap), blocked, slog.Default())

	assert.Len(t, survivors, 2)
	assert.Empty(t, log)
}

func TestBlockwiseStopsWhenConverged(t *testing.T) {
	a := testEntity("Robert Smith", "PERSON")
	b := testEntity("Alice Chen", "PERSON")

	judge := mock.NewMockJudge()
	judge.JudgeBlockFunc = func(ctx context.Context, entities []ai.JudgeEntity, relations []ai.JudgeRelation) ([]ai.BlockJudgment, error) {
		return nil, nil
	}

	config := NewDedupConfig(WithLLMBlockwise(true), WithLLMMaxRounds(5))
	_, log := config.ResolveBlockwise(context.Background(), judge, []*core.EntityNode{a, b}, nil, make(core.RedirectMap), make(core.BlockedPairs), slog.Default())

	assert.Empty(t, log)
	// An empty first round ends the stage; no further rounds run.
	assert.Equal(t, 1, judge.CallCount())
}

func TestPartitionBlocksOverlap(t *testing.T) {
	entities := make([]*core.EntityNode, 7)
	for i := range entities {
		entities[i] = testEntity(string(rune('a'+i)), "PERSON")
	}

	blocks := partitionBlocks(entities, 4, 2)

	require.Len(t, blocks, 3)
	assert.Len(t, blocks[0], 4)
	assert.Len(t, blocks[1], 4)
	assert.Len(t, blocks[2], 3)
	// Consecutive blocks share the overlap region.
	assert.Equal(t, blocks[0][2], blocks[1][0])
	assert.Equal(t, blocks[1][2], blocks[2][0])
}
