package resolve

import (
	"log/slog"
	"testing"

	"github.com/poiesic/dialograph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFuzzyAliasFastPath(t *testing.T) {
	// Different primary names, related types, one shared surface form. The
	// blended name score alone would miss the strict threshold; the alias
	// fast path must still merge.
	a := testEntity("OpenAI", "ORG")
	b := testEntity("OpenAI Inc", "COMPANY")
	b.Aliases = []string{"OpenAI"}

	config := DefaultDedupConfig()
	redirects := make(core.RedirectMap)
	blocked := make(core.BlockedPairs)

	survivors, log := config.ResolveFuzzy([]*core.EntityNode{a, b}, redirects, blocked, slog.Default())

	require.Len(t, survivors, 1)
	assert.Equal(t, a.Id, survivors[0].Id)
	assert.Equal(t, []string{"OpenAI Inc"}, survivors[0].Aliases)
	assert.Equal(t, a.Id, redirects.Resolve(b.Id))

	require.Len(t, log, 1)
	assert.True(t, log[0].FastPath)
}

func TestResolveFuzzySameNameLowTypeSimilarityKept(t *testing.T) {
	// FRUIT vs COMPANY has no table entry and no letter overlap, so the
	// type score is far below every gate. Local rules must keep both.
	a := testEntity("苹果", "FRUIT")
	b := testEntity("苹果", "COMPANY")

	config := DefaultDedupConfig()
	survivors, log := config.ResolveFuzzy([]*core.EntityNode{a, b}, make(core.RedirectMap), make(core.BlockedPairs), slog.Default())

	assert.Len(t, survivors, 2)
	assert.Empty(t, log)
}

func TestResolveFuzzyThresholdMerge(t *testing.T) {
	// Identical embeddings and near-identical names push the blended score
	// over the strict thresholds without any alias involvement.
	vec := []float32{0.5, 0.5, 0.7071}
	a := testEntity("Grand Tokyo Office", "LOCATION")
	a.NameEmbedding = vec
	b := testEntity("Grand Tokyo Office Building", "LOCATION")
	b.NameEmbedding = vec

	config := DefaultDedupConfig()
	survivors, log := config.ResolveFuzzy([]*core.EntityNode{a, b}, make(core.RedirectMap), make(core.BlockedPairs), slog.Default())

	require.Len(t, survivors, 1)
	require.Len(t, log, 1)
	assert.False(t, log[0].FastPath)
	assert.GreaterOrEqual(t, log[0].NameScore, config.FuzzyNameThresholdStrict)
	assert.Equal(t, 1.0, log[0].TypeScore)
}

func TestResolveFuzzyRespectsBlockedPairs(t *testing.T) {
	a := testEntity("OpenAI", "ORG")
	b := testEntity("OpenAI Inc", "COMPANY")
	b.Aliases = []string{"OpenAI"}

	blocked := make(core.BlockedPairs)
	blocked.Block(a.Id, b.Id, "adjudicated distinct")

	config := DefaultDedupConfig()
	survivors, log := config.ResolveFuzzy([]*core.EntityNode{a, b}, make(core.RedirectMap), blocked, slog.Default())

	assert.Len(t, survivors, 2)
	assert.Empty(t, log)
}

func TestResolveFuzzyGroupIsolation(t *testing.T) {
	a := testEntity("OpenAI", "ORG")
	b := testEntity("OpenAI Inc", "COMPANY")
	b.Aliases = []string{"OpenAI"}
	b.GroupID = "g2"

	config := DefaultDedupConfig()
	survivors, _ := config.ResolveFuzzy([]*core.EntityNode{a, b}, make(core.RedirectMap), make(core.BlockedPairs), slog.Default())

	assert.Len(t, survivors, 2)
}

func TestResolveFuzzyRetriesAfterMerge(t *testing.T) {
	// c only matches a after b's merge donates the "ACME" surface form, so
	// the scan must revisit candidates for the same canonical.
	a := testEntity("Acme Corporation", "COMPANY")
	b := testEntity("ACME", "COMPANY")
	b.Aliases = []string{"Acme Corporation"}
	c := testEntity("ACME", "ORG")

	config := DefaultDedupConfig()
	redirects := make(core.RedirectMap)
	survivors, log := config.ResolveFuzzy([]*core.EntityNode{a, c, b}, redirects, make(core.BlockedPairs), slog.Default())

	require.Len(t, survivors, 1)
	assert.Equal(t, a.Id, survivors[0].Id)
	assert.Len(t, log, 2)
	assert.Equal(t, a.Id, redirects.Resolve(b.Id))
	assert.Equal(t, a.Id, redirects.Resolve(c.Id))
}

func TestResolveFuzzyConvergesInOnePass(t *testing.T) {
	// c merges into b first and donates the "Acme" surface form; that alias
	// only matches a, which sits *before* b in the scan. The scan must come
	// back around, so a single call reaches the fixpoint and a second call
	// over the output finds nothing left to merge.
	a := testEntity("Acme", "COMPANY")
	b := testEntity("Zeta Corp", "COMPANY")
	c := testEntity("Zeta Corp", "misc")
	c.Aliases = []string{"Acme"}

	config := DefaultDedupConfig()
	redirects := make(core.RedirectMap)
	survivors, log := config.ResolveFuzzy([]*core.EntityNode{a, b, c}, redirects, make(core.BlockedPairs), slog.Default())

	require.Len(t, survivors, 1)
	assert.Equal(t, a.Id, survivors[0].Id)
	assert.Len(t, log, 2)
	assert.Equal(t, a.Id, redirects.Resolve(b.Id))
	assert.Equal(t, a.Id, redirects.Resolve(c.Id))

	again, moreLog := config.ResolveFuzzy(survivors, make(core.RedirectMap), make(core.BlockedPairs), slog.Default())
	assert.Len(t, again, 1)
	assert.Empty(t, moreLog)
}

func TestResolveFuzzyUnknownTypeThresholds(t *testing.T) {
	// UNKNOWN types relax the type gate but raise the name bar. The raw
	// names differ only by punctuation and case, so no surface form matches
	// exactly, yet the normalized token sets are identical.
	vec := []float32{1, 0, 0}
	a := testEntity("Alpha Beta!", "")
	a.NameEmbedding = vec
	b := testEntity("alpha beta", "misc")
	b.NameEmbedding = vec

	config := DefaultDedupConfig()
	survivors, log := config.ResolveFuzzy([]*core.EntityNode{a, b}, make(core.RedirectMap), make(core.BlockedPairs), slog.Default())

	require.Len(t, survivors, 1)
	require.Len(t, log, 1)
	assert.False(t, log[0].FastPath)
}
