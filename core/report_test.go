package core

import (
	"testing"
)

func TestRedirectMap_PointFlattens(t *testing.T) {
	m := make(RedirectMap)
	a, b, c := IDFromContent("a"), IDFromContent("b"), IDFromContent("c")

	// a -> b, then b -> c: a must be rewritten to c, never chained.
	m.Point(a, b)
	m.Point(b, c)

	if m.Resolve(a) != c {
		t.Errorf("Resolve(a) = %d, want %d", m.Resolve(a), c)
	}
	if m.Resolve(b) != c {
		t.Errorf("Resolve(b) = %d, want %d", m.Resolve(b), c)
	}
	for loser, canonical := range m {
		if _, ok := m[canonical]; ok {
			t.Errorf("chain detected: %d -> %d where %d is itself redirected", loser, canonical, canonical)
		}
	}
}

func TestRedirectMap_PointToMergedCanonical(t *testing.T) {
	m := make(RedirectMap)
	a, b, c := IDFromContent("a"), IDFromContent("b"), IDFromContent("c")

	// b already lost to c; pointing a at b must land on c.
	m.Point(b, c)
	m.Point(a, b)

	if m.Resolve(a) != c {
		t.Errorf("Resolve(a) = %d, want %d", m.Resolve(a), c)
	}
}

func TestRedirectMap_SelfPointIgnored(t *testing.T) {
	m := make(RedirectMap)
	a := IDFromContent("a")

	m.Point(a, a)
	if len(m) != 0 {
		t.Errorf("self redirect should be a no-op, got %d entries", len(m))
	}
	if m.Resolve(a) != a {
		t.Errorf("Resolve on unmerged id should return the id itself")
	}
}

func TestBlockedPairs_Unordered(t *testing.T) {
	p := make(BlockedPairs)
	a, b := IDFromContent("a"), IDFromContent("b")

	p.Block(a, b, "different things")

	if !p.Blocked(a, b) || !p.Blocked(b, a) {
		t.Errorf("Blocked() must be order-independent")
	}
	if p.Blocked(a, IDFromContent("c")) {
		t.Errorf("unrelated pair reported as blocked")
	}
	if got := len(p.List()); got != 1 {
		t.Errorf("List() len = %d, want 1", got)
	}
}

func TestDedupReport_MergeCount(t *testing.T) {
	report := &DedupReport{
		ExactMerges: []ExactMergeRecord{
			{CanonicalID: 1, MergedIDs: []ID{2, 3}},
		},
		FuzzyMerges: []FuzzyMergeRecord{
			{CanonicalID: 1, LoserID: 4},
		},
		LLMMerges: []LLMMergeRecord{
			{CanonicalID: 1, LoserID: 5, Stage: "blockwise"},
		},
	}

	if got := report.MergeCount(); got != 4 {
		t.Errorf("MergeCount() = %d, want 4", got)
	}
}
