package core

// RedirectMap maps any historical entity id to its current canonical id.
//
// The map is kept flattened at all times: no value is itself a key with a
// different canonical target. Point enforces this invariant on every merge,
// so lookups are always single-hop.
type RedirectMap map[ID]ID

// Point records that loser now redirects to canonical. Any existing entries
// that pointed at the loser are rewritten to the new canonical, so chains
// never exceed length one.
func (m RedirectMap) Point(loser, canonical ID) {
	if loser == canonical {
		return
	}
	// The canonical may itself have been merged away earlier.
	if target, ok := m[canonical]; ok {
		canonical = target
	}
	for k, v := range m {
		if v == loser {
			m[k] = canonical
		}
	}
	m[loser] = canonical
}

// Resolve returns the canonical id for id, or id itself if it was never
// merged away.
func (m RedirectMap) Resolve(id ID) ID {
	if target, ok := m[id]; ok {
		return target
	}
	return id
}

// Clone returns a copy of the map.
func (m RedirectMap) Clone() RedirectMap {
	out := make(RedirectMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ExactMergeRecord logs one exact-match partition that collapsed.
type ExactMergeRecord struct {
	CanonicalID ID
	Name        string
	EntityType  string
	MergedIDs   []ID
}

// FuzzyMergeRecord logs one fuzzy merge with its numeric scores.
type FuzzyMergeRecord struct {
	CanonicalID ID
	LoserID     ID
	Name        string
	NameScore   float64
	TypeScore   float64
	Overall     float64
	FastPath    bool
}

// LLMMergeRecord logs one merge decided by external adjudication.
type LLMMergeRecord struct {
	CanonicalID ID
	LoserID     ID
	Stage       string // "disambiguation" or "blockwise"
	Confidence  float64
	Reason      string
}

// BlockedPair marks two entities the disambiguation gate decided to keep
// separate. Later stages must not merge a blocked pair.
type BlockedPair struct {
	LeftID  ID
	RightID ID
	Reason  string
}

// BlockedPairs is an unordered pair set.
type BlockedPairs map[[2]ID]string

func pairKey(a, b ID) [2]ID {
	if a > b {
		a, b = b, a
	}
	return [2]ID{a, b}
}

// Block records that a and b must stay separate.
func (p BlockedPairs) Block(a, b ID, reason string) {
	p[pairKey(a, b)] = reason
}

// Blocked reports whether the pair (a, b) has been blocked.
func (p BlockedPairs) Blocked(a, b ID) bool {
	_, ok := p[pairKey(a, b)]
	return ok
}

// List returns the blocked pairs as records, in unspecified order.
func (p BlockedPairs) List() []BlockedPair {
	out := make([]BlockedPair, 0, len(p))
	for k, reason := range p {
		out = append(out, BlockedPair{LeftID: k[0], RightID: k[1], Reason: reason})
	}
	return out
}

// DedupReport is the structured record of everything the resolution engine
// did: merge logs per stage, the final redirect map and the blocked pairs.
type DedupReport struct {
	ExactMerges []ExactMergeRecord
	FuzzyMerges []FuzzyMergeRecord
	LLMMerges   []LLMMergeRecord
	Blocked     []BlockedPair
	Redirects   RedirectMap
}

// MergeCount returns the total number of entities merged away.
func (r *DedupReport) MergeCount() int {
	n := len(r.FuzzyMerges) + len(r.LLMMerges)
	for _, rec := range r.ExactMerges {
		n += len(rec.MergedIDs)
	}
	return n
}
