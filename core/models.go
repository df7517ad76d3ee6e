package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for graph nodes.
// It is generated using content-based hashing so re-runs over the same
// input produce the same ids.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ConnectStrength is a qualitative confidence tag on statement-entity
// associations and entity attributes. It acts as a tie-break when duplicate
// edges collapse during reconciliation.
type ConnectStrength string

const (
	ConnectStrengthStrong ConnectStrength = "strong"
	ConnectStrengthWeak   ConnectStrength = "weak"
	// ConnectStrengthBoth marks an entity that accumulated both strong and
	// weak evidence across merges.
	ConnectStrengthBoth ConnectStrength = "both"
)

// MergeStrength combines two strength tags. Any mix of strong and weak
// (or anything already "both") collapses to "both".
func MergeStrength(a, b ConnectStrength) ConnectStrength {
	if a == "" {
		return b
	}
	if b == "" || a == b {
		return a
	}
	return ConnectStrengthBoth
}

// TemporalKind tags a statement as time-bound or timeless.
type TemporalKind string

const (
	TemporalKindAtemporal TemporalKind = "atemporal"
	TemporalKindTemporal  TemporalKind = "temporal"
)

// Provenance records where an extracted node came from.
type Provenance struct {
	UserID  string
	ApplyID string
	RunID   string
}

// DialogueNode represents one ingested conversation.
type DialogueNode struct {
	Id        ID
	GroupID   string
	UserID    string
	Title     string
	CreatedAt time.Time
}

// ChunkNode is a contiguous slice of dialogue text, the unit of statement
// extraction.
type ChunkNode struct {
	Id         ID
	DialogueID ID
	GroupID    string
	Content    string
	ChunkIndex int
	CreatedAt  time.Time
}

// StatementNode is a single extracted fact sentence. It is created once per
// extracted statement and is read-only after creation, except for the
// temporal, embedding and triplet result assignment performed by the
// ingestion pipeline.
type StatementNode struct {
	Id              ID
	GroupID         string
	Statement       string
	TemporalKind    TemporalKind
	ConnectStrength ConnectStrength
	ValidAt         *time.Time
	InvalidAt       *time.Time
	Embedding       []float32
	ChunkID         ID
}

// EntityNode is an extracted entity record. It is created once per raw
// triplet extraction result and mutated only by attribute fusion during
// resolution. Entities that lose a merge are removed from the working set but
// never physically deleted; their id survives inside the redirect map.
type EntityNode struct {
	Id   ID
	Name string
	// Aliases is an ordered, case-insensitively deduplicated set of
	// alternative names. It never contains Name itself.
	Aliases     []string
	EntityType  string
	Description string
	// FactSummary is structured text: one "entity:" header line followed by
	// deduplicated "source:" lines.
	FactSummary     string
	ConnectStrength ConnectStrength
	NameEmbedding   []float32
	// GroupID is the isolation boundary. Merges never cross groups.
	GroupID    string
	Provenance Provenance
	CreatedAt  *time.Time
	ExpiredAt  *time.Time
	// StatementID and EntityIdx locate the triplet extraction result this
	// entity originated from.
	StatementID ID
	EntityIdx   int
}

// Clone returns a copy of the entity with independent alias and embedding
// slices. Attribute fusion mutates canonical records in place, so callers
// needing a pre-merge snapshot clone first.
func (e *EntityNode) Clone() *EntityNode {
	out := *e
	out.Aliases = append([]string(nil), e.Aliases...)
	out.NameEmbedding = append([]float32(nil), e.NameEmbedding...)
	return &out
}

// HasAlias reports whether name matches the entity's primary name or any
// alias, case-insensitively.
func (e *EntityNode) HasAlias(name string) bool {
	if strings.EqualFold(e.Name, name) {
		return true
	}
	for _, alias := range e.Aliases {
		if strings.EqualFold(alias, name) {
			return true
		}
	}
	return false
}

// StatementEntityEdge associates a statement with an entity it mentions.
// It has no identity beyond (source, target); reconciliation rewrites targets
// through the redirect map and collapses the duplicates that result.
type StatementEntityEdge struct {
	SourceID        ID // statement id
	TargetID        ID // entity id
	ConnectStrength ConnectStrength
}

// EntityEntityEdge is a relation (triplet) between two entities, supported by
// the statement it was extracted from.
type EntityEntityEdge struct {
	SourceID          ID
	TargetID          ID
	RelationType      string
	Statement         string
	SourceStatementID ID
}

// GraphDelta is the pipeline output: the unchanged dialogue/chunk/statement
// nodes plus the pre-dedup and post-dedup entity and edge sets, and the
// dedup report. Callers decide how to persist or render it.
type GraphDelta struct {
	Dialogue   *DialogueNode
	Chunks     []*ChunkNode
	Statements []*StatementNode

	// Pre-dedup extraction output.
	RawEntities             []*EntityNode
	RawStatementEntityEdges []*StatementEntityEdge
	RawEntityEntityEdges    []*EntityEntityEdge

	// Post-dedup canonical output.
	Entities             []*EntityNode
	StatementEntityEdges []*StatementEntityEdge
	EntityEntityEdges    []*EntityEntityEdge

	Report *DedupReport
}
