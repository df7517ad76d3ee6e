package ai

import "time"

// EntityTypes defines the type labels extraction prompts steer towards.
// Extraction output is free-form; these labels are canonicalized downstream.
var EntityTypes = []string{
	"PERSON",
	"ORG",
	"COMPANY",
	"LOCATION",
	"EVENT",
	"ACTIVITY",
	"PRODUCT",
	"WORK",
	"CONCEPT",
	"TIME",
}

// ExtractedStatement is one self-contained fact sentence pulled out of a
// dialogue chunk.
type ExtractedStatement struct {
	// Statement is the fact text, rewritten to stand alone.
	Statement string

	// Strength is "strong" for facts the speaker asserted directly and
	// "weak" for hedged or inferred facts.
	Strength string
}

// ExtractedEntity is a raw entity mention from triplet extraction.
type ExtractedEntity struct {
	Name        string
	Type        string
	Aliases     []string
	Description string
	// Strength mirrors ExtractedStatement.Strength for this mention.
	Strength string
}

// ExtractedRelation connects two entities of the same TripletResult by index.
type ExtractedRelation struct {
	SubjectIdx int
	ObjectIdx  int
	Predicate  string
}

// TripletResult is the full output of triplet extraction for one statement.
type TripletResult struct {
	Entities  []ExtractedEntity
	Relations []ExtractedRelation
}

// TemporalRange classifies when a statement holds.
type TemporalRange struct {
	// Kind is "atemporal" or "temporal".
	Kind string

	// ValidAt is when the fact became true; nil when unknown or atemporal.
	ValidAt *time.Time

	// InvalidAt is when the fact stopped being true; nil when open-ended.
	InvalidAt *time.Time
}

// Decision is a dedup adjudication outcome.
type Decision string

const (
	// DecisionMerge means the two entities refer to the same thing.
	DecisionMerge Decision = "merge"
	// DecisionBlock means the two entities must be kept separate.
	DecisionBlock Decision = "block"
)

// JudgeEntity is the projection of an entity record handed to the judge.
type JudgeEntity struct {
	ID          uint64
	Name        string
	Aliases     []string
	EntityType  string
	Description string
	FactSummary string
}

// JudgeRelation gives the judge relational context for block adjudication.
type JudgeRelation struct {
	SourceID  uint64
	TargetID  uint64
	Predicate string
}

// PairJudgment is the judge's decision for a single candidate pair.
type PairJudgment struct {
	Decision   Decision
	Confidence float64
	Reason     string
}

// BlockJudgment is one merge/block decision from block adjudication,
// identifying the pair it applies to.
type BlockJudgment struct {
	LeftID     uint64
	RightID    uint64
	Decision   Decision
	Confidence float64
	Reason     string
}
