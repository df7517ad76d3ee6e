package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// StatementExtractor splits a chunk of dialogue into standalone fact
// statements. Implementations must be thread-safe for concurrent use.
type StatementExtractor interface {
	// ExtractStatements analyzes a chunk of dialogue text and returns the
	// self-contained fact statements it expresses.
	// Returns an empty slice if no statements are found.
	ExtractStatements(ctx context.Context, text string) ([]ExtractedStatement, error)
}

// TripletExtractor extracts entities and subject-predicate-object relations
// from a single statement. Implementations must be thread-safe.
type TripletExtractor interface {
	// ExtractTriplets returns the entities mentioned in the statement and
	// the relations between them. Relation endpoints reference entities by
	// index into the returned entity list.
	ExtractTriplets(ctx context.Context, statement string) (*TripletResult, error)
}

// TemporalExtractor classifies the validity window of a statement.
// Implementations must be thread-safe.
type TemporalExtractor interface {
	// ExtractTemporal decides whether the statement is atemporal or
	// time-bound, and if time-bound, when it became valid or invalid.
	ExtractTemporal(ctx context.Context, statement string) (*TemporalRange, error)
}

// DedupJudge adjudicates duplicate-entity candidates that local similarity
// rules cannot safely resolve. Implementations must be thread-safe; the
// resolution engine issues concurrent block judgments.
type DedupJudge interface {
	// JudgePair decides whether two same-name entities are the same thing
	// (merge) or distinct things that happen to share a name (block).
	JudgePair(ctx context.Context, left, right JudgeEntity, contextText string) (*PairJudgment, error)

	// JudgeBlock examines a block of entities (with their relations for
	// context) and returns merge judgments for any duplicates it finds.
	JudgeBlock(ctx context.Context, entities []JudgeEntity, relations []JudgeRelation) ([]BlockJudgment, error)
}

// AIProvider aggregates the AI services for convenient initialization and
// lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// StatementExtractor returns the statement extraction service.
	StatementExtractor() StatementExtractor

	// TripletExtractor returns the triplet extraction service.
	TripletExtractor() TripletExtractor

	// TemporalExtractor returns the temporal classification service.
	TemporalExtractor() TemporalExtractor

	// DedupJudge returns the duplicate adjudication service.
	DedupJudge() DedupJudge

	// Close releases resources held by the provider and its services.
	Close() error
}
