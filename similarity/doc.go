// Package similarity provides the pure text and vector similarity primitives
// used by entity resolution.
//
// The package is stateless: normalization, tokenization, Jaccard and cosine
// similarity, and the entity-type canonicalization and similarity table are
// all pure functions. Text handling is aware of mixed Chinese/English input;
// CJK runs and alphanumeric words are tokenized separately.
package similarity
