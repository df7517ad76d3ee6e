// Package reembed provides functionality for regenerating the name
// embeddings of stored entities with a new or updated embedding model.
//
// Entities are processed in batches per group, with progress tracking, retry
// logic with exponential backoff, and vector normalization so the stored
// embeddings stay compatible with cosine similarity scoring.
package reembed
