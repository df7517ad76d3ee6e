// Package ingestion provides pipeline orchestration for turning dialogue
// transcripts into knowledge-graph deltas.
//
// The Pipeline type drives the extraction stages in order: statement
// extraction, then triplet/temporal/embedding extraction in parallel over the
// same statement set, entity-embedding generation, data assignment, node and
// edge construction, and finally two-stage entity resolution (batch-local,
// then widened with stored entities from the graph repository).
//
// Per-chunk and per-statement extraction work runs concurrently on worker
// pools; results are re-associated by stable id, never by position. Item and
// stage failures during extraction are logged and replaced with empty
// defaults rather than failing the run, so the caller always receives an
// internally consistent delta.
package ingestion
