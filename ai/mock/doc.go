// Package mock provides test doubles for the AI service interfaces.
//
// Every mock follows the same pattern: deterministic default behavior,
// optional function fields for custom behavior injection, and call counting
// for test assertions. The default embedder produces stable FNV-seeded
// vectors so similarity comparisons are reproducible across runs.
package mock
