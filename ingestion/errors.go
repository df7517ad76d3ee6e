package ingestion

import "errors"

var (
	// ErrGraphRepositoryRequired is returned when the non-pilot path is
	// configured without a graph repository.
	ErrGraphRepositoryRequired = errors.New("graph repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyRequest is returned when an ingest request carries no chunks.
	ErrEmptyRequest = errors.New("ingest request has no chunks")

	// ErrGroupRequired is returned when an ingest request has no group id.
	ErrGroupRequired = errors.New("ingest request has no group id")
)
