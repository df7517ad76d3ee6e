package storage

import (
	"context"

	"github.com/poiesic/dialograph/core"
)

// GraphRepository provides persistence for knowledge-graph deltas.
// Implementations must be thread-safe and support concurrent access.
type GraphRepository interface {
	// ApplyDelta persists a resolved graph delta: dialogue, chunks,
	// statements, the post-dedup entities and edges, and the name index.
	// Entities merged away by the delta's redirect map are removed from
	// storage so stale duplicates from earlier runs do not accumulate.
	ApplyDelta(ctx context.Context, delta *core.GraphDelta) error

	// QueryExistingEntities returns stored entities in the group whose name
	// or aliases match any of the candidate names, case-insensitively.
	// Used to widen deduplication beyond a single run's batch.
	QueryExistingEntities(ctx context.Context, groupID string, names []string) ([]*core.EntityNode, error)

	// GetEntity retrieves a single entity by ID.
	// Returns ErrNotFound if the entity doesn't exist.
	GetEntity(ctx context.Context, id core.ID) (*core.EntityNode, error)

	// GetEntitiesByGroup retrieves all entities in a group.
	GetEntitiesByGroup(ctx context.Context, groupID string) ([]*core.EntityNode, error)

	// GetStatement retrieves a single statement by ID.
	// Returns ErrNotFound if the statement doesn't exist.
	GetStatement(ctx context.Context, id core.ID) (*core.StatementNode, error)

	// GetStatementEdges retrieves the statement-entity edges originating
	// from a statement.
	GetStatementEdges(ctx context.Context, statementID core.ID) ([]*core.StatementEntityEdge, error)

	// GetEntityEdges retrieves the entity-entity edges touching an entity,
	// in either direction.
	GetEntityEdges(ctx context.Context, entityID core.ID) ([]*core.EntityEntityEdge, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}
