// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"encoding/binary"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/storage"
)

// GraphRepository implements storage.GraphRepository for BadgerDB.
type GraphRepository struct {
	backend *Backend
}

var _ storage.GraphRepository = (*GraphRepository)(nil)

// newGraphRepository creates a repository over an existing backend.
func newGraphRepository(backend *Backend) *GraphRepository {
	return &GraphRepository{backend: backend}
}

// NewGraphRepository opens a BadgerDB-backed graph repository at path.
//
// Returns storage.GraphRepository interface to enforce abstraction.
func NewGraphRepository(path string) (storage.GraphRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newGraphRepository(backend), nil
}

// Close closes the underlying backend.
func (r *GraphRepository) Close() error {
	return r.backend.Close()
}

// WithTransaction delegates to the backend.
func (r *GraphRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// ApplyDelta persists a resolved graph delta in one transaction.
func (r *GraphRepository) ApplyDelta(ctx context.Context, delta *core.GraphDelta) error {
	if delta == nil {
		return storage.ErrInvalidDelta
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if delta.Dialogue != nil {
			if err := tx.Set(makeDialogueKey(delta.Dialogue.Id), storage.MarshalDialogueNode(delta.Dialogue)); err != nil {
				return err
			}
		}
		for _, chunk := range delta.Chunks {
			if err := tx.Set(makeChunkKey(chunk.Id), storage.MarshalChunkNode(chunk)); err != nil {
				return err
			}
		}
		for _, statement := range delta.Statements {
			if err := tx.Set(makeStatementKey(statement.Id), storage.MarshalStatementNode(statement)); err != nil {
				return err
			}
		}

		// Remove entities merged away by resolution before writing the
		// survivors, so a canonical that reuses a loser's surface form
		// re-creates its index entries cleanly.
		if delta.Report != nil {
			for loser := range delta.Report.Redirects {
				if err := deleteEntity(tx, loser); err != nil {
					return err
				}
			}
		}

		for _, entity := range delta.Entities {
			if err := writeEntity(tx, entity); err != nil {
				return err
			}
		}
		for _, edge := range delta.StatementEntityEdges {
			if err := tx.Set(makeStmtEdgeKey(edge.SourceID, edge.TargetID), storage.MarshalStatementEntityEdge(edge)); err != nil {
				return err
			}
		}
		for _, edge := range delta.EntityEntityEdges {
			if err := tx.Set(makeEntEdgeKey(edge.SourceID, edge.TargetID), storage.MarshalEntityEntityEdge(edge)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
}

// writeEntity stores the entity record plus its name and group index rows.
func writeEntity(tx *badger.Txn, entity *core.EntityNode) error {
	if err := tx.Set(makeEntityKey(entity.Id), storage.MarshalEntityNode(entity)); err != nil {
		return err
	}
	if err := tx.Set(makeEntityGroupKey(entity.GroupID, entity.Id), nil); err != nil {
		return err
	}
	if err := tx.Set(makeEntityNameKey(entity.GroupID, entity.Name, entity.Id), nil); err != nil {
		return err
	}
	for _, alias := range entity.Aliases {
		if err := tx.Set(makeEntityNameKey(entity.GroupID, alias, entity.Id), nil); err != nil {
			return err
		}
	}
	return nil
}

// deleteEntity removes an entity record and its index rows, if stored.
func deleteEntity(tx *badger.Txn, id core.ID) error {
	entity, err := readEntity(tx, id)
	if err != nil {
		return err
	}
	if entity == nil {
		return nil
	}

	if err := tx.Delete(makeEntityNameKey(entity.GroupID, entity.Name, entity.Id)); err != nil {
		return err
	}
	for _, alias := range entity.Aliases {
		if err := tx.Delete(makeEntityNameKey(entity.GroupID, alias, entity.Id)); err != nil {
			return err
		}
	}
	if err := tx.Delete(makeEntityGroupKey(entity.GroupID, entity.Id)); err != nil {
		return err
	}
	return tx.Delete(makeEntityKey(entity.Id))
}

// QueryExistingEntities returns stored entities matching any candidate name.
func (r *GraphRepository) QueryExistingEntities(ctx context.Context, groupID string, names []string) ([]*core.EntityNode, error) {
	var results []*core.EntityNode
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		seen := make(map[core.ID]bool)
		for _, name := range names {
			prefix := entityNameIndexPrefix(groupID, name)
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)

			var ids []core.ID
			for iter.Rewind(); iter.Valid(); iter.Next() {
				key := iter.Item().Key()
				if len(key) < 8 {
					continue
				}
				id := core.ID(bigEndianID(key[len(key)-8:]))
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
			iter.Close()

			for _, id := range ids {
				entity, err := readEntity(tx, id)
				if err != nil {
					return err
				}
				if entity != nil {
					results = append(results, entity)
				}
			}
		}
		return nil
	}, false)
	return results, err
}

// GetEntity retrieves a single entity by ID.
func (r *GraphRepository) GetEntity(ctx context.Context, id core.ID) (*core.EntityNode, error) {
	var result *core.EntityNode
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntity(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetEntitiesByGroup retrieves all entities in a group.
func (r *GraphRepository) GetEntitiesByGroup(ctx context.Context, groupID string) ([]*core.EntityNode, error) {
	var results []*core.EntityNode
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := entityGroupIndexPrefix(groupID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < 8 {
				continue
			}
			ids = append(ids, core.ID(bigEndianID(key[len(key)-8:])))
		}
		iter.Close()

		for _, id := range ids {
			entity, err := readEntity(tx, id)
			if err != nil {
				return err
			}
			if entity != nil {
				results = append(results, entity)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetStatement retrieves a single statement by ID.
func (r *GraphRepository) GetStatement(ctx context.Context, id core.ID) (*core.StatementNode, error) {
	var result *core.StatementNode
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeStatementKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalStatementNode(val)
			return err
		})
	}, false)
	return result, err
}

// GetStatementEdges retrieves the statement-entity edges of a statement.
func (r *GraphRepository) GetStatementEdges(ctx context.Context, statementID core.ID) ([]*core.StatementEntityEdge, error) {
	var results []*core.StatementEntityEdge
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := stmtEdgeIndexPrefix(statementID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				edge, err := storage.UnmarshalStatementEntityEdge(val)
				if err != nil {
					return err
				}
				results = append(results, edge)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return results, err
}

// GetEntityEdges retrieves the relations touching an entity in either
// direction. Outgoing edges come from a prefix scan; incoming edges require
// scanning the full edge space, acceptable at current graph sizes.
func (r *GraphRepository) GetEntityEdges(ctx context.Context, entityID core.ID) ([]*core.EntityEntityEdge, error) {
	var results []*core.EntityEntityEdge
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entEdgePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				edge, err := storage.UnmarshalEntityEntityEdge(val)
				if err != nil {
					return err
				}
				if edge.SourceID == entityID || edge.TargetID == entityID {
					results = append(results, edge)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return results, err
}

// readEntity reads an entity from the transaction, nil when absent.
func readEntity(tx *badger.Txn, id core.ID) (*core.EntityNode, error) {
	item, err := tx.Get(makeEntityKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entity *core.EntityNode
	err = item.Value(func(val []byte) error {
		var err error
		entity, err = storage.UnmarshalEntityNode(val)
		return err
	})
	return entity, err
}

// bigEndianID decodes the trailing id bytes of an index key.
func bigEndianID(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
