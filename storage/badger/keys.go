package badger

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/poiesic/dialograph/core"
)

// Key prefixes for different data types
const (
	dialoguePrefix    = "diarec"
	chunkPrefix       = "churec"
	statementPrefix   = "starec"
	entityPrefix      = "entrec"
	entityNamePrefix  = "entnam"
	entityGroupPrefix = "entgrp"
	stmtEdgePrefix    = "stedge"
	entEdgePrefix     = "enedge"
)

// makeDialogueKey generates a key for a dialogue by ID.
func makeDialogueKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", dialoguePrefix, id))
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeStatementKey generates a key for a statement by ID.
func makeStatementKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", statementPrefix, id))
}

// makeEntityKey generates a key for an entity by ID.
func makeEntityKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", entityPrefix, id))
}

// makeEntityNameKey generates a composite key for the name index.
// Format: prefix:group:lowername\x00id. One entry exists per surface form
// (name and each alias), so lookups by any known name find the entity.
func makeEntityNameKey(groupID, name string, id core.ID) []byte {
	prefix := entityNameIndexPrefix(groupID, name)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// BigEndian so lexicographic sort matches numeric order.
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// entityNameIndexPrefix is the scan prefix for all entities in a group with
// the given surface form.
func entityNameIndexPrefix(groupID, name string) []byte {
	normalized := strings.ToLower(strings.TrimSpace(name))
	return []byte(entityNamePrefix + ":" + groupID + ":" + normalized + "\x00")
}

// makeEntityGroupKey generates a composite key for the group index.
// Format: prefix:group:id
func makeEntityGroupKey(groupID string, id core.ID) []byte {
	prefix := entityGroupIndexPrefix(groupID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// entityGroupIndexPrefix is the scan prefix for all entities in a group.
func entityGroupIndexPrefix(groupID string) []byte {
	return []byte(entityGroupPrefix + ":" + groupID + ":")
}

// makeStmtEdgeKey generates a composite key for a statement-entity edge.
// Format: prefix:sourceID:targetID
func makeStmtEdgeKey(sourceID, targetID core.ID) []byte {
	prefix := stmtEdgeIndexPrefix(sourceID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(targetID))
	return buf
}

// stmtEdgeIndexPrefix is the scan prefix for all edges of one statement.
func stmtEdgeIndexPrefix(sourceID core.ID) []byte {
	buf := make([]byte, len(stmtEdgePrefix)+1+8)
	offset := copy(buf, stmtEdgePrefix+":")
	binary.BigEndian.PutUint64(buf[offset:], uint64(sourceID))
	return buf
}

// makeEntEdgeKey generates a composite key for an entity-entity edge.
// Format: prefix:sourceID:targetID
func makeEntEdgeKey(sourceID, targetID core.ID) []byte {
	prefix := entEdgeIndexPrefix(sourceID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(targetID))
	return buf
}

// entEdgeIndexPrefix is the scan prefix for all relations from one entity.
func entEdgeIndexPrefix(sourceID core.ID) []byte {
	buf := make([]byte, len(entEdgePrefix)+1+8)
	offset := copy(buf, entEdgePrefix+":")
	binary.BigEndian.PutUint64(buf[offset:], uint64(sourceID))
	return buf
}
