package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the graph node and edge records.
// Field order is part of the storage format; append new fields at the end.

// IDMUS serializes an ID as a varint.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int { return varint.Uint64.Marshal(uint64(id), bs) }

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int { return varint.Uint64.Size(uint64(id)) }

func (s idMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

// stringSlice marshals a length-prefixed string slice.
func marshalStringSlice(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStringSlice(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]string, length)
	var n1 int
	for i := 0; i < length; i++ {
		v[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeStringSlice(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

// vector marshals a length-prefixed float32 slice.
func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]float32, length)
	var n1 int
	for i := 0; i < length; i++ {
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeVector(v []float32) int {
	size := varint.Int.Size(len(v))
	if len(v) > 0 {
		size += len(v) * raw.Float32.Size(v[0])
	}
	return size
}

// optional times are encoded as a presence flag plus unix microseconds.
func marshalTimePtr(t *time.Time, bs []byte) (n int) {
	n = ord.Bool.Marshal(t != nil, bs)
	if t != nil {
		n += varint.Int64.Marshal(t.UnixMicro(), bs[n:])
	}
	return n
}

func unmarshalTimePtr(bs []byte) (t *time.Time, n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return nil, n, err
	}
	micros, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}
	parsed := time.UnixMicro(micros).UTC()
	return &parsed, n, nil
}

func sizeTimePtr(t *time.Time) int {
	size := ord.Bool.Size(t != nil)
	if t != nil {
		size += varint.Int64.Size(t.UnixMicro())
	}
	return size
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int { return varint.Int64.Size(t.UnixMicro()) }

// EntityNodeMUS serializes EntityNode values.
var EntityNodeMUS = entityNodeMUS{}

type entityNodeMUS struct{}

func (entityNodeMUS) Marshal(e EntityNode, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += ord.String.Marshal(e.Name, bs[n:])
	n += marshalStringSlice(e.Aliases, bs[n:])
	n += ord.String.Marshal(e.EntityType, bs[n:])
	n += ord.String.Marshal(e.Description, bs[n:])
	n += ord.String.Marshal(e.FactSummary, bs[n:])
	n += ord.String.Marshal(string(e.ConnectStrength), bs[n:])
	n += marshalVector(e.NameEmbedding, bs[n:])
	n += ord.String.Marshal(e.GroupID, bs[n:])
	n += ord.String.Marshal(e.Provenance.UserID, bs[n:])
	n += ord.String.Marshal(e.Provenance.ApplyID, bs[n:])
	n += ord.String.Marshal(e.Provenance.RunID, bs[n:])
	n += marshalTimePtr(e.CreatedAt, bs[n:])
	n += marshalTimePtr(e.ExpiredAt, bs[n:])
	n += IDMUS.Marshal(e.StatementID, bs[n:])
	n += varint.Int.Marshal(e.EntityIdx, bs[n:])
	return n
}

func (entityNodeMUS) Unmarshal(bs []byte) (e EntityNode, n int, err error) {
	var n1 int
	if e.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if e.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Aliases, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.EntityType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Description, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.FactSummary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	var strength string
	if strength, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	e.ConnectStrength = ConnectStrength(strength)
	n += n1
	if e.NameEmbedding, n1, err = unmarshalVector(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.GroupID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Provenance.UserID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Provenance.ApplyID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Provenance.RunID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.CreatedAt, n1, err = unmarshalTimePtr(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.ExpiredAt, n1, err = unmarshalTimePtr(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.StatementID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.EntityIdx, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	return e, n, nil
}

func (entityNodeMUS) Size(e EntityNode) (size int) {
	size = IDMUS.Size(e.Id)
	size += ord.String.Size(e.Name)
	size += sizeStringSlice(e.Aliases)
	size += ord.String.Size(e.EntityType)
	size += ord.String.Size(e.Description)
	size += ord.String.Size(e.FactSummary)
	size += ord.String.Size(string(e.ConnectStrength))
	size += sizeVector(e.NameEmbedding)
	size += ord.String.Size(e.GroupID)
	size += ord.String.Size(e.Provenance.UserID)
	size += ord.String.Size(e.Provenance.ApplyID)
	size += ord.String.Size(e.Provenance.RunID)
	size += sizeTimePtr(e.CreatedAt)
	size += sizeTimePtr(e.ExpiredAt)
	size += IDMUS.Size(e.StatementID)
	size += varint.Int.Size(e.EntityIdx)
	return size
}

func (s entityNodeMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

// StatementNodeMUS serializes StatementNode values.
var StatementNodeMUS = statementNodeMUS{}

type statementNodeMUS struct{}

func (statementNodeMUS) Marshal(st StatementNode, bs []byte) (n int) {
	n = IDMUS.Marshal(st.Id, bs)
	n += ord.String.Marshal(st.GroupID, bs[n:])
	n += ord.String.Marshal(st.Statement, bs[n:])
	n += ord.String.Marshal(string(st.TemporalKind), bs[n:])
	n += ord.String.Marshal(string(st.ConnectStrength), bs[n:])
	n += marshalTimePtr(st.ValidAt, bs[n:])
	n += marshalTimePtr(st.InvalidAt, bs[n:])
	n += marshalVector(st.Embedding, bs[n:])
	n += IDMUS.Marshal(st.ChunkID, bs[n:])
	return n
}

func (statementNodeMUS) Unmarshal(bs []byte) (st StatementNode, n int, err error) {
	var n1 int
	if st.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if st.GroupID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return st, n + n1, err
	}
	n += n1
	if st.Statement, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return st, n + n1, err
	}
	n += n1
	var kind string
	if kind, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return st, n + n1, err
	}
	st.TemporalKind = TemporalKind(kind)
	n += n1
	var strength string
	if strength, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return st, n + n1, err
	}
	st.ConnectStrength = ConnectStrength(strength)
	n += n1
	if st.ValidAt, n1, err = unmarshalTimePtr(bs[n:]); err != nil {
		return st, n + n1, err
	}
	n += n1
	if st.InvalidAt, n1, err = unmarshalTimePtr(bs[n:]); err != nil {
		return st, n + n1, err
	}
	n += n1
	if st.Embedding, n1, err = unmarshalVector(bs[n:]); err != nil {
		return st, n + n1, err
	}
	n += n1
	if st.ChunkID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return st, n + n1, err
	}
	n += n1
	return st, n, nil
}

func (statementNodeMUS) Size(st StatementNode) (size int) {
	size = IDMUS.Size(st.Id)
	size += ord.String.Size(st.GroupID)
	size += ord.String.Size(st.Statement)
	size += ord.String.Size(string(st.TemporalKind))
	size += ord.String.Size(string(st.ConnectStrength))
	size += sizeTimePtr(st.ValidAt)
	size += sizeTimePtr(st.InvalidAt)
	size += sizeVector(st.Embedding)
	size += IDMUS.Size(st.ChunkID)
	return size
}

func (s statementNodeMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

// ChunkNodeMUS serializes ChunkNode values.
var ChunkNodeMUS = chunkNodeMUS{}

type chunkNodeMUS struct{}

func (chunkNodeMUS) Marshal(c ChunkNode, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += IDMUS.Marshal(c.DialogueID, bs[n:])
	n += ord.String.Marshal(c.GroupID, bs[n:])
	n += ord.String.Marshal(c.Content, bs[n:])
	n += varint.Int.Marshal(c.ChunkIndex, bs[n:])
	n += marshalTime(c.CreatedAt, bs[n:])
	return n
}

func (chunkNodeMUS) Unmarshal(bs []byte) (c ChunkNode, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.DialogueID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.GroupID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (chunkNodeMUS) Size(c ChunkNode) (size int) {
	size = IDMUS.Size(c.Id)
	size += IDMUS.Size(c.DialogueID)
	size += ord.String.Size(c.GroupID)
	size += ord.String.Size(c.Content)
	size += varint.Int.Size(c.ChunkIndex)
	size += sizeTime(c.CreatedAt)
	return size
}

func (s chunkNodeMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

// DialogueNodeMUS serializes DialogueNode values.
var DialogueNodeMUS = dialogueNodeMUS{}

type dialogueNodeMUS struct{}

func (dialogueNodeMUS) Marshal(d DialogueNode, bs []byte) (n int) {
	n = IDMUS.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.GroupID, bs[n:])
	n += ord.String.Marshal(d.UserID, bs[n:])
	n += ord.String.Marshal(d.Title, bs[n:])
	n += marshalTime(d.CreatedAt, bs[n:])
	return n
}

func (dialogueNodeMUS) Unmarshal(bs []byte) (d DialogueNode, n int, err error) {
	var n1 int
	if d.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if d.GroupID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.UserID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	return d, n, nil
}

func (dialogueNodeMUS) Size(d DialogueNode) (size int) {
	size = IDMUS.Size(d.Id)
	size += ord.String.Size(d.GroupID)
	size += ord.String.Size(d.UserID)
	size += ord.String.Size(d.Title)
	size += sizeTime(d.CreatedAt)
	return size
}

func (s dialogueNodeMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

// StatementEntityEdgeMUS serializes StatementEntityEdge values.
var StatementEntityEdgeMUS = statementEntityEdgeMUS{}

type statementEntityEdgeMUS struct{}

func (statementEntityEdgeMUS) Marshal(e StatementEntityEdge, bs []byte) (n int) {
	n = IDMUS.Marshal(e.SourceID, bs)
	n += IDMUS.Marshal(e.TargetID, bs[n:])
	n += ord.String.Marshal(string(e.ConnectStrength), bs[n:])
	return n
}

func (statementEntityEdgeMUS) Unmarshal(bs []byte) (e StatementEntityEdge, n int, err error) {
	var n1 int
	if e.SourceID, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if e.TargetID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	var strength string
	if strength, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	e.ConnectStrength = ConnectStrength(strength)
	n += n1
	return e, n, nil
}

func (statementEntityEdgeMUS) Size(e StatementEntityEdge) int {
	return IDMUS.Size(e.SourceID) + IDMUS.Size(e.TargetID) + ord.String.Size(string(e.ConnectStrength))
}

func (s statementEntityEdgeMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

// EntityEntityEdgeMUS serializes EntityEntityEdge values.
var EntityEntityEdgeMUS = entityEntityEdgeMUS{}

type entityEntityEdgeMUS struct{}

func (entityEntityEdgeMUS) Marshal(e EntityEntityEdge, bs []byte) (n int) {
	n = IDMUS.Marshal(e.SourceID, bs)
	n += IDMUS.Marshal(e.TargetID, bs[n:])
	n += ord.String.Marshal(e.RelationType, bs[n:])
	n += ord.String.Marshal(e.Statement, bs[n:])
	n += IDMUS.Marshal(e.SourceStatementID, bs[n:])
	return n
}

func (entityEntityEdgeMUS) Unmarshal(bs []byte) (e EntityEntityEdge, n int, err error) {
	var n1 int
	if e.SourceID, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if e.TargetID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.RelationType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Statement, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.SourceStatementID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	return e, n, nil
}

func (entityEntityEdgeMUS) Size(e EntityEntityEdge) int {
	return IDMUS.Size(e.SourceID) + IDMUS.Size(e.TargetID) +
		ord.String.Size(e.RelationType) + ord.String.Size(e.Statement) +
		IDMUS.Size(e.SourceStatementID)
}

func (s entityEntityEdgeMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}
