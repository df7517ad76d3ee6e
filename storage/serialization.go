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


package storage

import (
	"github.com/poiesic/dialograph/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalEntityNode serializes an EntityNode to bytes.
func MarshalEntityNode(entity *core.EntityNode) []byte {
	buf := make([]byte, core.EntityNodeMUS.Size(*entity))
	core.EntityNodeMUS.Marshal(*entity, buf)
	return buf
}

// UnmarshalEntityNode deserializes an EntityNode from bytes.
func UnmarshalEntityNode(data []byte) (*core.EntityNode, error) {
	entity, _, err := core.EntityNodeMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// MarshalStatementNode serializes a StatementNode to bytes.
func MarshalStatementNode(statement *core.StatementNode) []byte {
	buf := make([]byte, core.StatementNodeMUS.Size(*statement))
	core.StatementNodeMUS.Marshal(*statement, buf)
	return buf
}

// UnmarshalStatementNode deserializes a StatementNode from bytes.
func UnmarshalStatementNode(data []byte) (*core.StatementNode, error) {
	statement, _, err := core.StatementNodeMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &statement, nil
}

// MarshalChunkNode serializes a ChunkNode to bytes.
func MarshalChunkNode(chunk *core.ChunkNode) []byte {
	buf := make([]byte, core.ChunkNodeMUS.Size(*chunk))
	core.ChunkNodeMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunkNode deserializes a ChunkNode from bytes.
func UnmarshalChunkNode(data []byte) (*core.ChunkNode, error) {
	chunk, _, err := core.ChunkNodeMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalDialogueNode serializes a DialogueNode to bytes.
func MarshalDialogueNode(dialogue *core.DialogueNode) []byte {
	buf := make([]byte, core.DialogueNodeMUS.Size(*dialogue))
	core.DialogueNodeMUS.Marshal(*dialogue, buf)
	return buf
}

// UnmarshalDialogueNode deserializes a DialogueNode from bytes.
func UnmarshalDialogueNode(data []byte) (*core.DialogueNode, error) {
	dialogue, _, err := core.DialogueNodeMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &dialogue, nil
}

// MarshalStatementEntityEdge serializes a StatementEntityEdge to bytes.
func MarshalStatementEntityEdge(edge *core.StatementEntityEdge) []byte {
	buf := make([]byte, core.StatementEntityEdgeMUS.Size(*edge))
	core.StatementEntityEdgeMUS.Marshal(*edge, buf)
	return buf
}

// UnmarshalStatementEntityEdge deserializes a StatementEntityEdge from bytes.
func UnmarshalStatementEntityEdge(data []byte) (*core.StatementEntityEdge, error) {
	edge, _, err := core.StatementEntityEdgeMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// MarshalEntityEntityEdge serializes an EntityEntityEdge to bytes.
func MarshalEntityEntityEdge(edge *core.EntityEntityEdge) []byte {
	buf := make([]byte, core.EntityEntityEdgeMUS.Size(*edge))
	core.EntityEntityEdgeMUS.Marshal(*edge, buf)
	return buf
}

// UnmarshalEntityEntityEdge deserializes an EntityEntityEdge from bytes.
func UnmarshalEntityEntityEdge(data []byte) (*core.EntityEntityEdge, error) {
	edge, _, err := core.EntityEntityEdgeMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &edge, nil
}
