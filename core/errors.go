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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntity indicates an EntityNode failed validation.
	ErrInvalidEntity = errors.New("invalid entity node")

	// ErrInvalidStatement indicates a StatementNode failed validation.
	ErrInvalidStatement = errors.New("invalid statement node")

	// ErrInvalidChunk indicates a ChunkNode failed validation.
	ErrInvalidChunk = errors.New("invalid chunk node")

	// ErrEmptyName indicates the entity Name field is empty.
	ErrEmptyName = errors.New("entity name cannot be empty")

	// ErrEmptyGroup indicates the GroupID field is empty.
	ErrEmptyGroup = errors.New("group id cannot be empty")

	// ErrEmptyStatement indicates the Statement text is empty.
	ErrEmptyStatement = errors.New("statement text cannot be empty")

	// ErrEmptyContent indicates the chunk Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidStrength indicates an invalid ConnectStrength value.
	ErrInvalidStrength = errors.New("invalid connect strength")

	// ErrInvalidTemporalKind indicates an invalid TemporalKind value.
	ErrInvalidTemporalKind = errors.New("invalid temporal kind")

	// ErrCrossGroupMerge indicates an attempted merge across group boundaries.
	ErrCrossGroupMerge = errors.New("entities belong to different groups")
)
