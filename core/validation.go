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

import "fmt"

// ValidateEntityNode validates an EntityNode according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - GroupID must not be empty
//   - ConnectStrength must be valid (or empty, defaulted by extraction)
//
// NOT validated (populated by the pipeline):
//   - NameEmbedding (can be empty until embedding generation runs)
//   - FactSummary, Description (best-effort extraction output)
func ValidateEntityNode(entity *EntityNode) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrInvalidEntity)
	}

	if entity.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyName)
	}

	if entity.GroupID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyGroup)
	}

	if entity.ConnectStrength != "" {
		if err := ValidateConnectStrength(entity.ConnectStrength); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
		}
	}

	return nil
}

// ValidateStatementNode validates a StatementNode according to domain rules.
//
// Validation rules:
//   - Statement text must not be empty
//   - GroupID must not be empty
//   - TemporalKind must be valid (or empty until temporal extraction runs)
func ValidateStatementNode(statement *StatementNode) error {
	if statement == nil {
		return fmt.Errorf("%w: statement is nil", ErrInvalidStatement)
	}

	if statement.Statement == "" {
		return fmt.Errorf("%w: %w", ErrInvalidStatement, ErrEmptyStatement)
	}

	if statement.GroupID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidStatement, ErrEmptyGroup)
	}

	if statement.TemporalKind != "" {
		if err := ValidateTemporalKind(statement.TemporalKind); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidStatement, err)
		}
	}

	return nil
}

// ValidateChunkNode validates a ChunkNode according to domain rules.
func ValidateChunkNode(chunk *ChunkNode) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.GroupID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyGroup)
	}

	return nil
}

// ValidateConnectStrength validates that a ConnectStrength has a valid value.
func ValidateConnectStrength(strength ConnectStrength) error {
	switch strength {
	case ConnectStrengthStrong, ConnectStrengthWeak, ConnectStrengthBoth:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidStrength, strength)
}

// ValidateTemporalKind validates that a TemporalKind has a valid value.
func ValidateTemporalKind(kind TemporalKind) error {
	switch kind {
	case TemporalKindAtemporal, TemporalKindTemporal:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidTemporalKind, kind)
}
