package core

import (
	"errors"
	"testing"
)

func TestValidateEntityNode(t *testing.T) {
	tests := []struct {
		name    string
		entity  *EntityNode
		wantErr error
	}{
		{
			name:   "valid entity",
			entity: &EntityNode{Name: "OpenAI", GroupID: "g1", ConnectStrength: ConnectStrengthStrong},
		},
		{
			name:   "empty strength allowed",
			entity: &EntityNode{Name: "OpenAI", GroupID: "g1"},
		},
		{
			name:    "nil entity",
			entity:  nil,
			wantErr: ErrInvalidEntity,
		},
		{
			name:    "missing name",
			entity:  &EntityNode{GroupID: "g1"},
			wantErr: ErrEmptyName,
		},
		{
			name:    "missing group",
			entity:  &EntityNode{Name: "OpenAI"},
			wantErr: ErrEmptyGroup,
		},
		{
			name:    "bad strength",
			entity:  &EntityNode{Name: "OpenAI", GroupID: "g1", ConnectStrength: "maybe"},
			wantErr: ErrInvalidStrength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntityNode(tt.entity)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntityNode() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntityNode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStatementNode(t *testing.T) {
	tests := []struct {
		name      string
		statement *StatementNode
		wantErr   error
	}{
		{
			name:      "valid statement",
			statement: &StatementNode{Statement: "Alice joined Acme", GroupID: "g1", TemporalKind: TemporalKindAtemporal},
		},
		{
			name:      "empty temporal kind allowed",
			statement: &StatementNode{Statement: "Alice joined Acme", GroupID: "g1"},
		},
		{
			name:    "nil statement",
			wantErr: ErrInvalidStatement,
		},
		{
			name:      "missing text",
			statement: &StatementNode{GroupID: "g1"},
			wantErr:   ErrEmptyStatement,
		},
		{
			name:      "bad temporal kind",
			statement: &StatementNode{Statement: "x", GroupID: "g1", TemporalKind: "sometimes"},
			wantErr:   ErrInvalidTemporalKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatementNode(tt.statement)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateStatementNode() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateStatementNode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunkNode(t *testing.T) {
	if err := ValidateChunkNode(&ChunkNode{Content: "text", GroupID: "g1"}); err != nil {
		t.Errorf("ValidateChunkNode() unexpected error: %v", err)
	}
	if err := ValidateChunkNode(&ChunkNode{GroupID: "g1"}); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("ValidateChunkNode() error = %v, want %v", err, ErrEmptyContent)
	}
	if err := ValidateChunkNode(nil); !errors.Is(err, ErrInvalidChunk) {
		t.Errorf("ValidateChunkNode(nil) error = %v, want %v", err, ErrInvalidChunk)
	}
}
