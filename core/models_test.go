package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "multibyte content", content: "张三 joined OpenAI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestMergeStrength(t *testing.T) {
	tests := []struct {
		name string
		a, b ConnectStrength
		want ConnectStrength
	}{
		{name: "equal stays", a: ConnectStrengthStrong, b: ConnectStrengthStrong, want: ConnectStrengthStrong},
		{name: "mixed collapses to both", a: ConnectStrengthStrong, b: ConnectStrengthWeak, want: ConnectStrengthBoth},
		{name: "both absorbs strong", a: ConnectStrengthBoth, b: ConnectStrengthStrong, want: ConnectStrengthBoth},
		{name: "empty left takes right", a: "", b: ConnectStrengthWeak, want: ConnectStrengthWeak},
		{name: "empty right takes left", a: ConnectStrengthWeak, b: "", want: ConnectStrengthWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeStrength(tt.a, tt.b); got != tt.want {
				t.Errorf("MergeStrength(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEntityNode_Clone(t *testing.T) {
	original := &EntityNode{
		Id:            IDFromContent("clone test"),
		Name:          "OpenAI",
		Aliases:       []string{"OpenAI Inc"},
		NameEmbedding: []float32{1, 0, 0},
		FactSummary:   "entity: OpenAI\nsource: chat-1",
	}

	clone := original.Clone()
	clone.Aliases[0] = "开放人工智能"
	clone.NameEmbedding[0] = 0.5
	clone.FactSummary += "\nsource: chat-2"

	if original.Aliases[0] != "OpenAI Inc" {
		t.Errorf("Clone() shares alias slice: %v", original.Aliases)
	}
	if original.NameEmbedding[0] != 1 {
		t.Errorf("Clone() shares embedding slice: %v", original.NameEmbedding)
	}
	if original.FactSummary != "entity: OpenAI\nsource: chat-1" {
		t.Errorf("Clone() mutated original summary: %q", original.FactSummary)
	}
}

func TestEntityNode_HasAlias(t *testing.T) {
	entity := &EntityNode{
		Name:    "OpenAI",
		Aliases: []string{"OpenAI Inc", "开放人工智能"},
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "primary name", query: "OpenAI", want: true},
		{name: "primary name case-insensitive", query: "openai", want: true},
		{name: "alias", query: "openai inc", want: true},
		{name: "cjk alias", query: "开放人工智能", want: true},
		{name: "no match", query: "Anthropic", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entity.HasAlias(tt.query); got != tt.want {
				t.Errorf("HasAlias(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
