package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "OpenAI", want: "openai"},
		{name: "strips punctuation", in: "OpenAI, Inc.!", want: "openai inc"},
		{name: "collapses whitespace", in: "  hello   world  ", want: "hello world"},
		{name: "keeps cjk", in: "张三（工程师）", want: "张三 工程师"},
		{name: "mixed", in: "Apple公司 - iPhone", want: "apple公司 iphone"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "english words", in: "OpenAI Inc", want: []string{"openai", "inc"}},
		{name: "cjk run", in: "张三在北京", want: []string{"张三在北京"}},
		{name: "mixed script", in: "Apple公司 iPhone 15", want: []string{"apple", "公司", "iphone", "15"}},
		{name: "empty", in: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want float64
	}{
		{name: "identical", a: []string{"a", "b"}, b: []string{"a", "b"}, want: 1},
		{name: "disjoint", a: []string{"a"}, b: []string{"b"}, want: 0},
		{name: "half overlap", a: []string{"a", "b"}, b: []string{"b", "c"}, want: 1.0 / 3.0},
		{name: "both empty", a: nil, b: nil, want: 0},
		{name: "one empty", a: []string{"a"}, b: nil, want: 0},
		{name: "duplicates collapse", a: []string{"a", "a", "b"}, b: []string{"a", "b"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestEditSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, EditSimilarity("ORG", "ORG"))
	assert.Equal(t, 0.0, EditSimilarity("", "ORG"))
	assert.Greater(t, EditSimilarity("ORG", "ORGANIZATION"), 0.0)
	assert.Less(t, EditSimilarity("ORG", "PERSON"), 0.5)
}
