package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "adds v1 suffix",
			in:   Config{EmbeddingHost: "http://localhost:11434", ExtractorHost: "http://localhost:9100/"},
			want: Config{EmbeddingHost: "http://localhost:11434/v1", ExtractorHost: "http://localhost:9100/v1"},
		},
		{
			name: "keeps existing v1",
			in:   Config{EmbeddingHost: "http://host/v1", ExtractorHost: "http://host/v1"},
			want: Config{EmbeddingHost: "http://host/v1", ExtractorHost: "http://host/v1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			assert.Equal(t, tt.want.EmbeddingHost, tt.in.EmbeddingHost)
			assert.Equal(t, tt.want.ExtractorHost, tt.in.ExtractorHost)
		})
	}
}

func TestConfigNormalizeDefaultsJudgeModel(t *testing.T) {
	cfg := NewConfig(WithExtractorModel("qwen2.5:7b"))
	cfg.Normalize()
	assert.Equal(t, "qwen2.5:7b", cfg.JudgeModel)

	cfg = NewConfig(WithExtractorModel("qwen2.5:7b"), WithJudgeModel("gpt-4o-mini"))
	cfg.Normalize()
	assert.Equal(t, "gpt-4o-mini", cfg.JudgeModel)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg = NewConfig(WithEmbeddingModel(""))
	assert.Error(t, cfg.Validate())

	cfg = NewConfig(WithHost(""))
	assert.Error(t, cfg.Validate())
}
