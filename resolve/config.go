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


package resolve

// DedupConfig controls the resolution engine. The numeric defaults are
// hand-tuned; treat them as tunable starting points rather than derived
// optima.
type DedupConfig struct {
	// FuzzyNameThresholdStrict is the minimum composite name score for a
	// fuzzy merge when both types are known.
	FuzzyNameThresholdStrict float64

	// FuzzyTypeThresholdStrict is the minimum type similarity for a fuzzy
	// merge when both types are known.
	FuzzyTypeThresholdStrict float64

	// FuzzyOverallThreshold is the minimum blended name+type score.
	FuzzyOverallThreshold float64

	// FuzzyUnknownTypeNameThreshold replaces the strict name threshold when
	// either side's type is UNKNOWN. Higher, because the type signal is gone.
	FuzzyUnknownTypeNameThreshold float64

	// FuzzyUnknownTypeTypeThreshold replaces the strict type threshold when
	// either side's type is UNKNOWN.
	FuzzyUnknownTypeTypeThreshold float64

	// EnableLLMDisambiguation turns the same-name different-type judge gate
	// on. Off means those pairs simply survive.
	EnableLLMDisambiguation bool

	// EnableLLMBlockwise turns the blockwise dedup stage on.
	EnableLLMBlockwise bool

	// LLMMinConfidence is the minimum judge confidence required to act on a
	// merge verdict. Lower-confidence merges are ignored.
	LLMMinConfidence float64

	// LLMBlockSize is the number of entities per adjudication block.
	LLMBlockSize int

	// LLMBlockOverlap is how many entities consecutive blocks share, so
	// duplicates near a block boundary still meet in some block.
	LLMBlockOverlap int

	// LLMBlockConcurrency bounds the number of blocks adjudicated in flight.
	LLMBlockConcurrency int

	// LLMPairConcurrency bounds concurrent pair judgments in the
	// disambiguation gate.
	LLMPairConcurrency int

	// LLMMaxRounds caps blockwise convergence passes. Each round operates on
	// the survivors of the previous one.
	LLMMaxRounds int
}

// DedupOption configures a DedupConfig.
type DedupOption func(*DedupConfig)

// DefaultDedupConfig returns the default resolution configuration with the
// LLM stages disabled.
func DefaultDedupConfig() *DedupConfig {
	return &DedupConfig{
		FuzzyNameThresholdStrict:      0.88,
		FuzzyTypeThresholdStrict:      0.7,
		FuzzyOverallThreshold:         0.8,
		FuzzyUnknownTypeNameThreshold: 0.92,
		FuzzyUnknownTypeTypeThreshold: 0.5,
		EnableLLMDisambiguation:       false,
		EnableLLMBlockwise:            false,
		LLMMinConfidence:              0.7,
		LLMBlockSize:                  10,
		LLMBlockOverlap:               2,
		LLMBlockConcurrency:           2,
		LLMPairConcurrency:            4,
		LLMMaxRounds:                  2,
	}
}

// NewDedupConfig creates a configuration with the given options applied over
// the defaults.
func NewDedupConfig(opts ...DedupOption) *DedupConfig {
	config := DefaultDedupConfig()
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// WithLLMDisambiguation enables or disables the pair disambiguation gate.
func WithLLMDisambiguation(enabled bool) DedupOption {
	return func(c *DedupConfig) {
		c.EnableLLMDisambiguation = enabled
	}
}

// WithLLMBlockwise enables or disables the blockwise dedup stage.
func WithLLMBlockwise(enabled bool) DedupOption {
	return func(c *DedupConfig) {
		c.EnableLLMBlockwise = enabled
	}
}

// WithFuzzyThresholds overrides the three strict fuzzy thresholds.
func WithFuzzyThresholds(name, typ, overall float64) DedupOption {
	return func(c *DedupConfig) {
		c.FuzzyNameThresholdStrict = name
		c.FuzzyTypeThresholdStrict = typ
		c.FuzzyOverallThreshold = overall
	}
}

// WithLLMBlockSize overrides the blockwise partition size.
func WithLLMBlockSize(size int) DedupOption {
	return func(c *DedupConfig) {
		c.LLMBlockSize = size
	}
}

// WithLLMConcurrency overrides the block and pair concurrency bounds.
func WithLLMConcurrency(blocks, pairs int) DedupOption {
	return func(c *DedupConfig) {
		c.LLMBlockConcurrency = blocks
		c.LLMPairConcurrency = pairs
	}
}

// WithLLMMaxRounds overrides the blockwise convergence round cap.
func WithLLMMaxRounds(rounds int) DedupOption {
	return func(c *DedupConfig) {
		c.LLMMaxRounds = rounds
	}
}

// Validate checks the configuration for usable values.
func (c *DedupConfig) Validate() error {
	if c.FuzzyNameThresholdStrict <= 0 || c.FuzzyNameThresholdStrict > 1 {
		return ErrInvalidThreshold
	}
	if c.FuzzyTypeThresholdStrict <= 0 || c.FuzzyTypeThresholdStrict > 1 {
		return ErrInvalidThreshold
	}
	if c.FuzzyOverallThreshold <= 0 || c.FuzzyOverallThreshold > 1 {
		return ErrInvalidThreshold
	}
	if c.LLMBlockSize < 2 {
		return ErrInvalidBlockSize
	}
	if c.LLMBlockOverlap < 0 || c.LLMBlockOverlap >= c.LLMBlockSize {
		return ErrInvalidBlockSize
	}
	if c.LLMBlockConcurrency < 1 || c.LLMPairConcurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.LLMMaxRounds < 1 {
		return ErrInvalidRounds
	}
	return nil
}
