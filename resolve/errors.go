package resolve

import "errors"

var (
	// ErrInvalidThreshold indicates a fuzzy threshold outside (0, 1].
	ErrInvalidThreshold = errors.New("threshold must be in (0, 1]")

	// ErrInvalidBlockSize indicates an unusable block size or overlap.
	ErrInvalidBlockSize = errors.New("block size must be at least 2 and overlap smaller than block size")

	// ErrInvalidConcurrency indicates a concurrency bound below 1.
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")

	// ErrInvalidRounds indicates a round cap below 1.
	ErrInvalidRounds = errors.New("max rounds must be at least 1")
)
