package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSplitChunks(t *testing.T) {
	t.Run("blank lines separate chunks", func(t *testing.T) {
		chunks := splitChunks("first block\nstill first\n\nsecond block\n\n\nthird")
		assert.Equal(t, []string{"first block\nstill first", "second block", "third"}, chunks)
	})

	t.Run("windows line endings", func(t *testing.T) {
		chunks := splitChunks("one\r\n\r\ntwo")
		assert.Equal(t, []string{"one", "two"}, chunks)
	})

	t.Run("no blank lines is one chunk", func(t *testing.T) {
		chunks := splitChunks("a single\nchunk of text")
		assert.Equal(t, []string{"a single\nchunk of text"}, chunks)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, splitChunks("   \n\n  \n"))
	})
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		t.Run(level, func(t *testing.T) {
			err := newApp().Run([]string{"test", "--log-level", level})
			require.NoError(t, err)
		})
	}

	t.Run("invalid level", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "verbose"})
		assert.Error(t, err)
	})
}

func TestIngestCommandRequiresFlags(t *testing.T) {
	app := &cli.App{
		Name: "dialograph",
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Action: ingestCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "db", Required: true},
				}, sharedFlags()...),
			},
		},
	}

	err := app.Run([]string{"dialograph", "ingest", "--db", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group")
}
