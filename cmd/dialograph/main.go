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


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/dialograph"
	"github.com/poiesic/dialograph/ai"
	"github.com/poiesic/dialograph/ai/openai"
	"github.com/poiesic/dialograph/core"
	"github.com/poiesic/dialograph/ingestion"
	"github.com/poiesic/dialograph/reembed"
	"github.com/poiesic/dialograph/resolve"
	"github.com/poiesic/dialograph/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "dialograph",
		Usage: "Knowledge-graph extraction from dialogue transcripts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Run the full pipeline over a transcript and persist the graph",
				Action: ingestCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "user",
						Usage: "User id recorded as provenance",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Dialogue title (defaults to the file name)",
					},
					&cli.BoolFlag{
						Name:  "llm-dedup",
						Usage: "Enable the LLM disambiguation and blockwise dedup stages",
					},
				}, sharedFlags()...),
			},
			{
				Name:   "preview",
				Usage:  "Run a pilot pass (no database, no embeddings) and print the report",
				Action: previewCommand,
				Flags:  sharedFlags(),
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate entity name embeddings with a new embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "group",
						Aliases:  []string{"g"},
						Usage:    "Group id whose entities to reembed",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entities to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entities",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Find entities in the graph matching a query",
				Action:    searchCommand,
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "group",
						Aliases:  []string{"g"},
						Usage:    "Group id to search within",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// sharedFlags are common to ingest and preview.
func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "group",
			Aliases:  []string{"g"},
			Usage:    "Group id (identity space) for extracted entities",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "file",
			Aliases:  []string{"f"},
			Usage:    "Transcript file to ingest ('-' for stdin)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible service host URL for all models",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "extractor-model",
			Usage: "Extraction model name",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:  "judge-model",
			Usage: "Dedup adjudication model name (defaults to extractor-model)",
		},
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	chunks, err := readChunks(c.String("file"))
	if err != nil {
		return err
	}

	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	graph, err := dialograph.NewGraph(c.String("db"), dialograph.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open graph database: %w", err)
	}
	defer graph.Close()

	title := c.String("title")
	if title == "" {
		title = c.String("file")
	}

	var opts []ingestion.Option
	if c.Bool("llm-dedup") {
		opts = append(opts, ingestion.WithDedupConfig(resolve.NewDedupConfig(
			resolve.WithLLMDisambiguation(true),
			resolve.WithLLMBlockwise(true),
		)))
	}
	opts = append(opts, ingestion.WithProgressSink(progressPrinter))

	delta, err := graph.Ingest(ctx, &ingestion.IngestRequest{
		GroupID: c.String("group"),
		UserID:  c.String("user"),
		Title:   title,
		Chunks:  chunks,
	}, opts...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	printDelta(delta)
	return nil
}

func previewCommand(c *cli.Context) error {
	ctx := context.Background()

	chunks, err := readChunks(c.String("file"))
	if err != nil {
		return err
	}

	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	pipeline, err := ingestion.NewPipeline(nil, provider,
		ingestion.WithProgressSink(progressPrinter))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	delta, err := pipeline.Run(ctx, &ingestion.IngestRequest{
		GroupID: c.String("group"),
		Chunks:  chunks,
		Pilot:   true,
	})
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	printDelta(delta)
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	repo, err := badger.NewGraphRepository(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open graph database: %w", err)
	}
	defer repo.Close()

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n\n", c.String("embedding-model"))

	if err := reembedder.Run(ctx, c.String("group")); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a search query is required")
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	graph, err := dialograph.NewGraph(c.String("db"), dialograph.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open graph database: %w", err)
	}
	defer graph.Close()

	searcher, err := graph.NewSearcher()
	if err != nil {
		return err
	}

	results, err := searcher.FindEntities(context.Background(), c.String("group"), query, c.Int("max-hits"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: %s (%s) [%0.3f]\n", i, hit.Entity.Name, hit.Entity.EntityType, hit.Score)
	}
	return nil
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithExtractorModel(c.String("extractor-model")),
		ai.WithJudgeModel(c.String("judge-model")),
	)
}

// readChunks loads a transcript and splits it into chunks on blank lines.
// A file without blank lines becomes a single chunk.
func readChunks(path string) ([]string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	return splitChunks(string(data)), nil
}

func splitChunks(text string) []string {
	var chunks []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		chunks = append(chunks, block)
	}
	return chunks
}

func progressPrinter(stage, message string, data any) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", stage, message)
}

func printDelta(delta *core.GraphDelta) {
	fmt.Printf("Statements: %d\n", len(delta.Statements))
	fmt.Printf("Entities:   %d (from %d raw mentions)\n", len(delta.Entities), len(delta.RawEntities))
	fmt.Printf("Relations:  %d\n", len(delta.EntityEntityEdges))
	fmt.Printf("Merged:     %d (exact %d, fuzzy %d, llm %d)\n",
		delta.Report.MergeCount(),
		len(delta.Report.ExactMerges),
		len(delta.Report.FuzzyMerges),
		len(delta.Report.LLMMerges))
	if len(delta.Report.Blocked) > 0 {
		fmt.Printf("Blocked:    %d pairs kept separate\n", len(delta.Report.Blocked))
	}

	fmt.Println()
	for _, entity := range delta.Entities {
		line := fmt.Sprintf("- %s (%s)", entity.Name, entity.EntityType)
		if len(entity.Aliases) > 0 {
			line += " aka " + strings.Join(entity.Aliases, ", ")
		}
		fmt.Println(line)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
