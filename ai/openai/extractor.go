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


package openai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/dialograph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Extractor implements statement, triplet and temporal extraction using
// OpenAI-compatible chat APIs.
type Extractor struct {
	client llms.Model
	logger *slog.Logger
}

var (
	_ ai.StatementExtractor = (*Extractor)(nil)
	_ ai.TripletExtractor   = (*Extractor)(nil)
	_ ai.TemporalExtractor  = (*Extractor)(nil)
)

// statementResponse mirrors the JSON structure expected from the model.
type statementResponse struct {
	Statements []struct {
		Statement string `json:"statement"`
		Strength  string `json:"strength"`
	} `json:"statements"`
}

type tripletResponse struct {
	Entities []struct {
		Name        string   `json:"name"`
		Type        string   `json:"type"`
		Aliases     []string `json:"aliases"`
		Description string   `json:"description"`
	} `json:"entities"`
	Relations []struct {
		Subject   int    `json:"subject"`
		Object    int    `json:"object"`
		Predicate string `json:"predicate"`
	} `json:"relations"`
}

type temporalResponse struct {
	Kind      string `json:"kind"`
	ValidAt   string `json:"valid_at"`
	InvalidAt string `json:"invalid_at"`
}

// newExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newExtractor(config *ai.Config) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		client: client,
		logger: slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewExtractor creates an extraction service using the provided configuration.
// The returned value implements ai.StatementExtractor, ai.TripletExtractor
// and ai.TemporalExtractor.
func NewExtractor(config *ai.Config) (*Extractor, error) {
	return newExtractor(config)
}

// ExtractStatements splits a dialogue chunk into standalone fact statements.
func (e *Extractor) ExtractStatements(ctx context.Context, text string) ([]ai.ExtractedStatement, error) {
	text = scrubString(text)
	if text == "" {
		return []ai.ExtractedStatement{}, nil
	}

	var result statementResponse
	if err := completeJSON(ctx, e.client, e.logger, buildStatementPrompt(), text, &result); err != nil {
		return nil, err
	}

	statements := make([]ai.ExtractedStatement, 0, len(result.Statements))
	for _, s := range result.Statements {
		if strings.TrimSpace(s.Statement) == "" {
			continue
		}
		strength := s.Strength
		if strength != "strong" && strength != "weak" {
			strength = "weak"
		}
		statements = append(statements, ai.ExtractedStatement{
			Statement: strings.TrimSpace(s.Statement),
			Strength:  strength,
		})
	}

	e.logger.Debug("extracted statements", "count", len(statements))
	return statements, nil
}

// ExtractTriplets extracts entities and relations from a single statement.
func (e *Extractor) ExtractTriplets(ctx context.Context, statement string) (*ai.TripletResult, error) {
	statement = scrubString(statement)
	if statement == "" {
		return &ai.TripletResult{}, nil
	}

	var result tripletResponse
	if err := completeJSON(ctx, e.client, e.logger, buildTripletPrompt(), statement, &result); err != nil {
		return nil, err
	}

	out := &ai.TripletResult{
		Entities:  make([]ai.ExtractedEntity, 0, len(result.Entities)),
		Relations: make([]ai.ExtractedRelation, 0, len(result.Relations)),
	}

	// Relations index the model's entity array, so dropping unnamed entities
	// must carry the original positions onto the filtered list. A relation
	// touching a dropped entity is dropped with it.
	indexMap := make(map[int]int, len(result.Entities))
	for i, ent := range result.Entities {
		name := strings.TrimSpace(ent.Name)
		if name == "" {
			continue
		}
		aliases := make([]string, 0, len(ent.Aliases))
		for _, alias := range ent.Aliases {
			alias = strings.TrimSpace(alias)
			if alias != "" && !strings.EqualFold(alias, name) {
				aliases = append(aliases, alias)
			}
		}
		indexMap[i] = len(out.Entities)
		out.Entities = append(out.Entities, ai.ExtractedEntity{
			Name:        name,
			Type:        strings.TrimSpace(ent.Type),
			Aliases:     aliases,
			Description: strings.TrimSpace(ent.Description),
		})
	}

	for _, rel := range result.Relations {
		subject, okSubject := indexMap[rel.Subject]
		object, okObject := indexMap[rel.Object]
		if !okSubject || !okObject || subject == object {
			continue
		}
		predicate := strings.TrimSpace(rel.Predicate)
		if predicate == "" {
			continue
		}
		out.Relations = append(out.Relations, ai.ExtractedRelation{
			SubjectIdx: subject,
			ObjectIdx:  object,
			Predicate:  predicate,
		})
	}

	e.logger.Debug("extracted triplets",
		"entities", len(out.Entities),
		"relations", len(out.Relations))
	return out, nil
}

// ExtractTemporal classifies the validity window of a statement.
func (e *Extractor) ExtractTemporal(ctx context.Context, statement string) (*ai.TemporalRange, error) {
	statement = scrubString(statement)
	if statement == "" {
		return &ai.TemporalRange{Kind: "atemporal"}, nil
	}

	var result temporalResponse
	if err := completeJSON(ctx, e.client, e.logger, buildTemporalPrompt(), statement, &result); err != nil {
		return nil, err
	}

	out := &ai.TemporalRange{Kind: result.Kind}
	if out.Kind != "temporal" {
		out.Kind = "atemporal"
		return out, nil
	}

	out.ValidAt = parseDate(result.ValidAt)
	out.InvalidAt = parseDate(result.InvalidAt)
	return out, nil
}

// parseDate parses a YYYY-MM-DD date, returning nil for empty or malformed
// values.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &parsed
}
