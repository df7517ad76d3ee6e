package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/dialograph/ai"
)

const statementResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "statements": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "statement": {"type": "string"},
          "strength": {"type": "string", "enum": ["strong", "weak"]}
        },
        "required": ["statement", "strength"],
        "additionalProperties": false
      }
    }
  },
  "required": ["statements"],
  "additionalProperties": false
}`

const statementPromptTemplate = `Extract self-contained fact statements from the given dialogue chunk and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Each statement must stand alone: resolve pronouns and elided subjects from the dialogue context.
- strength is "strong" for facts the speaker asserted directly, "weak" for hedged, implied or second-hand facts.
- Preserve the original language of the dialogue (do not translate).
- Skip greetings, questions, and filler with no factual content.
- If no facts can be extracted, return "statements": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "A: I joined OpenAI last month. B: nice, heard they might open a Tokyo office"
Output:
{
  "statements": [
    {"statement":"Speaker A joined OpenAI last month","strength":"strong"},
    {"statement":"OpenAI might open a Tokyo office","strength":"weak"}
  ]
}`

const tripletResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "type": {"type": "string"},
          "aliases": {"type": "array", "items": {"type": "string"}},
          "description": {"type": "string"}
        },
        "required": ["name", "type"],
        "additionalProperties": false
      }
    },
    "relations": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "subject": {"type": "integer"},
          "object": {"type": "integer"},
          "predicate": {"type": "string"}
        },
        "required": ["subject", "object", "predicate"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities", "relations"],
  "additionalProperties": false
}`

const tripletPromptTemplate = `Extract named entities and the relations between them from the given statement and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Entity type should be one of: %s. Use another short uppercase label only when none fits.
- Aliases are alternative surface forms of the same entity mentioned in the statement (abbreviations, full names, nicknames). Never repeat the primary name as an alias.
- Relations reference entities by zero-based index into the entities array.
- predicate is a short verb phrase in the statement's language (e.g. "works at", "located in", "就职于").
- Do not invent entities or relations not supported by the statement.
- If the statement has no entities, return empty arrays.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "张三 joined OpenAI (also known as OpenAI Inc) as a researcher"
Output:
{
  "entities": [
    {"name":"张三","type":"PERSON","aliases":[],"description":"a researcher"},
    {"name":"OpenAI","type":"COMPANY","aliases":["OpenAI Inc"],"description":""}
  ],
  "relations": [
    {"subject":0,"object":1,"predicate":"works at"}
  ]
}`

const temporalResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "kind": {"type": "string", "enum": ["atemporal", "temporal"]},
    "valid_at": {"type": ["string", "null"], "format": "date"},
    "invalid_at": {"type": ["string", "null"], "format": "date"}
  },
  "required": ["kind"],
  "additionalProperties": false
}`

const temporalPromptTemplate = `Classify the temporal validity of the given statement and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Your output must exactly follow this schema:

%s

Rules:
- kind is "atemporal" for timeless facts (definitions, permanent attributes) and "temporal" for facts that hold during a period.
- valid_at is the date the fact became true, as YYYY-MM-DD, or null if unknown.
- invalid_at is the date the fact stopped being true, as YYYY-MM-DD, or null if still true or unknown.
- Only fill dates that are explicit or clearly inferable from the statement.

Example:
Input: "张三 worked at Acme from 2019 until March 2021"
Output:
{"kind":"temporal","valid_at":"2019-01-01","invalid_at":"2021-03-01"}`

const judgePairResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "decision": {"type": "string", "enum": ["merge", "block"]},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "reason": {"type": "string"}
  },
  "required": ["decision", "confidence", "reason"],
  "additionalProperties": false
}`

const judgePairPromptTemplate = `You decide whether two entity records extracted from dialogue refer to the same real-world thing.

The records share a name but carry different type labels. "Same name, different meaning" (Apple the fruit
vs Apple the company) must be kept separate; "same name, inconsistent type tagging" (ORG vs COMPANY for the
same organization) must be merged.

Output ONLY valid JSON which complies with this schema:

%s

Rules:
- decision "merge" means the two records describe the same thing and should become one node.
- decision "block" means they are distinct things that happen to share a name.
- confidence reflects your certainty: 0.9+ very sure, 0.7-0.9 reasonably sure, below 0.7 unsure.
- reason is one short sentence.`

const judgeBlockResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "judgments": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "left": {"type": "integer"},
          "right": {"type": "integer"},
          "decision": {"type": "string", "enum": ["merge", "block"]},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1},
          "reason": {"type": "string"}
        },
        "required": ["left", "right", "decision", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["judgments"],
  "additionalProperties": false
}`

const judgeBlockPromptTemplate = `You examine a numbered list of entity records extracted from dialogue and identify records that refer to
the same real-world thing despite surface differences (abbreviations, nicknames, partial names, translated
names).

Output ONLY valid JSON which complies with this schema:

%s

Rules:
- left and right are zero-based indices into the entity list.
- Report a judgment only for pairs you are reasonably sure about; omit pairs you cannot decide.
- decision "merge" means the two records describe the same thing; "block" means they are distinct things
  that could be confused later.
- Use the relations for context: two records with the same name but disjoint, contradictory relations are
  usually distinct.
- If no pairs qualify, return "judgments": [].`

func buildStatementPrompt() string {
	return fmt.Sprintf(statementPromptTemplate, statementResponseSchema)
}

func buildTripletPrompt() string {
	return fmt.Sprintf(tripletPromptTemplate, tripletResponseSchema, strings.Join(ai.EntityTypes, ", "))
}

func buildTemporalPrompt() string {
	return fmt.Sprintf(temporalPromptTemplate, temporalResponseSchema)
}

func buildJudgePairPrompt() string {
	return fmt.Sprintf(judgePairPromptTemplate, judgePairResponseSchema)
}

func buildJudgeBlockPrompt() string {
	return fmt.Sprintf(judgeBlockPromptTemplate, judgeBlockResponseSchema)
}

// formatJudgeEntity renders one entity record for a judge prompt.
func formatJudgeEntity(label string, e ai.JudgeEntity) string {
	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteString(": name=")
	sb.WriteString(e.Name)
	sb.WriteString(" type=")
	sb.WriteString(e.EntityType)
	if len(e.Aliases) > 0 {
		sb.WriteString(" aliases=[")
		sb.WriteString(strings.Join(e.Aliases, ", "))
		sb.WriteString("]")
	}
	if e.Description != "" {
		sb.WriteString("\n  description: ")
		sb.WriteString(truncate(e.Description, 200))
	}
	if e.FactSummary != "" {
		sb.WriteString("\n  facts: ")
		sb.WriteString(truncate(e.FactSummary, 300))
	}
	return sb.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
