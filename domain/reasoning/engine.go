// Package reasoning answers analyst questions by driving an LLM through a
// generate-Cypher, execute, interpret loop against the intelligence graph.
package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Sportinger/argus/domain/graph"
	"github.com/Sportinger/argus/domain/intel"
	"github.com/Sportinger/argus/pkg/llm"
	"github.com/Sportinger/argus/pkg/logger"
)

// maxReasoningIterations is not read by Query: the engine runs at most one
// refinement round when the initial Cypher queries come back empty or failing.
const maxReasoningIterations = 5

// maxResultChars truncates a query result's JSON summary before it is fed
// back into the interpretation prompt, to stay well clear of token limits.
const maxResultChars = 4000

// graphSchema is the schema context given to the LLM so it can write
// Cypher against the exact labels and relationship types the store uses.
const graphSchema = `
Node labels and properties:
  - Person { id, name, aliases, confidence, source, first_seen, last_seen, properties }
  - Organization { id, name, aliases, confidence, source, first_seen, last_seen, properties }
  - Vessel { id, name, aliases, confidence, source, first_seen, last_seen, properties }
  - Aircraft { id, name, aliases, confidence, source, first_seen, last_seen, properties }
  - Location { id, name, aliases, confidence, source, first_seen, last_seen, properties }
  - Event { id, name, aliases, confidence, source, first_seen, last_seen, properties }
  - Document { id, name, aliases, confidence, source, first_seen, last_seen, properties }
  - Transaction { id, name, aliases, confidence, source, first_seen, last_seen, properties }
  - Sanction { id, name, aliases, confidence, source, first_seen, last_seen, properties }

Relationship types:
  OWNER_OF, DIRECTOR_OF, EMPLOYEE_OF, RELATED_TO, LOCATED_AT,
  TRANSACTED_WITH, SANCTIONED_BY, REGISTERED_IN, FLAGGED_AS,
  MEETING_WITH, TRAVELED_TO, PART_OF

All relationships carry: { confidence, source, timestamp, properties }
`

// Engine answers ReasoningQuery questions against a graph.Store using an
// LLM provider for both query generation and result interpretation.
type Engine struct {
	provider llm.Provider
	store    graph.Store
	log      *slog.Logger
}

// NewEngine builds a reasoning engine over the given store and provider.
func NewEngine(store graph.Store, provider llm.Provider, log *slog.Logger) *Engine {
	return &Engine{provider: provider, store: store, log: log.With(logger.Scope("reasoning"))}
}

// Query runs the full five-phase reasoning loop for one question:
// generate Cypher, execute it, refine once if everything came back empty,
// interpret the results, and resolve referenced entity names back to
// graph entities.
func (e *Engine) Query(ctx context.Context, query *intel.ReasoningQuery) (*intel.ReasoningResponse, error) {
	if !e.provider.IsConfigured() {
		return nil, intel.NewError(intel.ErrKindConfiguration, "LLM provider is not configured", nil)
	}

	e.log.Info("starting multi-step reasoning", slog.String("question", query.Question))

	var steps []intel.ReasoningStep

	// Phase 1: generate Cypher queries from the question.
	cypherPrompt := buildCypherGenerationPrompt(query.Question, query.Context)
	system := fmt.Sprintf("You are a Neo4j Cypher expert for the ARGUS intelligence knowledge graph.\n%s", graphSchema)

	cypherResponse, err := e.provider.Complete(ctx, system, cypherPrompt)
	if err != nil {
		return nil, intel.NewError(intel.ErrKindReasoning, "failed to generate Cypher queries", err)
	}

	cypherQueries := ExtractCypherQueries(cypherResponse)
	e.log.Info("LLM generated Cypher queries", slog.Int("num_queries", len(cypherQueries)))

	steps = append(steps, intel.ReasoningStep{
		Description:   "Generated Cypher queries from user question",
		Cypher:        joinedOrNil(cypherQueries),
		ResultSummary: fmt.Sprintf("Generated %d Cypher queries", len(cypherQueries)),
	})

	if len(cypherQueries) == 0 {
		return nil, intel.NewError(intel.ErrKindReasoning, "LLM did not produce any Cypher queries for the given question", nil)
	}

	// Phase 2: execute the generated queries.
	queryResults := e.executeQueries(ctx, cypherQueries)
	stepsSummary, resultSteps := summarizeResults(queryResults, "Query")
	steps = append(steps, resultSteps...)

	// Phase 3: one round of refinement if every query failed or came back empty.
	finalSummary := stepsSummary
	if allEmptyOrFailed(queryResults) {
		e.log.Debug("initial queries returned no data; attempting refinement")

		refinementPrompt := fmt.Sprintf(
			"The following Cypher queries were executed but returned empty or errored results:\n\n%s\n\n"+
				"The original question was: %q\n\n"+
				"Please generate alternative, broader Cypher queries that might find relevant data. "+
				"Return ONLY valid Cypher enclosed in ```cypher ... ``` code blocks.",
			finalSummary, query.Question)

		if refinementResp, err := e.provider.Complete(ctx, system, refinementPrompt); err == nil {
			refinedQueries := ExtractCypherQueries(refinementResp)
			if len(refinedQueries) > 0 {
				e.log.Info("LLM generated refined Cypher queries", slog.Int("num_queries", len(refinedQueries)))

				steps = append(steps, intel.ReasoningStep{
					Description:   "Generated refined Cypher queries after initial results were empty",
					Cypher:        joinedOrNil(refinedQueries),
					ResultSummary: fmt.Sprintf("Generated %d refined queries", len(refinedQueries)),
				})

				refinedResults := e.executeQueries(ctx, refinedQueries)
				refinedSummary, refinedSteps := summarizeResults(refinedResults, "Refined Query")
				finalSummary += refinedSummary
				steps = append(steps, refinedSteps...)
			}
		}
	}

	// Phase 4: interpret the accumulated results.
	interpretationPrompt := buildInterpretationPrompt(query.Question, finalSummary, query.Context)
	interpSystem := "You are an intelligence analyst. Provide clear, evidence-based answers."

	interpretation, err := e.provider.Complete(ctx, interpSystem, interpretationPrompt)
	if err != nil {
		return nil, intel.NewError(intel.ErrKindReasoning, "failed to interpret graph results", err)
	}

	answer, confidence, entityNames, sources := ParseInterpretation(interpretation)

	steps = append(steps, intel.ReasoningStep{
		Description:   "Interpreted graph results and formulated answer",
		ResultSummary: fmt.Sprintf("Confidence: %.2f, entities referenced: %d", confidence, len(entityNames)),
	})

	// Phase 5: resolve referenced entity names back to graph entities.
	entitiesReferenced := e.resolveEntities(ctx, entityNames)

	e.log.Info("reasoning complete",
		slog.Int("answer_len", len(answer)), slog.Float64("confidence", confidence),
		slog.Int("steps", len(steps)), slog.Int("entities", len(entitiesReferenced)))

	return &intel.ReasoningResponse{
		Answer:             answer,
		Confidence:         confidence,
		Steps:              steps,
		EntitiesReferenced: entitiesReferenced,
		Sources:            sources,
	}, nil
}

func joinedOrNil(queries []string) *string {
	if len(queries) == 0 {
		return nil
	}
	joined := strings.Join(queries, ";\n")
	return &joined
}

// queryOutcome pairs a Cypher query with the result ExecuteQuery returned,
// or the error it failed with.
type queryOutcome struct {
	cypher string
	result any
	err    error
}

func (e *Engine) executeQueries(ctx context.Context, queries []string) []queryOutcome {
	outcomes := make([]queryOutcome, 0, len(queries))
	for _, cypher := range queries {
		e.log.Debug("executing Cypher query on graph store", slog.String("cypher", cypher))
		result, err := e.store.ExecuteQuery(ctx, intel.GraphQuery{Cypher: cypher})
		if err != nil {
			e.log.Warn("Cypher query execution failed", slog.String("cypher", cypher), logger.Error(err))
		}
		outcomes = append(outcomes, queryOutcome{cypher: cypher, result: result, err: err})
	}
	return outcomes
}

// allEmptyOrFailed reports whether every outcome errored or produced an
// empty/nil result, the signal that triggers one refinement round.
func allEmptyOrFailed(outcomes []queryOutcome) bool {
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		if !isEmptyResult(o.result) {
			return false
		}
	}
	return true
}

func isEmptyResult(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.([]any); ok {
		return len(s) == 0
	}
	if s, ok := v.([]map[string]any); ok {
		return len(s) == 0
	}
	return false
}

// summarizeResults renders each outcome into a human-readable block for
// the interpretation prompt, truncating large results, alongside the
// matching ReasoningStep entries.
func summarizeResults(outcomes []queryOutcome, label string) (string, []intel.ReasoningStep) {
	var summary strings.Builder
	steps := make([]intel.ReasoningStep, 0, len(outcomes))

	for i, o := range outcomes {
		n := i + 1
		var resultSummary, resultStr string

		if o.err != nil {
			resultSummary = fmt.Sprintf("%s %d failed: %v", label, n, o.err)
			resultStr = fmt.Sprintf("Error: %v", o.err)
		} else {
			jsonStr := marshalPretty(o.result)
			resultSummary = fmt.Sprintf("%s %d returned results (%d chars)", label, n, len(jsonStr))
			resultStr = truncate(jsonStr, maxResultChars)
		}

		fmt.Fprintf(&summary, "--- %s %d ---\nCypher: %s\nResult:\n%s\n\n", label, n, o.cypher, resultStr)

		cypher := o.cypher
		steps = append(steps, intel.ReasoningStep{
			Description:   fmt.Sprintf("Executed %s %d", strings.ToLower(label), n),
			Cypher:        &cypher,
			ResultSummary: resultSummary,
		})
	}

	return summary.String(), steps
}

func marshalPretty(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return fmt.Sprintf("%s... [truncated, %d total chars]", s[:max], len(s))
}

func (e *Engine) resolveEntities(ctx context.Context, names []string) []intel.Entity {
	resolved := make([]intel.Entity, 0, len(names))
	for _, name := range names {
		found, err := e.store.SearchEntities(ctx, name, 1)
		if err != nil {
			e.log.Debug("could not resolve entity name from graph", slog.String("name", name), logger.Error(err))
			continue
		}
		if len(found) > 0 {
			resolved = append(resolved, found[len(found)-1])
		}
	}
	return resolved
}

// buildCypherGenerationPrompt asks the LLM to write one or more Cypher
// queries that would answer the given question.
func buildCypherGenerationPrompt(question string, context *string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert Neo4j Cypher query writer for the ARGUS intelligence knowledge graph.\n\n%s\n\n", graphSchema)
	b.WriteString("Given the following question, generate one or more Cypher queries to retrieve the relevant data from the graph. Return ONLY valid Cypher enclosed in ```cypher ... ``` code blocks. Each query should be in its own code block.\n")
	b.WriteString("If the question cannot be answered from the graph, return a single code block with a broad search query that might find relevant entities.\n\n")
	fmt.Fprintf(&b, "Question: %s", question)

	if context != nil {
		fmt.Fprintf(&b, "\n\nAdditional context: %s", *context)
	}
	return b.String()
}

// cypherLinePrefixes are the statement keywords the fallback extractor
// recognizes when the LLM's response has no fenced code block.
var cypherLinePrefixes = []string{"MATCH", "OPTIONAL", "WITH", "RETURN", "WHERE", "ORDER", "LIMIT", "CALL"}

// ExtractCypherQueries pulls Cypher statements out of an LLM response,
// preferring ```cypher fenced code blocks and falling back to a
// line-by-line heuristic over recognized Cypher keywords.
func ExtractCypherQueries(response string) []string {
	var queries []string
	var current strings.Builder
	inBlock := false

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "```cypher") || strings.HasPrefix(trimmed, "```CYPHER"):
			inBlock = true
			current.Reset()
			continue
		case trimmed == "```" && inBlock:
			inBlock = false
			if q := strings.TrimSpace(current.String()); q != "" {
				queries = append(queries, q)
			}
			current.Reset()
			continue
		case inBlock:
			current.WriteString(line)
			current.WriteByte('\n')
		}
	}

	if len(queries) == 0 {
		var raw strings.Builder
		for _, line := range strings.Split(response, "\n") {
			trimmed := strings.TrimSpace(line)
			upper := strings.ToUpper(trimmed)
			for _, prefix := range cypherLinePrefixes {
				if strings.HasPrefix(upper, prefix) {
					raw.WriteString(trimmed)
					raw.WriteByte('\n')
					break
				}
			}
		}
		if q := strings.TrimSpace(raw.String()); q != "" {
			queries = append(queries, q)
		}
	}

	return queries
}

// buildInterpretationPrompt asks the LLM to turn executed-query results
// into a final answer in the fixed ANSWER/CONFIDENCE/ENTITIES/SOURCES format.
func buildInterpretationPrompt(question, stepsSummary string, context *string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an intelligence analyst using the ARGUS knowledge graph.\n\n")
	fmt.Fprintf(&b, "A user asked the following question:\n%q\n\n", question)
	b.WriteString("The following Cypher queries were executed against the graph and their results are shown below:\n\n")
	b.WriteString(stepsSummary)
	b.WriteString("\n\nBased on these results, provide a comprehensive answer to the user's question.\n\n")
	b.WriteString("Your response MUST follow this exact format:\n\n")
	b.WriteString("ANSWER: <your detailed answer>\n")
	b.WriteString("CONFIDENCE: <a number between 0.0 and 1.0 reflecting how confident you are>\n")
	b.WriteString("ENTITIES: <comma-separated list of entity names mentioned in the answer, or NONE>\n")
	b.WriteString("SOURCES: <comma-separated list of data source identifiers referenced, or NONE>")

	if context != nil {
		fmt.Fprintf(&b, "\n\nAdditional context: %s", *context)
	}
	return b.String()
}

// ParseInterpretation parses the fixed-format interpretation response into
// its four fields, falling back to the full response as the answer if no
// ANSWER: line was found.
func ParseInterpretation(response string) (answer string, confidence float64, entities, sources []string) {
	confidence = 0.5

	var currentSection string
	var answerLines []string

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "ANSWER:"):
			currentSection = "answer"
			if v := strings.TrimSpace(strings.TrimPrefix(trimmed, "ANSWER:")); v != "" {
				answerLines = append(answerLines, v)
			}
		case strings.HasPrefix(trimmed, "CONFIDENCE:"):
			currentSection = "confidence"
			if c, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(trimmed, "CONFIDENCE:")), 64); err == nil {
				confidence = clamp(c, 0.0, 1.0)
			}
		case strings.HasPrefix(trimmed, "ENTITIES:"):
			currentSection = "entities"
			entities = parseCommaList(strings.TrimPrefix(trimmed, "ENTITIES:"))
		case strings.HasPrefix(trimmed, "SOURCES:"):
			currentSection = "sources"
			sources = parseCommaList(strings.TrimPrefix(trimmed, "SOURCES:"))
		case currentSection == "answer":
			answerLines = append(answerLines, trimmed)
		}
	}

	answer = strings.TrimSpace(strings.Join(answerLines, "\n"))
	if answer == "" {
		answer = strings.TrimSpace(response)
	}

	return answer, confidence, entities, sources
}

func parseCommaList(raw string) []string {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "NONE") {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
