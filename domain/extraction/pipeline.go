// Package extraction turns raw documents into entities and relationships
// using an LLM, resolving relationship endpoints to the entities the same
// document yielded.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Sportinger/argus/domain/intel"
	"github.com/Sportinger/argus/pkg/llm"
	"github.com/Sportinger/argus/pkg/logger"
	"github.com/Sportinger/argus/pkg/metrics"
)

// maxConcurrentExtractions bounds how many documents a single
// ExtractBatch call sends to the LLM provider at once.
const maxConcurrentExtractions = 8

const systemPrompt = `You are an entity and relationship extraction system for an intelligence analysis platform.

Given a document, extract all notable entities and the relationships between them.

Return ONLY valid JSON (no markdown fences, no commentary) matching this exact schema:

{
  "entities": [
    {
      "name": "Entity Name",
      "type": "person | organization | vessel | aircraft | location | event | document | transaction | sanction",
      "aliases": ["optional alternate names"],
      "properties": { "arbitrary": "key-value pairs with extra info" },
      "confidence": 0.0 to 1.0
    }
  ],
  "relationships": [
    {
      "source": "Source Entity Name",
      "target": "Target Entity Name",
      "type": "owner_of | director_of | employee_of | related_to | located_at | transacted_with | sanctioned_by | registered_in | flagged_as | meeting_with | traveled_to | part_of",
      "properties": { "arbitrary": "key-value pairs" },
      "confidence": 0.0 to 1.0
    }
  ]
}

Rules:
- Entity names in relationships MUST exactly match an entity in the entities list.
- Choose the most specific entity type and relationship type that applies.
- Only extract entities and relationships that are clearly supported by the text.
- If no entities or relationships can be extracted, return {"entities": [], "relationships": []}.
- Output ONLY the JSON object. No additional text.`

// Pipeline extracts entities and relationships from raw documents via an
// LLM provider.
type Pipeline struct {
	provider llm.Provider
	log      *slog.Logger
}

// NewPipeline builds an extraction pipeline backed by the given provider.
func NewPipeline(provider llm.Provider, log *slog.Logger) *Pipeline {
	return &Pipeline{provider: provider, log: log.With(logger.Scope("extraction"))}
}

func buildUserPrompt(doc *intel.RawDocument) string {
	var b strings.Builder
	if doc.Title != nil {
		fmt.Fprintf(&b, "Title: %s\n", *doc.Title)
	}
	if doc.URL != nil {
		fmt.Fprintf(&b, "URL: %s\n", *doc.URL)
	}
	fmt.Fprintf(&b, "Source: %s\n", doc.Source)
	fmt.Fprintf(&b, "\nDocument content:\n%s", doc.Content)
	return b.String()
}

// Extract runs the full extract pipeline for one document: call the LLM,
// parse its response, and resolve relationship endpoints.
func (p *Pipeline) Extract(ctx context.Context, doc *intel.RawDocument) (*intel.ExtractionResult, error) {
	if !p.provider.IsConfigured() {
		return nil, intel.NewError(intel.ErrKindConfiguration, "LLM provider is not configured", nil)
	}

	p.log.Info("starting entity extraction for document",
		slog.String("source", doc.Source), slog.String("source_id", doc.SourceID))

	rawJSON, err := p.provider.Complete(ctx, systemPrompt, buildUserPrompt(doc))
	if err != nil {
		return nil, intel.NewError(intel.ErrKindExtraction, "HTTP request failed", err)
	}

	entities, relationships, err := parseLLMResponse(rawJSON, doc.Source, p.log)
	if err != nil {
		return nil, err
	}

	p.log.Info("extraction complete",
		slog.String("source", doc.Source), slog.Int("entities", len(entities)), slog.Int("relationships", len(relationships)))

	return &intel.ExtractionResult{
		Entities:      entities,
		Relationships: relationships,
		RawSource:     doc.SourceID,
		ExtractedAt:   time.Now().UTC(),
	}, nil
}

// ExtractBatch runs Extract concurrently over a set of documents, bounded
// by maxConcurrentExtractions. Per-document failures are logged and
// skipped rather than aborting the whole batch; only when every document
// fails does ExtractBatch itself return an error.
func (p *Pipeline) ExtractBatch(ctx context.Context, docs []intel.RawDocument) ([]intel.ExtractionResult, error) {
	p.log.Info("starting batch extraction", slog.Int("count", len(docs)))

	results := make([]*intel.ExtractionResult, len(docs))
	errs := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentExtractions)

	for i := range docs {
		i := i
		g.Go(func() error {
			metrics.ExtractionConcurrency.Inc()
			defer metrics.ExtractionConcurrency.Dec()

			defer func() {
				if r := recover(); r != nil {
					errs[i] = intel.NewError(intel.ErrKindExtraction, fmt.Sprintf("panic: %v", r), nil)
					metrics.ExtractionDocumentsTotal.WithLabelValues("failed").Inc()
				}
			}()

			doc := docs[i]
			result, err := p.Extract(gctx, &doc)
			if err != nil {
				errs[i] = err
				metrics.ExtractionDocumentsTotal.WithLabelValues("failed").Inc()
				return nil
			}
			results[i] = result
			metrics.ExtractionDocumentsTotal.WithLabelValues("succeeded").Inc()
			return nil
		})
	}

	// errgroup.Wait only returns an error when a Go func itself returns
	// one; per-document failures are carried in errs instead so that one
	// failing document never cancels its siblings' in-flight requests.
	_ = g.Wait()

	var extractionResults []intel.ExtractionResult
	var failures []string
	for i, result := range results {
		if result != nil {
			extractionResults = append(extractionResults, *result)
			continue
		}
		if errs[i] != nil {
			p.log.Error("extraction failed for document in batch",
				slog.Int("document_index", i), slog.String("source", docs[i].Source), logger.Error(errs[i]))
			failures = append(failures, fmt.Sprintf("Document %d (%s): %v", i, docs[i].SourceID, errs[i]))
		}
	}

	if len(extractionResults) == 0 && len(failures) > 0 {
		return nil, intel.NewError(intel.ErrKindExtraction,
			fmt.Sprintf("all documents failed extraction: %s", strings.Join(failures, "; ")), nil)
	}

	if len(failures) > 0 {
		p.log.Warn("batch extraction completed with partial failures",
			slog.Int("succeeded", len(extractionResults)), slog.Int("failed", len(failures)))
	} else {
		p.log.Info("batch extraction completed successfully", slog.Int("count", len(extractionResults)))
	}

	return extractionResults, nil
}

// llmExtractionOutput is the intermediate JSON schema the LLM is asked to
// produce, before entity/relationship names are resolved into ids.
type llmExtractionOutput struct {
	Entities      []llmEntity       `json:"entities"`
	Relationships []llmRelationship `json:"relationships"`
}

type llmEntity struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Aliases    []string        `json:"aliases"`
	Properties json.RawMessage `json:"properties"`
	Confidence *float64        `json:"confidence"`
}

type llmRelationship struct {
	Source     string          `json:"source"`
	Target     string          `json:"target"`
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
	Confidence *float64        `json:"confidence"`
}

func (e *llmEntity) confidenceOrDefault() float64 {
	if e.Confidence == nil {
		return 1.0
	}
	return *e.Confidence
}

func (r *llmRelationship) confidenceOrDefault() float64 {
	if r.Confidence == nil {
		return 1.0
	}
	return *r.Confidence
}

func propertiesOrEmptyObject(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage("{}")
	}
	return raw
}

// parseEntityType maps the LLM's free-text type label onto the closed
// EntityType set, defaulting unrecognized labels to Event.
func parseEntityType(s string, log *slog.Logger) intel.EntityType {
	switch strings.ToLower(s) {
	case "person":
		return intel.EntityPerson
	case "organization", "org", "company":
		return intel.EntityOrganization
	case "vessel", "ship", "boat":
		return intel.EntityVessel
	case "aircraft", "plane", "helicopter":
		return intel.EntityAircraft
	case "location", "place", "country", "city":
		return intel.EntityLocation
	case "event", "incident":
		return intel.EntityEvent
	case "document", "report", "filing":
		return intel.EntityDocument
	case "transaction", "payment", "transfer":
		return intel.EntityTransaction
	case "sanction", "sanctions":
		return intel.EntitySanction
	default:
		log.Warn("unknown entity type, defaulting to event", slog.String("entity_type", s))
		return intel.EntityEvent
	}
}

// parseRelationType maps the LLM's free-text relation label onto the
// closed RelationType set, defaulting unrecognized labels to RelatedTo.
func parseRelationType(s string, log *slog.Logger) intel.RelationType {
	switch strings.ToLower(s) {
	case "owner_of", "owns":
		return intel.RelationOwnerOf
	case "director_of", "directs":
		return intel.RelationDirectorOf
	case "employee_of", "works_for", "employed_by":
		return intel.RelationEmployeeOf
	case "related_to", "associated_with":
		return intel.RelationRelatedTo
	case "located_at", "located_in", "based_in":
		return intel.RelationLocatedAt
	case "transacted_with", "traded_with", "paid":
		return intel.RelationTransactedWith
	case "sanctioned_by", "sanctioned":
		return intel.RelationSanctionedBy
	case "registered_in", "incorporated_in":
		return intel.RelationRegisteredIn
	case "flagged_as", "flagged":
		return intel.RelationFlaggedAs
	case "meeting_with", "met_with":
		return intel.RelationMeetingWith
	case "traveled_to", "visited":
		return intel.RelationTraveledTo
	case "part_of", "member_of", "subsidiary_of":
		return intel.RelationPartOf
	default:
		log.Warn("unknown relation type, defaulting to related_to", slog.String("relation_type", s))
		return intel.RelationRelatedTo
	}
}

// parseLLMResponse parses the LLM's raw text output into entities and
// relationships, resolving each relationship's source/target names
// (case-insensitively, including aliases) against the entities the same
// response produced. Relationships referencing a name not present among
// the entities are dropped rather than failing the whole parse.
func parseLLMResponse(rawText, source string, log *slog.Logger) ([]intel.Entity, []intel.Relationship, error) {
	cleaned := stripCodeFences(rawText)

	var output llmExtractionOutput
	if err := json.Unmarshal([]byte(cleaned), &output); err != nil {
		log.Error("failed to parse LLM extraction JSON", slog.String("raw", cleaned), logger.Error(err))
		return nil, nil, intel.NewError(intel.ErrKindExtraction, fmt.Sprintf("failed to parse LLM JSON output: %v", err), err)
	}

	now := time.Now().UTC()

	entities := make([]intel.Entity, 0, len(output.Entities))
	nameToID := make(map[string]uuid.UUID)

	for _, e := range output.Entities {
		id := uuid.New()
		entity := intel.Entity{
			ID:         id,
			EntityType: parseEntityType(e.Type, log),
			Name:       e.Name,
			Aliases:    e.Aliases,
			Properties: propertiesOrEmptyObject(e.Properties),
			Source:     source,
			Confidence: e.confidenceOrDefault(),
			FirstSeen:  now,
			LastSeen:   now,
		}
		if entity.Aliases == nil {
			entity.Aliases = []string{}
		}

		nameToID[strings.ToLower(e.Name)] = id
		for _, alias := range e.Aliases {
			nameToID[strings.ToLower(alias)] = id
		}

		entities = append(entities, entity)
	}

	relationships := make([]intel.Relationship, 0, len(output.Relationships))
	for _, r := range output.Relationships {
		srcID, srcOK := nameToID[strings.ToLower(r.Source)]
		tgtID, tgtOK := nameToID[strings.ToLower(r.Target)]
		if !srcOK || !tgtOK {
			log.Warn("skipping relationship: referenced entity not found",
				slog.String("source_name", r.Source), slog.String("target_name", r.Target),
				slog.Bool("source_found", srcOK), slog.Bool("target_found", tgtOK))
			continue
		}

		ts := now
		relationships = append(relationships, intel.Relationship{
			ID:             uuid.New(),
			SourceEntityID: srcID,
			TargetEntityID: tgtID,
			RelationType:   parseRelationType(r.Type, log),
			Properties:     propertiesOrEmptyObject(r.Properties),
			Confidence:     r.confidenceOrDefault(),
			Source:         source,
			Timestamp:      &ts,
		})
	}

	log.Info("parsed extraction results", slog.Int("entities", len(entities)), slog.Int("relationships", len(relationships)))

	return entities, relationships, nil
}

// stripCodeFences removes a leading/trailing markdown code fence the LLM
// might include despite being told not to, by slicing between the first
// '{' and the last '}'.
func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		start = 0
	}
	end := strings.LastIndexByte(cleaned, '}')
	if end < 0 {
		end = len(cleaned) - 1
	}
	return cleaned[start : end+1]
}
