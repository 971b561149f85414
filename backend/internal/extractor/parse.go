package extractor

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"moodgraph/backend/internal/constants"
	apperrors "moodgraph/backend/pkg/errors"
)

// looseInt accepts 4, 4.0 and "4". Anything else decodes to 0 so the default applies.
type looseInt int

func (l *looseInt) UnmarshalJSON(data []byte) error {
	*l = 0
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*l = looseInt(math.Round(n))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*l = looseInt(math.Round(f))
		}
	}
	return nil
}

// looseString accepts a string or a bare number such as 7. Anything else decodes to "".
type looseString string

func (l *looseString) UnmarshalJSON(data []byte) error {
	*l = ""
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = looseString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*l = looseString(n.String())
	}
	return nil
}

func (l looseString) trimmed() string {
	return strings.TrimSpace(string(l))
}

// looseStrings accepts a list of strings or a single bare string
type looseStrings []string

func (l *looseStrings) UnmarshalJSON(data []byte) error {
	*l = nil
	var list []interface{}
	if err := json.Unmarshal(data, &list); err == nil {
		for _, item := range list {
			switch v := item.(type) {
			case string:
				*l = append(*l, v)
			case float64:
				*l = append(*l, strconv.FormatFloat(v, 'f', -1, 64))
			}
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s != "" {
		*l = looseStrings{s}
	}
	return nil
}

type rawEntity struct {
	ID         looseString     `json:"id"`
	Type       looseString     `json:"type"`
	Name       looseString     `json:"name" validate:"required"`
	Attributes json.RawMessage `json:"attributes"`
}

type rawEvent struct {
	ID              looseString  `json:"id"`
	Summary         looseString  `json:"summary" validate:"required"`
	EventType       looseString  `json:"event_type"`
	Domains         looseStrings `json:"domains"`
	EmotionalTone   looseString  `json:"emotional_tone"`
	Importance      looseInt     `json:"importance"`
	RelatedEntities looseStrings `json:"related_entities"`
	Keywords        looseStrings `json:"keywords"`
}

type rawRelationship struct {
	FromID           looseString `json:"from_id" validate:"required"`
	ToID             looseString `json:"to_id" validate:"required"`
	RelationshipType looseString `json:"relationship_type"`
	Strength         looseInt    `json:"strength"`
}

type rawPayload struct {
	Entities      []rawEntity       `json:"entities"`
	Events        []rawEvent        `json:"events"`
	Relationships []rawRelationship `json:"relationships"`
}

// Parser turns raw model output into a fully defaulted Result
type Parser struct {
	validate *validator.Validate
	logger   *zap.Logger
}

// NewParser creates a parser
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		validate: validator.New(),
		logger:   logger,
	}
}

// Parse extracts the JSON object spanning the first '{' to the last '}' of raw.
// Text without any '{' yields an empty result; a malformed object is an extraction error.
func (p *Parser) Parse(raw string) (*Result, error) {
	start := strings.Index(raw, "{")
	if start == -1 {
		return Empty(), nil
	}
	end := strings.LastIndex(raw, "}")
	if end < start {
		return nil, apperrors.NewExtractionParseFailed(raw, fmt.Errorf("no closing brace after offset %d", start))
	}

	var payload rawPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil, apperrors.NewExtractionParseFailed(raw, err)
	}

	return p.normalize(payload), nil
}

func (p *Parser) normalize(payload rawPayload) *Result {
	result := Empty()

	entityIndex := make(map[string]int)
	for i, raw := range payload.Entities {
		raw.Name = looseString(raw.Name.trimmed())
		if err := p.validate.Struct(raw); err != nil {
			p.logger.Debug("Dropping entity", zap.Int("index", i), zap.Error(err))
			continue
		}
		entity := Entity{
			ID:         raw.ID.trimmed(),
			Type:       normalizeEntityType(string(raw.Type)),
			Name:       string(raw.Name),
			Attributes: p.decodeAttributes(raw.Attributes),
		}
		if entity.ID == "" {
			entity.ID = entitySlug(entity.Type, entity.Name)
		}
		// Last occurrence wins, first position is kept
		if pos, ok := entityIndex[entity.ID]; ok {
			result.Entities[pos] = entity
			continue
		}
		entityIndex[entity.ID] = len(result.Entities)
		result.Entities = append(result.Entities, entity)
	}

	for i, raw := range payload.Events {
		raw.Summary = looseString(raw.Summary.trimmed())
		if err := p.validate.Struct(raw); err != nil {
			p.logger.Debug("Dropping event", zap.Int("index", i), zap.Error(err))
			continue
		}
		event := Event{
			ID:              raw.ID.trimmed(),
			Summary:         string(raw.Summary),
			EventType:       raw.EventType.trimmed(),
			Domains:         normalizeDomains(raw.Domains),
			EmotionalTone:   normalizeTone(string(raw.EmotionalTone)),
			Importance:      clampScale(int(raw.Importance), constants.DefaultImportance),
			RelatedEntities: cleanStrings(raw.RelatedEntities, false),
			Keywords:        cleanStrings(raw.Keywords, true),
		}
		if event.ID == "" {
			event.ID = "ev-" + uuid.NewString()[:8]
		}
		if event.EventType == "" {
			event.EventType = constants.DefaultEventType
		}
		result.Events = append(result.Events, event)
	}

	for i, raw := range payload.Relationships {
		raw.FromID = looseString(raw.FromID.trimmed())
		raw.ToID = looseString(raw.ToID.trimmed())
		if err := p.validate.Struct(raw); err != nil {
			p.logger.Debug("Dropping relationship", zap.Int("index", i), zap.Error(err))
			continue
		}
		result.Relationships = append(result.Relationships, Relationship{
			FromID:           string(raw.FromID),
			ToID:             string(raw.ToID),
			RelationshipType: normalizeRelationshipType(string(raw.RelationshipType)),
			Strength:         clampScale(int(raw.Strength), constants.DefaultStrength),
		})
	}

	return result
}

func (p *Parser) decodeAttributes(raw json.RawMessage) map[string]interface{} {
	attrs := make(map[string]interface{})
	if len(raw) == 0 || string(raw) == "null" {
		return attrs
	}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		p.logger.Debug("Ignoring non-object entity attributes", zap.ByteString("attributes", raw))
		return make(map[string]interface{})
	}
	return attrs
}

func normalizeEntityType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if constants.Contains(constants.EntityTypes, t) {
		return t
	}
	return constants.EntityTypeObject
}

func normalizeDomains(domains []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimSpace(d)
		for _, known := range constants.Domains {
			if strings.EqualFold(d, known) && !seen[known] {
				seen[known] = true
				out = append(out, known)
			}
		}
	}
	if len(out) == 0 {
		return []string{constants.DefaultDomain}
	}
	return out
}

func normalizeTone(tone string) string {
	tone = strings.ToLower(strings.TrimSpace(tone))
	if constants.Contains(constants.EmotionalTones, tone) {
		return tone
	}
	return constants.DefaultTone
}

var relationshipSeparators = regexp.MustCompile(`[\s\-]+`)

func normalizeRelationshipType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return constants.DefaultRelationshipType
	}
	return strings.ToUpper(relationshipSeparators.ReplaceAllString(t, "_"))
}

func clampScale(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	if v < constants.MinScale {
		return constants.MinScale
	}
	if v > constants.MaxScale {
		return constants.MaxScale
	}
	return v
}

func cleanStrings(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

func entitySlug(entityType, name string) string {
	slug := strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		slug = uuid.NewString()[:8]
	}
	return entityType + "_" + slug
}
