package extractor

// Entity is an extracted thing, identified by a transcript-local id
type Entity struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Name       string                 `json:"name"`
	Attributes map[string]interface{} `json:"attributes"`
}

// Event is a single extracted happening
type Event struct {
	ID              string   `json:"id"`
	Summary         string   `json:"summary"`
	EventType       string   `json:"event_type"`
	Domains         []string `json:"domains"`
	EmotionalTone   string   `json:"emotional_tone"`
	Importance      int      `json:"importance"`
	RelatedEntities []string `json:"related_entities"`
	Keywords        []string `json:"keywords"`
}

// PrimaryDomain is the first domain of the event
func (e Event) PrimaryDomain() string {
	if len(e.Domains) == 0 {
		return ""
	}
	return e.Domains[0]
}

// Relationship is a directed edge between two local ids (events or entities)
type Relationship struct {
	FromID           string `json:"from_id"`
	ToID             string `json:"to_id"`
	RelationshipType string `json:"relationship_type"`
	Strength         int    `json:"strength"`
}

// Result is everything extracted from one transcript, in local ids.
// Every field of every record is populated; defaults are applied during parsing.
type Result struct {
	Entities      []Entity       `json:"entities"`
	Events        []Event        `json:"events"`
	Relationships []Relationship `json:"relationships"`
}

// Empty returns a result with no records
func Empty() *Result {
	return &Result{
		Entities:      []Entity{},
		Events:        []Event{},
		Relationships: []Relationship{},
	}
}

// IsEmpty reports whether nothing was extracted
func (r *Result) IsEmpty() bool {
	return r == nil || (len(r.Entities) == 0 && len(r.Events) == 0 && len(r.Relationships) == 0)
}
