package extractor

import (
	"fmt"
	"strings"

	"moodgraph/backend/internal/constants"
)

// extractionInstruction closes the turn list so the model answers with the graph
const extractionInstruction = "The conversation above is finished. Extract the knowledge graph now. Answer with the raw JSON object only."

// BuildSystemPrompt returns the instruction sent with every extraction request
func BuildSystemPrompt() string {
	return fmt.Sprintf(`You are the memory module of a wellbeing journal. You read one day's conversation between a user and their journaling companion and turn what the USER shared into a knowledge graph.

## Events
- Extract EVERY distinct event separately. If the user describes a morning meeting, a lunch with a friend and an evening run, that is three events, never one merged event.
- Give each event a short id ("ev1", "ev2", ...), a one-sentence summary written in the third person, and an event_type (suggested: %s).
- domains: one or more of %s. Put the most relevant domain first.
- emotional_tone: exactly one of %s.
- importance: integer 1 (trivial) to 5 (life-changing).
- related_entities: ids of the entities the event mentions.
- keywords: a few lowercase tags.

## Entities
- type: exactly one of %s.
- id: a lowercase slug of type and name, e.g. "person_sarah", "place_blue_bottle_cafe". Use the same id whenever the same thing appears.
- attributes: an object with any useful details (relation to the user, cuisine, frequency, ...). Use {} when there are none.

## Relationships
- Link events to each other (temporal, causal, part-of), e.g. "LEADS_TO", "FOLLOWED_BY", "PART_OF", "CAUSED_BY".
- Link events to entities, e.g. "WITH_PERSON", "AT_PLACE", "INVOLVES", "ATE".
- from_id and to_id use the ids defined above. strength: integer 1 (weak) to 5 (strong).

## Output
Always answer with a single raw JSON object. No prose before or after it, no markdown, no code fences:
{"entities":[{"id":"","type":"","name":"","attributes":{}}],"events":[{"id":"","summary":"","event_type":"","domains":[],"emotional_tone":"","importance":3,"related_entities":[],"keywords":[]}],"relationships":[{"from_id":"","to_id":"","relationship_type":"","strength":3}]}
If nothing worth remembering happened, answer {"entities":[],"events":[],"relationships":[]}.`,
		quoteList(constants.SuggestedEventTypes),
		quoteList(constants.Domains),
		quoteList(constants.EmotionalTones),
		quoteList(constants.EntityTypes),
	)
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
