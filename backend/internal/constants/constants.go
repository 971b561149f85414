package constants

// Life-area taxonomy. Order is the display order of the synthetic domain nodes.
const (
	DomainWorkLife     = "Work Life"
	DomainAcademicLife = "Academic Life"
	DomainPersonalLife = "Personal Life"
	DomainFriends      = "Friends"
	DomainDating       = "Dating"
	DomainHealth       = "Health"
	DomainFamily       = "Family"
)

// Domains lists every taxonomy domain in display order
var Domains = []string{
	DomainWorkLife,
	DomainAcademicLife,
	DomainPersonalLife,
	DomainFriends,
	DomainDating,
	DomainHealth,
	DomainFamily,
}

// Entity types
const (
	EntityTypePlace        = "place"
	EntityTypePerson       = "person"
	EntityTypeFood         = "food"
	EntityTypeActivity     = "activity"
	EntityTypePreference   = "preference"
	EntityTypeObject       = "object"
	EntityTypeOrganization = "organization"
)

// EntityTypes is the closed set of entity kinds
var EntityTypes = []string{
	EntityTypePlace,
	EntityTypePerson,
	EntityTypeFood,
	EntityTypeActivity,
	EntityTypePreference,
	EntityTypeObject,
	EntityTypeOrganization,
}

// Emotional tones
const (
	ToneHappy    = "happy"
	ToneExcited  = "excited"
	ToneGrateful = "grateful"
	ToneCalm     = "calm"
	ToneNeutral  = "neutral"
	ToneAnxious  = "anxious"
	ToneStressed = "stressed"
	ToneSad      = "sad"
	ToneAngry    = "angry"
	ToneMixed    = "mixed"
)

// EmotionalTones is the closed tone vocabulary
var EmotionalTones = []string{
	ToneHappy, ToneExcited, ToneGrateful, ToneCalm, ToneNeutral,
	ToneAnxious, ToneStressed, ToneSad, ToneAngry, ToneMixed,
}

// SuggestedEventTypes is offered to the model; event_type itself stays free text
var SuggestedEventTypes = []string{
	"work", "study", "social", "romantic", "health",
	"family", "leisure", "milestone", "routine", "general",
}

// Extraction defaults
const (
	DefaultEventType        = "general"
	DefaultDomain           = DomainPersonalLife
	DefaultTone             = ToneNeutral
	DefaultImportance       = 3
	DefaultStrength         = 3
	DefaultRelationshipType = "RELATED_TO"
	MinScale                = 1
	MaxScale                = 5
)

// Durable id namespaces
const (
	NamespaceDomain = "domain"
	NamespaceEvent  = "event"
	NamespaceEntity = "entity"
)

// Synthesized edge types
const (
	EdgeTypeBelongsTo = "BELONGS_TO"
	EdgeTypeFollows   = "FOLLOWS"
)

// Pipeline limits
const (
	// MinTranscriptMessages is the shortest transcript worth extracting
	MinTranscriptMessages = 2
	// ContextMinTokenLength: tokens this short or shorter are ignored by the retriever
	ContextMinTokenLength = 3
	// ContextMaxEntities caps entity matches per retrieval
	ContextMaxEntities = 10
	// ContextEventsPerEntity caps events listed under each matched entity
	ContextEventsPerEntity = 3
	// ReplyHistoryLimit caps prior turns sent along with a reply request
	ReplyHistoryLimit = 20
)

// Contains reports whether value is one of the given options
func Contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
