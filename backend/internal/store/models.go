package store

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"moodgraph/backend/internal/constants"
)

// Entity is a durable entity row. (UserID, LocalID) is unique.
type Entity struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     string         `gorm:"size:128;not null;uniqueIndex:idx_entities_user_local;index" json:"userId"`
	LocalID    string         `gorm:"size:255;not null;uniqueIndex:idx_entities_user_local" json:"localId"`
	Type       string         `gorm:"size:32;not null" json:"type"`
	Name       string         `gorm:"not null" json:"name"`
	NameFolded string         `gorm:"not null;default:''" json:"-"`
	Attributes datatypes.JSON `json:"attributes"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (Entity) TableName() string { return "journal_entities" }

// BeforeSave refreshes the folded name used by name search. SQLite's LOWER only
// folds ASCII, so folding happens in Go.
func (e *Entity) BeforeSave(*gorm.DB) error {
	e.NameFolded = strings.ToLower(e.Name)
	return nil
}

// Event is a durable event row. Re-extracting a day inserts new rows.
type Event struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          string         `gorm:"size:128;not null;index" json:"userId"`
	Date            string         `gorm:"size:10;not null;index" json:"date"`
	Summary         string         `gorm:"not null" json:"summary"`
	EventType       string         `gorm:"size:64;not null" json:"eventType"`
	Domains         datatypes.JSON `json:"domains"`
	EmotionalTone   string         `gorm:"size:32;not null" json:"emotionalTone"`
	Importance      int            `gorm:"not null" json:"importance"`
	RelatedEntities datatypes.JSON `json:"relatedEntities"`
	Keywords        datatypes.JSON `json:"keywords"`
	CreatedAt       time.Time      `json:"createdAt"`
}

func (Event) TableName() string { return "journal_events" }

// Relationship is a durable edge row. Endpoints are namespaced durable ids when
// they resolved at persist time, and the raw local id otherwise.
type Relationship struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           string    `gorm:"size:128;not null;index" json:"userId"`
	FromID           string    `gorm:"size:255;not null;index" json:"fromId"`
	ToID             string    `gorm:"size:255;not null;index" json:"toId"`
	RelationshipType string    `gorm:"size:128;not null" json:"relationshipType"`
	Strength         int       `gorm:"not null" json:"strength"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (Relationship) TableName() string { return "journal_relationships" }

// EventKey is the namespaced id of an event row
func EventKey(id uint) string {
	return constants.NamespaceEvent + ":" + strconv.FormatUint(uint64(id), 10)
}

// EntityKey is the namespaced id of an entity row
func EntityKey(id uint) string {
	return constants.NamespaceEntity + ":" + strconv.FormatUint(uint64(id), 10)
}

// Key returns the namespaced id of the event
func (e *Event) Key() string { return EventKey(e.ID) }

// Key returns the namespaced id of the entity
func (e *Entity) Key() string { return EntityKey(e.ID) }

// EncodeList serializes a string list for a JSON column
func EncodeList(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return datatypes.JSON(b)
}

// EncodeObject serializes a map for a JSON column
func EncodeObject(values map[string]interface{}) datatypes.JSON {
	if values == nil {
		values = map[string]interface{}{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}

// decodeList reads a JSON string list, falling back when the column is
// empty or does not hold a list of strings
func decodeList(raw datatypes.JSON, fallback []string) []string {
	var out []string
	if len(raw) == 0 || json.Unmarshal(raw, &out) != nil || out == nil {
		return append([]string{}, fallback...)
	}
	return out
}

// DomainList returns the event's domains, primary first
func (e *Event) DomainList() []string {
	domains := decodeList(e.Domains, nil)
	if len(domains) == 0 {
		return []string{constants.DefaultDomain}
	}
	return domains
}

// PrimaryDomain returns the first domain of the event
func (e *Event) PrimaryDomain() string {
	return e.DomainList()[0]
}

// RelatedEntityList returns the local entity ids mentioned by the event
func (e *Event) RelatedEntityList() []string {
	return decodeList(e.RelatedEntities, []string{})
}

// KeywordList returns the event's keywords
func (e *Event) KeywordList() []string {
	return decodeList(e.Keywords, []string{})
}

// AttributeMap returns the entity's attributes, or an empty map
func (e *Entity) AttributeMap() map[string]interface{} {
	out := map[string]interface{}{}
	if len(e.Attributes) == 0 {
		return out
	}
	if err := json.Unmarshal(e.Attributes, &out); err != nil || out == nil {
		return map[string]interface{}{}
	}
	return out
}
