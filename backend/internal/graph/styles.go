package graph

import "moodgraph/backend/internal/constants"

// Style is the display color and icon of a node
type Style struct {
	Color string
	Icon  string
}

// FallbackStyle is used for any type missing from the tables below
var FallbackStyle = Style{Color: "#9B9B9B", Icon: "•"}

var domainStyles = map[string]Style{
	constants.DomainWorkLife:     {Color: "#4A90D9", Icon: "💼"},
	constants.DomainAcademicLife: {Color: "#7B61FF", Icon: "🎓"},
	constants.DomainPersonalLife: {Color: "#F5A623", Icon: "🌱"},
	constants.DomainFriends:      {Color: "#50E3C2", Icon: "🤝"},
	constants.DomainDating:       {Color: "#FF6B9D", Icon: "💕"},
	constants.DomainHealth:       {Color: "#7ED321", Icon: "💪"},
	constants.DomainFamily:       {Color: "#E67E22", Icon: "🏠"},
}

var entityStyles = map[string]Style{
	constants.EntityTypePlace:        {Color: "#3498DB", Icon: "📍"},
	constants.EntityTypePerson:       {Color: "#E74C3C", Icon: "👤"},
	constants.EntityTypeFood:         {Color: "#F39C12", Icon: "🍜"},
	constants.EntityTypeActivity:     {Color: "#27AE60", Icon: "🏃"},
	constants.EntityTypePreference:   {Color: "#8E44AD", Icon: "⭐"},
	constants.EntityTypeObject:       {Color: "#95A5A6", Icon: "📦"},
	constants.EntityTypeOrganization: {Color: "#2C3E50", Icon: "🏢"},
}

var eventStyles = map[string]Style{
	"work":      {Color: "#4A90D9", Icon: "🗂️"},
	"study":     {Color: "#7B61FF", Icon: "📚"},
	"social":    {Color: "#50E3C2", Icon: "🎉"},
	"romantic":  {Color: "#FF6B9D", Icon: "🌹"},
	"health":    {Color: "#7ED321", Icon: "🩺"},
	"family":    {Color: "#E67E22", Icon: "👪"},
	"leisure":   {Color: "#1ABC9C", Icon: "🎮"},
	"milestone": {Color: "#F1C40F", Icon: "🏆"},
	"routine":   {Color: "#BDC3C7", Icon: "🔁"},
	"general":   {Color: "#F5A623", Icon: "📝"},
}

// DomainStyle returns the style of a taxonomy domain
func DomainStyle(domain string) Style {
	return lookupStyle(domainStyles, domain)
}

// EntityStyle returns the style of an entity type
func EntityStyle(entityType string) Style {
	return lookupStyle(entityStyles, entityType)
}

// EventStyle returns the style of an event type
func EventStyle(eventType string) Style {
	return lookupStyle(eventStyles, eventType)
}

func lookupStyle(table map[string]Style, key string) Style {
	if s, ok := table[key]; ok {
		return s
	}
	return FallbackStyle
}
