package graph

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"moodgraph/backend/internal/constants"
	"moodgraph/backend/internal/store"
	"moodgraph/backend/pkg/logger"
)

// Assembler builds the renderable graph of a user from stored rows plus edges
// derived at read time
type Assembler struct {
	store  GraphReader
	logger *zap.Logger
}

// NewAssembler creates an assembler over the given store
func NewAssembler(s GraphReader) *Assembler {
	return &Assembler{
		store:  s,
		logger: logger.Named("graph_assembler"),
	}
}

// Assemble loads the user's rows and returns domain, event and entity nodes with
// stored, BELONGS_TO and FOLLOWS edges
func (a *Assembler) Assemble(ctx context.Context, userID string) (*Graph, error) {
	var (
		events   []store.Event
		entities []store.Entity
		rels     []store.Relationship
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = a.store.ListEvents(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		entities, err = a.store.ListEntities(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		rels, err = a.store.ListRelationships(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Graph{
		Nodes:       make([]Node, 0, len(constants.Domains)+len(events)+len(entities)),
		Edges:       make([]Edge, 0, len(rels)+2*len(events)),
		EventCount:  len(events),
		EntityCount: len(entities),
	}

	for _, d := range constants.Domains {
		out.Nodes = append(out.Nodes, domainNode(d))
	}
	for i := range events {
		out.Nodes = append(out.Nodes, eventNode(&events[i]))
	}
	for i := range entities {
		out.Nodes = append(out.Nodes, entityNode(&entities[i]))
	}

	for _, r := range rels {
		strength := r.Strength
		out.Edges = append(out.Edges, Edge{
			Source:   r.FromID,
			Target:   r.ToID,
			Type:     DisplayRelationshipType(r.RelationshipType),
			Strength: &strength,
		})
	}
	out.Edges = append(out.Edges, derivedEdges(events)...)

	a.logger.Debug("Assembled graph",
		zap.String("user_id", userID),
		zap.Int("nodes", len(out.Nodes)),
		zap.Int("edges", len(out.Edges)))

	return out, nil
}

// derivedEdges links each event to its domains, and to the previous event of
// each domain in creation order. events must be in creation order.
func derivedEdges(events []store.Event) []Edge {
	var edges []Edge
	lastInDomain := make(map[string]string)

	for i := range events {
		key := events[i].Key()
		seenDomain := make(map[string]bool)
		seenTarget := make(map[string]bool)

		for _, d := range events[i].DomainList() {
			if seenDomain[d] {
				continue
			}
			seenDomain[d] = true

			edges = append(edges, Edge{
				Source:  key,
				Target:  DomainKey(d),
				Type:    constants.EdgeTypeBelongsTo,
				Derived: true,
			})

			if prev, ok := lastInDomain[d]; ok && !seenTarget[prev] {
				seenTarget[prev] = true
				edges = append(edges, Edge{
					Source:  key,
					Target:  prev,
					Type:    constants.EdgeTypeFollows,
					Derived: true,
				})
			}
			lastInDomain[d] = key
		}
	}
	return edges
}

// DomainKey is the namespaced id of a domain node
func DomainKey(domain string) string {
	return constants.NamespaceDomain + ":" + domain
}

// DisplayRelationshipType renders a stored relationship type for display
func DisplayRelationshipType(t string) string {
	return strings.ReplaceAll(strings.ToUpper(t), "_", " ")
}

func domainNode(domain string) Node {
	style := DomainStyle(domain)
	return Node{
		ID:    DomainKey(domain),
		Kind:  NodeKindDomain,
		Label: domain,
		Color: style.Color,
		Icon:  style.Icon,
	}
}

func eventNode(e *store.Event) Node {
	style := EventStyle(e.EventType)
	domains := e.DomainList()
	createdAt := e.CreatedAt
	return Node{
		ID:              e.Key(),
		Kind:            NodeKindEvent,
		Label:           e.Summary,
		Color:           style.Color,
		Icon:            style.Icon,
		Date:            e.Date,
		Summary:         e.Summary,
		EventType:       e.EventType,
		Domains:         domains,
		PrimaryDomain:   domains[0],
		EmotionalTone:   e.EmotionalTone,
		Importance:      e.Importance,
		RelatedEntities: e.RelatedEntityList(),
		Keywords:        e.KeywordList(),
		CreatedAt:       &createdAt,
	}
}

func entityNode(e *store.Entity) Node {
	style := EntityStyle(e.Type)
	createdAt := e.CreatedAt
	return Node{
		ID:         e.Key(),
		Kind:       NodeKindEntity,
		Label:      e.Name,
		Color:      style.Color,
		Icon:       style.Icon,
		EntityType: e.Type,
		LocalID:    e.LocalID,
		Attributes: e.AttributeMap(),
		CreatedAt:  &createdAt,
	}
}
