// Package knowledge implements the in-memory knowledge graph: typed
// entities connected by weighted relationships, with substring search,
// bounded traversal, and optional write-through persistence.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codelegend/cogito/internal/storage"
	"github.com/codelegend/cogito/pkg/types"
)

// ErrInvalidReference is returned when a relationship names an unknown
// source or target entity. The graph is left unchanged.
var ErrInvalidReference = errors.New("source or target entity not found")

// Related describes an entity reachable from a traversal start point.
type Related struct {
	Entity       *types.Entity
	RelationType string
	Weight       float64
	Depth        int
}

// Stats summarizes graph contents.
type Stats struct {
	TotalEntities      int            `json:"total_entities"`
	TotalRelationships int            `json:"total_relationships"`
	EntityTypes        map[string]int `json:"entity_types"`
	RelationTypes      map[string]int `json:"relationship_types"`
}

// Graph is an RWMutex-guarded in-memory knowledge graph. Entity identity is
// name-based: adding an entity whose (type, lowercased name) already exists
// updates the existing entity instead of creating a duplicate. A nil
// GraphStore disables persistence; with a store, mutations write through
// best-effort and Load restores previous state.
type Graph struct {
	mu            sync.RWMutex
	entities      map[string]*types.Entity
	relationships map[string]*types.Relationship
	byName        map[string]string // nameKey -> entity ID
	store         storage.GraphStore
}

// NewGraph creates an empty graph. store may be nil.
func NewGraph(store storage.GraphStore) *Graph {
	return &Graph{
		entities:      make(map[string]*types.Entity),
		relationships: make(map[string]*types.Relationship),
		byName:        make(map[string]string),
		store:         store,
	}
}

// Load restores entities and relationships from the configured store.
// It is a no-op without a store.
func (g *Graph) Load(ctx context.Context) error {
	if g.store == nil {
		return nil
	}

	entities, err := g.store.Entities(ctx)
	if err != nil {
		return fmt.Errorf("failed to load entities: %w", err)
	}
	relationships, err := g.store.Relationships(ctx)
	if err != nil {
		return fmt.Errorf("failed to load relationships: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, e := range entities {
		g.entities[e.ID] = e
		g.byName[nameKey(e.Type, e.Name)] = e.ID
	}
	for _, r := range relationships {
		// Skip edges whose endpoints didn't survive.
		if _, ok := g.entities[r.SourceID]; !ok {
			continue
		}
		if _, ok := g.entities[r.TargetID]; !ok {
			continue
		}
		g.relationships[r.ID] = r
	}

	log.Printf("[knowledge] loaded %d entities, %d relationships", len(g.entities), len(g.relationships))
	return nil
}

// AddEntity adds an entity and returns its ID. If an entity with the same
// type and (case-insensitive) name exists, its properties are merged, its
// UpdatedAt is bumped, and the existing ID is returned.
func (g *Graph) AddEntity(ctx context.Context, name, entityType string, properties map[string]any) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: entity name is required", storage.ErrInvalidInput)
	}
	if !types.IsValidEntityType(entityType) {
		return "", fmt.Errorf("%w: unknown entity type %q", storage.ErrInvalidInput, entityType)
	}

	g.mu.Lock()

	now := time.Now().UTC()
	key := nameKey(entityType, name)

	if id, ok := g.byName[key]; ok {
		entity := g.entities[id]
		for k, v := range properties {
			if entity.Properties == nil {
				entity.Properties = make(map[string]any)
			}
			entity.Properties[k] = v
		}
		entity.UpdatedAt = now
		snap := snapshotEntity(entity)
		g.mu.Unlock()

		g.persistEntity(ctx, snap)
		return id, nil
	}

	entity := &types.Entity{
		ID:        "ent:" + uuid.NewString(),
		Name:      name,
		Type:      entityType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Clone the caller's map so later upserts don't write into it.
	if properties != nil {
		entity.Properties = make(map[string]any, len(properties))
		for k, v := range properties {
			entity.Properties[k] = v
		}
	}
	g.entities[entity.ID] = entity
	g.byName[key] = entity.ID
	snap := snapshotEntity(entity)
	g.mu.Unlock()

	g.persistEntity(ctx, snap)
	return entity.ID, nil
}

// snapshotEntity copies an entity so it can be read outside the graph
// lock. Upserts mutate Properties in place, so escaping the live map
// would race with concurrent AddEntity calls.
func snapshotEntity(e *types.Entity) *types.Entity {
	c := *e
	if e.Properties != nil {
		c.Properties = make(map[string]any, len(e.Properties))
		for k, v := range e.Properties {
			c.Properties[k] = v
		}
	}
	return &c
}

// AddRelationship connects two existing entities and returns the
// relationship ID. Returns ErrInvalidReference when either endpoint is
// unknown; the graph is left unchanged in that case.
func (g *Graph) AddRelationship(ctx context.Context, sourceID, targetID, relType string, weight float64, properties map[string]any) (string, error) {
	if !types.IsValidRelationType(relType) {
		return "", fmt.Errorf("%w: unknown relation type %q", storage.ErrInvalidInput, relType)
	}

	g.mu.Lock()

	if _, ok := g.entities[sourceID]; !ok {
		g.mu.Unlock()
		return "", ErrInvalidReference
	}
	if _, ok := g.entities[targetID]; !ok {
		g.mu.Unlock()
		return "", ErrInvalidReference
	}

	rel := &types.Relationship{
		ID:         "rel:" + uuid.NewString(),
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       relType,
		Properties: properties,
		Weight:     weight,
		CreatedAt:  time.Now().UTC(),
	}
	g.relationships[rel.ID] = rel
	g.mu.Unlock()

	g.persistRelationship(ctx, rel)
	return rel.ID, nil
}

// Entity returns a copy of the entity with the given ID, if present.
func (g *Graph) Entity(id string) (*types.Entity, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.entities[id]
	if !ok {
		return nil, false
	}
	return snapshotEntity(e), true
}

// FindEntityByName returns copies of entities whose name matches exactly
// (case-insensitive). An empty entityType matches any type.
func (g *Graph) FindEntityByName(name, entityType string) []*types.Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()

	lower := strings.ToLower(name)
	var results []*types.Entity
	for _, e := range g.entities {
		if strings.ToLower(e.Name) == lower && (entityType == "" || e.Type == entityType) {
			results = append(results, snapshotEntity(e))
		}
	}
	return results
}

// SearchEntities performs case-insensitive substring search over entity
// names and string property values, returning copies. Exact name matches
// rank first, then results sort alphabetically by name.
func (g *Graph) SearchEntities(query string, limit int) []*types.Entity {
	g.mu.RLock()

	lower := strings.ToLower(query)
	var results []*types.Entity
	for _, e := range g.entities {
		if strings.Contains(strings.ToLower(e.Name), lower) {
			results = append(results, snapshotEntity(e))
			continue
		}
		for _, v := range e.Properties {
			if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), lower) {
				results = append(results, snapshotEntity(e))
				break
			}
		}
	}
	g.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		iExact := strings.ToLower(results[i].Name) == lower
		jExact := strings.ToLower(results[j].Name) == lower
		if iExact != jExact {
			return iExact
		}
		return strings.ToLower(results[i].Name) < strings.ToLower(results[j].Name)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// RelationshipsBetween returns relationships where both endpoints are in
// the given ID set.
func (g *Graph) RelationshipsBetween(entityIDs []string) []*types.Relationship {
	idSet := make(map[string]bool, len(entityIDs))
	for _, id := range entityIDs {
		idSet[id] = true
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	var results []*types.Relationship
	for _, r := range g.relationships {
		if idSet[r.SourceID] && idSet[r.TargetID] {
			results = append(results, r)
		}
	}
	return results
}

// EntityRelationships returns all relationships touching the given entity.
func (g *Graph) EntityRelationships(entityID string) []*types.Relationship {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var results []*types.Relationship
	for _, r := range g.relationships {
		if r.Touches(entityID) {
			results = append(results, r)
		}
	}
	return results
}

// RelatedEntities walks outgoing relationships from entityID up to maxDepth
// hops and returns reachable entities with the edge that first led to them.
// Results sort by weight descending, then depth ascending.
func (g *Graph) RelatedEntities(entityID string, maxDepth int) []Related {
	if maxDepth < 1 {
		maxDepth = 1
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.entities[entityID]; !ok {
		return nil
	}

	// Outgoing adjacency built on the fly; graphs stay small enough that
	// this beats maintaining an index under the write lock.
	outgoing := make(map[string][]*types.Relationship)
	for _, r := range g.relationships {
		outgoing[r.SourceID] = append(outgoing[r.SourceID], r)
	}

	type queued struct {
		id    string
		depth int
	}

	var related []Related
	visited := map[string]bool{entityID: true}
	queue := []queued{{entityID, 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		for _, r := range outgoing[current.id] {
			if visited[r.TargetID] {
				continue
			}
			related = append(related, Related{
				Entity:       snapshotEntity(g.entities[r.TargetID]),
				RelationType: r.Type,
				Weight:       r.Weight,
				Depth:        current.depth + 1,
			})
			visited[r.TargetID] = true
			queue = append(queue, queued{r.TargetID, current.depth + 1})
		}
	}

	sort.Slice(related, func(i, j int) bool {
		if related[i].Weight != related[j].Weight {
			return related[i].Weight > related[j].Weight
		}
		return related[i].Depth < related[j].Depth
	})
	return related
}

// Stats returns entity and relationship counts, bucketed by type.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	stats := Stats{
		TotalEntities:      len(g.entities),
		TotalRelationships: len(g.relationships),
		EntityTypes:        make(map[string]int),
		RelationTypes:      make(map[string]int),
	}
	for _, e := range g.entities {
		stats.EntityTypes[e.Type]++
	}
	for _, r := range g.relationships {
		stats.RelationTypes[r.Type]++
	}
	return stats
}

// DeleteOlderThan removes entities last updated before cutoff, plus every
// relationship that touches a removed entity or predates the cutoff itself.
// It returns the number of entities and relationships removed.
func (g *Graph) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, int) {
	g.mu.Lock()

	var removedEntities []string
	for id, e := range g.entities {
		if e.UpdatedAt.Before(cutoff) {
			removedEntities = append(removedEntities, id)
		}
	}
	removedSet := make(map[string]bool, len(removedEntities))
	for _, id := range removedEntities {
		removedSet[id] = true
		e := g.entities[id]
		delete(g.byName, nameKey(e.Type, e.Name))
		delete(g.entities, id)
	}

	var removedRels []string
	for id, r := range g.relationships {
		if removedSet[r.SourceID] || removedSet[r.TargetID] || r.CreatedAt.Before(cutoff) {
			removedRels = append(removedRels, id)
			delete(g.relationships, id)
		}
	}
	g.mu.Unlock()

	if g.store != nil {
		for _, id := range removedRels {
			if err := g.store.DeleteRelationship(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
				log.Printf("[knowledge] failed to delete relationship %s: %v", id, err)
			}
		}
		for _, id := range removedEntities {
			if err := g.store.DeleteEntity(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
				log.Printf("[knowledge] failed to delete entity %s: %v", id, err)
			}
		}
	}

	if len(removedEntities) > 0 || len(removedRels) > 0 {
		log.Printf("[knowledge] cleanup removed %d entities, %d relationships", len(removedEntities), len(removedRels))
	}
	return len(removedEntities), len(removedRels)
}

// persistEntity writes through to the store, best-effort. The in-memory
// graph is the source of truth; persistence failures are logged, not
// surfaced.
func (g *Graph) persistEntity(ctx context.Context, entity *types.Entity) {
	if g.store == nil {
		return
	}
	if err := g.store.SaveEntity(ctx, entity); err != nil {
		log.Printf("[knowledge] failed to persist entity %s: %v", entity.ID, err)
	}
}

func (g *Graph) persistRelationship(ctx context.Context, rel *types.Relationship) {
	if g.store == nil {
		return
	}
	if err := g.store.SaveRelationship(ctx, rel); err != nil {
		log.Printf("[knowledge] failed to persist relationship %s: %v", rel.ID, err)
	}
}

func nameKey(entityType, name string) string {
	return entityType + "\x00" + strings.ToLower(name)
}
