package types

import "time"

// Entity represents a node in the knowledge graph.
// Entities can be concepts, technologies, errors, people, projects, etc.
// Identity is name-based: adding an entity whose (type, name) pair already
// exists updates the existing node rather than creating a duplicate.
type Entity struct {
	// ID is the unique identifier (format: ent:uuid).
	ID string `json:"id"`

	// Name is the display name (matched case-insensitively for identity).
	Name string `json:"name"`

	// Type is the entity type (see EntityType constants).
	Type string `json:"type"`

	// Properties holds arbitrary entity metadata.
	Properties map[string]any `json:"properties,omitempty"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the last update timestamp.
	UpdatedAt time.Time `json:"updated_at"`
}

// Relationship represents a directed edge between two entities.
// Both endpoints must exist in the graph when the relationship is added;
// the graph rejects edges to unknown entity IDs.
type Relationship struct {
	// ID is the unique identifier (format: rel:uuid).
	ID string `json:"id"`

	// SourceID is the source entity ID.
	SourceID string `json:"source_id"`

	// TargetID is the target entity ID.
	TargetID string `json:"target_id"`

	// Type is the relationship type (see RelationType constants).
	Type string `json:"type"`

	// Properties holds arbitrary relationship metadata.
	Properties map[string]any `json:"properties,omitempty"`

	// Weight is the relationship strength (0.0 to 1.0).
	Weight float64 `json:"weight"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Touches reports whether the relationship has the given entity as either
// endpoint.
func (r *Relationship) Touches(entityID string) bool {
	return r.SourceID == entityID || r.TargetID == entityID
}
