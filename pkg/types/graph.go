package types

import "github.com/pkg/errors"

// TableKind says where a table node came from.
type TableKind string

const (
	TableKindBase     TableKind = "base"
	TableKindCTE      TableKind = "cte"
	TableKindSubquery TableKind = "subquery"
)

// RelationshipKind classifies an edge of the lineage graph.
type RelationshipKind string

const (
	RelationshipJoin      RelationshipKind = "join"
	RelationshipSubquery  RelationshipKind = "subquery"
	RelationshipReference RelationshipKind = "reference"
)

// ColumnReference points at a column of a table.
type ColumnReference struct {
	ColumnID string `json:"columnId" yaml:"columnId"`
	TableID  string `json:"tableId" yaml:"tableId"`
}

// ColumnNode is a column discovered on a table node.
type ColumnNode struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	TableID      string            `json:"tableId" yaml:"tableId"`
	References   []ColumnReference `json:"references" yaml:"references"`
	ReferencedBy []ColumnReference `json:"referencedBy" yaml:"referencedBy"`
}

// AddReference records that this column references ref. Duplicates are ignored.
func (c *ColumnNode) AddReference(ref ColumnReference) bool {
	if containsColumnRef(c.References, ref) {
		return false
	}
	c.References = append(c.References, ref)
	return true
}

// AddReferencedBy records that ref references this column. Duplicates are ignored.
func (c *ColumnNode) AddReferencedBy(ref ColumnReference) bool {
	if containsColumnRef(c.ReferencedBy, ref) {
		return false
	}
	c.ReferencedBy = append(c.ReferencedBy, ref)
	return true
}

// TableNode is a table, CTE or aliased subquery in the lineage graph.
type TableNode struct {
	ID           string        `json:"id" yaml:"id"`
	DisplayName  string        `json:"displayName" yaml:"displayName"`
	Kind         TableKind     `json:"kind" yaml:"kind"`
	Columns      []*ColumnNode `json:"columns" yaml:"columns"`
	ReferencedBy []string      `json:"referencedBy" yaml:"referencedBy"`
	References   []string      `json:"references" yaml:"references"`
}

// Column returns the column with the given name.
func (t *TableNode) Column(name string) *ColumnNode {
	for _, col := range t.Columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}

// AddReference records a table-level reference to id. Duplicates are ignored.
func (t *TableNode) AddReference(id string) {
	if !containsString(t.References, id) {
		t.References = append(t.References, id)
	}
}

// AddReferencedBy records a table-level back reference from id. Duplicates are ignored.
func (t *TableNode) AddReferencedBy(id string) {
	if !containsString(t.ReferencedBy, id) {
		t.ReferencedBy = append(t.ReferencedBy, id)
	}
}

// Relationship is a directed edge between two tables, optionally at column level.
type Relationship struct {
	SourceTableID string           `json:"sourceTableId" yaml:"sourceTableId"`
	TargetTableID string           `json:"targetTableId" yaml:"targetTableId"`
	Kind          RelationshipKind `json:"kind" yaml:"kind"`
	SourceColumn  string           `json:"sourceColumn,omitempty" yaml:"sourceColumn,omitempty"`
	TargetColumn  string           `json:"targetColumn,omitempty" yaml:"targetColumn,omitempty"`
}

// HasColumns reports whether both column ends are specified.
func (r Relationship) HasColumns() bool {
	return r.SourceColumn != "" && r.TargetColumn != ""
}

// SchemaGraph is the lineage graph of a single query. Cycles are allowed.
type SchemaGraph struct {
	Tables        []*TableNode   `json:"tables" yaml:"tables"`
	Relationships []Relationship `json:"relationships" yaml:"relationships"`
}

// Table returns the table with the given id, or nil.
func (g *SchemaGraph) Table(id string) *TableNode {
	for _, t := range g.Tables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// TableIDs returns the ids of all tables in graph order.
func (g *SchemaGraph) TableIDs() []string {
	ids := make([]string, 0, len(g.Tables))
	for _, t := range g.Tables {
		ids = append(ids, t.ID)
	}
	return ids
}

// HasRelationship reports whether an edge source -> target exists at any level.
func (g *SchemaGraph) HasRelationship(source, target string) bool {
	for _, r := range g.Relationships {
		if r.SourceTableID == source && r.TargetTableID == target {
			return true
		}
	}
	return false
}

// Empty reports whether nothing was detected.
func (g *SchemaGraph) Empty() bool {
	return len(g.Tables) == 0 && len(g.Relationships) == 0
}

// Validate checks the symmetry invariants of the graph and returns the first violation.
func (g *SchemaGraph) Validate() error {
	for _, r := range g.Relationships {
		source, target := g.Table(r.SourceTableID), g.Table(r.TargetTableID)
		if source == nil || target == nil {
			return errors.Errorf("relationship %s -> %s references an unknown table", r.SourceTableID, r.TargetTableID)
		}
		if !containsString(source.References, target.ID) {
			return errors.Errorf("table %s does not list %s in references", source.ID, target.ID)
		}
		if !containsString(target.ReferencedBy, source.ID) {
			return errors.Errorf("table %s does not list %s in referencedBy", target.ID, source.ID)
		}
		if !r.HasColumns() {
			continue
		}
		sourceCol, targetCol := source.Column(r.SourceColumn), target.Column(r.TargetColumn)
		if sourceCol == nil || targetCol == nil {
			return errors.Errorf("relationship %s.%s -> %s.%s references an unknown column",
				r.SourceTableID, r.SourceColumn, r.TargetTableID, r.TargetColumn)
		}
		if !containsColumnRef(sourceCol.References, ColumnReference{ColumnID: targetCol.ID, TableID: target.ID}) {
			return errors.Errorf("column %s does not reference %s", sourceCol.ID, targetCol.ID)
		}
		if !containsColumnRef(targetCol.ReferencedBy, ColumnReference{ColumnID: sourceCol.ID, TableID: source.ID}) {
			return errors.Errorf("column %s is not referenced by %s", targetCol.ID, sourceCol.ID)
		}
	}
	for _, t := range g.Tables {
		for _, ref := range t.References {
			other := g.Table(ref)
			if other == nil || !containsString(other.ReferencedBy, t.ID) {
				return errors.Errorf("table %s references %s without a reciprocal entry", t.ID, ref)
			}
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsColumnRef(list []ColumnReference, ref ColumnReference) bool {
	for _, v := range list {
		if v == ref {
			return true
		}
	}
	return false
}
