package lineage

import (
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// graphState accumulates the lineage graph. Table ids are matched
// case-insensitively but keep the spelling of their first appearance.
type graphState struct {
	graph  *types.SchemaGraph
	tables map[string]*types.TableNode
}

func newGraphState() *graphState {
	return &graphState{graph: emptyGraph(), tables: make(map[string]*types.TableNode)}
}

func emptyGraph() *types.SchemaGraph {
	return &types.SchemaGraph{
		Tables:        []*types.TableNode{},
		Relationships: []types.Relationship{},
	}
}

func (s *graphState) table(id string) *types.TableNode {
	return s.tables[strings.ToLower(id)]
}

// addTable returns the existing node for id or creates one.
func (s *graphState) addTable(id, displayName string, kind types.TableKind) *types.TableNode {
	if t := s.table(id); t != nil {
		return t
	}
	if displayName == "" {
		displayName = id
	}
	t := &types.TableNode{
		ID:           id,
		DisplayName:  displayName,
		Kind:         kind,
		Columns:      []*types.ColumnNode{},
		References:   []string{},
		ReferencedBy: []string{},
	}
	s.tables[strings.ToLower(id)] = t
	s.graph.Tables = append(s.graph.Tables, t)
	return t
}

// column returns the column of t named name, ignoring case.
func column(t *types.TableNode, name string) *types.ColumnNode {
	for _, col := range t.Columns {
		if strings.EqualFold(col.Name, name) {
			return col
		}
	}
	return nil
}

// addColumn attaches a column to t once.
func (s *graphState) addColumn(t *types.TableNode, name string) *types.ColumnNode {
	if col := column(t, name); col != nil {
		return col
	}
	col := &types.ColumnNode{
		ID:           t.ID + "." + name,
		Name:         name,
		TableID:      t.ID,
		References:   []types.ColumnReference{},
		ReferencedBy: []types.ColumnReference{},
	}
	t.Columns = append(t.Columns, col)
	return col
}

// hasRelationship reports whether an edge with the same ends exists.
// Kinds are not compared.
func (s *graphState) hasRelationship(source, target, sourceColumn, targetColumn string) bool {
	for _, r := range s.graph.Relationships {
		if strings.EqualFold(r.SourceTableID, source) && strings.EqualFold(r.TargetTableID, target) &&
			strings.EqualFold(r.SourceColumn, sourceColumn) && strings.EqualFold(r.TargetColumn, targetColumn) {
			return true
		}
	}
	return false
}

// relate adds a table-level edge and its mirrors.
func (s *graphState) relate(kind types.RelationshipKind, source, target *types.TableNode) bool {
	if s.hasRelationship(source.ID, target.ID, "", "") {
		return false
	}
	s.graph.Relationships = append(s.graph.Relationships, types.Relationship{
		SourceTableID: source.ID,
		TargetTableID: target.ID,
		Kind:          kind,
	})
	source.AddReference(target.ID)
	target.AddReferencedBy(source.ID)
	return true
}

// relateColumns adds a column-level edge and the mirrors at both levels.
// Missing columns are created.
func (s *graphState) relateColumns(kind types.RelationshipKind, source *types.TableNode, sourceColumn string, target *types.TableNode, targetColumn string) bool {
	if s.hasRelationship(source.ID, target.ID, sourceColumn, targetColumn) {
		return false
	}
	sc, tc := s.addColumn(source, sourceColumn), s.addColumn(target, targetColumn)
	s.graph.Relationships = append(s.graph.Relationships, types.Relationship{
		SourceTableID: source.ID,
		TargetTableID: target.ID,
		Kind:          kind,
		SourceColumn:  sc.Name,
		TargetColumn:  tc.Name,
	})
	source.AddReference(target.ID)
	target.AddReferencedBy(source.ID)
	sc.AddReference(types.ColumnReference{ColumnID: tc.ID, TableID: target.ID})
	tc.AddReferencedBy(types.ColumnReference{ColumnID: sc.ID, TableID: source.ID})
	return true
}

// reconcile infers column edges for table-level relationships from
// identically named columns, then re-asserts every mirror.
func (s *graphState) reconcile() {
	for _, r := range append([]types.Relationship(nil), s.graph.Relationships...) {
		if r.HasColumns() {
			continue
		}
		source, target := s.table(r.SourceTableID), s.table(r.TargetTableID)
		if source == target {
			continue
		}
		for _, sc := range source.Columns {
			if tc := column(target, sc.Name); tc != nil {
				s.relateColumns(r.Kind, source, sc.Name, target, tc.Name)
			}
		}
	}

	for _, r := range s.graph.Relationships {
		source, target := s.table(r.SourceTableID), s.table(r.TargetTableID)
		source.AddReference(target.ID)
		target.AddReferencedBy(source.ID)
		if !r.HasColumns() {
			continue
		}
		sc, tc := s.addColumn(source, r.SourceColumn), s.addColumn(target, r.TargetColumn)
		sc.AddReference(types.ColumnReference{ColumnID: tc.ID, TableID: target.ID})
		tc.AddReferencedBy(types.ColumnReference{ColumnID: sc.ID, TableID: source.ID})
	}
}
