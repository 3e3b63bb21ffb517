package graph

import (
	"math"

	"backend/internal/models"
)

// BuildGraph maps a persisted database-mode schema onto the renderable
// node/edge graph. It never fails: malformed fields are coerced to safe
// defaults and relationships with a missing endpoint are excluded, so
// one corrupt record cannot blank the whole canvas. Node and edge order
// is the insertion order of the inputs.
func BuildGraph(tables []models.Table, relationships []models.Relationship) models.Graph {
	g, _ := BuildGraphReport(tables, relationships)
	return g
}

// BuildGraphReport is BuildGraph plus the number of relationships that
// were excluded because an endpoint column no longer exists. The editing
// surface uses the count to warn; the rendering path ignores it.
func BuildGraphReport(tables []models.Table, relationships []models.Relationship) (models.Graph, int) {
	g := models.Graph{
		Nodes: make([]models.DiagramNode, 0, len(tables)),
		Edges: make([]models.DiagramEdge, 0, len(relationships)),
	}

	// One pass over all columns builds the column -> owning table index.
	columnTable := make(map[int64]*models.Table)
	for i := range tables {
		for j := range tables[i].Columns {
			columnTable[tables[i].Columns[j].ID] = &tables[i]
		}
	}

	for i := range tables {
		g.Nodes = append(g.Nodes, tableNode(&tables[i]))
	}

	dropped := 0
	for _, rel := range relationships {
		src, okSrc := columnTable[rel.FromColumnID]
		dst, okDst := columnTable[rel.ToColumnID]
		if !okSrc || !okDst {
			// Schema drift between relationships and columns is expected
			// during concurrent edits; excluded, never an error.
			dropped++
			continue
		}

		sourceHandle, err := EncodeHandle(rel.FromColumnID, DirOut)
		if err != nil {
			dropped++
			continue
		}
		targetHandle, err := EncodeHandle(rel.ToColumnID, DirIn)
		if err != nil {
			dropped++
			continue
		}

		label := "1:N"
		if rel.Type == models.OneToOne {
			label = "1:1"
		}

		g.Edges = append(g.Edges, models.DiagramEdge{
			ID:           rel.ID.String(),
			Source:       src.ID.String(),
			Target:       dst.ID.String(),
			SourceHandle: sourceHandle,
			TargetHandle: targetHandle,
			Label:        label,
		})
	}

	return g, dropped
}

// tableNode renders one table as a canvas node. Position comes from the
// persisted x,y; width from the persisted w; height grows with the
// column count. Everything is sanitized and clamped to the table node
// minimums, rounded up to whole pixels.
func tableNode(t *models.Table) models.DiagramNode {
	height := tableHeaderHeight + columnRowHeight*float64(len(t.Columns))

	size := models.Size{
		Width:  math.Ceil(clampMin(sanitize(t.Width), MinTableWidth)),
		Height: math.Ceil(clampMin(height, MinTableHeight)),
	}

	table := *t
	if table.Columns == nil {
		table.Columns = []models.Column{}
	}

	return models.DiagramNode{
		ID:   t.ID.String(),
		Kind: models.KindTableNode,
		Position: models.Point{
			X: sanitize(t.X),
			Y: sanitize(t.Y),
		},
		Size: &size,
		Data: models.NodeData{TableNode: &models.TableNodeData{Table: table}},
	}
}

const (
	tableHeaderHeight = 48.0
	columnRowHeight   = 28.0
)

// sanitize coerces NaN, infinite and negative coordinates to 0.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clampMin(v, min float64) float64 {
	if math.IsNaN(v) || v < min {
		return min
	}
	return v
}

func clampPoint(p models.Point) models.Point {
	return models.Point{X: sanitize(p.X), Y: sanitize(p.Y)}
}
