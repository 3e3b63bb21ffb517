package graph

import (
	"encoding/json"

	"backend/internal/models"
)

// NormalizeNode turns a stored node record into a fully-populated,
// validated node. Defaulting happens once here, at load time, instead
// of piecemeal at every read. Unknown kinds degrade to a generic shape;
// undecodable data bags get the kind's zero payload. It never fails.
func NormalizeNode(raw models.RawNode) models.DiagramNode {
	kind := models.NodeKind(raw.Kind)

	node := models.DiagramNode{
		ID:       raw.ID,
		Kind:     kind,
		Position: clampPoint(raw.Position),
	}

	if raw.Size != nil {
		s := models.Size{
			Width:  clampMin(raw.Size.Width, MinNodeWidth),
			Height: clampMin(raw.Size.Height, MinNodeHeight),
		}
		node.Size = &s
	}

	switch kind {
	case models.KindShape:
		d := models.ShapeData{}
		decode(raw.Data, &d)
		if d.Shape == "" {
			d.Shape = "rectangle"
		}
		if d.Fill == "" {
			d.Fill = defaultFill
		}
		if d.Stroke == "" {
			d.Stroke = defaultStroke
		}
		if d.Opacity <= 0 || d.Opacity > 1 {
			d.Opacity = defaultOpacity
		}
		node.Data = models.NodeData{Shape: &d}
	case models.KindText:
		d := models.TextData{}
		decode(raw.Data, &d)
		if d.FontSize <= 0 {
			d.FontSize = 14
		}
		node.Size = nil // always auto-sized
		node.Data = models.NodeData{Text: &d}
	case models.KindSticky:
		d := models.StickyData{}
		decode(raw.Data, &d)
		if d.Color == "" {
			d.Color = "#fff3a3"
		}
		node.Data = models.NodeData{Sticky: &d}
	case models.KindGroup:
		d := models.GroupData{}
		decode(raw.Data, &d)
		node.Data = models.NodeData{Group: &d}
	case models.KindInk:
		d := models.InkData{}
		decode(raw.Data, &d)
		if d.Points == nil {
			d.Points = []models.Point{}
		}
		if d.Stroke == "" {
			d.Stroke = defaultStroke
		}
		if d.Width <= 0 {
			d.Width = 2
		}
		node.Size = nil
		node.Data = models.NodeData{Ink: &d}
	case models.KindMindTopic:
		d := models.MindTopicData{}
		decode(raw.Data, &d)
		if d.Color == "" {
			d.Color = BranchPalette[0]
		}
		node.Data = models.NodeData{MindTopic: &d}
	case models.KindTableNode:
		d := models.TableNodeData{}
		decode(raw.Data, &d)
		if d.Table.Columns == nil {
			d.Table.Columns = []models.Column{}
		}
		node.Data = models.NodeData{TableNode: &d}
	default:
		node.Kind = models.KindShape
		node.Data = models.NodeData{Shape: &models.ShapeData{
			Shape:   "rectangle",
			Fill:    defaultFill,
			Stroke:  defaultStroke,
			Opacity: defaultOpacity,
		}}
	}

	return node
}

// NormalizeNodes maps NormalizeNode over a stored node list, preserving
// order and dropping records without an id.
func NormalizeNodes(raws []models.RawNode) []models.DiagramNode {
	out := make([]models.DiagramNode, 0, len(raws))
	for _, r := range raws {
		if r.ID == "" {
			continue
		}
		out = append(out, NormalizeNode(r))
	}
	return out
}

// FilterEdges drops edges whose endpoints or handles cannot be resolved
// against the given nodes (dangling-edge policy). Edge order is kept.
func FilterEdges(nodes []models.DiagramNode, edges []models.DiagramEdge) []models.DiagramEdge {
	byID := make(map[string]*models.DiagramNode, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}

	out := make([]models.DiagramEdge, 0, len(edges))
	for _, e := range edges {
		src, okSrc := byID[e.Source]
		dst, okDst := byID[e.Target]
		if !okSrc || !okDst {
			continue
		}
		if e.SourceHandle != "" && !handleResolves(src, e.SourceHandle) {
			continue
		}
		if e.TargetHandle != "" && !handleResolves(dst, e.TargetHandle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// handleResolves reports whether a handle id names a column that exists
// on the node. Unparsable handles count as absent, never as a fault.
func handleResolves(n *models.DiagramNode, handleID string) bool {
	colID, ok := DecodeHandle(handleID)
	if !ok {
		return false
	}
	if n.Kind != models.KindTableNode || n.Data.TableNode == nil {
		return false
	}
	for _, c := range n.Data.TableNode.Table.Columns {
		if c.ID == colID {
			return true
		}
	}
	return false
}

func decode(raw json.RawMessage, v any) {
	if len(raw) == 0 {
		return
	}
	// Corrupt data bags fall back to the kind's defaults.
	_ = json.Unmarshal(raw, v)
}
