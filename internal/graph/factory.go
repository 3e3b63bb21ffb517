package graph

import (
	"backend/internal/models"

	"github.com/google/uuid"
)

// Style carries optional overrides for a new flow node. Set fields win
// over registry defaults, never the reverse.
type Style struct {
	Fill    string
	Stroke  string
	Opacity *float64
}

const (
	defaultFill    = "#ffffff"
	defaultStroke  = "#1a1a2e"
	defaultOpacity = 1.0

	mindChildXOffset = 240.0
	mindChildYStep   = 72.0
	// Each sibling past the second pulls the fan 12px tighter so large
	// families stay bounded.
	mindChildYTaper = 12.0
)

// NewFlowNode creates a flow-mode node of the given shape kind. Size
// falls back to the registry default and is clamped to the minimums.
// Ids are random and never reused or renumbered.
func NewFlowNode(shapeKind string, position models.Point, size *models.Size, style *Style) models.DiagramNode {
	def := LookupShape(shapeKind)

	s := models.Size{Width: def.Width, Height: def.Height}
	if size != nil {
		s = *size
	}
	s.Width = clampMin(s.Width, MinNodeWidth)
	s.Height = clampMin(s.Height, MinNodeHeight)

	data := models.ShapeData{
		Shape:   shapeKind,
		Label:   def.Label,
		Fill:    defaultFill,
		Stroke:  defaultStroke,
		Opacity: defaultOpacity,
	}
	if style != nil {
		if style.Fill != "" {
			data.Fill = style.Fill
		}
		if style.Stroke != "" {
			data.Stroke = style.Stroke
		}
		if style.Opacity != nil {
			data.Opacity = *style.Opacity
		}
	}

	kind := models.KindShape
	node := models.DiagramNode{
		ID:       uuid.NewString(),
		Kind:     kind,
		Position: clampPoint(position),
		Size:     &s,
	}

	switch shapeKind {
	case string(models.KindText):
		node.Kind = models.KindText
		node.Size = nil // auto-sized
		node.Data = models.NodeData{Text: &models.TextData{Text: def.Label, FontSize: 14}}
	case string(models.KindSticky):
		node.Kind = models.KindSticky
		node.Data = models.NodeData{Sticky: &models.StickyData{Text: "", Color: "#fff3a3"}}
	case string(models.KindGroup):
		node.Kind = models.KindGroup
		node.Data = models.NodeData{Group: &models.GroupData{Label: def.Label}}
	default:
		node.Data = models.NodeData{Shape: &data}
	}

	return node
}

// NewMindRootNode creates the root topic of a mind map at the given
// position.
func NewMindRootNode(position models.Point, text string) models.DiagramNode {
	return models.DiagramNode{
		ID:       uuid.NewString(),
		Kind:     models.KindMindTopic,
		Position: clampPoint(position),
		Data: models.NodeData{
			MindTopic: &models.MindTopicData{Text: text, Color: BranchPalette[0]},
		},
	}
}

// NewMindChildNode creates a child topic under parent. Position is a
// deterministic offset: fixed x shift, tapering vertical fan so three
// or more children do not spread unboundedly. Branch color cycles
// through the palette by sibling index.
func NewMindChildNode(parent *models.DiagramNode, siblingIndex int, text string) models.DiagramNode {
	if siblingIndex < 0 {
		siblingIndex = 0
	}

	taper := float64(siblingIndex-1) * mindChildYTaper
	if taper < 0 {
		taper = 0
	}

	pos := models.Point{
		X: parent.Position.X + mindChildXOffset,
		Y: parent.Position.Y + float64(siblingIndex)*mindChildYStep - taper,
	}

	return models.DiagramNode{
		ID:       uuid.NewString(),
		Kind:     models.KindMindTopic,
		Position: clampPoint(pos),
		Data: models.NodeData{
			MindTopic: &models.MindTopicData{
				Text:     text,
				ParentID: parent.ID,
				Color:    BranchPalette[siblingIndex%len(BranchPalette)],
			},
		},
	}
}
