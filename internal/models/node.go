package models

import "encoding/json"

// NodeKind tags the variant carried in a node's Data field.
type NodeKind string

const (
	KindShape     NodeKind = "shape"
	KindText      NodeKind = "text"
	KindSticky    NodeKind = "sticky"
	KindGroup     NodeKind = "group"
	KindInk       NodeKind = "ink"
	KindMindTopic NodeKind = "mind-topic"
	KindTableNode NodeKind = "table-node"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NodeData is the kind-specific payload of a diagram node. Exactly one
// variant is set, matching the node's Kind; consumers switch on Kind
// instead of probing optional fields.
type NodeData struct {
	Shape     *ShapeData     `json:"shape,omitempty"`
	Text      *TextData      `json:"text,omitempty"`
	Sticky    *StickyData    `json:"sticky,omitempty"`
	Group     *GroupData     `json:"group,omitempty"`
	Ink       *InkData       `json:"ink,omitempty"`
	MindTopic *MindTopicData `json:"mind_topic,omitempty"`
	TableNode *TableNodeData `json:"table_node,omitempty"`
}

type ShapeData struct {
	Shape   string  `json:"shape"` // registry key: rectangle, ellipse, diamond, ...
	Label   string  `json:"label"`
	Fill    string  `json:"fill"`
	Stroke  string  `json:"stroke"`
	Opacity float64 `json:"opacity"`
}

type TextData struct {
	Text     string  `json:"text"`
	FontSize float64 `json:"font_size"`
}

type StickyData struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

type GroupData struct {
	Label string `json:"label"`
}

type InkData struct {
	Points []Point `json:"points"`
	Stroke string  `json:"stroke"`
	Width  float64 `json:"width"`
}

type MindTopicData struct {
	Text     string `json:"text"`
	ParentID string `json:"parent_id,omitempty"` // empty for the root topic
	Color    string `json:"color"`
}

type TableNodeData struct {
	Table Table `json:"table"`
}

// DiagramNode is one renderable element on the canvas. Position is
// diagram-space top-left. Size is nil for auto-sized kinds (text, ink).
type DiagramNode struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Position Point    `json:"position"`
	Size     *Size    `json:"size,omitempty"`
	Data     NodeData `json:"data"`
}

type DiagramEdge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Label        string `json:"label,omitempty"`
	Style        string `json:"style,omitempty"`
}

// Graph is what the rendering layer consumes. Nodes and Edges preserve
// the insertion order of whatever produced them.
type Graph struct {
	Nodes []DiagramNode `json:"nodes"`
	Edges []DiagramEdge `json:"edges"`
}

// RawNode is a node record as stored (data kept opaque until defaulted
// at load time by the graph package).
type RawNode struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Position Point           `json:"position"`
	Size     *Size           `json:"size,omitempty"`
	Data     json.RawMessage `json:"data"`
}
