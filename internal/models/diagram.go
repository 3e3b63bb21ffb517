package models

import (
	"time"

	"github.com/google/uuid"
)

// DiagramMode selects the node semantics of a diagram. Flow and mind
// diagrams store free-form nodes/edges; database diagrams store
// tables/relationships and derive their graph.
type DiagramMode string

const (
	ModeFlow DiagramMode = "flow"
	ModeMind DiagramMode = "mind"
	ModeDB   DiagramMode = "db"
)

type OwnerType string

const (
	OwnerUser OwnerType = "user"
	OwnerTeam OwnerType = "team"
)

// Viewport is the persisted pan/zoom state of the canvas.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

type Diagram struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	OwnerType OwnerType   `json:"owner_type"` // 'user' or 'team'
	OwnerID   uuid.UUID   `json:"owner_id"`
	IsPublic  bool        `json:"is_public"`
	Mode      DiagramMode `json:"mode"`
	Viewport  Viewport    `json:"viewport"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (d *Diagram) Prepare() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.OwnerType == "" {
		d.OwnerType = OwnerUser
	}
	if d.Mode == "" {
		d.Mode = ModeDB
	}
	if d.Viewport.Zoom == 0 {
		d.Viewport.Zoom = 1
	}
}
