package graph

import "backend/internal/models"

// ShapeDefault is the catalog entry for one node kind or shape.
type ShapeDefault struct {
	Width  float64
	Height float64
	Label  string
	// AutoHeight marks kinds whose height follows their content; the
	// stored Height is only the initial value.
	AutoHeight bool
}

// Geometry floors enforced on every created or loaded node.
const (
	MinNodeWidth  = 80.0
	MinNodeHeight = 40.0

	// Table nodes render a header plus column rows and need more room.
	MinTableWidth  = 200.0
	MinTableHeight = 120.0
)

var genericShape = ShapeDefault{Width: 160, Height: 90, Label: "Shape"}

// shapeDefaults catalogs the flow-mode shapes plus the non-shape kinds.
// Lookups never fail: unknown keys fall back to the generic shape.
var shapeDefaults = map[string]ShapeDefault{
	"rectangle":     {Width: 160, Height: 90, Label: "Rectangle"},
	"rounded":       {Width: 160, Height: 90, Label: "Rounded"},
	"ellipse":       {Width: 140, Height: 100, Label: "Ellipse"},
	"diamond":       {Width: 140, Height: 140, Label: "Decision"},
	"parallelogram": {Width: 180, Height: 80, Label: "Input"},
	"cylinder":      {Width: 120, Height: 140, Label: "Database"},

	string(models.KindText):   {Width: 140, Height: 40, Label: "Text", AutoHeight: true},
	string(models.KindSticky): {Width: 110, Height: 110, Label: "Note"},
	string(models.KindGroup):  {Width: 320, Height: 240, Label: "Group"},
}

// LookupShape returns the default geometry for a shape key or node
// kind, falling back to the generic 160x90 shape for unknown keys.
func LookupShape(key string) ShapeDefault {
	if d, ok := shapeDefaults[key]; ok {
		return d
	}
	return genericShape
}

// BranchPalette is the fixed mind-map branch color cycle. Child color is
// siblingIndex mod len(BranchPalette), so colors are reproducible from
// input alone and need not be stored.
var BranchPalette = [6]string{
	"#4f6bed", "#e8684a", "#2fb380", "#f2b02e", "#9a64d6", "#3aa7c4",
}
