package graph

import (
	"fmt"
	"math"
	"testing"

	"backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// usersOrders builds the canonical two-table schema: users{id PK,
// email} and orders{id PK, user_id}, with orders.user_id -> users.id.
func usersOrders() ([]models.Table, []models.Relationship) {
	users := models.Table{
		ID: uuid.New(), Name: "users", X: 40, Y: 40, Width: 220,
		Columns: []models.Column{
			{ID: 1, Name: "id", Type: "int", Primary: true},
			{ID: 2, Name: "email", Type: "varchar", Nullable: false},
		},
	}
	orders := models.Table{
		ID: uuid.New(), Name: "orders", X: 420, Y: 40, Width: 220,
		Columns: []models.Column{
			{ID: 3, Name: "id", Type: "int", Primary: true},
			{ID: 4, Name: "user_id", Type: "int"},
		},
	}
	rel := models.Relationship{
		ID:           uuid.New(),
		FromColumnID: 4, // orders.user_id
		ToColumnID:   1, // users.id
		Type:         models.OneToMany,
	}
	return []models.Table{users, orders}, []models.Relationship{rel}
}

func TestBuildGraphUsersOrders(t *testing.T) {
	tables, rels := usersOrders()

	g := BuildGraph(tables, rels)

	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)

	assert.Equal(t, tables[0].ID.String(), g.Nodes[0].ID)
	assert.Equal(t, tables[1].ID.String(), g.Nodes[1].ID)
	assert.Equal(t, models.KindTableNode, g.Nodes[0].Kind)

	e := g.Edges[0]
	assert.Equal(t, tables[1].ID.String(), e.Source, "edge starts at the FK side")
	assert.Equal(t, tables[0].ID.String(), e.Target)
	assert.Equal(t, "1:N", e.Label)
	assert.Equal(t, "col-4-out", e.SourceHandle)
	assert.Equal(t, "col-1-in", e.TargetHandle)
}

func TestBuildGraphOneToOneLabel(t *testing.T) {
	tables, rels := usersOrders()
	rels[0].Type = models.OneToOne

	g := BuildGraph(tables, rels)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "1:1", g.Edges[0].Label)
}

func TestBuildGraphIsIdempotent(t *testing.T) {
	tables, rels := usersOrders()

	first := BuildGraph(tables, rels)
	second := BuildGraph(tables, rels)

	assert.Equal(t, first, second, "same snapshot must reproduce the same graph")
}

func TestBuildGraphExcludesDanglingRelationships(t *testing.T) {
	tables, rels := usersOrders()
	rels = append(rels, models.Relationship{
		ID:           uuid.New(),
		FromColumnID: 999, // deleted column
		ToColumnID:   1,
	})

	g, dropped := BuildGraphReport(tables, rels)

	assert.Len(t, g.Edges, 1)
	assert.Equal(t, 1, dropped)
}

func TestBuildGraphCoercesMalformedRecords(t *testing.T) {
	corrupt := models.Table{
		ID:    uuid.New(),
		Name:  "broken",
		X:     math.NaN(),
		Y:     -50,
		Width: math.Inf(1),
		// Columns deliberately nil
	}
	tables, rels := usersOrders()
	tables = append(tables, corrupt)

	g := BuildGraph(tables, rels)

	require.Len(t, g.Nodes, 3)
	n := g.Nodes[2]
	assert.Equal(t, 0.0, n.Position.X)
	assert.Equal(t, 0.0, n.Position.Y)
	assert.Equal(t, MinTableWidth, n.Size.Width)
	assert.Equal(t, MinTableHeight, n.Size.Height)
	assert.NotNil(t, n.Data.TableNode.Table.Columns)
}

func TestBuildGraphMinimumsAndRounding(t *testing.T) {
	tables, _ := usersOrders()
	tables[0].Width = 150.3 // below minimum
	tables[1].Width = 250.3

	g := BuildGraph(tables, nil)

	assert.Equal(t, 200.0, g.Nodes[0].Size.Width)
	assert.Equal(t, 251.0, g.Nodes[1].Size.Width, "rounded up to nearest integer")
}

func TestBuildGraphPreservesInsertionOrder(t *testing.T) {
	var tables []models.Table
	nextCol := int64(1)
	for i := 0; i < 8; i++ {
		tables = append(tables, models.Table{
			ID:   uuid.New(),
			Name: fmt.Sprintf("t%d", i),
			Columns: []models.Column{
				{ID: nextCol, Name: "id", Type: "int", Primary: true},
			},
		})
		nextCol++
	}
	var rels []models.Relationship
	for i := 1; i < 8; i++ {
		rels = append(rels, models.Relationship{
			ID:           uuid.New(),
			FromColumnID: int64(i + 1),
			ToColumnID:   int64(i),
		})
	}

	g := BuildGraph(tables, rels)

	require.Len(t, g.Nodes, 8)
	for i, n := range g.Nodes {
		assert.Equal(t, tables[i].ID.String(), n.ID)
	}
	require.Len(t, g.Edges, 7)
	for i, e := range g.Edges {
		assert.Equal(t, rels[i].ID.String(), e.ID)
	}
}

func TestApplyMutationMoveNode(t *testing.T) {
	tables, rels := usersOrders()

	d, err := ApplyMutation(tables, rels, Mutation{
		Op:       OpMoveNode,
		TableID:  tables[0].ID,
		Position: &models.Point{X: 300, Y: -12},
	})
	require.NoError(t, err)

	require.Len(t, d.MovedTables, 1)
	assert.Equal(t, tables[0].ID, d.MovedTables[0].TableID)
	assert.Equal(t, 300.0, d.MovedTables[0].X)
	assert.Equal(t, 0.0, d.MovedTables[0].Y, "negative coordinates are clamped")
}

func TestApplyMutationRenameTable(t *testing.T) {
	tables, rels := usersOrders()

	d, err := ApplyMutation(tables, rels, Mutation{
		Op:      OpRenameTable,
		TableID: tables[0].ID,
		Name:    "accounts",
	})
	require.NoError(t, err)

	assert.Equal(t, []TableRename{{TableID: tables[0].ID, Name: "accounts"}}, d.RenamedTables)

	_, err = ApplyMutation(tables, rels, Mutation{Op: OpRenameTable, TableID: tables[0].ID})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestApplyMutationDeleteColumnCascades(t *testing.T) {
	tables, rels := usersOrders()

	d, err := ApplyMutation(tables, rels, Mutation{
		Op:       OpDeleteColumn,
		ColumnID: 4, // orders.user_id, referenced by the relationship
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{4}, d.DeletedColumnIDs)
	assert.Equal(t, []uuid.UUID{rels[0].ID}, d.DeletedRelationshipIDs)
}

func TestApplyMutationDeleteTableCascades(t *testing.T) {
	tables, rels := usersOrders()

	d, err := ApplyMutation(tables, rels, Mutation{
		Op:      OpDeleteTable,
		TableID: tables[0].ID, // users owns the relationship target
	})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{tables[0].ID}, d.DeletedTableIDs)
	assert.Equal(t, []int64{1, 2}, d.DeletedColumnIDs)
	assert.Equal(t, []uuid.UUID{rels[0].ID}, d.DeletedRelationshipIDs)
}

func TestApplyMutationUnresolvedTarget(t *testing.T) {
	tables, rels := usersOrders()

	_, err := ApplyMutation(tables, rels, Mutation{
		Op:       OpMoveNode,
		TableID:  uuid.New(),
		Position: &models.Point{X: 1, Y: 1},
	})
	assert.ErrorIs(t, err, ErrUnresolvedReference)

	_, err = ApplyMutation(tables, rels, Mutation{Op: "teleport"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestApplyMutationAddRelationshipValidatesEndpoints(t *testing.T) {
	tables, rels := usersOrders()

	_, err := ApplyMutation(tables, rels, Mutation{
		Op:           OpAddRelationship,
		Relationship: &models.Relationship{FromColumnID: 4, ToColumnID: 999},
	})
	assert.ErrorIs(t, err, ErrUnresolvedReference)

	d, err := ApplyMutation(tables, rels, Mutation{
		Op:           OpAddRelationship,
		Relationship: &models.Relationship{FromColumnID: 4, ToColumnID: 1},
	})
	require.NoError(t, err)
	require.Len(t, d.AddedRelationships, 1)
	assert.Equal(t, models.OneToMany, d.AddedRelationships[0].Type, "default relationship type")
	assert.NotEqual(t, uuid.Nil, d.AddedRelationships[0].ID)
}
