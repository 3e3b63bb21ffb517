package repositories

import (
	"context"
	"testing"
	"time"

	"backend/internal/database"
	"backend/internal/graph"
	"backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres boots a throwaway postgres container and runs the
// migrations against it.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("diagrams_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.RunMigrations(pool))
	return pool
}

func newDiagram(t *testing.T, repo *DiagramRepository, mode models.DiagramMode) *models.Diagram {
	t.Helper()
	d := &models.Diagram{
		Name:      "test diagram",
		OwnerType: models.OwnerUser,
		OwnerID:   uuid.New(),
		Mode:      mode,
	}
	d.Prepare()
	require.NoError(t, repo.Create(context.Background(), d))
	return d
}

func TestDiagramRepositoryLifecycle(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	repo := NewDiagramRepository(pool)

	d := newDiagram(t, repo, models.ModeDB)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, d.Name, got.Name)
	assert.Equal(t, models.ModeDB, got.Mode)
	assert.Equal(t, 1.0, got.Viewport.Zoom)

	got.Name = "renamed"
	got.IsPublic = true
	require.NoError(t, repo.Update(ctx, got))

	listed, err := repo.ListByOwner(ctx, models.OwnerUser, d.OwnerID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "renamed", listed[0].Name)
	assert.True(t, listed[0].IsPublic)

	require.NoError(t, repo.Delete(ctx, d.ID))
	gone, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSchemaRepositoryReplaceAndSnapshot(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	diagramRepo := NewDiagramRepository(pool)
	schemaRepo := NewSchemaRepository(pool)

	d := newDiagram(t, diagramRepo, models.ModeDB)

	// Synthetic parser-style ids; ReplaceSchema remaps them to the real
	// bigserial values.
	users := models.Table{Name: "users", Columns: []models.Column{
		{ID: 1, Name: "id", Type: "BIGINT", Primary: true},
		{ID: 2, Name: "email", Type: "VARCHAR(255)", Unique: true},
	}}
	orders := models.Table{Name: "orders", Columns: []models.Column{
		{ID: 3, Name: "id", Type: "BIGINT", Primary: true},
		{ID: 4, Name: "user_id", Type: "BIGINT"},
	}}
	rel := models.Relationship{FromColumnID: 4, ToColumnID: 1, Type: models.OneToMany}

	require.NoError(t, schemaRepo.ReplaceSchema(ctx, d.ID,
		[]models.Table{users, orders}, []models.Relationship{rel}))

	tables, rels, err := schemaRepo.Snapshot(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	require.Len(t, rels, 1)

	assert.Equal(t, "users", tables[0].Name)
	assert.Equal(t, "orders", tables[1].Name)
	for _, table := range tables {
		for _, col := range table.Columns {
			assert.Positive(t, col.ID)
		}
	}
	assert.Equal(t, tables[1].Columns[1].ID, rels[0].FromColumnID)
	assert.Equal(t, tables[0].Columns[0].ID, rels[0].ToColumnID)
}

func TestSchemaRepositoryApplyDeltaCascades(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	diagramRepo := NewDiagramRepository(pool)
	schemaRepo := NewSchemaRepository(pool)

	d := newDiagram(t, diagramRepo, models.ModeDB)

	require.NoError(t, schemaRepo.ReplaceSchema(ctx, d.ID,
		[]models.Table{
			{Name: "users", Columns: []models.Column{{ID: 1, Name: "id", Type: "BIGINT", Primary: true}}},
			{Name: "orders", Columns: []models.Column{{ID: 2, Name: "user_id", Type: "BIGINT"}}},
		},
		[]models.Relationship{{FromColumnID: 2, ToColumnID: 1, Type: models.OneToMany}}))

	tables, rels, err := schemaRepo.Snapshot(ctx, d.ID)
	require.NoError(t, err)

	// Delete the orders table through the mutation pipeline; the
	// relationship hanging off its column must go with it.
	delta, err := graph.ApplyMutation(tables, rels, graph.Mutation{
		Op:      graph.OpDeleteTable,
		TableID: tables[1].ID,
	})
	require.NoError(t, err)
	require.NoError(t, schemaRepo.ApplyDelta(ctx, d.ID, &delta))

	tables, rels, err = schemaRepo.Snapshot(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, tables, 1)
	assert.Empty(t, rels)
}

func TestSchemaRepositoryApplyDeltaAppendsAdditions(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	diagramRepo := NewDiagramRepository(pool)
	schemaRepo := NewSchemaRepository(pool)

	d := newDiagram(t, diagramRepo, models.ModeDB)

	require.NoError(t, schemaRepo.ReplaceSchema(ctx, d.ID,
		[]models.Table{{Name: "users", Columns: []models.Column{
			{ID: 1, Name: "id", Type: "BIGINT", Primary: true},
			{ID: 2, Name: "email", Type: "VARCHAR(255)", Unique: true},
		}}}, nil))

	tables, rels, err := schemaRepo.Snapshot(ctx, d.ID)
	require.NoError(t, err)

	delta, err := graph.ApplyMutation(tables, rels, graph.Mutation{
		Op:      graph.OpAddColumn,
		TableID: tables[0].ID,
		Column:  &models.Column{Name: "created_at", Type: "TIMESTAMPTZ"},
	})
	require.NoError(t, err)
	require.NoError(t, schemaRepo.ApplyDelta(ctx, d.ID, &delta))

	delta, err = graph.ApplyMutation(tables, rels, graph.Mutation{
		Op:   graph.OpAddTable,
		Name: "audit_log",
	})
	require.NoError(t, err)
	require.NoError(t, schemaRepo.ApplyDelta(ctx, d.ID, &delta))

	tables, _, err = schemaRepo.Snapshot(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	// Additions land after what the import placed, not interleaved
	// with it.
	assert.Equal(t, "users", tables[0].Name)
	assert.Equal(t, "audit_log", tables[1].Name)
	require.Len(t, tables[0].Columns, 3)
	assert.Equal(t, "id", tables[0].Columns[0].Name)
	assert.Equal(t, "email", tables[0].Columns[1].Name)
	assert.Equal(t, "created_at", tables[0].Columns[2].Name)
}

func TestNodeRepositoryReplaceAll(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	diagramRepo := NewDiagramRepository(pool)
	nodeRepo := NewNodeRepository(pool)

	d := newDiagram(t, diagramRepo, models.ModeFlow)

	a := graph.NewFlowNode("rectangle", models.Point{X: 10, Y: 20}, nil, nil)
	a.ID = "a"
	b := graph.NewFlowNode("sticky", models.Point{X: 300, Y: 20}, nil, nil)
	b.ID = "b"
	edges := []models.DiagramEdge{{ID: "e1", Source: "a", Target: "b"}}

	require.NoError(t, nodeRepo.ReplaceAll(ctx, d.ID, []models.DiagramNode{a, b}, edges))

	raws, err := nodeRepo.ListNodes(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "a", raws[0].ID)

	stored, err := nodeRepo.ListEdges(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "e1", stored[0].ID)

	// Replace is wholesale: the old canvas disappears.
	require.NoError(t, nodeRepo.ReplaceAll(ctx, d.ID, []models.DiagramNode{a}, nil))
	raws, err = nodeRepo.ListNodes(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, raws, 1)
}

func TestShareRepositoryLinksAndGrants(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	diagramRepo := NewDiagramRepository(pool)
	shareRepo := NewShareRepository(pool)

	d := newDiagram(t, diagramRepo, models.ModeDB)

	link := &models.ShareLink{DiagramID: d.ID, Name: "review", Token: "tok-123", Role: "viewer"}
	require.NoError(t, shareRepo.CreateLink(ctx, link))

	found, err := shareRepo.GetLinkByToken(ctx, "tok-123")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, models.LinkActive, found.Status(time.Now()))

	require.NoError(t, shareRepo.RevokeLink(ctx, link.ID))
	found, err = shareRepo.GetLinkByToken(ctx, "tok-123")
	require.NoError(t, err)
	assert.Equal(t, models.LinkRevoked, found.Status(time.Now()))

	// Revocation is permanent.
	assert.Error(t, shareRepo.RevokeLink(ctx, link.ID))

	subject := uuid.New()
	grant := &models.AccessGrant{DiagramID: d.ID, SubjectType: models.SubjectUser, SubjectID: subject, Role: "viewer"}
	require.NoError(t, shareRepo.UpsertGrant(ctx, grant))

	grant.Role = "editor"
	require.NoError(t, shareRepo.UpsertGrant(ctx, grant))

	grants, err := shareRepo.ListGrants(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "editor", grants[0].Role)

	require.NoError(t, shareRepo.DeleteGrant(ctx, d.ID, grants[0].ID))
	grants, err = shareRepo.ListGrants(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestMutationLogRepositoryRecordsInOrder(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	diagramRepo := NewDiagramRepository(pool)
	logRepo := NewMutationLogRepository(pool)

	d := newDiagram(t, diagramRepo, models.ModeDB)

	for _, op := range []string{graph.OpAddTable, graph.OpRenameTable, graph.OpMoveNode} {
		require.NoError(t, logRepo.Record(ctx, &MutationLogEntry{
			DiagramID: d.ID,
			Op:        op,
			Payload:   []byte(`{}`),
		}))
	}

	entries, err := logRepo.ListByDiagram(ctx, d.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Newest first.
	assert.Equal(t, graph.OpMoveNode, entries[0].Op)
}
