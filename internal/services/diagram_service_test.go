package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/internal/access"
	"backend/internal/database"
	"backend/internal/models"
	"backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startBackingStores boots throwaway postgres and redis containers for
// service-level tests that exercise both stores.
func startBackingStores(t *testing.T) (*pgxpool.Pool, *redis.Client) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	pg, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("diagrams_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, database.RunMigrations(pool))

	rc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Terminate(context.Background()) })

	host, err := rc.Host(ctx)
	require.NoError(t, err)
	port, err := rc.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())

	return pool, rdb
}

func newDiagramService(pool *pgxpool.Pool, rdb *redis.Client) (*DiagramService, *repositories.DiagramRepository, *repositories.ShareRepository, *repositories.RedisRepository) {
	diagramRepo := repositories.NewDiagramRepository(pool)
	shareRepo := repositories.NewShareRepository(pool)
	redisRepo := repositories.NewRedisRepository(rdb)
	svc := NewDiagramService(
		diagramRepo,
		repositories.NewSchemaRepository(pool),
		repositories.NewNodeRepository(pool),
		shareRepo,
		redisRepo,
		repositories.NewMutationLogRepository(pool),
	)
	return svc, diagramRepo, shareRepo, redisRepo
}

func TestDiagramServiceResolveAccessServesAnonymousFromCache(t *testing.T) {
	pool, rdb := startBackingStores(t)
	ctx := context.Background()
	svc, diagramRepo, shareRepo, redisRepo := newDiagramService(pool, rdb)

	d := &models.Diagram{
		Name:      "shared",
		OwnerType: models.OwnerUser,
		OwnerID:   uuid.New(),
		Mode:      models.ModeDB,
	}
	d.Prepare()
	require.NoError(t, diagramRepo.Create(ctx, d))

	link := &models.ShareLink{DiagramID: d.ID, Name: "review", Token: "tok-cache", Role: "editor"}
	require.NoError(t, shareRepo.CreateLink(ctx, link))

	anon := ViewerContext{ShareToken: "tok-cache"}

	role, err := svc.ResolveAccess(ctx, d, anon)
	require.NoError(t, err)
	assert.Equal(t, access.RoleEditor, role)

	cached, err := redisRepo.CachedShareRole(ctx, d.ID, "tok-cache")
	require.NoError(t, err)
	assert.Equal(t, "editor", cached)

	// Revoke the row without touching the cache: the next anonymous
	// load is answered from redis, proving the read path is wired.
	require.NoError(t, shareRepo.RevokeLink(ctx, link.ID))

	role, err = svc.ResolveAccess(ctx, d, anon)
	require.NoError(t, err)
	assert.Equal(t, access.RoleEditor, role)

	// Once invalidated, resolution falls through to postgres and sees
	// the revocation.
	require.NoError(t, redisRepo.InvalidateShareRole(ctx, d.ID, "tok-cache"))

	role, err = svc.ResolveAccess(ctx, d, anon)
	require.NoError(t, err)
	assert.Equal(t, access.RoleNone, role)
}

func TestDiagramServiceShareRoleCacheIsScopedToDiagram(t *testing.T) {
	pool, rdb := startBackingStores(t)
	ctx := context.Background()
	svc, diagramRepo, shareRepo, _ := newDiagramService(pool, rdb)

	shared := &models.Diagram{Name: "shared", OwnerType: models.OwnerUser, OwnerID: uuid.New(), Mode: models.ModeDB}
	shared.Prepare()
	require.NoError(t, diagramRepo.Create(ctx, shared))

	other := &models.Diagram{Name: "other", OwnerType: models.OwnerUser, OwnerID: uuid.New(), Mode: models.ModeDB}
	other.Prepare()
	require.NoError(t, diagramRepo.Create(ctx, other))

	link := &models.ShareLink{DiagramID: shared.ID, Name: "review", Token: "tok-scope", Role: "editor"}
	require.NoError(t, shareRepo.CreateLink(ctx, link))

	anon := ViewerContext{ShareToken: "tok-scope"}

	role, err := svc.ResolveAccess(ctx, shared, anon)
	require.NoError(t, err)
	require.Equal(t, access.RoleEditor, role)

	// The token's cached role belongs to the diagram it was minted
	// for; presenting it elsewhere grants nothing.
	role, err = svc.ResolveAccess(ctx, other, anon)
	require.NoError(t, err)
	assert.Equal(t, access.RoleNone, role)
}
