package access

import (
	"testing"
	"time"

	"backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func privateDiagram() *models.Diagram {
	return &models.Diagram{
		ID:        uuid.New(),
		Name:      "schema",
		OwnerType: models.OwnerUser,
		OwnerID:   uuid.New(),
	}
}

func link(d *models.Diagram, role string, expiresAt, revokedAt *time.Time) *models.ShareLink {
	return &models.ShareLink{
		ID:        uuid.New(),
		DiagramID: d.ID,
		Role:      role,
		ExpiresAt: expiresAt,
		RevokedAt: revokedAt,
	}
}

func TestOwnerIsImplicitAdmin(t *testing.T) {
	d := privateDiagram()

	role := Resolve(d, nil, Viewer{UserID: d.OwnerID}, now)

	assert.Equal(t, RoleOwner, role)
	assert.True(t, role.CanMutate())
}

func TestTeamOwnership(t *testing.T) {
	team := uuid.New()
	d := privateDiagram()
	d.OwnerType = models.OwnerTeam
	d.OwnerID = team

	assert.Equal(t, RoleOwner, Resolve(d, nil, Viewer{UserID: uuid.New(), TeamIDs: []uuid.UUID{team}}, now))
	assert.Equal(t, RoleNone, Resolve(d, nil, Viewer{UserID: uuid.New()}, now))
}

func TestGrantRoles(t *testing.T) {
	d := privateDiagram()
	user := uuid.New()

	for _, tc := range []struct {
		granted string
		want    Role
		mutate  bool
	}{
		{"viewer", RoleViewer, false},
		{"editor", RoleEditor, true},
		{"admin", RoleAdmin, true},
		{"sorcerer", RoleNone, false},
	} {
		grants := []models.AccessGrant{{
			DiagramID:   d.ID,
			SubjectType: models.SubjectUser,
			SubjectID:   user,
			Role:        tc.granted,
		}}
		role := Resolve(d, grants, Viewer{UserID: user}, now)
		assert.Equal(t, tc.want, role, "granted %q", tc.granted)
		assert.Equal(t, tc.mutate, role.CanMutate())
	}
}

func TestTeamGrant(t *testing.T) {
	d := privateDiagram()
	team := uuid.New()
	grants := []models.AccessGrant{{
		DiagramID:   d.ID,
		SubjectType: models.SubjectTeam,
		SubjectID:   team,
		Role:        "editor",
	}}

	role := Resolve(d, grants, Viewer{UserID: uuid.New(), TeamIDs: []uuid.UUID{team}}, now)
	assert.Equal(t, RoleEditor, role)
}

func TestPublicDiagramGivesAnonymousViewer(t *testing.T) {
	d := privateDiagram()
	d.IsPublic = true

	role := Resolve(d, nil, Viewer{}, now)

	assert.Equal(t, RoleViewer, role)
	assert.False(t, role.CanMutate())
}

func TestPrivateDiagramGivesAnonymousNone(t *testing.T) {
	assert.Equal(t, RoleNone, Resolve(privateDiagram(), nil, Viewer{}, now))
}

func TestActiveLinkGrantsItsRole(t *testing.T) {
	d := privateDiagram()
	future := now.Add(time.Hour)

	assert.Equal(t, RoleViewer, Resolve(d, nil, Viewer{Link: link(d, "viewer", &future, nil)}, now))
	assert.Equal(t, RoleEditor, Resolve(d, nil, Viewer{Link: link(d, "editor", nil, nil)}, now))
}

func TestRevokedLinkBlocksEvenAdminGrant(t *testing.T) {
	d := privateDiagram()
	user := uuid.New()
	revoked := now.Add(-time.Hour)
	grants := []models.AccessGrant{{
		DiagramID:   d.ID,
		SubjectType: models.SubjectUser,
		SubjectID:   user,
		Role:        "admin",
	}}

	// The link is the capability boundary for the request that carries
	// it: a dead link blocks everything, including read.
	role := Resolve(d, grants, Viewer{UserID: user, Link: link(d, "editor", nil, &revoked)}, now)
	assert.Equal(t, RoleNone, role)
}

func TestExpiredLinkBlocksAccess(t *testing.T) {
	d := privateDiagram()
	past := now.Add(-time.Minute)

	role := Resolve(d, nil, Viewer{Link: link(d, "viewer", &past, nil)}, now)
	assert.Equal(t, RoleNone, role)
}

func TestLinkForAnotherDiagramBlocksAccess(t *testing.T) {
	d := privateDiagram()
	other := privateDiagram()

	role := Resolve(d, nil, Viewer{Link: link(other, "editor", nil, nil)}, now)
	assert.Equal(t, RoleNone, role)
}

func TestGrantBeatsPublicViewer(t *testing.T) {
	d := privateDiagram()
	d.IsPublic = true
	user := uuid.New()
	grants := []models.AccessGrant{{
		DiagramID:   d.ID,
		SubjectType: models.SubjectUser,
		SubjectID:   user,
		Role:        "editor",
	}}

	assert.Equal(t, RoleEditor, Resolve(d, grants, Viewer{UserID: user}, now))
}

func TestNilDiagram(t *testing.T) {
	assert.Equal(t, RoleNone, Resolve(nil, nil, Viewer{UserID: uuid.New()}, now))
}
