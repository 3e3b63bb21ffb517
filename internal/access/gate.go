// Package access resolves what a viewer may do to a diagram. Resolution
// is a pure function of the diagram's visibility, the viewer's grant
// and the share link they arrived through; nothing here touches storage.
package access

import (
	"errors"
	"time"

	"backend/internal/models"

	"github.com/google/uuid"
)

// ErrAccessDenied is returned by every mutation entry point when the
// resolved role may not mutate. Authorization failures are always
// surfaced, never silently downgraded.
var ErrAccessDenied = errors.New("access denied")

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
	RoleNone   Role = "none"
)

// roleRank orders roles for comparisons; higher wins.
var roleRank = map[Role]int{
	RoleNone:   0,
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// ParseRole maps a stored role string onto a Role, treating anything
// unknown as none.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleEditor, RoleViewer:
		return Role(s)
	}
	return RoleNone
}

// CanMutate reports whether the role allows structural mutation. This
// is checked at the data-mutation boundary, not only in the UI.
func (r Role) CanMutate() bool {
	return r == RoleEditor || r == RoleAdmin || r == RoleOwner
}

// Viewer describes who is asking. UserID is Nil for anonymous
// requesters. Link is non-nil when the request arrived through a share
// link.
type Viewer struct {
	UserID  uuid.UUID
	TeamIDs []uuid.UUID
	Link    *models.ShareLink
}

// Resolve computes the viewer's effective role on a diagram.
//
// A share link is the capability boundary for the request that carries
// it: if its status is not active the result is none, even when the
// viewer also holds a grant. Otherwise the best of owner / grant /
// link-role / public-viewer applies.
func Resolve(diagram *models.Diagram, grants []models.AccessGrant, v Viewer, now time.Time) Role {
	if diagram == nil {
		return RoleNone
	}

	if v.Link != nil {
		if v.Link.DiagramID != diagram.ID || v.Link.Status(now) != models.LinkActive {
			return RoleNone
		}
	}

	best := RoleNone

	if v.UserID != uuid.Nil && isOwner(diagram, v) {
		best = RoleOwner
	}

	if best != RoleOwner {
		for _, g := range grants {
			if g.DiagramID != diagram.ID {
				continue
			}
			if !grantMatches(&g, v) {
				continue
			}
			if r := ParseRole(g.Role); roleRank[r] > roleRank[best] {
				best = r
			}
		}
	}

	if v.Link != nil {
		if r := ParseRole(v.Link.Role); roleRank[r] > roleRank[best] {
			best = r
		}
	}

	if diagram.IsPublic && roleRank[best] < roleRank[RoleViewer] {
		best = RoleViewer
	}

	return best
}

func isOwner(d *models.Diagram, v Viewer) bool {
	switch d.OwnerType {
	case models.OwnerUser:
		return d.OwnerID == v.UserID
	case models.OwnerTeam:
		for _, t := range v.TeamIDs {
			if t == d.OwnerID {
				return true
			}
		}
	}
	return false
}

func grantMatches(g *models.AccessGrant, v Viewer) bool {
	switch g.SubjectType {
	case models.SubjectUser:
		return v.UserID != uuid.Nil && g.SubjectID == v.UserID
	case models.SubjectTeam:
		for _, t := range v.TeamIDs {
			if t == g.SubjectID {
				return true
			}
		}
	}
	return false
}
