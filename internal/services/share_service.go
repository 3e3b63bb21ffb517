package services

import (
	"context"
	"errors"
	"time"

	"backend/internal/access"
	"backend/internal/models"
	"backend/internal/repositories"
	"backend/internal/utils"

	"github.com/google/uuid"
)

var ErrShareLinkNotFound = errors.New("share link not found")

type ShareService struct {
	shareRepo  *repositories.ShareRepository
	redisRepo  *repositories.RedisRepository
	diagramSvc *DiagramService
}

func NewShareService(shareRepo *repositories.ShareRepository, redisRepo *repositories.RedisRepository, diagramSvc *DiagramService) *ShareService {
	return &ShareService{
		shareRepo:  shareRepo,
		redisRepo:  redisRepo,
		diagramSvc: diagramSvc,
	}
}

// CreateLink mints a share link. Only admins and owners may hand out
// access, and a link can never carry a role above editor.
func (s *ShareService) CreateLink(ctx context.Context, diagramID uuid.UUID, viewer ViewerContext, name string, role access.Role, expiresAt *time.Time) (*models.ShareLink, error) {
	if _, err := s.requireAdmin(ctx, diagramID, viewer); err != nil {
		return nil, err
	}
	if role != access.RoleViewer && role != access.RoleEditor {
		return nil, errors.New("share links may grant viewer or editor only")
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return nil, errors.New("expiry must be in the future")
	}

	token, err := utils.GenerateShareToken()
	if err != nil {
		return nil, err
	}

	link := &models.ShareLink{
		DiagramID: diagramID,
		Name:      name,
		Token:     token,
		Role:      string(role),
		ExpiresAt: expiresAt,
	}
	if err := s.shareRepo.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *ShareService) ListLinks(ctx context.Context, diagramID uuid.UUID, viewer ViewerContext) ([]models.ShareLink, error) {
	if _, err := s.requireAdmin(ctx, diagramID, viewer); err != nil {
		return nil, err
	}
	return s.shareRepo.ListLinks(ctx, diagramID)
}

// RevokeLink marks a link revoked and drops its cached role so the
// revocation takes effect on the next request, not the next cache miss.
func (s *ShareService) RevokeLink(ctx context.Context, diagramID, linkID uuid.UUID, viewer ViewerContext) error {
	if _, err := s.requireAdmin(ctx, diagramID, viewer); err != nil {
		return err
	}

	link, err := s.shareRepo.GetLinkByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link == nil || link.DiagramID != diagramID {
		return ErrShareLinkNotFound
	}

	if err := s.shareRepo.RevokeLink(ctx, linkID); err != nil {
		return err
	}
	_ = s.redisRepo.InvalidateShareRole(ctx, link.DiagramID, link.Token)
	return nil
}

// UpsertGrant assigns a role to a user or team on a diagram.
func (s *ShareService) UpsertGrant(ctx context.Context, diagramID uuid.UUID, viewer ViewerContext, subjectType models.SubjectType, subjectID uuid.UUID, role access.Role) (*models.AccessGrant, error) {
	_, err := s.requireAdmin(ctx, diagramID, viewer)
	if err != nil {
		return nil, err
	}
	if access.ParseRole(string(role)) == access.RoleNone {
		return nil, errors.New("invalid role")
	}

	grant := &models.AccessGrant{
		DiagramID:   diagramID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Role:        string(role),
	}
	if err := s.shareRepo.UpsertGrant(ctx, grant); err != nil {
		return nil, err
	}
	return grant, nil
}

func (s *ShareService) ListGrants(ctx context.Context, diagramID uuid.UUID, viewer ViewerContext) ([]models.AccessGrant, error) {
	if _, err := s.requireAdmin(ctx, diagramID, viewer); err != nil {
		return nil, err
	}
	return s.shareRepo.ListGrants(ctx, diagramID)
}

func (s *ShareService) DeleteGrant(ctx context.Context, diagramID, grantID uuid.UUID, viewer ViewerContext) error {
	if _, err := s.requireAdmin(ctx, diagramID, viewer); err != nil {
		return err
	}
	return s.shareRepo.DeleteGrant(ctx, diagramID, grantID)
}

func (s *ShareService) requireAdmin(ctx context.Context, diagramID uuid.UUID, viewer ViewerContext) (*models.Diagram, error) {
	diagram, role, err := s.diagramSvc.Get(ctx, diagramID, viewer)
	if err != nil {
		return nil, err
	}
	if role != access.RoleOwner && role != access.RoleAdmin {
		return nil, access.ErrAccessDenied
	}
	return diagram, nil
}
