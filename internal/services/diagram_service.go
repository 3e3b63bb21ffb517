package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/access"
	"backend/internal/graph"
	"backend/internal/models"
	"backend/internal/repositories"

	"github.com/google/uuid"
)

var ErrDiagramNotFound = errors.New("diagram not found")

type DiagramService struct {
	diagramRepo *repositories.DiagramRepository
	schemaRepo  *repositories.SchemaRepository
	nodeRepo    *repositories.NodeRepository
	shareRepo   *repositories.ShareRepository
	redisRepo   *repositories.RedisRepository
	logRepo     *repositories.MutationLogRepository
}

func NewDiagramService(
	diagramRepo *repositories.DiagramRepository,
	schemaRepo *repositories.SchemaRepository,
	nodeRepo *repositories.NodeRepository,
	shareRepo *repositories.ShareRepository,
	redisRepo *repositories.RedisRepository,
	logRepo *repositories.MutationLogRepository,
) *DiagramService {
	return &DiagramService{
		diagramRepo: diagramRepo,
		schemaRepo:  schemaRepo,
		nodeRepo:    nodeRepo,
		shareRepo:   shareRepo,
		redisRepo:   redisRepo,
		logRepo:     logRepo,
	}
}

// ViewerContext identifies the requester: an authenticated user id, a
// share token, or neither (anonymous).
type ViewerContext struct {
	UserID     uuid.UUID
	TeamIDs    []uuid.UUID
	ShareToken string
}

// ResolveAccess computes the viewer's effective role on a diagram. The
// share link, if a token is presented, is loaded and judged here; the
// pure role derivation lives in the access package.
//
// Anonymous token-bearing loads are served from the redis role cache
// when possible, skipping the link and grant queries. Authenticated
// viewers always resolve fully: their grants can outrank the link.
func (s *DiagramService) ResolveAccess(ctx context.Context, diagram *models.Diagram, viewer ViewerContext) (access.Role, error) {
	v := access.Viewer{UserID: viewer.UserID, TeamIDs: viewer.TeamIDs}
	anonymous := viewer.UserID == uuid.Nil

	if viewer.ShareToken != "" {
		if anonymous {
			cached, err := s.redisRepo.CachedShareRole(ctx, diagram.ID, viewer.ShareToken)
			if err == nil && cached != "" {
				if role := access.ParseRole(cached); role != access.RoleNone {
					return role, nil
				}
			}
		}

		link, err := s.shareRepo.GetLinkByToken(ctx, viewer.ShareToken)
		if err != nil {
			return access.RoleNone, err
		}
		if link == nil {
			return access.RoleNone, nil
		}
		v.Link = link
	}

	grants, err := s.shareRepo.ListGrants(ctx, diagram.ID)
	if err != nil {
		return access.RoleNone, err
	}

	role := access.Resolve(diagram, grants, v, time.Now())

	if anonymous && v.Link != nil && role != access.RoleNone {
		// Best-effort: the next anonymous load with this token skips
		// postgres entirely.
		_ = s.redisRepo.CacheShareRole(ctx, diagram.ID, viewer.ShareToken, string(role))
	}
	return role, nil
}

func (s *DiagramService) Get(ctx context.Context, id uuid.UUID, viewer ViewerContext) (*models.Diagram, access.Role, error) {
	diagram, err := s.diagramRepo.GetByID(ctx, id)
	if err != nil {
		return nil, access.RoleNone, err
	}
	if diagram == nil {
		return nil, access.RoleNone, ErrDiagramNotFound
	}

	role, err := s.ResolveAccess(ctx, diagram, viewer)
	if err != nil {
		return nil, access.RoleNone, err
	}
	if role == access.RoleNone {
		return nil, access.RoleNone, access.ErrAccessDenied
	}
	return diagram, role, nil
}

func (s *DiagramService) Create(ctx context.Context, d *models.Diagram) error {
	if d.Name == "" {
		return errors.New("diagram name is required")
	}
	switch d.Mode {
	case models.ModeFlow, models.ModeMind, models.ModeDB:
	default:
		return fmt.Errorf("unknown diagram mode %q", d.Mode)
	}
	return s.diagramRepo.Create(ctx, d)
}

func (s *DiagramService) ListOwned(ctx context.Context, userID uuid.UUID) ([]models.Diagram, error) {
	return s.diagramRepo.ListByOwner(ctx, models.OwnerUser, userID)
}

func (s *DiagramService) Update(ctx context.Context, d *models.Diagram, viewer ViewerContext) error {
	_, role, err := s.Get(ctx, d.ID, viewer)
	if err != nil {
		return err
	}
	if !role.CanMutate() {
		return access.ErrAccessDenied
	}
	return s.diagramRepo.Update(ctx, d)
}

// Delete requires owner or admin; editors may change content but not
// destroy the diagram.
func (s *DiagramService) Delete(ctx context.Context, id uuid.UUID, viewer ViewerContext) error {
	_, role, err := s.Get(ctx, id, viewer)
	if err != nil {
		return err
	}
	if role != access.RoleOwner && role != access.RoleAdmin {
		return access.ErrAccessDenied
	}
	return s.diagramRepo.Delete(ctx, id)
}

// GetGraph loads the diagram and returns the renderable graph for its
// mode: database diagrams derive nodes/edges from the schema, the other
// modes load stored nodes, normalize them and drop dangling edges.
func (s *DiagramService) GetGraph(ctx context.Context, id uuid.UUID, viewer ViewerContext) (*models.Graph, error) {
	diagram, _, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	switch diagram.Mode {
	case models.ModeDB:
		tables, rels, err := s.schemaRepo.Snapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		g := graph.BuildGraph(tables, rels)
		return &g, nil
	default:
		raws, err := s.nodeRepo.ListNodes(ctx, id)
		if err != nil {
			return nil, err
		}
		edges, err := s.nodeRepo.ListEdges(ctx, id)
		if err != nil {
			return nil, err
		}
		nodes := graph.NormalizeNodes(raws)
		g := models.Graph{Nodes: nodes, Edges: graph.FilterEdges(nodes, edges)}
		return &g, nil
	}
}

// ApplyMutation is the data-mutation boundary: the role check happens
// here, not only in the UI. The mutation is translated into a schema
// delta against the current snapshot, persisted transactionally and
// logged. The resulting delta is returned so callers can echo it.
func (s *DiagramService) ApplyMutation(ctx context.Context, id uuid.UUID, viewer ViewerContext, m graph.Mutation) (*graph.Delta, error) {
	diagram, role, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	if !role.CanMutate() {
		return nil, access.ErrAccessDenied
	}
	if diagram.Mode != models.ModeDB {
		return nil, fmt.Errorf("schema mutations require a database-mode diagram")
	}

	tables, rels, err := s.schemaRepo.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	delta, err := graph.ApplyMutation(tables, rels, m)
	if err != nil {
		return nil, err
	}
	if delta.Empty() {
		return &delta, nil
	}

	if err := s.schemaRepo.ApplyDelta(ctx, id, &delta); err != nil {
		return nil, err
	}

	s.recordMutation(ctx, id, viewer, m)
	_ = s.diagramRepo.Touch(ctx, id)

	return &delta, nil
}

// SaveCanvas replaces a flow/mind diagram's content wholesale. Nodes
// are normalized and edges filtered before the write, so corrupt input
// can shrink the canvas but never poison it.
func (s *DiagramService) SaveCanvas(ctx context.Context, id uuid.UUID, viewer ViewerContext, raws []models.RawNode, edges []models.DiagramEdge) (*models.Graph, error) {
	diagram, role, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	if !role.CanMutate() {
		return nil, access.ErrAccessDenied
	}
	if diagram.Mode == models.ModeDB {
		return nil, fmt.Errorf("database-mode diagrams derive their canvas; mutate the schema instead")
	}

	nodes := graph.NormalizeNodes(raws)
	kept := graph.FilterEdges(nodes, edges)

	if err := s.nodeRepo.ReplaceAll(ctx, id, nodes, kept); err != nil {
		return nil, err
	}
	_ = s.diagramRepo.Touch(ctx, id)

	return &models.Graph{Nodes: nodes, Edges: kept}, nil
}

// AddMindTopic creates a topic on a mind diagram. An empty parentID
// makes a root; otherwise the child is fanned out under the parent with
// the next sibling index.
func (s *DiagramService) AddMindTopic(ctx context.Context, id uuid.UUID, viewer ViewerContext, parentID, text string) (*models.DiagramNode, error) {
	nodes, edges, err := s.loadMindCanvas(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	var topic models.DiagramNode
	if parentID == "" {
		topic = graph.NewMindRootNode(models.Point{}, text)
	} else {
		arena := graph.NewArena(nodes)
		parent := arena.Node(parentID)
		if parent == nil {
			return nil, fmt.Errorf("%w: topic %s", graph.ErrUnresolvedReference, parentID)
		}
		topic = graph.NewMindChildNode(parent, len(arena.Children(parentID)), text)
	}

	nodes = append(nodes, topic)
	if err := s.nodeRepo.ReplaceAll(ctx, id, nodes, edges); err != nil {
		return nil, err
	}
	_ = s.diagramRepo.Touch(ctx, id)
	return &topic, nil
}

// MoveMindTopic reparents a topic. Cycles are refused by the arena.
func (s *DiagramService) MoveMindTopic(ctx context.Context, id uuid.UUID, viewer ViewerContext, topicID, parentID string) error {
	nodes, edges, err := s.loadMindCanvas(ctx, id, viewer)
	if err != nil {
		return err
	}

	arena := graph.NewArena(nodes)
	if err := arena.Attach(topicID, parentID); err != nil {
		return err
	}

	if err := s.nodeRepo.ReplaceAll(ctx, id, nodes, edges); err != nil {
		return err
	}
	_ = s.diagramRepo.Touch(ctx, id)
	return nil
}

// DeleteMindTopic removes a topic and its whole subtree, returning the
// removed topic ids.
func (s *DiagramService) DeleteMindTopic(ctx context.Context, id uuid.UUID, viewer ViewerContext, topicID string) ([]string, error) {
	nodes, edges, err := s.loadMindCanvas(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	arena := graph.NewArena(nodes)
	removed := arena.Detach(topicID)
	if removed == nil {
		return nil, fmt.Errorf("%w: topic %s", graph.ErrUnresolvedReference, topicID)
	}

	drop := make(map[string]bool, len(removed))
	for _, r := range removed {
		drop[r] = true
	}
	kept := nodes[:0]
	for _, n := range nodes {
		if !drop[n.ID] {
			kept = append(kept, n)
		}
	}

	if err := s.nodeRepo.ReplaceAll(ctx, id, kept, graph.FilterEdges(kept, edges)); err != nil {
		return nil, err
	}
	_ = s.diagramRepo.Touch(ctx, id)
	return removed, nil
}

func (s *DiagramService) loadMindCanvas(ctx context.Context, id uuid.UUID, viewer ViewerContext) ([]models.DiagramNode, []models.DiagramEdge, error) {
	diagram, role, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, nil, err
	}
	if !role.CanMutate() {
		return nil, nil, access.ErrAccessDenied
	}
	if diagram.Mode != models.ModeMind {
		return nil, nil, fmt.Errorf("topic operations require a mind-mode diagram")
	}

	raws, err := s.nodeRepo.ListNodes(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	edges, err := s.nodeRepo.ListEdges(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return graph.NormalizeNodes(raws), edges, nil
}

func (s *DiagramService) History(ctx context.Context, id uuid.UUID, viewer ViewerContext, limit int) ([]repositories.MutationLogEntry, error) {
	if _, _, err := s.Get(ctx, id, viewer); err != nil {
		return nil, err
	}
	return s.logRepo.ListByDiagram(ctx, id, limit)
}

func (s *DiagramService) recordMutation(ctx context.Context, id uuid.UUID, viewer ViewerContext, m graph.Mutation) {
	payload, err := json.Marshal(m)
	if err != nil {
		return
	}
	entry := repositories.MutationLogEntry{
		DiagramID: id,
		Op:        m.Op,
		Payload:   payload,
	}
	if viewer.UserID != uuid.Nil {
		uid := viewer.UserID
		entry.UserID = &uid
	}
	// Audit logging must not fail the mutation it describes.
	if err := s.logRepo.Record(ctx, &entry); err != nil {
		return
	}
}
