package project

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/pivotgfx/pivot/backend-go/internal/document"
	"github.com/pivotgfx/pivot/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrForbidden = errors.New("forbidden")
)

// Service is an in-memory project registry. Each project owns one scene
// document; sessions build their editor trees from it. Nothing is
// persisted across restarts.
type Service struct {
	mu       sync.RWMutex
	projects map[string]*record
}

type record struct {
	meta Project
	doc  *document.SceneDocument
}

func NewService() *Service {
	return &Service{projects: make(map[string]*record)}
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string) (*Project, error) {
	projectID := typeid.NewProjectID()
	doc := document.NewEmptyDocument(projectID, name)

	now := time.Now().UTC().Format(time.RFC3339)
	meta := Project{
		ID:        projectID,
		Name:      name,
		OwnerID:   ownerID,
		Width:     doc.Scene.Width,
		Height:    doc.Scene.Height,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.projects[projectID] = &record{meta: meta, doc: doc}
	s.mu.Unlock()

	return &meta, nil
}

// Seed installs a pre-built document, e.g. the demo scene at startup. An
// empty ownerID makes the project visible to every user.
func (s *Service) Seed(doc *document.SceneDocument, ownerID string) *Project {
	now := time.Now().UTC().Format(time.RFC3339)
	meta := Project{
		ID:        doc.Project.ID,
		Name:      doc.Project.Name,
		OwnerID:   ownerID,
		Width:     doc.Scene.Width,
		Height:    doc.Scene.Height,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.projects[meta.ID] = &record{meta: meta, doc: doc}
	s.mu.Unlock()

	return &meta
}

func (s *Service) Get(ctx context.Context, projectID string) (*Project, error) {
	s.mu.RLock()
	rec, ok := s.projects[projectID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	meta := rec.meta
	return &meta, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Project, error) {
	s.mu.RLock()
	projects := make([]Project, 0, len(s.projects))
	for _, rec := range s.projects {
		if rec.meta.OwnerID == userID || rec.meta.OwnerID == "" {
			projects = append(projects, rec.meta)
		}
	}
	s.mu.RUnlock()

	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt < projects[j].CreatedAt })
	return projects, nil
}

func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.projects[projectID]
	if !ok {
		return ErrNotFound
	}
	if rec.meta.OwnerID != "" && rec.meta.OwnerID != userID {
		return ErrForbidden
	}

	delete(s.projects, projectID)
	return nil
}

func (s *Service) Rename(ctx context.Context, projectID, userID, name string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.projects[projectID]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.meta.OwnerID != "" && rec.meta.OwnerID != userID {
		return nil, ErrForbidden
	}

	rec.meta.Name = name
	rec.meta.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	rec.doc.Project.Name = name
	meta := rec.meta
	return &meta, nil
}

// SceneDocument implements session.DocumentProvider.
func (s *Service) SceneDocument(projectID string) (*document.SceneDocument, error) {
	s.mu.RLock()
	rec, ok := s.projects[projectID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return rec.doc, nil
}
