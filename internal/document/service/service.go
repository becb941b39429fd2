package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/gogotex/nodedoc/internal/document"
	"github.com/gogotex/nodedoc/internal/document/repository"
	"github.com/gogotex/nodedoc/internal/node"
	"github.com/gogotex/nodedoc/pkg/logger"
	"github.com/gogotex/nodedoc/pkg/metrics"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("document already exists")
	ErrEmptyKey = errors.New("node key is empty")
)

// Service defines the document and node operations used by the handler layer.
type Service interface {
	Create(ctx context.Context, id string) (*document.Document, error)
	Get(ctx context.Context, id string) (*document.Document, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	SetNode(ctx context.Context, id, key string, flag bool) (created bool, err error)
	RemoveNode(ctx context.Context, id, key string) (bool, error)
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return New(repository.NewMemoryRepo())
}

// New returns a Service over any repository backend.
func New(repo repository.Repository) Service {
	return &docService{repo: repo}
}

type docService struct {
	// serializes load-modify-save so one document is never mutated concurrently
	mu   sync.Mutex
	repo repository.Repository
}

func (s *docService) Create(ctx context.Context, id string) (*document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		var err error
		if id, err = gonanoid.New(); err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}
	} else if _, err := s.repo.Get(ctx, id); err == nil {
		return nil, ErrExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	d := document.New(id, s.repo).WithContext(ctx)
	if err := d.Save(); err != nil {
		return nil, err
	}
	logger.Debugf("document %s created", id)
	return d, nil
}

func (s *docService) Get(ctx context.Context, id string) (*document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, id)
}

func (s *docService) load(ctx context.Context, id string) (*document.Document, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d := document.New(id, s.repo).WithContext(ctx)
	if err := d.Load(node.BSONRecord(rec)); err != nil {
		logger.Errorf("document %s: stored record unreadable: %v", id, err)
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	return d, nil
}

func (s *docService) List(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}

func (s *docService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	logger.Debugf("document %s deleted", id)
	return nil
}

// SetNode adds the node when absent and otherwise updates its flag; either way
// the document is saved. It reports whether the node was created.
func (s *docService) SetNode(ctx context.Context, id, key string, flag bool) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	if n, ok := d.Node(key); ok {
		if err := n.SetFlag(flag, true); err != nil {
			return false, err
		}
		metrics.NodeMutations.WithLabelValues("set_flag").Inc()
		logger.Debugf("document %s: node %s flag=%v", id, n.Key(), flag)
		return false, nil
	}
	n := node.New(d, key, flag)
	if _, err := d.AddNode(n, true); err != nil {
		return true, err
	}
	metrics.NodeMutations.WithLabelValues("add").Inc()
	logger.Debugf("document %s: node %s added flag=%v", id, n.Key(), flag)
	return true, nil
}

// RemoveNode deletes the node and saves the document, reporting whether the
// node existed.
func (s *docService) RemoveNode(ctx context.Context, id, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	removed, err := d.RemoveNode(node.New(nil, key, false), true)
	if err != nil {
		return removed, err
	}
	if removed {
		metrics.NodeMutations.WithLabelValues("remove").Inc()
		logger.Debugf("document %s: node %s removed", id, key)
	}
	return removed, nil
}
