package roster

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rentscore/rentscore/internal/platform"
	"github.com/rentscore/rentscore/pkg/config"
	"github.com/rentscore/rentscore/pkg/scoring"
)

// Service reads rosters through an LRU cache and writes them through to the
// configured source.
type Service struct {
	source Source
	cache  *Cache
	now    func() time.Time
}

// NewService creates a Service. A nil source yields ErrNotConfigured on use.
func NewService(source Source, cache *Cache) *Service {
	if cache == nil {
		cache = NewCache(0, 0)
	}
	return &Service{source: source, cache: cache, now: time.Now}
}

// Get returns the org's roster.
func (s *Service) Get(ctx context.Context, orgID string) (Roster, error) {
	if err := validateOrgID(orgID); err != nil {
		return Roster{}, err
	}
	if s.source == nil {
		return Roster{}, ErrNotConfigured
	}
	if r, ok := s.cache.Get(orgID); ok {
		return r, nil
	}
	r, err := s.source.Load(ctx, orgID)
	if err != nil {
		return Roster{}, err
	}
	s.cache.Put(r)
	return r, nil
}

// Tenants returns the tenants of the org's roster.
func (s *Service) Tenants(ctx context.Context, orgID string) ([]scoring.TenantRiskInput, error) {
	r, err := s.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return r.Tenants, nil
}

// Revision returns a saved revision of the org's roster by document ID.
func (s *Service) Revision(ctx context.Context, orgID, documentID string) (Roster, error) {
	if err := validateOrgID(orgID); err != nil {
		return Roster{}, err
	}
	if _, err := uuid.Parse(documentID); err != nil {
		return Roster{}, scoring.InvalidField("document_id", "must be a UUID")
	}
	if s.source == nil {
		return Roster{}, ErrNotConfigured
	}
	revs, ok := s.source.(RevisionSource)
	if !ok {
		return Roster{}, ErrNoRevisions
	}
	return revs.LoadDocument(ctx, orgID, documentID)
}

// Put validates and stores a new revision of the org's roster.
func (s *Service) Put(ctx context.Context, orgID string, tenants []scoring.TenantRiskInput) (Roster, error) {
	r := Roster{
		OrgID:      orgID,
		DocumentID: uuid.NewString(),
		Tenants:    tenants,
		UpdatedAt:  s.now().UTC(),
	}
	if err := r.Validate(); err != nil {
		return Roster{}, err
	}
	if s.source == nil {
		return Roster{}, ErrNotConfigured
	}
	if err := s.source.Save(ctx, r); err != nil {
		return Roster{}, err
	}
	s.cache.Put(r)
	zap.L().Info("roster saved",
		zap.String("org_id", orgID),
		zap.String("document_id", r.DocumentID),
		zap.Int("tenants", len(tenants)),
	)
	return r, nil
}

// Open builds the Service for the configured backend. The returned close
// function releases backend resources and is never nil.
func Open(ctx context.Context, cfg config.RosterConfig) (*Service, func() error, error) {
	noop := func() error { return nil }
	cache := NewCache(cfg.CacheSize, time.Duration(cfg.CacheTTLSecs)*time.Second)

	switch cfg.Backend {
	case "", config.BackendNone:
		return NewService(nil, cache), noop, nil
	case config.BackendLocal:
		return NewService(NewDocumentStore(NewLocalStorage(cfg.LocalPath)), cache), noop, nil
	case config.BackendS3:
		blobs, err := NewS3Storage(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return NewService(NewDocumentStore(blobs), cache), noop, nil
	case config.BackendGCS:
		blobs, err := NewGCSStorage(ctx, cfg.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return NewService(NewDocumentStore(blobs), cache), blobs.Close, nil
	case config.BackendPostgres:
		db, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := platform.AutoMigrate(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return NewService(NewPostgresStore(db), cache), db.Close, nil
	default:
		return nil, nil, eris.Errorf("unknown roster backend %q", cfg.Backend)
	}
}
