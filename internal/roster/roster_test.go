package roster

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentscore/rentscore/pkg/config"
	"github.com/rentscore/rentscore/pkg/scoring"
)

func sampleTenants() []scoring.TenantRiskInput {
	return []scoring.TenantRiskInput{
		{RenterID: "r-1", RentAmount: 1500, OnTimePayments: 12},
		{RenterID: "r-2", RentAmount: 2100, LatePayments: 2, AccountStatus: "pending"},
	}
}

func TestLocalStoragePutGet(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte(`{"org_id":"acme"}`)
	if err := s.Put(ctx, "acme/roster.json", data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "acme/roster.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Get = %q, want %q", got, data)
	}

	expectedPath := filepath.Join(dir, "acme", "roster.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStorageGetNotFound(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	_, err := s.Get(context.Background(), "nobody/roster.json")
	if !eris.Is(err, ErrNotFound) {
		t.Errorf("Get missing key: got %v, want ErrNotFound", err)
	}
}

func TestDocumentStoreRevisions(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore(NewLocalStorage(t.TempDir()))

	first := Roster{OrgID: "acme", DocumentID: "doc-1", Tenants: sampleTenants()[:1], UpdatedAt: time.Unix(100, 0).UTC()}
	second := Roster{OrgID: "acme", DocumentID: "doc-2", Tenants: sampleTenants(), UpdatedAt: time.Unix(200, 0).UTC()}
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	current, err := store.Load(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, second, current)

	old, err := store.LoadDocument(ctx, "acme", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, first, old)

	_, err = store.Load(ctx, "globex")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2, 0)
	c.Put(Roster{OrgID: "a"})
	c.Put(Roster{OrgID: "b"})

	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Put(Roster{OrgID: "c"})

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive eviction")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCacheReplaceExisting(t *testing.T) {
	c := NewCache(0, 0)
	c.Put(Roster{OrgID: "a", DocumentID: "1"})
	c.Put(Roster{OrgID: "a", DocumentID: "2"})

	r, ok := c.Get("a")
	if !ok || r.DocumentID != "2" {
		t.Errorf("Get(a) = %+v, %v; want document 2", r, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCacheExpires(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache(4, time.Minute)
	c.now = func() time.Time { return now }
	c.Put(Roster{OrgID: "a"})

	now = now.Add(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a before its ttl")
	}
	now = now.Add(time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to expire after its ttl")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}

	c.Put(Roster{OrgID: "a", DocumentID: "2"})
	if r, ok := c.Get("a"); !ok || r.DocumentID != "2" {
		t.Errorf("Get(a) = %+v, %v; want document 2", r, ok)
	}
}

// countingSource counts loads so cache hits are observable.
type countingSource struct {
	Source
	loads int
}

func (c *countingSource) Load(ctx context.Context, orgID string) (Roster, error) {
	c.loads++
	return c.Source.Load(ctx, orgID)
}

func TestServicePutThenTenants(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{Source: NewDocumentStore(NewLocalStorage(t.TempDir()))}
	svc := NewService(src, NewCache(4, 0))
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	saved, err := svc.Put(ctx, "acme", sampleTenants())
	require.NoError(t, err)
	assert.Len(t, saved.DocumentID, 36)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), saved.UpdatedAt)

	tenants, err := svc.Tenants(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, sampleTenants(), tenants)
	assert.Equal(t, 0, src.loads, "a fresh save should be served from cache")

	cold := NewService(src, NewCache(4, 0))
	_, err = cold.Tenants(ctx, "acme")
	require.NoError(t, err)
	_, err = cold.Tenants(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, src.loads)
}

func TestServiceRevision(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewDocumentStore(NewLocalStorage(t.TempDir())), nil)

	first, err := svc.Put(ctx, "acme", sampleTenants()[:1])
	require.NoError(t, err)
	_, err = svc.Put(ctx, "acme", sampleTenants())
	require.NoError(t, err)

	old, err := svc.Revision(ctx, "acme", first.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, first.DocumentID, old.DocumentID)
	assert.Len(t, old.Tenants, 1)

	_, err = svc.Revision(ctx, "acme", "doc-1")
	assert.True(t, scoring.IsInvalidInput(err), "got %v", err)

	_, err = svc.Revision(ctx, "acme", "5f0c6f1e-2c52-4c1b-9a49-5b6f4f1c2a77")
	assert.True(t, eris.Is(err, ErrNotFound), "got %v", err)

	_, err = NewService(NewPostgresStore(nil), nil).Revision(ctx, "acme", first.DocumentID)
	assert.True(t, eris.Is(err, ErrNoRevisions), "got %v", err)

	_, err = NewService(nil, nil).Revision(ctx, "acme", first.DocumentID)
	assert.True(t, eris.Is(err, ErrNotConfigured), "got %v", err)
}

func TestServiceRejectsInvalidRosters(t *testing.T) {
	svc := NewService(NewDocumentStore(NewLocalStorage(t.TempDir())), nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		org     string
		tenants []scoring.TenantRiskInput
		field   string
	}{
		{"empty org", " ", sampleTenants(), "org_id"},
		{"path traversal", "../etc", sampleTenants(), "org_id"},
		{"no tenants", "acme", nil, "tenants"},
		{"negative rent", "acme", []scoring.TenantRiskInput{{RenterID: "r-1", RentAmount: -5}}, "tenants[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Put(ctx, tt.org, tt.tenants)
			require.Error(t, err)
			assert.True(t, scoring.IsInvalidInput(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestServiceWithoutBackend(t *testing.T) {
	svc, closeFn, err := Open(context.Background(), config.RosterConfig{Backend: config.BackendNone})
	require.NoError(t, err)
	defer closeFn()

	_, err = svc.Tenants(context.Background(), "acme")
	assert.True(t, eris.Is(err, ErrNotConfigured))
}

func TestOpenLocal(t *testing.T) {
	dir := t.TempDir()
	svc, closeFn, err := Open(context.Background(), config.RosterConfig{Backend: config.BackendLocal, LocalPath: dir})
	require.NoError(t, err)
	defer closeFn()

	_, err = svc.Put(context.Background(), "acme", sampleTenants())
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "acme", "roster.json"))
	assert.NoError(t, err)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, _, err := Open(context.Background(), config.RosterConfig{Backend: "ftp"})
	assert.Error(t, err)
}

func TestNewPostgresStore(t *testing.T) {
	// Queries need a live database; construction must not touch it.
	if NewPostgresStore(nil) == nil {
		t.Fatal("NewPostgresStore returned nil")
	}
}
