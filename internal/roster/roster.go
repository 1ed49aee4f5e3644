// Package roster stores and loads the tenant lists that portfolio
// calculators run against. Rosters are inputs only; no score is persisted.
package roster

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/rentscore/rentscore/pkg/scoring"
)

var (
	// ErrNotFound is returned when an org has no roster.
	ErrNotFound = eris.New("roster not found")
	// ErrNotConfigured is returned when no roster backend is configured.
	ErrNotConfigured = eris.New("roster backend not configured")
	// ErrNoRevisions is returned when the backend keeps only the current roster.
	ErrNoRevisions = eris.New("roster backend keeps no revisions")
)

// Roster is the current tenant list of one org.
type Roster struct {
	OrgID      string                    `json:"org_id"`
	DocumentID string                    `json:"document_id"`
	Tenants    []scoring.TenantRiskInput `json:"tenants"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// Source persists rosters.
type Source interface {
	Load(ctx context.Context, orgID string) (Roster, error)
	Save(ctx context.Context, r Roster) error
}

// RevisionSource is a Source that also keeps every saved revision.
type RevisionSource interface {
	Source
	LoadDocument(ctx context.Context, orgID, documentID string) (Roster, error)
}

// Validate checks the org ID and every tenant.
func (r Roster) Validate() error {
	if err := validateOrgID(r.OrgID); err != nil {
		return err
	}
	if len(r.Tenants) == 0 {
		return scoring.InvalidField("tenants", "must not be empty")
	}
	for i, t := range r.Tenants {
		if err := t.Validate(); err != nil {
			return eris.Wrapf(err, "tenants[%d]", i)
		}
	}
	return nil
}

func validateOrgID(orgID string) error {
	if strings.TrimSpace(orgID) == "" {
		return scoring.InvalidField("org_id", "is required")
	}
	if strings.ContainsAny(orgID, `/\`) || orgID == "." || orgID == ".." {
		return scoring.InvalidField("org_id", "must not contain path separators")
	}
	return nil
}
