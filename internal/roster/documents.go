package roster

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// DocumentStore keeps rosters as JSON documents in a BlobStore. Every save
// writes an immutable {org}/rosters/{document_id}.json and then replaces
// {org}/roster.json, which Load reads.
type DocumentStore struct {
	blobs BlobStore
}

// NewDocumentStore creates a DocumentStore over blobs.
func NewDocumentStore(blobs BlobStore) *DocumentStore {
	return &DocumentStore{blobs: blobs}
}

func currentKey(orgID string) string {
	return orgID + "/roster.json"
}

func documentKey(orgID, documentID string) string {
	return orgID + "/rosters/" + documentID + ".json"
}

// Load returns the org's current roster.
func (s *DocumentStore) Load(ctx context.Context, orgID string) (Roster, error) {
	return s.read(ctx, orgID, currentKey(orgID))
}

// LoadDocument returns a specific saved revision of the org's roster.
func (s *DocumentStore) LoadDocument(ctx context.Context, orgID, documentID string) (Roster, error) {
	return s.read(ctx, orgID, documentKey(orgID, documentID))
}

func (s *DocumentStore) read(ctx context.Context, orgID, key string) (Roster, error) {
	data, err := s.blobs.Get(ctx, key)
	if err != nil {
		return Roster{}, err
	}
	var r Roster
	if err := json.Unmarshal(data, &r); err != nil {
		return Roster{}, eris.Wrapf(err, "decode roster document %s", key)
	}
	if r.OrgID != orgID {
		return Roster{}, eris.Errorf("roster document %s belongs to org %q", key, r.OrgID)
	}
	return r, nil
}

// Save writes the revision document and then the current pointer.
func (s *DocumentStore) Save(ctx context.Context, r Roster) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode roster")
	}
	if err := s.blobs.Put(ctx, documentKey(r.OrgID, r.DocumentID), data); err != nil {
		return err
	}
	return s.blobs.Put(ctx, currentKey(r.OrgID), data)
}

var _ RevisionSource = (*DocumentStore)(nil)
