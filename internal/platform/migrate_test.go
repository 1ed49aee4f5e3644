package platform

import (
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	names, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations: %v", err)
	}
	var up, down int
	for _, n := range names {
		switch {
		case strings.HasSuffix(n, ".up.sql"):
			up++
		case strings.HasSuffix(n, ".down.sql"):
			down++
		default:
			t.Errorf("unexpected migration file %q", n)
		}
	}
	if up == 0 || up != down {
		t.Errorf("got %d up and %d down migrations, want matching non-zero counts", up, down)
	}
}

func TestRosterMigrationCreatesTable(t *testing.T) {
	data, err := migrationsFS.ReadFile("migrations/000001_create_rosters.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, col := range []string{"org_id", "document_id", "tenants", "updated_at"} {
		if !strings.Contains(string(data), col) {
			t.Errorf("rosters migration missing column %s", col)
		}
	}
}
