package db

import "testing"

func TestOpenMemory(t *testing.T) {
	database, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	// Both catalog tables must exist after migration.
	for _, table := range []string{"domain_documents", "project_conventions"} {
		var count int
		if err := database.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
			t.Errorf("querying %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("expected empty %s, got %d rows", table, count)
		}
	}
}

func TestVersionUniqueness(t *testing.T) {
	database, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	insert := `INSERT INTO domain_documents (identifier, project, service, domain, version, payload)
	           VALUES (?, ?, ?, ?, ?, '{}')`

	if _, err := database.Exec(insert, "id-1", "P", "S", "User", 1); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := database.Exec(insert, "id-2", "P", "S", "User", 1); err == nil {
		t.Error("expected unique constraint violation for duplicate (key, version)")
	}
}
