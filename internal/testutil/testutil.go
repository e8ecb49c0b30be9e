// Package testutil provides shared test helpers for setting up databases,
// upload directories, and statute mapping fixtures.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/nyayassist/nyayassist/internal/db"
	"github.com/nyayassist/nyayassist/internal/law"
	"github.com/nyayassist/nyayassist/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *db.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "nyayassist-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	database, err := db.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// TestUploadDir creates a temporary uploads directory with a storage.Provider.
func TestUploadDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// mappingFixture covers the sections the test suites cite.
const mappingFixture = `{
	"IPC_TO_BNS": {
		"302": {"old_title": "Murder", "new_section": "103", "new_title": "Punishment for murder", "changes": "Renumbered"},
		"304A": {"old_title": "Causing death by negligence", "new_section": "106", "new_title": "Causing death by negligence", "changes": "Punishment enhanced"},
		"420": {"old_title": "Cheating", "new_section": "318", "new_title": "Cheating", "changes": "Renumbered"},
		"124A": {"old_title": "Sedition", "new_section": "OMITTED", "new_title": "", "changes": "Sedition repealed"}
	},
	"CRPC_TO_BNSS": {
		"154": {"old_title": "FIR", "new_section": "173", "new_title": "Information in cognizable cases", "changes": "e-FIR permitted"}
	},
	"IEA_TO_BEA": {
		"65B": {"old_title": "Electronic records", "new_section": "63", "new_title": "Admissibility of electronic records", "changes": "Certificate format prescribed"}
	}
}`

// TestEngine writes a small mapping dataset to a temp file and returns an
// engine loaded from it.
func TestEngine(t *testing.T) *law.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "law_mapping_data.json")
	if err := os.WriteFile(path, []byte(mappingFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return law.NewEngine(law.LoadStore(path, logger))
}
