package migration

import (
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)

	keys := make([]string, 0, len(ups))
	for k := range ups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		assert.True(t, downs[k], "missing down migration for %s", k)
	}
}

func TestStatusSeedCoversEveryContext(t *testing.T) {
	raw, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/000001_status_registry.up.sql")
	require.NoError(t, err)
	body := string(raw)

	for _, label := range []string{
		"'ConnectionRequest'", "'Customer'", "'SupportTicket'",
		"'New'", "'Approved'", "'Denied'", "'Completed'",
		"'Active'", "'Suspended'", "'Closed'",
		"'Open'", "'In Progress'",
	} {
		assert.Contains(t, body, label)
	}
}

func TestRunMigrationsRequiresHandle(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
}
