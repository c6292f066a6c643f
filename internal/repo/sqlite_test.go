package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) *SQLiteRepositories {
	t.Helper()
	r, err := OpenSQLite(filepath.Join(t.TempDir(), "entities.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestOpenSQLite_BootstrapsSchema(t *testing.T) {
	r := newTestRepos(t)

	// Every table exists and reads as empty
	ctx := context.Background()
	accounts, err := r.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	software, err := r.Software(ctx)
	require.NoError(t, err)
	assert.Empty(t, software)

	plans, err := r.UpgradePlans(ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestSQLiteRepositories_FetchRoundTrip(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	_, err := r.db.Exec(`INSERT INTO software(id, name, version, status) VALUES
		('s2', 'Beta', '2.0', 'Testing'),
		('s1', 'Release', '1.0', 'Installed')`)
	require.NoError(t, err)

	_, err = r.db.Exec(`INSERT INTO clients(id, name, version, status, active) VALUES
		('c1', 'Dispatcher', '3.2', 'Installed', 1)`)
	require.NoError(t, err)

	// Records come back fully populated, in id order
	software, err := r.Software(ctx)
	require.NoError(t, err)
	require.Len(t, software, 2)
	assert.Equal(t, Software{ID: "s1", Name: "Release", Version: "1.0", Status: "Installed"}, software[0])
	assert.Equal(t, "s2", software[1].ID)

	clients, err := r.Clients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.True(t, clients[0].Active)
}

func TestSQLiteRepositories_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.db")

	r, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = r.db.Exec(`INSERT INTO radios(id, name, serial_number, status, fire_zone)
		VALUES ('r1', 'TRX-9', 'SN-100', 'Active', 'Zone A')`)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = r2.Close() }()

	radios, err := r2.Radios(context.Background())
	require.NoError(t, err)
	require.Len(t, radios, 1)
	assert.Equal(t, "Zone A", radios[0].FireZone)
}
