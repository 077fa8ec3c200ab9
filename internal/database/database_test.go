package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/cncdeck/internal/database/repository"
)

func openTestDB(t *testing.T) (context.Context, string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx, filepath.Join(t.TempDir(), "nested", "test.db")
}

func TestMigrationsAreRepeatable(t *testing.T) {
	ctx, path := openTestDB(t)
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path), "second run is ErrNoChange and succeeds")

	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&n))
	require.Zero(t, n)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	ctx, path := openTestDB(t)
	db, err := OpenMigrated(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SeedDefaults(ctx, db))
	require.NoError(t, SeedDefaults(ctx, db))

	machines, err := repository.NewMachineRepo(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, machines, len(defaultMachines))
	require.Equal(t, MachineID(defaultMachines[0].name), machines[0].ID)
	require.Equal(t, 300.0, machines[0].Limits.XMax)
}

func TestMacroRepoCRUD(t *testing.T) {
	ctx, path := openTestDB(t)
	db, err := OpenMigrated(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewMacroRepo(db)
	require.NoError(t, repo.Insert(ctx, repository.Macro{ID: "m1", Name: "Home", Content: "$H"}))
	require.NoError(t, repo.Insert(ctx, repository.Macro{ID: "m2", Name: "air assist", Content: "M8"}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "air assist", list[0].Name, "names sort case-insensitively")

	require.NoError(t, repo.Update(ctx, repository.Macro{ID: "m1", Name: "Home all", Content: "$H\nG0 X0 Y0"}))
	got, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, "Home all", got.Name)

	require.ErrorIs(t, repo.Update(ctx, repository.Macro{ID: "nope", Name: "x", Content: "y"}), repository.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "m1"))
	require.ErrorIs(t, repo.Delete(ctx, "m1"), repository.ErrNotFound)
	_, err = repo.Get(ctx, "m1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSettingsRepo(t *testing.T) {
	ctx, path := openTestDB(t)
	db, err := OpenMigrated(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewSettingsRepo(db)
	got, err := repo.Get(ctx, "workspace.machineProfile")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, repo.Put(ctx, "workspace.machineProfile", `{"id":"a"}`))
	require.NoError(t, repo.Put(ctx, "workspace.machineProfile", `{"id":"b"}`))
	got, err = repo.Get(ctx, "workspace.machineProfile")
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"b"}`, got.Value)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, "workspace.machineProfile"))
	all, err = repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx, path := openTestDB(t)
	db, err := OpenMigrated(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	boom := errors.New("boom")
	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		repo := repository.NewMachineRepo(tx)
		require.NoError(t, repo.Upsert(ctx, repository.Machine{ID: "x", Name: "Scratch"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	machines, err := repository.NewMachineRepo(db).List(ctx)
	require.NoError(t, err)
	require.Empty(t, machines)

	require.NoError(t, WithTx(ctx, db, func(tx *sql.Tx) error {
		return repository.NewMachineRepo(tx).Upsert(ctx, repository.Machine{ID: "x", Name: "Scratch"})
	}))
	machines, err = repository.NewMachineRepo(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, machines, 1)
}
