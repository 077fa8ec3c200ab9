package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/cncdeck/internal/database"
	"github.com/jask/cncdeck/internal/database/repository"
)

type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestReplaceNotifiesSubscribersInOrder(t *testing.T) {
	s := NewMemory()
	var got []string
	s.Subscribe(func(c Change) { got = append(got, "a:"+c.Path) })
	unsub := s.Subscribe(func(c Change) { got = append(got, "b:"+c.Path) })

	require.NoError(t, s.Replace(context.Background(), PathMachineProfile, profile{ID: "1"}))
	assert.Equal(t, []string{"a:" + PathMachineProfile, "b:" + PathMachineProfile}, got)

	unsub()
	unsub()
	require.Equal(t, 1, s.Subscribers())
	require.NoError(t, s.Replace(context.Background(), PathMachineProfile, profile{ID: "2"}))
	assert.Len(t, got, 3)
}

func TestLastWriteWins(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	require.NoError(t, s.Replace(ctx, PathMachineProfile, profile{ID: "1", Name: "one"}))
	require.NoError(t, s.Replace(ctx, PathMachineProfile, profile{ID: "2", Name: "two"}))

	var p profile
	ok, err := s.GetInto(PathMachineProfile, &p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, profile{ID: "2", Name: "two"}, p)

	ok, err = s.GetInto("workspace.unknown", &p)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSubscriberMayWriteDuringNotification(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	calls := 0
	s.Subscribe(func(c Change) {
		calls++
		if c.Path == PathCameraMode {
			require.NoError(t, s.Replace(ctx, PathCameraPosition, "top"))
		}
	})
	require.NoError(t, s.Replace(ctx, PathCameraMode, "pan"))
	assert.Equal(t, 2, calls)
	raw, ok := s.Get(PathCameraPosition)
	require.True(t, ok)
	assert.JSONEq(t, `"top"`, string(raw))
}

func TestOpenPersistsThroughSettingsRepo(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "workspace.db")
	db, err := database.OpenMigrated(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewSettingsRepo(db)
	require.NoError(t, repo.Put(ctx, "broken", "{not json"))

	s, err := Open(ctx, repo)
	require.NoError(t, err)
	_, ok := s.Get("broken")
	require.False(t, ok, "invalid persisted json is skipped")
	require.NoError(t, s.Replace(ctx, PathMachineProfile, profile{ID: "abc", Name: "Router"}))

	reopened, err := Open(ctx, repo)
	require.NoError(t, err)
	var p profile
	ok, err = reopened.GetInto(PathMachineProfile, &p)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Router", p.Name)
}

type failingBackend struct{}

func (failingBackend) Put(context.Context, string, string) error { return errors.New("disk full") }
func (failingBackend) List(context.Context) ([]repository.Setting, error) {
	return nil, nil
}

func TestReplaceStillNotifiesWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, failingBackend{})
	require.NoError(t, err)
	notified := false
	s.Subscribe(func(Change) { notified = true })
	err = s.Replace(ctx, PathCameraMode, "rotate")
	require.ErrorContains(t, err, "disk full")
	require.True(t, notified)
	_, ok := s.Get(PathCameraMode)
	require.True(t, ok)
}
