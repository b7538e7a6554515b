package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/zone"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	log, _ := test.NewNullLogger()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "zones.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func doc(id string, x float64) zone.JSON {
	return zone.JSON{
		ID: id,
		Geometry: geom.ZoneGeometry{
			Footprint: geom.Footprint{{X: x, Y: 0}, {X: x + 1, Y: 0}, {X: x, Y: 1}},
			Altitude:  2,
			Height:    3,
		},
		Alpha: 0.25,
		Color: "#ff0000",
	}
}

func TestSaveGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	want := doc("a", 0)
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveReplaces(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, doc("a", 0)))
	updated := doc("a", 5)
	updated.Geometry.Footprint = append(updated.Geometry.Footprint, v2.Vec{X: 9, Y: 9})
	require.NoError(t, s.Save(ctx, updated))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveRequiresID(t *testing.T) {
	s := openTemp(t)
	assert.Error(t, s.Save(context.Background(), doc("", 0)))
}

func TestGetMissing(t *testing.T) {
	s := openTemp(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdered(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	empty, err := s.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Save(ctx, doc(id, 0)))
	}
	all, err := s.List(ctx)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, d := range all {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestDelete(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, doc("a", 0)))
	require.NoError(t, s.Delete(ctx, "a"))

	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "a"), ErrNotFound)
}

func TestReopenKeepsDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.db")
	ctx := context.Background()

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, doc("a", 0)))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
}
