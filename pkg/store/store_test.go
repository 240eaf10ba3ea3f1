package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescp17/stageCatalog/pkg/catalog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err, "Failed to open in-memory store")
	t.Cleanup(func() { s.Close() })
	return s
}

func candidate(title string, kind catalog.Kind) catalog.Candidate {
	return catalog.Candidate{
		Title:    title,
		Date:     "March 3",
		Time:     "20:15",
		Cover:    strings.ToLower(title) + ".jpg",
		Composer: "Verdi",
		Type:     kind,
	}
}

func TestCreateAssignsIDAndEchoes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := candidate("Aida", catalog.KindOpera)
	e, err := s.Create(ctx, c)
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, c.Event(e.ID), e)

	got, err := s.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestCreateRejectsInvalidCandidate(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Create(context.Background(), catalog.Candidate{Title: "no"})
	require.Error(t, err)
	assert.True(t, catalog.IsValidationError(err))

	events, err := s.List(context.Background(), catalog.FilterAll)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestListFiltersAndKeepsOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var created []catalog.Event
	for _, c := range []catalog.Candidate{
		candidate("Aida", catalog.KindOpera),
		candidate("Giselle", catalog.KindBallet),
		candidate("Otello", catalog.KindOpera),
		candidate("Coppelia", catalog.KindBallet),
	} {
		e, err := s.Create(ctx, c)
		require.NoError(t, err)
		created = append(created, e)
	}

	all, err := s.List(ctx, catalog.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, created, all)

	operas, err := s.List(ctx, catalog.FilterOpera)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Event{created[0], created[2]}, operas)

	ballets, err := s.List(ctx, catalog.FilterBallet)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Event{created[1], created[3]}, ballets)
}

func TestListEmptyCatalog(t *testing.T) {
	s := openTestStore(t)

	events, err := s.List(context.Background(), catalog.FilterAll)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestGetAndDeleteMissing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "nope"), catalog.ErrNotFound)

	e, err := s.Create(ctx, candidate("Nabucco", catalog.KindOpera))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, e.ID))
	_, err = s.Get(ctx, e.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSeed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	db := `{"events": [
		{"id": 1, "title": "Tosca", "date": "July 4", "time": "19:00", "cover": "tosca.jpg", "composer": "Puccini", "type": "opera"},
		{"id": "2", "title": "Swan_Lake", "date": "May 1", "time": "18:30", "cover": "swan.jpg", "composer": "Tchaikovsky", "type": "ballet"},
		{"title": "Carmen", "date": "June 9", "time": "20:00", "cover": "carmen.jpg", "composer": "Bizet", "type": "opera"}
	]}`

	added, err := s.Seed(ctx, strings.NewReader(db))
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = s.Seed(ctx, strings.NewReader(db))
	require.NoError(t, err)
	assert.Equal(t, 1, added, "events with ids are not seeded twice")

	tosca, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Tosca", tosca.Title)

	_, err = s.Seed(ctx, strings.NewReader(`{"events":[{"id":"x","title":"Cats","type":"musical"}]}`))
	assert.Error(t, err)
	_, err = s.Seed(ctx, strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestOpenIsIdempotentOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := Open(path)
	require.NoError(t, err)
	e, err := s.Create(context.Background(), candidate("Rigoletto", catalog.KindOpera))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err, "reopening must not fail on an already migrated schema")
	defer s.Close()

	got, err := s.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}
