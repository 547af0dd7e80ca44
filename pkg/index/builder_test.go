package index

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flickrarchiver/pkg/flickr"
	"flickrarchiver/pkg/logger"
	"flickrarchiver/pkg/models"
	"flickrarchiver/pkg/storage"
	"flickrarchiver/pkg/users"
)

type fakeAlbumLister struct {
	sets []flickr.Photoset
	err  error
}

func (l *fakeAlbumLister) GetPhotosets(userID string) ([]flickr.Photoset, error) {
	return l.sets, l.err
}

func newTestBuilder(t *testing.T, lister AlbumLister, cache *users.Cache) (*Builder, *storage.Manager) {
	t.Helper()
	store, err := storage.NewManager(t.TempDir(), "my_photos", "favorited_photos")
	require.NoError(t, err)
	return New(lister, store, cache, logger.NewTestLogger()), store
}

func writeRecord(t *testing.T, store *storage.Manager, collectionRoot string, record models.PhotoRecord) {
	t.Helper()
	path := filepath.Join(store.UnitDir(collectionRoot, record.ID), storage.MetadataFile)
	require.NoError(t, store.WriteJSON(path, record))
}

func readIndex(t *testing.T, store *storage.Manager, name string, target interface{}) {
	t.Helper()
	data, err := os.ReadFile(store.RootFile(name))
	require.NoError(t, err, "expected index file %s", name)
	require.NoError(t, json.Unmarshal(data, target))
}

func TestBuildPhotoIndex(t *testing.T) {
	builder, store := newTestBuilder(t, &fakeAlbumLister{}, nil)

	writeRecord(t, store, store.PhotosRoot(), models.PhotoRecord{
		ID:        "300",
		Title:     "Third",
		DateTaken: "2021-03-01 10:00:00",
		Tags:      []string{"spring"},
		Media:     "photo",
		Views:     12,
		Albums:    []models.Album{{ID: "72157000", Title: "Seasons"}},
	})
	writeRecord(t, store, store.PhotosRoot(), models.PhotoRecord{
		ID:    "100",
		Title: "First",
		Media: "video",
	})

	require.NoError(t, builder.Build("12345678@N00"))

	var entries []models.PhotoIndexEntry
	readIndex(t, store, PhotosIndexFile, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "100", entries[0].ID, "entries are ordered by photo id")
	assert.Equal(t, "300", entries[1].ID)
	assert.Equal(t, "video", entries[0].Media)
	assert.Equal(t, []models.Album{}, entries[0].Albums, "missing album list serializes as an empty array")
	assert.Equal(t, "Seasons", entries[1].Albums[0].Title)
	assert.Equal(t, 12, entries[1].Views)
}

func TestBuildSkipsUnreadableRecords(t *testing.T) {
	builder, store := newTestBuilder(t, &fakeAlbumLister{}, nil)

	writeRecord(t, store, store.PhotosRoot(), models.PhotoRecord{ID: "100", Title: "Good"})

	brokenDir := store.UnitDir(store.PhotosRoot(), "200")
	require.NoError(t, os.MkdirAll(brokenDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(brokenDir, storage.MetadataFile), []byte("{not json"), 0644))

	// A unit directory without any metadata at all
	require.NoError(t, os.MkdirAll(store.UnitDir(store.PhotosRoot(), "400"), 0755))

	require.NoError(t, builder.Build("12345678@N00"))

	var entries []models.PhotoIndexEntry
	readIndex(t, store, PhotosIndexFile, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "100", entries[0].ID)
}

func TestBuildFavoriteIndexOwnerNameFallback(t *testing.T) {
	builder, store := newTestBuilder(t, &fakeAlbumLister{}, nil)

	writeRecord(t, store, store.FavoritesRoot(), models.PhotoRecord{
		ID:        "100",
		Title:     "Kept",
		OwnerName: "Listing Owner",
	})
	writeRecord(t, store, store.FavoritesRoot(), models.PhotoRecord{
		ID:    "200",
		Title: "Fallback",
		Owner: models.OwnerRef{Username: "record_owner"},
	})

	require.NoError(t, builder.Build("12345678@N00"))

	var entries []models.FavoriteIndexEntry
	readIndex(t, store, FavoritesIndexFile, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "Listing Owner", entries[0].OwnerName)
	assert.Equal(t, "record_owner", entries[1].OwnerName)
}

func TestBuildAlbumIndex(t *testing.T) {
	lister := &fakeAlbumLister{sets: []flickr.Photoset{
		{
			ID:          "72157001",
			Title:       flickr.Content{Text: "Travel"},
			Description: flickr.Content{Text: "Trips"},
			Primary:     "100",
			Photos:      json.Number("40"),
			Videos:      json.Number("2"),
			CountPhotos: json.Number("40"),
			CountVideos: json.Number("2"),
			DateCreate:  "1500000000",
			DateUpdate:  "1600000000",
		},
	}}
	builder, store := newTestBuilder(t, lister, nil)

	require.NoError(t, builder.Build("12345678@N00"))

	var entries []models.AlbumIndexEntry
	readIndex(t, store, AlbumsIndexFile, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "Travel", entries[0].Title)
	assert.Equal(t, "Trips", entries[0].Description)
	assert.Equal(t, 40, entries[0].Photos)
	assert.Equal(t, 2, entries[0].Videos)
	assert.Equal(t, "1600000000", entries[0].DateUpdate)
}

func TestBuildAlbumListingFailureAborts(t *testing.T) {
	builder, store := newTestBuilder(t, &fakeAlbumLister{err: errors.New("boom")}, nil)

	require.Error(t, builder.Build("12345678@N00"))

	_, err := os.Stat(store.RootFile(AlbumsIndexFile))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildWritesUserCacheOnlyWhenPopulated(t *testing.T) {
	t.Run("empty cache", func(t *testing.T) {
		builder, store := newTestBuilder(t, &fakeAlbumLister{}, users.NewCache())
		require.NoError(t, builder.Build("12345678@N00"))

		_, err := os.Stat(store.RootFile(UsersCacheFile))
		assert.True(t, os.IsNotExist(err), "an empty cache must not produce a file")
	})

	t.Run("populated cache", func(t *testing.T) {
		cache := users.NewCache()
		cache.Put("22222222@N00", models.UserInfo{DisplayName: "Friend", Username: "friend"})

		builder, store := newTestBuilder(t, &fakeAlbumLister{}, cache)
		require.NoError(t, builder.Build("12345678@N00"))

		var snapshot map[string]models.UserInfo
		readIndex(t, store, UsersCacheFile, &snapshot)
		require.Len(t, snapshot, 1)
		assert.Equal(t, "Friend", snapshot["22222222@N00"].DisplayName)
	})
}

func TestBuildEmptyArchiveWritesEmptyIndexes(t *testing.T) {
	builder, store := newTestBuilder(t, &fakeAlbumLister{}, nil)

	require.NoError(t, builder.Build("12345678@N00"))

	for _, name := range []string{PhotosIndexFile, FavoritesIndexFile, AlbumsIndexFile} {
		data, err := os.ReadFile(store.RootFile(name))
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(data), "%s must hold an empty array", name)
	}
}
