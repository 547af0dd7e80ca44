// Package index builds the root-level index files summarizing the
// archived collections.
package index

import (
	"encoding/json"
	"path/filepath"
	"sort"

	"flickrarchiver/pkg/flickr"
	"flickrarchiver/pkg/logger"
	"flickrarchiver/pkg/models"
	"flickrarchiver/pkg/storage"
	"flickrarchiver/pkg/users"
)

const (
	PhotosIndexFile    = "my_photos_index.json"
	FavoritesIndexFile = "favorites_index.json"
	AlbumsIndexFile    = "albums_index.json"
	UsersCacheFile     = "users_cache.json"
)

// AlbumLister fetches the account's album list
type AlbumLister interface {
	GetPhotosets(userID string) ([]flickr.Photoset, error)
}

// Builder scans the archive on disk and writes the index files
type Builder struct {
	lister AlbumLister
	store  *storage.Manager
	cache  *users.Cache
	logger logger.Logger
}

// New creates a Builder
func New(lister AlbumLister, store *storage.Manager, cache *users.Cache, log logger.Logger) *Builder {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Builder{
		lister: lister,
		store:  store,
		cache:  cache,
		logger: log,
	}
}

// Build writes the photo, favorite and album indexes plus the persisted
// user cache. Index membership is driven by readable metadata records,
// not completion markers, so partially archived units still surface.
func (b *Builder) Build(userID string) error {
	b.logger.Info("building archive indexes")

	photos, err := b.buildPhotoIndex()
	if err != nil {
		return err
	}
	if err := b.store.WriteJSON(b.store.RootFile(PhotosIndexFile), photos); err != nil {
		return err
	}

	favorites, err := b.buildFavoriteIndex()
	if err != nil {
		return err
	}
	if err := b.store.WriteJSON(b.store.RootFile(FavoritesIndexFile), favorites); err != nil {
		return err
	}

	albums, err := b.buildAlbumIndex(userID)
	if err != nil {
		return err
	}
	if err := b.store.WriteJSON(b.store.RootFile(AlbumsIndexFile), albums); err != nil {
		return err
	}

	if b.cache != nil && b.cache.Len() > 0 {
		if err := b.store.WriteJSON(b.store.RootFile(UsersCacheFile), b.cache.Snapshot()); err != nil {
			return err
		}
	}

	b.logger.InfoWithFields("indexes written", map[string]interface{}{
		"photos":    len(photos),
		"favorites": len(favorites),
		"albums":    len(albums),
	})
	return nil
}

func (b *Builder) buildPhotoIndex() ([]models.PhotoIndexEntry, error) {
	entries := []models.PhotoIndexEntry{}
	err := b.forEachRecord(b.store.PhotosRoot(), func(record models.PhotoRecord) {
		albums := record.Albums
		if albums == nil {
			albums = []models.Album{}
		}
		entries = append(entries, models.PhotoIndexEntry{
			ID:           record.ID,
			Title:        record.Title,
			DateTaken:    record.DateTaken,
			DateUploaded: record.DateUploaded,
			Tags:         record.Tags,
			Media:        record.Media,
			Views:        record.Views,
			Albums:       albums,
		})
	})
	return entries, err
}

func (b *Builder) buildFavoriteIndex() ([]models.FavoriteIndexEntry, error) {
	entries := []models.FavoriteIndexEntry{}
	err := b.forEachRecord(b.store.FavoritesRoot(), func(record models.PhotoRecord) {
		// The index enriches a blank owner_name with the record's owner
		// username; the persisted record itself is left as written.
		ownerName := record.OwnerName
		if ownerName == "" {
			ownerName = record.Owner.Username
		}
		entries = append(entries, models.FavoriteIndexEntry{
			ID:        record.ID,
			Title:     record.Title,
			OwnerName: ownerName,
			DateTaken: record.DateTaken,
			Tags:      record.Tags,
		})
	})
	return entries, err
}

// forEachRecord invokes fn for every archive unit under collectionRoot
// that holds a readable metadata record, in photo id order. Units with a
// missing or corrupt record are logged and skipped.
func (b *Builder) forEachRecord(collectionRoot string, fn func(record models.PhotoRecord)) error {
	units, err := b.store.ListUnits(collectionRoot)
	if err != nil {
		return err
	}
	sort.Strings(units)

	for _, id := range units {
		var record models.PhotoRecord
		path := filepath.Join(b.store.UnitDir(collectionRoot, id), storage.MetadataFile)
		if err := b.store.ReadJSON(path, &record); err != nil {
			b.logger.WithError(err).WithField("photo_id", id).Warn("skipping unit with unreadable metadata")
			continue
		}
		fn(record)
	}
	return nil
}

func (b *Builder) buildAlbumIndex(userID string) ([]models.AlbumIndexEntry, error) {
	sets, err := b.lister.GetPhotosets(userID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.AlbumIndexEntry, 0, len(sets))
	for _, s := range sets {
		entries = append(entries, models.AlbumIndexEntry{
			ID:          s.ID,
			Title:       s.Title.Text,
			Description: s.Description.Text,
			Primary:     s.Primary,
			Photos:      numberToInt(s.Photos),
			Videos:      numberToInt(s.Videos),
			CountPhotos: numberToInt(s.CountPhotos),
			CountVideos: numberToInt(s.CountVideos),
			DateCreate:  s.DateCreate,
			DateUpdate:  s.DateUpdate,
		})
	}
	return entries, nil
}

func numberToInt(n json.Number) int {
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(v)
}
