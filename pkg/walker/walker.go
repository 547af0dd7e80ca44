// Package walker paginates through the account's photo collections and
// hands each listed photo to the archiver.
package walker

import (
	"fmt"

	"flickrarchiver/pkg/flickr"
	"flickrarchiver/pkg/logger"
	"flickrarchiver/pkg/storage"
)

// Lister is the subset of the API gateway the walkers need
type Lister interface {
	GetPhotos(userID string, page, perPage int) (*flickr.PhotoList, error)
	GetUserFavorites(userID string, page, perPage int) (*flickr.PhotoList, error)
}

// PhotoArchiver archives a single listed photo into a collection
type PhotoArchiver interface {
	Archive(photo flickr.PhotoStub, collectionRoot string, isFavorite bool) error
}

// Walker drives the owned-photos and favorites walks
type Walker struct {
	lister   Lister
	archiver PhotoArchiver
	store    *storage.Manager
	pageSize int
	logger   logger.Logger
}

// New creates a Walker. pageSize values outside 1..MaxPageSize fall back
// to the default.
func New(lister Lister, archiver PhotoArchiver, store *storage.Manager, pageSize int, log logger.Logger) *Walker {
	if pageSize <= 0 || pageSize > flickr.MaxPageSize {
		pageSize = flickr.DefaultPageSize
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Walker{
		lister:   lister,
		archiver: archiver,
		store:    store,
		pageSize: pageSize,
		logger:   log,
	}
}

// WalkOwned walks every photo the user owns. Ids whose unit directory
// already exists are skipped up front, directory existence only, so a
// resumed run never spends an API call on them.
func (w *Walker) WalkOwned(userID string) (int, error) {
	existing, err := w.store.ExistingUnits(w.store.PhotosRoot())
	if err != nil {
		return 0, fmt.Errorf("failed to scan existing units: %w", err)
	}

	w.logger.InfoWithFields("walking owned photos", map[string]interface{}{
		"user_id":         userID,
		"already_present": len(existing),
	})

	return w.walk(userID, w.store.PhotosRoot(), false, existing, func(page int) (*flickr.PhotoList, error) {
		return w.lister.GetPhotos(userID, page, w.pageSize)
	})
}

// WalkFavorites walks every photo the user has favorited. Favorited
// photos can be re-listed at any time so the already-archived check runs
// per photo rather than up front.
func (w *Walker) WalkFavorites(userID string) (int, error) {
	w.logger.InfoWithFields("walking favorited photos", map[string]interface{}{
		"user_id": userID,
	})

	return w.walk(userID, w.store.FavoritesRoot(), true, nil, func(page int) (*flickr.PhotoList, error) {
		return w.lister.GetUserFavorites(userID, page, w.pageSize)
	})
}

// walk paginates a listing to exhaustion, archiving each entry in listing
// order. Ids in skip are dropped before reaching the archiver. Any archiver
// error aborts the walk; processed reflects the count of photos handled
// before the failure.
func (w *Walker) walk(userID, collectionRoot string, isFavorite bool, skip map[string]bool, list func(page int) (*flickr.PhotoList, error)) (int, error) {
	processed := 0
	collection := "owned"
	if isFavorite {
		collection = "favorites"
	}

	for page := 1; ; page++ {
		result, err := list(page)
		if err != nil {
			return processed, fmt.Errorf("failed to list page %d: %w", page, err)
		}
		if len(result.Photo) == 0 {
			break
		}

		for _, photo := range result.Photo {
			if skip[photo.ID] {
				w.logger.DebugWithFields("skipping photo, unit directory exists", map[string]interface{}{
					"photo_id": photo.ID,
				})
				continue
			}
			if err := w.archiver.Archive(photo, collectionRoot, isFavorite); err != nil {
				return processed, err
			}
			processed++
		}

		total, _ := result.Total.Int64()
		logger.LogWalkProgress(collection, processed, int(total))

		if result.Pages > 0 && page >= result.Pages {
			break
		}
	}

	w.logger.InfoWithFields("collection walk finished", map[string]interface{}{
		"collection": collection,
		"processed":  processed,
	})
	return processed, nil
}
