package archive

import (
	"io"

	"flickrarchiver/pkg/flickr"
)

// Gateway defines the remote operations the pipeline depends on
type Gateway interface {
	GetPhotoInfo(photoID string) (*flickr.PhotoInfo, error)
	GetSizes(photoID string) (*flickr.SizeList, error)
	GetComments(photoID string) ([]flickr.Comment, flickr.Outcome)
	GetFavorites(photoID string) ([]flickr.FavoritePerson, flickr.Outcome)
	GetExif(photoID string) ([]flickr.Exif, flickr.Outcome)
	GetGeo(photoID string) (*flickr.GeoLocation, flickr.Outcome)
	GetContexts(photoID string) ([]flickr.ContextSet, flickr.Outcome)
	DownloadTo(rawURL string, w io.Writer) (int64, error)
}
