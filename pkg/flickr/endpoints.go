package flickr

import (
	"fmt"
	"net/url"
)

const (
	// DefaultBaseURL is the Flickr REST endpoint
	DefaultBaseURL = "https://api.flickr.com/services/rest/"

	// ListingExtras are the extra fields requested on photo listings
	ListingExtras = "date_upload,date_taken,geo,tags,machine_tags,o_dims,views,media"

	// FavoritesExtras additionally requests the owner's display name
	FavoritesExtras = ListingExtras + ",owner_name"

	// DefaultPageSize is the page size used by the collection walkers
	DefaultPageSize = 100

	// MaxPageSize is Flickr's per_page ceiling
	MaxPageSize = 500

	// BuddyIconPlaceholder is the avatar used when a user has no buddy icon
	BuddyIconPlaceholder = "https://www.flickr.com/images/buddyicon.gif"

	// PeopleURLPrefix builds fallback profile URLs for unresolvable users
	PeopleURLPrefix = "https://www.flickr.com/people/"
)

// REST method names for the operations the archiver uses
const (
	methodGetPhotos      = "flickr.people.getPhotos"
	methodGetPhotoInfo   = "flickr.photos.getInfo"
	methodGetComments    = "flickr.photos.comments.getList"
	methodGetFavorites   = "flickr.photos.getFavorites"
	methodGetExif        = "flickr.photos.getExif"
	methodGetSizes       = "flickr.photos.getSizes"
	methodGetGeo         = "flickr.photos.geo.getLocation"
	methodUserFavorites  = "flickr.favorites.getList"
	methodGetAllContexts = "flickr.photos.getAllContexts"
	methodGetPhotosets   = "flickr.photosets.getList"
	methodGetUserInfo    = "flickr.people.getInfo"
)

// methodParams builds the common REST query parameters for a method call
func methodParams(method string) url.Values {
	params := url.Values{}
	params.Set("method", method)
	params.Set("format", "json")
	params.Set("nojsoncallback", "1")
	return params
}

// BuddyIconURL constructs a user's avatar URL from the icon farm/server
// pair, or the fixed placeholder when the user has no custom icon.
func BuddyIconURL(iconFarm int64, iconServer, nsid string) string {
	if iconServer == "" || iconServer == "0" {
		return BuddyIconPlaceholder
	}
	if iconFarm <= 0 {
		iconFarm = 1
	}
	return fmt.Sprintf("https://farm%d.staticflickr.com/%s/buddyicons/%s.jpg", iconFarm, iconServer, nsid)
}

// FallbackProfileURL constructs the profile URL used when people.getInfo
// fails for a user.
func FallbackProfileURL(userID string) string {
	return PeopleURLPrefix + userID + "/"
}
