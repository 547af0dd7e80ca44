package flickr

import "encoding/json"

// Content models Flickr's {"_content": "..."} wrapper
type Content struct {
	Text string `json:"_content"`
}

// envelope is the common response wrapper around every REST method
type envelope struct {
	Stat    string `json:"stat"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// PhotoList is the paginated listing returned by people.getPhotos and
// favorites.getList.
type PhotoList struct {
	Page    int         `json:"page"`
	Pages   int         `json:"pages"`
	PerPage int         `json:"perpage"`
	Total   json.Number `json:"total"`
	Photo   []PhotoStub `json:"photo"`
}

// PhotoStub is a single entry in a photo listing. OwnerName is populated
// only when the listing requested the owner_name extra (favorites).
type PhotoStub struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	OwnerName string `json:"ownername"`
	Secret    string `json:"secret"`
	Server    string `json:"server"`
	Title     string `json:"title"`
	Media     string `json:"media"`
}

// photoListResponse wraps a photo listing
type photoListResponse struct {
	envelope
	Photos PhotoList `json:"photos"`
}

// PhotoInfo is the detailed record returned by photos.getInfo
type PhotoInfo struct {
	ID           string      `json:"id"`
	Secret       string      `json:"secret"`
	DateUploaded string      `json:"dateuploaded"`
	Title        Content     `json:"title"`
	Description  Content     `json:"description"`
	Views        json.Number `json:"views"`
	Media        string      `json:"media"`
	IsFavorite   json.Number `json:"isfavorite"`
	Owner        Owner       `json:"owner"`
	Dates        PhotoDates  `json:"dates"`
	Comments     Content     `json:"comments"`
	Tags         TagList     `json:"tags"`
	URLs         URLList     `json:"urls"`
}

// Owner identifies the photo's owner
type Owner struct {
	NSID     string `json:"nsid"`
	Username string `json:"username"`
	Realname string `json:"realname"`
	Location string `json:"location"`
}

// PhotoDates carries the taken/posted timestamps of a photo
type PhotoDates struct {
	Posted string `json:"posted"`
	Taken  string `json:"taken"`
}

// TagList wraps the tag array
type TagList struct {
	Tag []Tag `json:"tag"`
}

// Tag is a single photo tag; Raw preserves the tag as the user typed it
type Tag struct {
	ID  string `json:"id"`
	Raw string `json:"raw"`
}

// URLList wraps the photo URL array
type URLList struct {
	URL []PhotoURL `json:"url"`
}

// PhotoURL is a typed link attached to a photo ("photopage" is the one
// the archiver cares about for videos)
type PhotoURL struct {
	Type string `json:"type"`
	Text string `json:"_content"`
}

type photoInfoResponse struct {
	envelope
	Photo PhotoInfo `json:"photo"`
}

// Comment is a single photo comment
type Comment struct {
	ID         string `json:"id"`
	Author     string `json:"author"`
	AuthorName string `json:"authorname"`
	DateCreate string `json:"datecreate"`
	Permalink  string `json:"permalink"`
	Text       string `json:"_content"`
}

type commentsResponse struct {
	envelope
	Comments struct {
		Comment []Comment `json:"comment"`
	} `json:"comments"`
}

// FavoritePerson is one entry in a photo's favorited-by list
type FavoritePerson struct {
	NSID     string `json:"nsid"`
	Username string `json:"username"`
	FaveDate string `json:"favedate"`
}

type favoritesResponse struct {
	envelope
	Photo struct {
		Person []FavoritePerson `json:"person"`
	} `json:"photo"`
}

// Exif is a single EXIF triple
type Exif struct {
	Tag   string  `json:"tag"`
	Label string  `json:"label"`
	Raw   Content `json:"raw"`
}

type exifResponse struct {
	envelope
	Photo struct {
		Exif []Exif `json:"exif"`
	} `json:"photo"`
}

// Size is one rendition in a photo's size list. Width and Height arrive as
// either strings or numbers depending on the rendition, hence json.Number.
type Size struct {
	Label  string      `json:"label"`
	Width  json.Number `json:"width"`
	Height json.Number `json:"height"`
	Source string      `json:"source"`
	URL    string      `json:"url"`
	Media  string      `json:"media"`
}

// WidthInt returns the declared width, treating missing or unparsable
// values as 0.
func (s Size) WidthInt() int {
	n, err := s.Width.Int64()
	if err != nil {
		return 0
	}
	return int(n)
}

// SizeList is the result of photos.getSizes
type SizeList struct {
	CanDownload json.Number `json:"candownload"`
	Size        []Size      `json:"size"`
}

type sizesResponse struct {
	envelope
	Sizes SizeList `json:"sizes"`
}

// GeoLocation is the result of photos.geo.getLocation
type GeoLocation struct {
	Latitude  json.Number `json:"latitude"`
	Longitude json.Number `json:"longitude"`
	Accuracy  json.Number `json:"accuracy"`
	Locality  Content     `json:"locality"`
	County    Content     `json:"county"`
	Region    Content     `json:"region"`
	Country   Content     `json:"country"`
}

type geoResponse struct {
	envelope
	Photo struct {
		Location GeoLocation `json:"location"`
	} `json:"photo"`
}

// ContextSet is an album (photoset) a photo belongs to, as returned by
// photos.getAllContexts
type ContextSet struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Primary string `json:"primary"`
	Secret  string `json:"secret"`
	Server  string `json:"server"`
	Farm    int    `json:"farm"`
}

type contextsResponse struct {
	envelope
	Set []ContextSet `json:"set"`
}

// Photoset is an album as returned by photosets.getList
type Photoset struct {
	ID          string      `json:"id"`
	Primary     string      `json:"primary"`
	Secret      string      `json:"secret"`
	Server      string      `json:"server"`
	Farm        int         `json:"farm"`
	Photos      json.Number `json:"photos"`
	Videos      json.Number `json:"videos"`
	CountPhotos json.Number `json:"count_photos"`
	CountVideos json.Number `json:"count_videos"`
	DateCreate  string      `json:"date_create"`
	DateUpdate  string      `json:"date_update"`
	Title       Content     `json:"title"`
	Description Content     `json:"description"`
}

type photosetsResponse struct {
	envelope
	Photosets struct {
		Photoset []Photoset `json:"photoset"`
	} `json:"photosets"`
}

// Person is the result of people.getInfo
type Person struct {
	NSID       string      `json:"nsid"`
	IsPro      json.Number `json:"ispro"`
	IconServer string      `json:"iconserver"`
	IconFarm   json.Number `json:"iconfarm"`
	Username   Content     `json:"username"`
	Realname   Content     `json:"realname"`
	ProfileURL Content     `json:"profileurl"`
	PhotosURL  Content     `json:"photosurl"`
}

type personResponse struct {
	envelope
	Person Person `json:"person"`
}
