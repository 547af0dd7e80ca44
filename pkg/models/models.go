package models

// VideoDownloadNote is the fixed advisory attached to video records; the
// API exposes no downloadable video source.
const VideoDownloadNote = "Videos must be downloaded manually from Flickr"

// PhotoRecord is the normalized per-photo metadata record persisted as
// metadata.json inside the photo's archive unit. Once the completion
// marker exists the record is immutable.
type PhotoRecord struct {
	ID                    string     `json:"id"`
	Title                 string     `json:"title"`
	Description           string     `json:"description"`
	DateUploaded          string     `json:"date_uploaded"`
	DateUploadedFormatted string     `json:"date_uploaded_formatted,omitempty"`
	DateTaken             string     `json:"date_taken"`
	Tags                  []string   `json:"tags"`
	Views                 int        `json:"views"`
	Owner                 OwnerRef   `json:"owner"`
	OwnerName             string     `json:"owner_name,omitempty"`
	URLs                  []PhotoURL `json:"urls"`
	Location              *Location  `json:"location"`
	Media                 string     `json:"media"`
	Stats                 Stats      `json:"stats"`
	Albums                []Album    `json:"albums"`
	VideoInfo             *VideoInfo `json:"video_info,omitempty"`
}

// OwnerRef identifies the photo's owner
type OwnerRef struct {
	NSID     string `json:"nsid"`
	Username string `json:"username"`
	Realname string `json:"realname"`
	Location string `json:"location"`
}

// PhotoURL is a typed link attached to a photo
type PhotoURL struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Stats carries the counters embedded in a PhotoRecord
type Stats struct {
	Views     int `json:"views"`
	Comments  int `json:"comments"`
	Favorites int `json:"favorites"`
}

// Location is the optional geolocation sub-record; present only when the
// remote geo lookup succeeds.
type Location struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Accuracy  string `json:"accuracy"`
	Locality  string `json:"locality"`
	County    string `json:"county"`
	Region    string `json:"region"`
	Country   string `json:"country"`
}

// Album is a photo's membership in an album, with the secret/server/farm
// triple needed to reconstruct thumbnail URLs.
type Album struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Primary string `json:"primary"`
	Secret  string `json:"secret"`
	Server  string `json:"server"`
	Farm    int    `json:"farm"`
}

// VideoInfo is the advisory embedded in a video's metadata record
type VideoInfo struct {
	DownloadNote string   `json:"download_note"`
	FlickrURLs   []string `json:"flickr_urls"`
}

// CommentRecord is a persisted photo comment enriched with resolved
// author display metadata.
type CommentRecord struct {
	ID                string `json:"id"`
	Author            string `json:"author"`
	AuthorName        string `json:"author_name"`
	DateCreated       string `json:"date_created"`
	Permalink         string `json:"permalink"`
	Text              string `json:"text"`
	AuthorAvatarURL   string `json:"author_avatar_url,omitempty"`
	AuthorIsPro       int    `json:"author_is_pro"`
	AuthorDisplayName string `json:"author_display_name,omitempty"`
}

// FavoriteRecord is a persisted favoriting-user entry enriched with
// resolved display metadata.
type FavoriteRecord struct {
	NSID        string `json:"nsid"`
	Username    string `json:"username"`
	FaveDate    string `json:"favedate"`
	DisplayName string `json:"display_name,omitempty"`
	Realname    string `json:"realname"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsPro       int    `json:"is_pro"`
	ProfileURL  string `json:"profile_url,omitempty"`
}

// ExifEntry is a persisted EXIF triple
type ExifEntry struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
	Raw   string `json:"raw"`
}

// SizeDescriptor mirrors one remote size rendition in the persisted
// sizes file.
type SizeDescriptor struct {
	Label  string `json:"label"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Source string `json:"source"`
	URL    string `json:"url"`
	Media  string `json:"media"`
}

// SizeInfo is the persisted sizes.json for a non-video photo
type SizeInfo struct {
	Original *SizeDescriptor  `json:"original"`
	AllSizes []SizeDescriptor `json:"all_sizes"`
}

// VideoSizeInfo is the persisted sizes.json for a video; AllSizes holds
// poster-frame candidates rather than downloadable renditions.
type VideoSizeInfo struct {
	IsVideo   bool             `json:"is_video"`
	VideoURLs []string         `json:"video_urls"`
	Note      string           `json:"note"`
	AllSizes  []SizeDescriptor `json:"all_sizes"`
}

// UserInfo is the cached display metadata for a user id
type UserInfo struct {
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	Realname    string `json:"realname"`
	AvatarURL   string `json:"avatar_url"`
	IsPro       int    `json:"is_pro"`
	ProfileURL  string `json:"profile_url"`
}

// PhotoIndexEntry is one row of my_photos_index.json
type PhotoIndexEntry struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	DateTaken    string   `json:"date_taken"`
	DateUploaded string   `json:"date_uploaded"`
	Tags         []string `json:"tags"`
	Media        string   `json:"media"`
	Views        int      `json:"views"`
	Albums       []Album  `json:"albums"`
}

// FavoriteIndexEntry is one row of favorites_index.json
type FavoriteIndexEntry struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	OwnerName string   `json:"owner_name"`
	DateTaken string   `json:"date_taken"`
	Tags      []string `json:"tags"`
}

// AlbumIndexEntry is one row of albums_index.json
type AlbumIndexEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Primary     string `json:"primary"`
	Photos      int    `json:"photos"`
	Videos      int    `json:"videos"`
	CountPhotos int    `json:"count_photos"`
	CountVideos int    `json:"count_videos"`
	DateCreate  string `json:"date_create"`
	DateUpdate  string `json:"date_update"`
}
