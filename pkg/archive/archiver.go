package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"flickrarchiver/pkg/flickr"
	"flickrarchiver/pkg/logger"
	"flickrarchiver/pkg/models"
	"flickrarchiver/pkg/ratelimit"
	"flickrarchiver/pkg/storage"
	"flickrarchiver/pkg/users"
)

// Archiver runs the per-photo archival pipeline: fetch the photo's
// related resources, merge them into the local record set, download the
// binary content, and finish with the completion marker.
type Archiver struct {
	gateway  Gateway
	resolver *users.Resolver
	store    *storage.Manager
	pacer    *ratelimit.Pacer
	logger   logger.Logger
}

// New creates an Archiver
func New(gateway Gateway, resolver *users.Resolver, store *storage.Manager, pacer *ratelimit.Pacer, log logger.Logger) *Archiver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Archiver{
		gateway:  gateway,
		resolver: resolver,
		store:    store,
		pacer:    pacer,
		logger:   log,
	}
}

// Archive processes one photo into its archive unit under collectionRoot.
// Sub-fetches degrade to empty defaults; photo info and sizes failures,
// and any local I/O failure, abort the unit and propagate. The completion
// marker is written last and only on full success.
func (a *Archiver) Archive(photo flickr.PhotoStub, collectionRoot string, isFavorite bool) error {
	unitDir := a.store.UnitDir(collectionRoot, photo.ID)

	if a.store.IsComplete(collectionRoot, photo.ID) {
		a.logger.InfoWithFields("skipping photo, already archived", map[string]interface{}{
			"photo_id": photo.ID,
		})
		return nil
	}

	a.pacer.PreUnit()

	a.logger.InfoWithFields("processing photo", map[string]interface{}{
		"photo_id":    photo.ID,
		"is_favorite": isFavorite,
	})

	info, err := a.gateway.GetPhotoInfo(photo.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch info for photo %s: %w", photo.ID, err)
	}

	record := buildRecord(photo.ID, info)
	if isFavorite {
		record.OwnerName = photo.OwnerName
	}

	if geo, outcome := a.gateway.GetGeo(photo.ID); outcome == flickr.OutcomeOK {
		record.Location = buildLocation(geo)
	}

	if sets, outcome := a.gateway.GetContexts(photo.ID); outcome == flickr.OutcomeOK {
		record.Albums = buildAlbums(sets)
	}
	if record.Albums == nil {
		record.Albums = []models.Album{}
	}

	sizes, err := a.gateway.GetSizes(photo.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch sizes for photo %s: %w", photo.ID, err)
	}

	// The sizes branch runs before the metadata write so a video's
	// advisory fields land in the persisted record.
	if record.Media == "video" {
		if err := a.archiveVideo(record, info, sizes, unitDir); err != nil {
			return err
		}
	} else {
		if err := a.archivePhoto(record, sizes, unitDir); err != nil {
			return err
		}
	}

	if err := a.store.WriteJSON(filepath.Join(unitDir, storage.MetadataFile), record); err != nil {
		return err
	}

	if err := a.writeComments(photo.ID, unitDir); err != nil {
		return err
	}
	if err := a.writeFavorites(photo.ID, unitDir); err != nil {
		return err
	}
	if err := a.writeExif(photo.ID, unitDir); err != nil {
		return err
	}

	if err := a.store.WriteMarker(unitDir); err != nil {
		return err
	}

	a.logger.InfoWithFields("photo archived", map[string]interface{}{
		"photo_id": photo.ID,
		"media":    record.Media,
	})

	a.pacer.PostUnit()
	return nil
}

// buildRecord merges a photos.getInfo response into the local record
func buildRecord(photoID string, info *flickr.PhotoInfo) *models.PhotoRecord {
	views := numberToInt(info.Views)
	comments, _ := strconv.Atoi(info.Comments.Text)
	isFavorite := numberToInt(info.IsFavorite)

	tags := make([]string, 0, len(info.Tags.Tag))
	for _, t := range info.Tags.Tag {
		tags = append(tags, t.Raw)
	}

	urls := make([]models.PhotoURL, 0, len(info.URLs.URL))
	for _, u := range info.URLs.URL {
		urls = append(urls, models.PhotoURL{Type: u.Type, URL: u.Text})
	}

	media := info.Media
	if media == "" {
		media = "photo"
	}

	record := &models.PhotoRecord{
		ID:           photoID,
		Title:        info.Title.Text,
		Description:  info.Description.Text,
		DateUploaded: info.DateUploaded,
		DateTaken:    info.Dates.Taken,
		Tags:         tags,
		Views:        views,
		Owner: models.OwnerRef{
			NSID:     info.Owner.NSID,
			Username: info.Owner.Username,
			Realname: info.Owner.Realname,
			Location: info.Owner.Location,
		},
		URLs:  urls,
		Media: media,
		Stats: models.Stats{
			Views:     views,
			Comments:  comments,
			Favorites: isFavorite,
		},
	}

	if epoch, err := strconv.ParseInt(info.DateUploaded, 10, 64); err == nil && epoch > 0 {
		record.DateUploadedFormatted = time.Unix(epoch, 0).UTC().Format(time.RFC3339)
	}

	return record
}

// buildLocation converts a geo response into the Location sub-record
func buildLocation(geo *flickr.GeoLocation) *models.Location {
	return &models.Location{
		Latitude:  geo.Latitude.String(),
		Longitude: geo.Longitude.String(),
		Accuracy:  geo.Accuracy.String(),
		Locality:  geo.Locality.Text,
		County:    geo.County.Text,
		Region:    geo.Region.Text,
		Country:   geo.Country.Text,
	}
}

// buildAlbums converts context sets into album memberships
func buildAlbums(sets []flickr.ContextSet) []models.Album {
	albums := make([]models.Album, 0, len(sets))
	for _, s := range sets {
		albums = append(albums, models.Album{
			ID:      s.ID,
			Title:   s.Title,
			Primary: s.Primary,
			Secret:  s.Secret,
			Server:  s.Server,
			Farm:    s.Farm,
		})
	}
	return albums
}

// archiveVideo captures the photopage URLs, downloads the widest thumbnail
// as a poster frame, persists the video sizes file, and augments the
// record with the manual-download advisory.
func (a *Archiver) archiveVideo(record *models.PhotoRecord, info *flickr.PhotoInfo, sizes *flickr.SizeList, unitDir string) error {
	a.logger.InfoWithFields("photo is a video, capturing poster frame", map[string]interface{}{
		"photo_id": record.ID,
	})

	videoURLs := []string{}
	for _, u := range info.URLs.URL {
		if u.Type == "photopage" {
			videoURLs = append(videoURLs, u.Text)
		}
	}

	if poster := WidestSize(sizes.Size); poster != nil {
		if err := a.download(poster.Source, filepath.Join(unitDir, storage.PosterFile)); err == nil {
			a.logger.InfoWithFields("downloaded video poster frame", map[string]interface{}{
				"photo_id": record.ID,
			})
		}
	}

	sizesOut := models.VideoSizeInfo{
		IsVideo:   true,
		VideoURLs: videoURLs,
		Note:      models.VideoDownloadNote,
		AllSizes:  toDescriptors(sizes.Size),
	}
	if err := a.store.WriteJSON(filepath.Join(unitDir, storage.SizesFile), sizesOut); err != nil {
		return err
	}

	record.VideoInfo = &models.VideoInfo{
		DownloadNote: models.VideoDownloadNote,
		FlickrURLs:   videoURLs,
	}
	return nil
}

// archivePhoto downloads the original (or best-available) rendition and
// persists the sizes file. An empty size list is not an error; nothing is
// downloaded and no sizes file is written.
func (a *Archiver) archivePhoto(record *models.PhotoRecord, sizes *flickr.SizeList, unitDir string) error {
	original := SelectOriginal(sizes.Size)
	if original == nil {
		a.logger.WarnWithFields("no sizes available, skipping binary download", map[string]interface{}{
			"photo_id": record.ID,
		})
		return nil
	}

	ext := ParseExtension(original.Source)
	if err := a.download(original.Source, filepath.Join(unitDir, "original."+ext)); err == nil {
		a.logger.InfoWithFields("downloaded original", map[string]interface{}{
			"photo_id": record.ID,
			"label":    original.Label,
		})
	}

	selected := toDescriptor(*original)
	sizesOut := models.SizeInfo{
		Original: &selected,
		AllSizes: toDescriptors(sizes.Size),
	}
	return a.store.WriteJSON(filepath.Join(unitDir, storage.SizesFile), sizesOut)
}

// download streams a binary URL into the archive unit. Failures are
// logged, not fatal; the affected binary is simply missing.
func (a *Archiver) download(rawURL, path string) error {
	_, err := a.store.SaveBinary(path, func(w io.Writer) (int64, error) {
		return a.gateway.DownloadTo(rawURL, w)
	})
	if err != nil {
		a.logger.WithError(err).WithField("url", rawURL).Error("binary download failed")
	}
	return err
}

// writeComments fetches, enriches and persists the photo's comments
func (a *Archiver) writeComments(photoID, unitDir string) error {
	comments, _ := a.gateway.GetComments(photoID)

	records := make([]models.CommentRecord, 0, len(comments))
	for _, c := range comments {
		record := models.CommentRecord{
			ID:          c.ID,
			Author:      c.Author,
			AuthorName:  c.AuthorName,
			DateCreated: c.DateCreate,
			Permalink:   c.Permalink,
			Text:        c.Text,
		}

		if c.Author != "" {
			userInfo := a.resolver.Resolve(c.Author)
			record.AuthorAvatarURL = userInfo.AvatarURL
			record.AuthorIsPro = userInfo.IsPro
			record.AuthorDisplayName = userInfo.DisplayName
		}

		records = append(records, record)
	}

	return a.store.WriteJSON(filepath.Join(unitDir, storage.CommentsFile), records)
}

// writeFavorites fetches, enriches and persists the photo's favorited-by list
func (a *Archiver) writeFavorites(photoID, unitDir string) error {
	people, _ := a.gateway.GetFavorites(photoID)

	records := make([]models.FavoriteRecord, 0, len(people))
	for _, p := range people {
		record := models.FavoriteRecord{
			NSID:     p.NSID,
			Username: p.Username,
			FaveDate: p.FaveDate,
		}

		if p.NSID != "" {
			userInfo := a.resolver.Resolve(p.NSID)
			record.DisplayName = userInfo.DisplayName
			record.Realname = userInfo.Realname
			record.AvatarURL = userInfo.AvatarURL
			record.IsPro = userInfo.IsPro
			record.ProfileURL = userInfo.ProfileURL
		}

		records = append(records, record)
	}

	return a.store.WriteJSON(filepath.Join(unitDir, storage.FavoritesFile), records)
}

// writeExif fetches and persists the photo's EXIF triples
func (a *Archiver) writeExif(photoID, unitDir string) error {
	exif, _ := a.gateway.GetExif(photoID)

	records := make([]models.ExifEntry, 0, len(exif))
	for _, e := range exif {
		records = append(records, models.ExifEntry{
			Tag:   e.Tag,
			Label: e.Label,
			Raw:   e.Raw.Text,
		})
	}

	return a.store.WriteJSON(filepath.Join(unitDir, storage.ExifFile), records)
}

// numberToInt converts a json.Number field to int, treating missing or
// unparsable values as 0
func numberToInt(n json.Number) int {
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(v)
}
