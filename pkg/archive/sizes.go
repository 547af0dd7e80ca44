package archive

import (
	"strings"

	"flickrarchiver/pkg/flickr"
	"flickrarchiver/pkg/models"
)

// OriginalLabel is the remote service's designation for the
// highest-fidelity stored rendition
const OriginalLabel = "Original"

// allowedExtensions are the binary extensions written verbatim; anything
// else falls back to jpg
var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
}

// SelectOriginal picks the size labeled Original, falling back to the
// widest available size. Missing widths compare as 0. Returns nil for an
// empty list.
func SelectOriginal(sizes []flickr.Size) *flickr.Size {
	for i := range sizes {
		if sizes[i].Label == OriginalLabel {
			return &sizes[i]
		}
	}
	return WidestSize(sizes)
}

// WidestSize returns the size with the largest declared width, or nil for
// an empty list
func WidestSize(sizes []flickr.Size) *flickr.Size {
	var best *flickr.Size
	for i := range sizes {
		if best == nil || sizes[i].WidthInt() > best.WidthInt() {
			best = &sizes[i]
		}
	}
	return best
}

// ParseExtension extracts the file extension from a source URL, stripping
// any query string and constraining the result to jpg/jpeg/png/gif with
// jpg as the fallback.
func ParseExtension(rawURL string) string {
	trimmed := rawURL
	if idx := strings.IndexByte(trimmed, '?'); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	dot := strings.LastIndexByte(trimmed, '.')
	if dot < 0 || dot == len(trimmed)-1 {
		return "jpg"
	}

	ext := strings.ToLower(trimmed[dot+1:])
	if !allowedExtensions[ext] {
		return "jpg"
	}
	return ext
}

// toDescriptor converts a remote size into its persisted form
func toDescriptor(s flickr.Size) models.SizeDescriptor {
	height, _ := s.Height.Int64()
	return models.SizeDescriptor{
		Label:  s.Label,
		Width:  s.WidthInt(),
		Height: int(height),
		Source: s.Source,
		URL:    s.URL,
		Media:  s.Media,
	}
}

// toDescriptors converts a size list into its persisted form
func toDescriptors(sizes []flickr.Size) []models.SizeDescriptor {
	out := make([]models.SizeDescriptor, 0, len(sizes))
	for _, s := range sizes {
		out = append(out, toDescriptor(s))
	}
	return out
}
