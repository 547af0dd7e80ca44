// Package flickr is the retrying gateway over Flickr's REST API.
//
// It exposes one method per remote operation the archiver uses. Operations
// whose resource may legitimately be absent (comments, favorites, EXIF,
// geo, contexts, user info) return a tagged Outcome alongside an always
// usable payload, so callers never branch on nil for "feature not present".
// Hard operations (photo listings, photo info, sizes, albums) return errors
// after the retry policy is exhausted.
//
// The one-time interactive OAuth 1.0a authorization lives in Authorizer;
// archival runs install the stored access token via SetAccessToken.
package flickr
