// Package storage manages the on-disk archive layout.
//
// Each photo occupies one directory (the archive unit) under its
// collection root, holding metadata.json, comments.json, favorites.json,
// exif.json, sizes.json, the binary original or poster frame, and the
// complete.flag marker. The marker's presence is the sole signal that the
// unit finished successfully; a crash mid-unit leaves no marker and the
// whole unit is redone on the next run.
package storage
