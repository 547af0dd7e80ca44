package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// File names inside a photo's archive unit
const (
	MetadataFile  = "metadata.json"
	CommentsFile  = "comments.json"
	FavoritesFile = "favorites.json"
	ExifFile      = "exif.json"
	SizesFile     = "sizes.json"
	PosterFile    = "poster.jpg"
	MarkerFile    = "complete.flag"
)

// Manager handles the on-disk archive layout: one directory per photo
// under a collection root, index files at the archive root. All JSON is
// written atomically via a temp file and rename.
type Manager struct {
	root          string
	photosRoot    string
	favoritesRoot string
}

// NewManager creates the archive root and both collection directories
func NewManager(root, photosDir, favoritesDir string) (*Manager, error) {
	m := &Manager{
		root:          root,
		photosRoot:    filepath.Join(root, photosDir),
		favoritesRoot: filepath.Join(root, favoritesDir),
	}

	for _, dir := range []string{m.root, m.photosRoot, m.favoritesRoot} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
		}
	}

	return m, nil
}

// Root returns the archive root path
func (m *Manager) Root() string { return m.root }

// PhotosRoot returns the owned-photos collection directory
func (m *Manager) PhotosRoot() string { return m.photosRoot }

// FavoritesRoot returns the favorited-photos collection directory
func (m *Manager) FavoritesRoot() string { return m.favoritesRoot }

// UnitDir returns the archive-unit directory for a photo
func (m *Manager) UnitDir(collectionRoot, photoID string) string {
	return filepath.Join(collectionRoot, photoID)
}

// UnitExists reports whether a photo's directory exists at all, regardless
// of completeness. ExistingUnits is the bulk form of the same check.
func (m *Manager) UnitExists(collectionRoot, photoID string) bool {
	info, err := os.Stat(m.UnitDir(collectionRoot, photoID))
	return err == nil && info.IsDir()
}

// IsComplete reports whether a photo's completion marker exists. The
// marker is the sole resumability checkpoint.
func (m *Manager) IsComplete(collectionRoot, photoID string) bool {
	_, err := os.Stat(filepath.Join(m.UnitDir(collectionRoot, photoID), MarkerFile))
	return err == nil
}

// WriteJSON persists v as indented JSON, atomically
func (m *Manager) WriteJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close %s: %w", tempPath, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename %s: %w", tempPath, err)
	}

	return nil
}

// ReadJSON loads a JSON file into target
func (m *Manager) ReadJSON(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// SaveBinary streams binary content produced by write into path, via a
// temp file and atomic rename. A failed write leaves no partial file at
// the final path.
func (m *Manager) SaveBinary(path string, write func(w io.Writer) (int64, error)) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	n, writeErr := write(file)
	closeErr := file.Close()

	if writeErr != nil {
		os.Remove(tempPath)
		return n, writeErr
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return n, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return n, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return n, nil
}

// WriteMarker writes the completion marker containing the current
// timestamp. This must be the final write of an archive unit.
func (m *Manager) WriteMarker(unitDir string) error {
	if err := os.MkdirAll(unitDir, 0755); err != nil {
		return fmt.Errorf("failed to create unit directory: %w", err)
	}
	path := filepath.Join(unitDir, MarkerFile)
	if err := os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644); err != nil {
		return fmt.Errorf("failed to write completion marker: %w", err)
	}
	return nil
}

// ListUnits returns the sorted photo ids (subdirectory names) under a
// collection root. A missing root yields an empty list.
func (m *Manager) ListUnits(collectionRoot string) ([]string, error) {
	entries, err := os.ReadDir(collectionRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", collectionRoot, err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ExistingUnits returns the set of photo ids that already have a directory
// under the collection root
func (m *Manager) ExistingUnits(collectionRoot string) (map[string]bool, error) {
	ids, err := m.ListUnits(collectionRoot)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// RootFile returns the path of an index file at the archive root
func (m *Manager) RootFile(name string) string {
	return filepath.Join(m.root, name)
}
