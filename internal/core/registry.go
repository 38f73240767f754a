package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"stockmap/internal/storage"
)

// registryFile is the level registry file name inside the data directory:
// a JSON object mapping level display name -> placement data file name.
const registryFile = "bodegas_config.json"

// DataFileName derives a level's placement file name from its display name.
// The rule must match the other tools exactly for round-trip compatibility.
func DataFileName(name string) string {
	return "yrz_" + strings.ToLower(strings.ReplaceAll(name, " ", "_")) + ".json"
}

// ImageFileName derives a level's floor-plan image file name. Unlike the data
// file, the image keeps the display name's case and spaces.
func ImageFileName(name string) string {
	return name + ".png"
}

// Registry owns the list of known warehouse levels and the files associated
// with each. The on-disk registry is a JSON object whose key order is the
// registration order; an ordered map keeps that order across round-trips.
type Registry struct {
	configPath  string
	dataDir     string
	graphicsDir string
	levels      *orderedmap.OrderedMap[string, string]
	degraded    bool
}

// LoadRegistry reads the registry file from dataDir. Missing file means an
// empty registry; corrupt file means an empty registry with the degraded
// flag set.
func LoadRegistry(dataDir, graphicsDir string) (*Registry, error) {
	r := &Registry{
		configPath:  filepath.Join(dataDir, registryFile),
		dataDir:     dataDir,
		graphicsDir: graphicsDir,
		levels:      orderedmap.New[string, string](),
	}
	degraded, err := storage.ReadJSON(r.configPath, r.levels)
	if err != nil {
		return nil, err
	}
	if degraded {
		r.levels = orderedmap.New[string, string]()
		r.degraded = true
	}
	return r, nil
}

// Degraded reports whether the registry file existed but could not be parsed.
func (r *Registry) Degraded() bool { return r.degraded }

// DataDir returns the directory holding the registry and placement files.
func (r *Registry) DataDir() string { return r.dataDir }

// GraphicsDir returns the directory holding floor-plan images.
func (r *Registry) GraphicsDir() string { return r.graphicsDir }

func (r *Registry) persist() error {
	return storage.WriteJSON(r.configPath, r.levels)
}

func (r *Registry) level(name, dataFile string) Level {
	return Level{Name: name, DataFile: dataFile, ImageFile: ImageFileName(name)}
}

// List returns the registered levels in registration order.
func (r *Registry) List() []Level {
	out := make([]Level, 0, r.levels.Len())
	for pair := r.levels.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, r.level(pair.Key, pair.Value))
	}
	return out
}

// Get returns the level registered under name.
func (r *Registry) Get(name string) (Level, error) {
	dataFile, ok := r.levels.Get(name)
	if !ok {
		return Level{}, fmt.Errorf("level %q: %w", name, ErrNotFound)
	}
	return r.level(name, dataFile), nil
}

// DataFilePath returns the absolute path of a registered level's data file.
func (r *Registry) DataFilePath(name string) (string, error) {
	lvl, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.dataDir, lvl.DataFile), nil
}

// ImagePath returns the path of the level's floor-plan image if one exists,
// trying the exact display name first and then the lowercase/underscore
// variant, matching the web mirror's lookup.
func (r *Registry) ImagePath(name string) (string, error) {
	candidates := []string{
		ImageFileName(name),
		strings.ToLower(strings.ReplaceAll(name, " ", "_")) + ".png",
	}
	for _, c := range candidates {
		p := filepath.Join(r.graphicsDir, c)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("image for level %q: %w", name, ErrNotFound)
}

// Add registers a new level. The data and image file names are derived
// deterministically from the name, so removing and re-adding a level under
// the same name picks its old data back up. If imageSource is nonempty the
// file is copied into the graphics directory as the level's floor plan.
func (r *Registry) Add(name, imageSource string) (Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Level{}, fmt.Errorf("level name must not be empty: %w", ErrInvalidInput)
	}
	if _, exists := r.levels.Get(name); exists {
		return Level{}, fmt.Errorf("level %q: %w", name, ErrDuplicateName)
	}

	if imageSource != "" {
		dst := filepath.Join(r.graphicsDir, ImageFileName(name))
		if err := storage.CopyFile(imageSource, dst); err != nil {
			return Level{}, err
		}
	}

	dataFile := DataFileName(name)
	r.levels.Set(name, dataFile)
	if err := r.persist(); err != nil {
		r.levels.Delete(name)
		return Level{}, err
	}
	return r.level(name, dataFile), nil
}

// Remove drops a level from the registry. The underlying data and image
// files are deliberately kept, so an accidental removal loses nothing.
func (r *Registry) Remove(name string) error {
	dataFile, ok := r.levels.Get(name)
	if !ok {
		return fmt.Errorf("level %q: %w", name, ErrNotFound)
	}
	r.levels.Delete(name)
	if err := r.persist(); err != nil {
		r.levels.Set(name, dataFile)
		return err
	}
	return nil
}

// ScanDataDir lists level names inferred from yrz_*.json files in the data
// directory. The web mirror falls back to this when no registry file exists.
func (r *Registry) ScanDataDir() []string {
	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, "yrz_") || !strings.HasSuffix(n, ".json") {
			continue
		}
		base := strings.TrimSuffix(strings.TrimPrefix(n, "yrz_"), ".json")
		names = append(names, titleWords(strings.ReplaceAll(base, "_", " ")))
	}
	sort.Strings(names)
	return names
}

// titleWords uppercases the first letter of each space-separated word.
func titleWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
