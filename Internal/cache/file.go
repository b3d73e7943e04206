package cache

import (
	"encoding/json"
	"os"

	"github.com/quantbrew/stockscope/Internal/types"
	"github.com/tidwall/pretty"
)

// File is the flat on-disk marker cache keyed "<TICKER>_<PERIOD>".
// Load failures are treated as an empty cache, never as an error.
type File struct {
	Path string
}

func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Load() map[string][]types.Marker {
	cache := make(map[string][]types.Marker)

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return cache
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return make(map[string][]types.Marker)
	}
	return cache
}

func (f *File) Save(cache map[string][]types.Marker) error {
	data, err := json.Marshal(cache)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, pretty.Pretty(data), 0644)
}

// Get returns the cached marker list for key, if present.
func (f *File) Get(key string) ([]types.Marker, bool) {
	markers, ok := f.Load()[key]
	return markers, ok
}

// Put stores markers under key, rewriting the whole file.
func (f *File) Put(key string, markers []types.Marker) error {
	cache := f.Load()
	cache[key] = markers
	return f.Save(cache)
}
