package pyramid

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// slideExtensions are the pyramid file formats served from the slide
// directory, matched case-insensitively.
var slideExtensions = map[string]bool{
	".svs":  true,
	".ndpi": true,
	".tif":  true,
	".tiff": true,
	".mrxs": true,
}

// Registry opens and caches pyramid sources by file name.
//
// The first request for a name opens the backing file; subsequent requests
// return the cached Source without re-decoding its metadata. Concurrent
// first requests for the same name share a single open, while different
// names open in parallel.
//
// The cache performs no eviction: it grows with the number of distinct
// names ever opened, which is acceptable for an operator-controlled slide
// directory. Registry is safe for concurrent use, except that CloseAll
// must not run while other requests may still be reading cached sources.
type Registry struct {
	dir  string
	open OpenFunc

	mu     sync.Mutex
	slides map[string]*slideEntry
}

type slideEntry struct {
	once sync.Once
	src  Source
	err  error
}

// NewRegistry creates a registry serving pyramid files from dir, using
// open to decode them.
func NewRegistry(dir string, open OpenFunc) *Registry {
	return &Registry{
		dir:    dir,
		open:   open,
		slides: make(map[string]*slideEntry),
	}
}

// Open returns the cached Source for name, opening the backing file on
// first use. It fails with ErrNotFound if name does not refer to a file
// directly inside the slide directory. A failed open is not cached, so a
// name can succeed later once its file exists.
func (r *Registry) Open(name string) (Source, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	r.mu.Lock()
	e, ok := r.slides[name]
	if !ok {
		e = &slideEntry{}
		r.slides[name] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		path := filepath.Join(r.dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				e.err = fmt.Errorf("%w: %s", ErrNotFound, name)
			} else {
				e.err = fmt.Errorf("stat %s: %w", path, err)
			}
			return
		}
		src, err := r.open(path)
		if err != nil {
			e.err = fmt.Errorf("open %s: %w", name, err)
			return
		}
		e.src = src
	})

	if e.err != nil {
		r.mu.Lock()
		if r.slides[name] == e {
			delete(r.slides, name)
		}
		r.mu.Unlock()
		return nil, e.err
	}
	return e.src, nil
}

// ListFiles returns the sorted names of pyramid files in the slide
// directory. A missing directory yields an empty list, not an error.
func (r *Registry) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read slide directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if slideExtensions[ext] {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// CloseAll closes every cached source and clears the cache. Callers must
// ensure no extraction is in flight; the registry does not track readers.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.slides {
		if e.src != nil {
			e.src.Close()
		}
	}
	r.slides = make(map[string]*slideEntry)
}
