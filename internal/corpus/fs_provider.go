package corpus

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"github.com/standardbeagle/corpusd/internal/debug"
)

// FSProvider is a Provider backed by one or more directory roots on local
// disk. Only files matching the include glob (default "**/*.txt") and not
// matching an exclude glob are listed. Previously discovered paths keep
// their position across calls; new paths are appended in discovery order,
// matching the original FileManager's "find new files, append, never
// reorder" contract.
type FSProvider struct {
	roots   []string
	include []string
	exclude []string

	mu    sync.Mutex
	paths []string
	seen  map[string]struct{}

	reads singleflight.Group

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	dirty   bool
}

// NewFSProvider builds a Provider over roots. include/exclude are doublestar
// glob patterns matched against each candidate path relative to its root;
// a nil include defaults to every ".txt" file.
func NewFSProvider(roots []string, include, exclude []string) *FSProvider {
	if len(include) == 0 {
		include = []string{"**/*.txt"}
	}
	return &FSProvider{
		roots:   roots,
		include: include,
		exclude: exclude,
		seen:    make(map[string]struct{}),
	}
}

// ListPaths re-walks every root, adding any not-yet-seen matching file to
// the end of the path list. It never removes or reorders existing entries.
func (p *FSProvider) ListPaths(ctx context.Context) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, root := range p.roots {
		p.walkRoot(ctx, root)
	}

	p.watchMu.Lock()
	p.dirty = false
	p.watchMu.Unlock()

	out := make([]string, len(p.paths))
	copy(out, p.paths)
	return out
}

func (p *FSProvider) walkRoot(ctx context.Context, root string) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return
	}
	p.walkDir(ctx, root, root)
}

// walkDir recurses depth-first, matching the original FindFiles' recursive
// directory_iterator walk, collecting entries in a stable, sorted order per
// directory so re-runs over an unchanged tree are deterministic.
func (p *FSProvider) walkDir(ctx context.Context, root, dir string) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		debug.LogCorpus("readdir %s: %v\n", dir, err)
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			p.walkDir(ctx, root, full)
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		if !p.matches(root, full) {
			continue
		}
		if _, ok := p.seen[full]; ok {
			continue
		}
		p.seen[full] = struct{}{}
		p.paths = append(p.paths, full)
	}
}

func (p *FSProvider) matches(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	included := false
	for _, pattern := range p.include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range p.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}

// Read returns the document's content, or "" (logged) if it couldn't be
// read. Concurrent reads of the same path are coalesced via singleflight so
// a burst of getsnippet calls against a popular document only touches disk
// once.
func (p *FSProvider) Read(ctx context.Context, path string) string {
	v, _, _ := p.reads.Do(path, func() (interface{}, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			debug.LogCorpus("read %s: %v\n", path, err)
			return "", nil
		}
		return string(data), nil
	})
	return v.(string)
}

// WatchForChanges starts an fsnotify watch over every root and sets a dirty
// flag on any create/write event. It is purely a latency optimization over
// the periodic refresh scheduler (spec §4.6 / SPEC_FULL §11): the scheduler
// remains correct with WatchForChanges never called at all, it would simply
// wait out the full interval every time.
func (p *FSProvider) WatchForChanges() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, root := range p.roots {
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d == nil || !d.IsDir() {
				return nil
			}
			return w.Add(path)
		})
	}

	p.watchMu.Lock()
	p.watcher = w
	p.watchMu.Unlock()

	go func() {
		for event := range w.Events {
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				p.watchMu.Lock()
				p.dirty = true
				p.watchMu.Unlock()
			}
		}
	}()
	go func() {
		for err := range w.Errors {
			debug.LogCorpus("watch error: %v\n", err)
		}
	}()
	return nil
}

// Dirty reports whether a watched change has occurred since the last
// ListPaths call. Always false if WatchForChanges was never started.
func (p *FSProvider) Dirty() bool {
	p.watchMu.Lock()
	defer p.watchMu.Unlock()
	return p.dirty
}

// Close stops the fsnotify watch, if one was started.
func (p *FSProvider) Close() error {
	p.watchMu.Lock()
	w := p.watcher
	p.watcher = nil
	p.watchMu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}
