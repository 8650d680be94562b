package prefab

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/errs"
	"mirgoscene/internal/log"
)

type libraryEntry struct {
	digest uint64
	prefab *Prefab
}

// Library is a Registry backed by a directory of prefab files. Refresh
// reloads only files whose content digest changed.
type Library struct {
	dir        string
	ext        string
	serializer *Serializer
	log        *log.Logger

	entries map[string]*libraryEntry // keyed by path
	byGUID  map[engine.GUID]string
}

// RefreshStats counts what a Refresh changed.
type RefreshStats struct {
	Added   int
	Updated int
	Removed int
	Failed  int
}

func (s RefreshStats) Changed() bool {
	return s.Added+s.Updated+s.Removed > 0
}

func NewLibrary(dir, ext string, serializer *Serializer, logger *log.Logger) *Library {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Library{
		dir:        dir,
		ext:        ext,
		serializer: serializer,
		log:        logger.Named("library"),
		entries:    make(map[string]*libraryEntry),
		byGUID:     make(map[engine.GUID]string),
	}
}

func (l *Library) Dir() string {
	return l.dir
}

// Refresh rescans the directory. Files that fail to load keep their previous
// version, if any.
func (l *Library) Refresh() (RefreshStats, error) {
	var stats RefreshStats

	dirEntries, err := os.ReadDir(l.dir)
	if err != nil {
		ioErr := errs.IO("scan prefabs", l.dir, err)
		l.log.Error("prefab scan failed", log.Error(ioErr), log.Kind(ioErr))
		return stats, ioErr
	}

	seen := make(map[string]bool, len(dirEntries))
	for _, entry := range dirEntries {
		if entry.IsDir() || (l.ext != "" && !strings.HasSuffix(entry.Name(), l.ext)) {
			continue
		}
		path := filepath.Join(l.dir, entry.Name())
		seen[path] = true

		data, err := os.ReadFile(path)
		if err != nil {
			stats.Failed++
			l.log.Warn("read prefab failed", log.String("path", path), log.Error(err))
			continue
		}
		digest := xxhash.Sum64(data)
		old, exists := l.entries[path]
		if exists && old.digest == digest {
			continue
		}

		p, err := l.serializer.Unmarshal(data)
		if err != nil {
			stats.Failed++
			l.log.Warn("parse prefab failed", log.String("path", path), log.Error(err), log.Kind(err))
			continue
		}
		if other, taken := l.byGUID[p.GUID]; taken && other != path {
			stats.Failed++
			l.log.Warn("duplicate prefab GUID", log.String("path", path),
				log.String("other", other), log.String("guid", p.GUID.String()))
			continue
		}

		if exists {
			delete(l.byGUID, old.prefab.GUID)
			stats.Updated++
		} else {
			stats.Added++
		}
		l.entries[path] = &libraryEntry{digest: digest, prefab: p}
		l.byGUID[p.GUID] = path
	}

	for path, entry := range l.entries {
		if seen[path] {
			continue
		}
		delete(l.entries, path)
		if l.byGUID[entry.prefab.GUID] == path {
			delete(l.byGUID, entry.prefab.GUID)
		}
		stats.Removed++
	}

	if stats.Changed() {
		l.log.Info("prefabs refreshed", log.String("dir", l.dir), log.Int("added", stats.Added),
			log.Int("updated", stats.Updated), log.Int("removed", stats.Removed))
	}
	return stats, nil
}

func (l *Library) GetPrefab(guid engine.GUID) (*Prefab, bool) {
	path, ok := l.byGUID[guid]
	if !ok {
		return nil, false
	}
	return l.entries[path].prefab, true
}

// Path returns the file a prefab was loaded from.
func (l *Library) Path(guid engine.GUID) (string, bool) {
	path, ok := l.byGUID[guid]
	return path, ok
}

// Prefabs returns the loaded prefabs sorted by name.
func (l *Library) Prefabs() []*Prefab {
	m := make(map[engine.GUID]*Prefab, len(l.byGUID))
	for guid, path := range l.byGUID {
		m[guid] = l.entries[path].prefab
	}
	return sortedByName(m)
}

// Paths returns the loaded file paths, sorted.
func (l *Library) Paths() []string {
	out := make([]string, 0, len(l.entries))
	for path := range l.entries {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Save writes p into the library directory as name+extension and loads it.
func (l *Library) Save(p *Prefab, name string) (string, error) {
	path := filepath.Join(l.dir, name+l.ext)
	if err := l.serializer.SaveToFile(p, path); err != nil {
		return "", err
	}
	if _, err := l.Refresh(); err != nil {
		return "", err
	}
	return path, nil
}
