package prefab

import (
	"sort"

	"mirgoscene/internal/engine"
)

// Registry resolves prefab GUIDs. Instances only hold the GUID; the registry
// owns the prefab.
type Registry interface {
	GetPrefab(guid engine.GUID) (*Prefab, bool)
}

// MemoryRegistry is a Registry over prefabs added in code.
type MemoryRegistry struct {
	prefabs map[engine.GUID]*Prefab
}

func NewMemoryRegistry(prefabs ...*Prefab) *MemoryRegistry {
	r := &MemoryRegistry{prefabs: make(map[engine.GUID]*Prefab, len(prefabs))}
	for _, p := range prefabs {
		r.Add(p)
	}
	return r
}

// Add stores p, replacing any prefab with the same GUID.
func (r *MemoryRegistry) Add(p *Prefab) {
	if p == nil {
		return
	}
	r.prefabs[p.GUID] = p
}

func (r *MemoryRegistry) Remove(guid engine.GUID) bool {
	if _, ok := r.prefabs[guid]; !ok {
		return false
	}
	delete(r.prefabs, guid)
	return true
}

func (r *MemoryRegistry) GetPrefab(guid engine.GUID) (*Prefab, bool) {
	p, ok := r.prefabs[guid]
	return p, ok
}

func (r *MemoryRegistry) Len() int {
	return len(r.prefabs)
}

// Prefabs returns the stored prefabs sorted by name.
func (r *MemoryRegistry) Prefabs() []*Prefab {
	return sortedByName(r.prefabs)
}

func sortedByName(m map[engine.GUID]*Prefab) []*Prefab {
	out := make([]*Prefab, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].GUID < out[j].GUID
	})
	return out
}
