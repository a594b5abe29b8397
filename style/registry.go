package style

import (
	"maps"
	"slices"

	"go.uber.org/zap"

	"mailbuilder/common"
	"mailbuilder/ident"
)

type kindInfo struct {
	kind  common.BlockKind
	level int
}

// Registry maps block identities to style records. Reads never create
// entries: Get of an identity without record returns computed defaults for
// block kind. Registry is owned by a single editing session and is not safe
// for concurrent use.
type Registry struct {
	kinds   map[ident.BlockID]kindInfo
	records map[ident.BlockID]Record
	log     *zap.Logger
}

// NewRegistry creates empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		kinds:   make(map[ident.BlockID]kindInfo),
		records: make(map[ident.BlockID]Record),
		log:     log.Named("styles"),
	}
}

// Track remembers block kind so defaults could be computed for it. It does
// not create style record.
func (r *Registry) Track(id ident.BlockID, kind common.BlockKind, level int) {
	r.kinds[id] = kindInfo{kind: kind, level: level}
}

// Kind returns tracked kind of the block.
func (r *Registry) Kind(id ident.BlockID) (common.BlockKind, int, bool) {
	ki, ok := r.kinds[id]
	return ki.kind, ki.level, ok
}

func (r *Registry) defaults(id ident.BlockID) Record {
	ki, ok := r.kinds[id]
	if !ok {
		return DefaultParagraph
	}
	return Defaults(ki.kind, ki.level)
}

// Get returns style record of the block or defaults for its kind. Registry
// state is never modified.
func (r *Registry) Get(id ident.BlockID) Record {
	if rec, ok := r.records[id]; ok {
		return rec
	}
	return r.defaults(id)
}

// Lookup returns explicitly stored record.
func (r *Registry) Lookup(id ident.BlockID) (Record, bool) {
	rec, ok := r.records[id]
	return rec, ok
}

// Seed tracks block and stores defaults as its explicit record unless record
// already exists.
func (r *Registry) Seed(id ident.BlockID, kind common.BlockKind, level int) {
	r.Track(id, kind, level)
	if _, ok := r.records[id]; ok {
		return
	}
	r.records[id] = Defaults(kind, level)
}

// Put stores complete record, sanitizing it first.
func (r *Registry) Put(id ident.BlockID, rec Record) Record {
	rec = rec.Sanitize(r.defaults(id))
	r.records[id] = rec
	return rec
}

// Set updates single property of the block record creating it from defaults
// when absent. Unknown keys and malformed values are logged and ignored, out of
// range values are clamped. Returns resulting record.
func (r *Registry) Set(id ident.BlockID, key string, value any) Record {
	def := r.defaults(id)
	rec, ok := r.records[id]
	if !ok {
		rec = def
	}
	if err := rec.set(key, value); err != nil {
		r.log.Warn("Ignoring style update", zap.String("id", string(id)), zap.String("key", key), zap.Error(err))
		return r.Get(id)
	}
	rec = rec.Sanitize(def)
	r.records[id] = rec
	return rec
}

// Copy duplicates record and kind of one block to another. Nothing is copied
// when source has no explicit record.
func (r *Registry) Copy(from, to ident.BlockID) bool {
	if ki, ok := r.kinds[from]; ok {
		r.kinds[to] = ki
	}
	rec, ok := r.records[from]
	if !ok {
		return false
	}
	r.records[to] = rec
	return true
}

// Delete removes everything known about the block.
func (r *Registry) Delete(id ident.BlockID) {
	delete(r.records, id)
	delete(r.kinds, id)
}

// ResetAll restores defaults for every stored record and returns affected identities.
func (r *Registry) ResetAll() []ident.BlockID {
	return r.reset(func(kindInfo) bool { return true })
}

// ResetKind restores defaults for stored records of one block kind.
func (r *Registry) ResetKind(kind common.BlockKind) []ident.BlockID {
	return r.reset(func(ki kindInfo) bool {
		if ki.kind == "" {
			return kind == common.BlockKindParagraph
		}
		return ki.kind == kind
	})
}

func (r *Registry) reset(match func(kindInfo) bool) []ident.BlockID {
	var ids []ident.BlockID
	for _, id := range r.IDs() {
		if !match(r.kinds[id]) {
			continue
		}
		r.records[id] = r.defaults(id)
		ids = append(ids, id)
	}
	return ids
}

// Collect removes records and kinds of blocks for which live returns false
// and returns removed identities.
func (r *Registry) Collect(live func(ident.BlockID) bool) []ident.BlockID {
	known := make(map[ident.BlockID]struct{}, len(r.kinds)+len(r.records))
	for id := range r.kinds {
		known[id] = struct{}{}
	}
	for id := range r.records {
		known[id] = struct{}{}
	}

	var removed []ident.BlockID
	for _, id := range slices.Sorted(maps.Keys(known)) {
		if live(id) {
			continue
		}
		r.Delete(id)
		removed = append(removed, id)
	}
	if len(removed) > 0 {
		r.log.Debug("Collected orphaned styles", zap.Int("count", len(removed)))
	}
	return removed
}

// IDs returns sorted identities which have explicit records.
func (r *Registry) IDs() []ident.BlockID {
	return slices.Sorted(maps.Keys(r.records))
}

// Len returns number of explicit records.
func (r *Registry) Len() int {
	return len(r.records)
}
