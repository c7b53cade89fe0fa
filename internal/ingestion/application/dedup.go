package application

// DedupIndex tracks the external ids a run must not insert again. It
// starts from the globally persisted id set and grows as records are
// queued, so the same id appearing twice within one file is caught too.
// An index belongs to exactly one run.
type DedupIndex struct {
	seen map[string]struct{}
}

// NewDedupIndex builds an index over the already-persisted ids.
func NewDedupIndex(existing map[string]struct{}) *DedupIndex {
	seen := make(map[string]struct{}, len(existing))
	for id := range existing {
		seen[id] = struct{}{}
	}
	return &DedupIndex{seen: seen}
}

// Duplicate reports whether id has been persisted or queued. Records
// without an external id are never deduplicated.
func (d *DedupIndex) Duplicate(id string) bool {
	if id == "" {
		return false
	}
	_, ok := d.seen[id]
	return ok
}

// Add marks an id as queued for insertion.
func (d *DedupIndex) Add(id string) {
	if id == "" {
		return
	}
	d.seen[id] = struct{}{}
}

// Len returns the tracked id count.
func (d *DedupIndex) Len() int {
	return len(d.seen)
}
