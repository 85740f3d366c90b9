package progress

// MetadataKey names an entry in the root's metadata side table. The table is
// an opaque pass-through: the tree stores and returns values verbatim and
// never interprets them. Display adapters own the semantics.
type MetadataKey string

// Well-known metadata keys. Callers may also use their own keys; nothing in
// the core restricts the set.
const (
	// MetaDescription is free-form display text for the overall operation.
	MetaDescription MetadataKey = "description"

	// MetaEstimatedTimeRemaining is a time.Duration estimate until the
	// operation completes.
	MetaEstimatedTimeRemaining MetadataKey = "estimated_time_remaining"

	// MetaThroughput is a units-per-second rate, typically an int64.
	MetaThroughput MetadataKey = "throughput"

	// MetaFileOperationKind describes the kind of file operation in
	// progress (e.g. "copying", "downloading").
	MetaFileOperationKind MetadataKey = "file_operation_kind"

	// MetaFileTotalCount is the total number of files involved.
	MetaFileTotalCount MetadataKey = "file_total_count"

	// MetaFileCompletedCount is the number of files finished so far.
	MetaFileCompletedCount MetadataKey = "file_completed_count"
)

// SetMetadata stores a value in the root's metadata side table, replacing any
// previous value for the key.
func (t *Tree[K]) SetMetadata(key MetadataKey, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.meta[key] = value
}

// Metadata returns the value stored for the key, or ok=false if unset.
func (t *Tree[K]) Metadata(key MetadataKey) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.meta[key]
	return v, ok
}

// MetadataAll returns a copy of the entire metadata side table.
func (t *Tree[K]) MetadataAll() map[MetadataKey]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[MetadataKey]any, len(t.meta))
	for k, v := range t.meta {
		out[k] = v
	}
	return out
}
