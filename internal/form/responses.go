package form

// Entry is the operator's input for one visible row.
type Entry struct {
	Result     Result // nil until entered
	CycleCount string
	Seconds    string
}

// ResultText is the entered result as sent to the sheet, or "".
func (e Entry) ResultText() string {
	if e.Result == nil {
		return ""
	}
	return e.Result.Text()
}

// ResponseSet holds one Entry per visible row of a catalog generation.
// It is copied on write; a ResponseSet held by an older Session never changes.
type ResponseSet struct {
	generation uint64
	entries    []Entry
}

func newResponseSet(generation uint64, n int) ResponseSet {
	return ResponseSet{generation: generation, entries: make([]Entry, n)}
}

// Generation is the catalog generation the set belongs to.
func (r ResponseSet) Generation() uint64 { return r.generation }

// Len is the number of entries.
func (r ResponseSet) Len() int { return len(r.entries) }

// Entry returns the entry at index.
func (r ResponseSet) Entry(index int) Entry { return r.entries[index] }

// Empty reports whether nothing has been entered yet.
func (r ResponseSet) Empty() bool {
	for _, e := range r.entries {
		if e.Result != nil || e.CycleCount != "" || e.Seconds != "" {
			return false
		}
	}
	return true
}

func (r ResponseSet) with(index int, e Entry) ResponseSet {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	entries[index] = e
	return ResponseSet{generation: r.generation, entries: entries}
}
