package service

import "sync"

// RemapTable maps source issue numbers to the numbers GitHub assigned on import.
// Entries are only added; the table lives for a single import run.
type RemapTable struct {
	mu      sync.RWMutex
	numbers map[int]int
}

// NewRemapTable creates an empty table
func NewRemapTable() *RemapTable {
	return &RemapTable{numbers: make(map[int]int)}
}

// Record maps source to created, replacing an earlier mapping for the same source
func (t *RemapTable) Record(source, created int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.numbers[source] = created
}

// Lookup returns the created number for source
func (t *RemapTable) Lookup(source int) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	created, ok := t.numbers[source]
	return created, ok
}

// Len returns the number of mapped issues
func (t *RemapTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.numbers)
}
