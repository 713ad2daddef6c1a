package service

import "sync"

// Counts is a success/failure pair
type Counts struct {
	Success int
	Failure int
}

// Summary is the outcome of an import run
type Summary struct {
	Schema   SchemaKind
	Rows     int
	Skipped  int
	Issues   Counts
	Comments Counts
}

// Tally accumulates per-kind outcomes while rows are submitted
type Tally struct {
	mu      sync.Mutex
	summary Summary
}

func (t *Tally) row() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary.Rows++
}

func (t *Tally) skip() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary.Skipped++
}

func (t *Tally) issue(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ok {
		t.summary.Issues.Success++
	} else {
		t.summary.Issues.Failure++
	}
}

func (t *Tally) comment(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ok {
		t.summary.Comments.Success++
	} else {
		t.summary.Comments.Failure++
	}
}

// Snapshot returns a copy of the current counts
func (t *Tally) Snapshot() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary
}
