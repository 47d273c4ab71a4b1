package render

import (
	"slices"
	"sync"
	"time"

	"znkr.io/sauce/source"
)

// Entry is an action applied to the grid.
type Entry struct {
	Seq    int
	Time   time.Time
	Action source.Action
	// Ops is the number of operations in the flattened action.
	Ops int
}

// Journal keeps the most recent actions applied to a grid. It's safe for concurrent use.
type Journal struct {
	mu      sync.Mutex
	limit   int
	seq     int
	entries []Entry
	now     func() time.Time
}

// NewJournal returns a journal that keeps at most limit entries.
func NewJournal(limit int) *Journal {
	return &Journal{limit: max(limit, 1), now: time.Now}
}

// Record adds an entry for a. Once the journal is full, the oldest entry is dropped.
func (j *Journal) Record(a source.Action) Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seq++
	e := Entry{
		Seq:    j.seq,
		Time:   j.now(),
		Action: a,
		Ops:    len(a.Flatten()),
	}
	j.entries = append(j.entries, e)
	if n := len(j.entries) - j.limit; n > 0 {
		j.entries = slices.Delete(j.entries, 0, n)
	}
	return e
}

// Entries returns the entries, newest first.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	ret := slices.Clone(j.entries)
	slices.Reverse(ret)
	return ret
}

// Seq returns the sequence number of the last entry, or 0 if nothing was recorded yet.
func (j *Journal) Seq() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq
}
