package service

import "sync"

// SectionLocker serializes every grading mutation (ledger writes and
// workflow transitions) per section so a teacher's bulk submission can
// never race an admin's transition. Reads stay lock-free.
type SectionLocker struct {
	mu    sync.Mutex
	locks map[string]*sectionLock
}

type sectionLock struct {
	mu   sync.Mutex
	refs int
}

// NewSectionLocker constructs the keyed lock set.
func NewSectionLocker() *SectionLocker {
	return &SectionLocker{locks: make(map[string]*sectionLock)}
}

// Lock acquires the exclusive lock for the section and returns its
// release function. Entries are reference-counted so the map does not
// grow with every section ever touched.
func (l *SectionLocker) Lock(sectionID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[sectionID]
	if !ok {
		entry = &sectionLock{}
		l.locks[sectionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, sectionID)
		}
		l.mu.Unlock()
	}
}
