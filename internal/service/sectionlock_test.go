package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionLockerSerializesPerSection(t *testing.T) {
	locker := NewSectionLocker()
	var counter int
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("sec1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, locker.locks)
}

func TestSectionLockerIndependentSections(t *testing.T) {
	locker := NewSectionLocker()

	unlockA := locker.Lock("secA")
	unlockB := locker.Lock("secB")
	assert.Len(t, locker.locks, 2)

	unlockA()
	unlockB()
	assert.Empty(t, locker.locks)
}
