// Package keylock provides per-key mutual exclusion.
//
// Mutating cache and registry operations are exclusive per series while
// different series proceed concurrently. A KeyLock hands out one mutex
// per active key and releases it when the last holder is done.
package keylock

import "sync"

// KeyLock serialises operations that share a key.
// The zero value is not usable; call New.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty KeyLock.
func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*entry)}
}

// Acquire blocks until the key's lock is held and returns the release
// function. The entry is removed once no goroutine holds or waits on it.
func (k *KeyLock) Acquire(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
