package dialog

import "sync"

// KeyedMutex serializes work per handle. Locks for different handles do not
// contend.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int64]*refLock)}
}

// Lock blocks until handle is free and returns the matching unlock func.
func (k *KeyedMutex) Lock(handle int64) func() {
	k.mu.Lock()
	l, ok := k.locks[handle]
	if !ok {
		l = &refLock{}
		k.locks[handle] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, handle)
		}
		k.mu.Unlock()
	}
}

func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
