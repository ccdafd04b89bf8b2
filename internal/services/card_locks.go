package services

import "sync"

// cardLocks hands out one mutex per card id. Entries are reference counted
// and dropped once nobody holds or waits on them.
type cardLocks struct {
	mu    sync.Mutex
	locks map[string]*cardLock
}

type cardLock struct {
	sync.Mutex
	refs int
}

func newCardLocks() *cardLocks {
	return &cardLocks{locks: make(map[string]*cardLock)}
}

// lock blocks until the caller owns id and returns the matching unlock.
func (c *cardLocks) lock(id string) func() {
	c.mu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &cardLock{}
		c.locks[id] = l
	}
	l.refs++
	c.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, id)
		}
		c.mu.Unlock()
	}
}

func (c *cardLocks) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.locks)
}
