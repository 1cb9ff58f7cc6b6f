package app

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// sessionLocks serializes mutations of one session inside this process.
// Sessions hash onto a fixed set of mutexes so nothing needs cleanup when a game ends.
type sessionLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *sessionLocks) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
