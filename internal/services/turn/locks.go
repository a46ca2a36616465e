// File: internal/services/turn/locks.go
package turn

import "sync"

// conversationLocks hands out one mutex per conversation id. Concurrent turns
// on the same conversation serialize on it; turns on different conversations
// never contend. Entries are never evicted, so the map holds one mutex per
// conversation touched since process start.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *conversationLocks) get(conversationID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[conversationID] = lock
	}
	return lock
}
