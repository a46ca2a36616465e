package turn

import (
	"sync"
	"testing"
)

func TestConversationLocksReturnSameMutexPerID(t *testing.T) {
	locks := newConversationLocks()

	if locks.get(1) != locks.get(1) {
		t.Fatal("same conversation must map to the same mutex")
	}
	if locks.get(1) == locks.get(2) {
		t.Fatal("different conversations must not share a mutex")
	}
}

func TestConversationLocksSerializeCriticalSections(t *testing.T) {
	locks := newConversationLocks()

	var inside int
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock := locks.get(7)
			lock.Lock()
			defer lock.Unlock()
			inside++
		}()
	}
	wg.Wait()

	if inside != 20 {
		t.Fatalf("expected 20 serialized increments, got %d", inside)
	}
}
